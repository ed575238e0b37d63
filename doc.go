// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bq provides a bounded, multi-producer single-consumer queue
// tuned for batched consumption and cross-queue work stealing.
//
// Unlike a conventional FIFO queue that dequeues one value at a time, bq
// hands the consumer an exclusive batch view of everything enqueued
// since the previous cycle. Internally it rotates between two buffers
// using a single tagged atomic counter: the high bit selects which
// buffer producers are currently writing into, and the low bits are a
// per-cycle slot ticket. A third, spare buffer is the landing site the
// consumer swaps the retired buffer into, so Drain never copies data out
// of the hot path.
//
// # Quick Start
//
//	q := bq.New[Event](1024)
//
//	// Producers (any number of goroutines)
//	go func() {
//	    for ev := range events {
//	        for !q.Enqueue(ev) {
//	            runtime.Gosched() // back off, queue is momentarily full
//	        }
//	    }
//	}()
//
//	// Single consumer
//	for {
//	    view := q.Drain()
//	    for i := range view.Len() {
//	        process(*view.At(i))
//	    }
//	}
//
// # Work Stealing
//
// A consumer that finds its own queue empty may steal a sibling's batch
// instead of idling:
//
//	view := q.Drain()
//	if view.Len() == 0 {
//	    view = q.Steal(sibling)
//	}
//
// Steal never blocks: if sibling is concurrently being drained or
// stolen from, it returns an empty view immediately.
//
// # Thread Safety
//
//   - Enqueue: any number of producer goroutines, safe concurrently with
//     each other and with the consumer.
//   - Drain: exactly one designated consumer goroutine per queue.
//   - Steal(other): called by another queue's designated consumer
//     goroutine; synchronizes with other's own Drain/Steal through
//     other's stealLock.
//
// Calling Drain concurrently with itself on the same queue, or from more
// than one goroutine, is a misuse this package does not protect against:
// the calls are serialized by stealLock, but the later one hands the
// earlier caller's view storage back to producers while that view may
// still be in use.
//
// # What This Package Does Not Do
//
// bq intentionally has no unbounded mode, no ordering guarantee across
// distinct producers, no multi-consumer drain of the same queue, no
// persistence, and no blocking primitives that park a goroutine — every
// wait in this package is a cooperative busy-wait that yields on each
// iteration via code.hybscloud.com/spin. Callers that need bounded
// waiting or backpressure should compose bq with their own timeout or
// backoff policy, e.g. code.hybscloud.com/iox's Backoff.
//
// # Dependencies
//
// This package uses code.hybscloud.com/atomix for atomic primitives with
// explicit memory ordering and code.hybscloud.com/spin for cooperative
// busy-wait. It does not depend on code.hybscloud.com/iox itself — the
// bool/View-returning core stays free of error-handling machinery; iox
// shows up one layer up, in callers that want backoff semantics around
// a false Enqueue or an empty View.
package bq
