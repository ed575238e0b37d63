// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// tagMask isolates the role tag, the most significant bit of entryCounter.
// The remaining 63 bits are the ticket. Capacity is expected to stay far
// below 2^63, so the ticket never wraps into the tag within a drain cycle.
const tagMask = uint64(1) << 63

// Queue is a bounded multi-producer single-consumer queue tuned for
// batched consumption and cross-queue work stealing.
//
// Producers call Enqueue concurrently and never block on the consumer.
// The single designated consumer calls Drain to take an exclusive batch
// of everything enqueued since the previous cycle, or Steal to take that
// same batch from a sibling queue when its own queue is empty. Queue is
// safe for concurrent use by any number of producer goroutines and
// exactly one consumer goroutine (plus, transiently, other queues'
// consumers calling Steal against it).
type Queue[T any] struct {
	_            pad
	entryCounter atomix.Uint64 // high bit: role tag, low 63 bits: ticket
	_            pad
	fullFlag     atomix.Bool // best-effort fast-reject hint, cleared on flip
	_            pad
	stealLock    atomix.Bool // test-and-set: at most one consumer acts on this queue
	_            pad
	handles      [3]*bufferUnit[T] // handles[0], handles[1]: B0/B1; handles[2]: spare
	capacity     uint64
}

// New creates a queue that holds up to capacity values per drain cycle.
// Panics if capacity < 1.
func New[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		panic("bq: capacity must be >= 1")
	}
	n := uint64(capacity)
	q := &Queue[T]{capacity: n}
	for i := range q.handles {
		q.handles[i] = newBufferUnit[T](n)
	}
	return q
}

// Cap returns the queue's configured capacity.
func (q *Queue[T]) Cap() int {
	return int(q.capacity)
}

func tagOf(w uint64) uint64 {
	if w&tagMask != 0 {
		return 1
	}
	return 0
}

func ticketOf(w uint64) uint64 {
	return w &^ tagMask
}

// Enqueue adds a value to the queue. Returns false if the buffer currently
// backing the producer-active role is full; the caller retains v on
// failure and may retry, drop it, or back off. Safe for any number of
// concurrent producer goroutines. Never blocks on the consumer.
func (q *Queue[T]) Enqueue(v T) bool {
	if q.fullFlag.LoadRelaxed() {
		return false
	}

	w := q.entryCounter.AddAcqRel(1) - 1
	tag := tagOf(w)
	ticket := ticketOf(w)

	ok := q.handles[tag].enqueue(ticket, v)
	if !ok {
		q.fullFlag.StoreRelaxed(true)
	}
	return ok
}

// Drain retires the producer-active buffer and returns an exclusive view
// of every value successfully enqueued before the retirement. The view
// is valid only until the next q.Drain() or q.Steal(...) call. Must be
// called by a single designated consumer goroutine; concurrent Drain
// calls on the same queue are serialized by stealLock, not intended to
// be issued concurrently from more than one goroutine.
func (q *Queue[T]) Drain() View[T] {
	sw := spin.Wait{}
	for !q.stealLock.CompareAndSwapAcqRel(false, true) {
		sw.Once()
	}
	defer q.stealLock.StoreRelease(false)

	return q.retire(&q.handles[2])
}

// Steal performs the retirement that other.Drain() would perform, but
// lands the retired buffer in q's own spare slot instead of other's,
// so the two queues never contend for the same storage. Returns an
// empty view, without blocking, if other is currently being drained or
// stolen from by anyone else.
func (q *Queue[T]) Steal(other *Queue[T]) View[T] {
	if !other.stealLock.CompareAndSwapAcqRel(false, true) {
		return View[T]{}
	}
	defer other.stealLock.StoreRelease(false)

	return other.retire(&q.handles[2])
}

// retire flips q's role tag, waits for the retired buffer to quiesce, and
// swaps it into *landing — the caller's spare slot for Drain, or the
// thief's spare slot for Steal. The caller must already hold q.stealLock.
func (q *Queue[T]) retire(landing **bufferUnit[T]) View[T] {
	sw := spin.Wait{}
	var w uint64
	for {
		old := q.entryCounter.LoadRelaxed()
		var next uint64
		if tagOf(old) == 0 {
			next = tagMask
		}
		if q.entryCounter.CompareAndSwapAcqRel(old, next) {
			w = old
			break
		}
		sw.Once()
	}

	prevTag := tagOf(w)
	prevTicket := ticketOf(w)
	q.fullFlag.StoreRelaxed(false)

	retired := q.handles[prevTag]
	view := retired.awaitExclusive(prevTicket)

	prevSpare := *landing
	*landing = retired
	q.handles[prevTag] = prevSpare

	return view
}
