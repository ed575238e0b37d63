// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package baseline implements a classic one-at-a-time FAA ring-buffer
// MPSC queue, kept only as a throughput/latency reference point for
// bq's batch-and-steal design. It is not part of bq's public API and
// implements none of Drain/Steal's batch or stealing semantics: callers
// get values back one Dequeue at a time, in the order producers' FAA
// tickets happened to land in.
package baseline

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// RingMPSC is an FAA-based multi-producer single-consumer bounded queue.
//
// Producers use FAA to blindly claim positions (SCQ-style), requiring 2n
// physical slots for capacity n. This is the same algorithm family as
// the original C++ source's deprecated concurrent_queue2.hpp, which
// this package's benchmark suite uses as the "conventional ring buffer"
// side of a throughput comparison against bq's double-buffer design.
type RingMPSC[T any] struct {
	_        pad
	head     atomix.Uint64 // consumer index; producers read it, only consumer writes it
	_        pad
	tail     atomix.Uint64 // producer index, advanced by FAA
	_        pad
	buffer   []ringSlot[T]
	capacity uint64 // n, usable capacity
	size     uint64 // 2n, physical slots
	mask     uint64 // 2n - 1
}

type ringSlot[T any] struct {
	cycle atomix.Uint64 // round number this slot is ready to be written in
	data  T
	_     padShort
}

type pad [64]byte
type padShort [64 - 8]byte

// NewRingMPSC creates a new baseline queue. Capacity rounds up to the
// next power of 2, matching the algorithm's slot-cycling arithmetic.
func NewRingMPSC[T any](capacity int) *RingMPSC[T] {
	if capacity < 2 {
		panic("baseline: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	size := n * 2

	q := &RingMPSC[T]{
		buffer:   make([]ringSlot[T], size),
		capacity: n,
		size:     size,
		mask:     size - 1,
	}
	for i := uint64(0); i < size; i++ {
		q.buffer[i].cycle.StoreRelaxed(i / n)
	}
	return q
}

// Enqueue adds an element (multiple producers safe). Returns false if
// the queue is full.
func (q *RingMPSC[T]) Enqueue(elem T) bool {
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		head := q.head.LoadRelaxed()
		if tail >= head+q.capacity {
			return false
		}

		myTail := q.tail.AddAcqRel(1) - 1
		slot := &q.buffer[myTail&q.mask]
		expectedCycle := myTail / q.capacity
		slotCycle := slot.cycle.LoadAcquire()

		if slotCycle == expectedCycle {
			slot.data = elem
			slot.cycle.StoreRelease(expectedCycle + 1)
			return true
		}
		if int64(slotCycle) < int64(expectedCycle) {
			return false
		}
		sw.Once()
	}
}

// Dequeue removes one element (single consumer only). Returns
// (zero, false) if the queue is empty.
func (q *RingMPSC[T]) Dequeue() (T, bool) {
	head := q.head.LoadRelaxed()
	cycle := head / q.capacity
	slot := &q.buffer[head&q.mask]

	slotCycle := slot.cycle.LoadAcquire()
	if slotCycle != cycle+1 {
		var zero T
		return zero, false
	}

	elem := slot.data
	var zero T
	slot.data = zero
	nextEnqCycle := (head + q.size) / q.capacity
	slot.cycle.StoreRelease(nextEnqCycle)
	q.head.StoreRelaxed(head + 1)

	return elem, true
}

// Cap returns the queue's usable capacity.
func (q *RingMPSC[T]) Cap() int {
	return int(q.capacity)
}

func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
