// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// cell is a single storage slot holding one value of T.
//
// Cells are zero-initialized when a bufferUnit is created and live for
// the buffer's lifetime; enqueuing overwrites a cell by assignment, never
// by construction.
type cell[T any] struct {
	value T
}

// bufferUnit is a fixed-capacity slab of cells plus the bookkeeping a
// single drain cycle needs: how many cells are meaningful to the
// consumer (size) and how many writers have checked in since the last
// reset (completion).
//
// A bufferUnit never knows which role tag it is currently playing; the
// owning Queue decides that by indexing handles[tag]. This keeps the
// buffer unit itself reusable across both B0/B1 roles and the spare
// slot.
type bufferUnit[T any] struct {
	_          pad
	completion atomix.Uint64 // checked in by every writer, successful or not
	_          pad
	capacity   uint64
	size       uint64 // last observed size; consumer-only, valid only while held exclusively
	cells      []cell[T]
}

func newBufferUnit[T any](capacity uint64) *bufferUnit[T] {
	return &bufferUnit[T]{
		capacity: capacity,
		cells:    make([]cell[T], capacity),
	}
}

// enqueue assigns v into cell slot if slot is in range, then unconditionally
// checks in with the completion counter. The check-in happens regardless of
// outcome: the consumer's quiescence wait in awaitExclusive counts every
// producer that claimed a ticket, not just the ones that fit.
func (b *bufferUnit[T]) enqueue(slot uint64, v T) bool {
	ok := slot < b.capacity
	if ok {
		b.cells[slot].value = v
	}
	b.completion.AddAcqRel(1)
	return ok
}

// awaitExclusive busy-waits until completion reaches expected, then resets
// it and returns a view over the first min(expected, capacity) cells.
// The caller must already hold the queue's stealLock: this is the sole
// operation that establishes a consumer's exclusive-read window over this
// buffer's storage.
func (b *bufferUnit[T]) awaitExclusive(expected uint64) View[T] {
	sw := spin.Wait{}
	for b.completion.LoadAcquire() < expected {
		sw.Once()
	}
	b.completion.StoreRelaxed(0)

	size := expected
	if size > b.capacity {
		size = b.capacity
	}
	b.size = size

	return View[T]{cells: b.cells[:size]}
}
