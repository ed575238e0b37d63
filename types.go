// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bq

// Producer is the enqueue-side interface a *Queue[T] satisfies.
//
// Code that only ever enqueues values — a producer goroutine, a job
// submission helper — should depend on Producer rather than *Queue[T],
// the way a test double or a future alternate implementation would want
// to satisfy it without also implementing Drain/Steal.
type Producer[T any] interface {
	// Enqueue adds a value to the queue (non-blocking).
	// Returns false if the producer-active buffer is full.
	Enqueue(v T) bool
}

// Consumer is the drain-side interface a *Queue[T] satisfies.
//
// A thread-pool harness that only ever drains and steals — never
// enqueues — should depend on Consumer rather than *Queue[T].
type Consumer[T any] interface {
	// Drain retires the producer-active buffer and returns an exclusive
	// view of everything enqueued since the previous cycle.
	Drain() View[T]
	// Steal performs other's Drain on its behalf, landing the retired
	// buffer in the caller's own spare slot. Returns an empty view on
	// contention.
	Steal(other *Queue[T]) View[T]
	// Cap returns the queue's configured capacity.
	Cap() int
}

var (
	_ Producer[int] = (*Queue[int])(nil)
	_ Consumer[int] = (*Queue[int])(nil)
)
