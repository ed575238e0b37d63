// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bq

import "iter"

// View is the exclusive, contiguous batch of values a consumer receives
// from Drain or Steal.
//
// A View is only valid until the consumer that received it next calls
// Drain or Steal on its own queue — either call hands the view's storage
// back to producers. Callers that need values to outlive that point must
// copy them out (Values does this).
type View[T any] struct {
	cells []cell[T]
}

// Len returns the number of values in the view, in 0..=capacity.
func (v View[T]) Len() int {
	return len(v.cells)
}

// At returns a pointer to the i-th value in the view, read-write to the
// consumer. The order of values within a view carries no meaning across
// distinct producers (§8 of the design: no FIFO guarantee).
func (v View[T]) At(i int) *T {
	return &v.cells[i].value
}

// Values copies the view's contents into a freshly allocated slice.
// Use this when values must outlive the next Drain/Steal call on the
// queue that received the view.
func (v View[T]) Values() []T {
	out := make([]T, len(v.cells))
	for i := range v.cells {
		out[i] = v.cells[i].value
	}
	return out
}

// All ranges over the view's index/value pairs without copying.
func (v View[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := range v.cells {
			if !yield(i, &v.cells[i].value) {
				return
			}
		}
	}
}
