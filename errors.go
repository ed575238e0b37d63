// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bq

import "errors"

// ErrInvalidCapacity is returned by TryNew when capacity < 1.
//
// New panics on the same condition, matching this codebase's convention
// for constructors whose arguments are programmer error rather than
// runtime state (compare the host library's "lfq: capacity must be >= 2"
// panic). TryNew exists for callers that build queues from configuration
// they cannot validate ahead of time, e.g. a count read from a flag.
var ErrInvalidCapacity = errors.New("bq: capacity must be >= 1")

// TryNew is the non-panicking counterpart to New.
func TryNew[T any](capacity int) (*Queue[T], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	return New[T](capacity), nil
}
