// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bq

// pad is cache line padding to prevent false sharing between hot atomic
// fields declared on either side of it.
//
// Generic cells are not individually padded: Go has no alignof(T) for a
// type parameter, so per-cell alignment (unlike the C++ source this
// package is grounded on) is not attempted. Only the buffer and queue
// headers are padded.
type pad [64]byte
