// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package bq

// RaceEnabled is true when the race detector is active.
// Used by tests to skip concurrent cases whose correctness relies on
// memory ordering the race detector cannot observe (it tracks explicit
// synchronization primitives, not happens-before edges established by
// atomic fields alone).
const RaceEnabled = true
