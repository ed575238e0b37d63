// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

// Job is one unit of work a producer submits and a worker processes.
// It is deliberately not part of the bq package: bq.Queue is generic
// over any T, and Job is this demo's choice of T, not the library's.
type Job struct {
	ID      uint64
	Payload uint32
	Done    chan<- Result
}

// Result is what a worker reports back after processing a Job.
type Result struct {
	JobID    uint64
	WorkerID int
	Output   uint32
}
