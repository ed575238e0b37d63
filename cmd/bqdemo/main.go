// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command bqdemo is a small illustrative harness wiring bq.Queue into a
// worker pool with steal-based load balancing. It is not part of the
// library; console logging and flag parsing live here precisely so they
// never have to live in the core package.
package main

import (
	"flag"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/valyala/fastrand"
)

func main() {
	workers := flag.Int("workers", 4, "number of worker goroutines, each with its own queue")
	capacity := flag.Int("capacity", 256, "per-cycle capacity of each worker's queue")
	jobs := flag.Int("jobs", 50000, "total number of jobs to submit")
	flag.Parse()

	log.Printf("bqdemo: starting %d workers, queue capacity %d, submitting %d jobs", *workers, *capacity, *jobs)

	pool := NewPool(*workers, *capacity)

	var processed atomic.Uint64
	stop := make(chan struct{})
	results := make(chan Result, *capacity)

	done := make(chan struct{})
	go func() {
		defer close(done)
		pool.Run(stop, &processed)
	}()

	go func() {
		var rng fastrand.RNG
		for i := range *jobs {
			j := Job{
				ID:      uint64(i),
				Payload: rng.Uint32n(1000),
				Done:    results,
			}
			worker := i % *workers
			for !pool.Submit(worker, j) {
				time.Sleep(time.Microsecond)
			}
		}
	}()

	received := 0
	var sum uint64
	deadline := time.After(30 * time.Second)
drainResults:
	for received < *jobs {
		select {
		case r := <-results:
			sum += uint64(r.Output)
			received++
		case <-deadline:
			log.Printf("bqdemo: timed out waiting for results, received %d/%d", received, *jobs)
			break drainResults
		}
	}

	close(stop)
	<-done

	fmt.Printf("bqdemo: processed=%d received=%d sum=%d\n", processed.Load(), received, sum)
}
