// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"sync"
	"sync/atomic"

	"code.hybscloud.com/iox"
	"github.com/valyala/fastrand"
	"go.bitspool.dev/bq"
)

// Pool is a fixed set of workers, each with its own job queue. A worker
// that finds its own queue empty steals from a randomly chosen sibling
// before backing off — the load-balancing policy bq.Queue.Steal exists
// to support.
type Pool struct {
	queues  []*bq.Queue[Job]
	workers int
}

// NewPool creates a pool of n workers, each backed by a queue of the
// given per-cycle capacity.
func NewPool(n, capacity int) *Pool {
	p := &Pool{
		queues:  make([]*bq.Queue[Job], n),
		workers: n,
	}
	for i := range p.queues {
		p.queues[i] = bq.New[Job](capacity)
	}
	return p
}

// Submit enqueues a job onto worker i's queue. Returns false if that
// worker's producer-active buffer is currently full.
func (p *Pool) Submit(worker int, j Job) bool {
	return p.queues[worker%p.workers].Enqueue(j)
}

// Run starts every worker's drain/steal loop and blocks until stop is
// closed, then waits for all workers to finish their current cycle.
func (p *Pool) Run(stop <-chan struct{}, processed *atomic.Uint64) {
	var wg sync.WaitGroup
	for i := range p.queues {
		wg.Add(1)
		go p.runWorker(i, stop, processed, &wg)
	}
	wg.Wait()
}

func (p *Pool) runWorker(id int, stop <-chan struct{}, processed *atomic.Uint64, wg *sync.WaitGroup) {
	defer wg.Done()

	own := p.queues[id]
	var rng fastrand.RNG
	backoff := iox.Backoff{}

	for {
		select {
		case <-stop:
			p.drainRemaining(id, processed)
			return
		default:
		}

		view := own.Drain()
		if view.Len() == 0 && p.workers > 1 {
			sibling := id
			for sibling == id {
				sibling = int(rng.Uint32n(uint32(p.workers)))
			}
			view = own.Steal(p.queues[sibling])
		}

		if view.Len() == 0 {
			backoff.Wait()
			continue
		}
		backoff.Reset()

		for i := range view.Len() {
			job := view.At(i)
			out := job.Payload * 2
			if job.Done != nil {
				job.Done <- Result{JobID: job.ID, WorkerID: id, Output: out}
			}
			processed.Add(1)
		}
	}
}

// drainRemaining collects whatever is left on worker id's queue after
// the stop signal, so Run's final processed count is accurate.
func (p *Pool) drainRemaining(id int, processed *atomic.Uint64) {
	own := p.queues[id]
	for range 4 {
		view := own.Drain()
		if view.Len() == 0 {
			return
		}
		for i := range view.Len() {
			job := view.At(i)
			if job.Done != nil {
				job.Done <- Result{JobID: job.ID, WorkerID: id, Output: job.Payload * 2}
			}
			processed.Add(1)
		}
	}
}
