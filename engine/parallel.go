package engine

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// parallelChunk is how many bodies a worker claims at a time. Small
// chunks keep the load balanced when tree walks vary in depth.
const parallelChunk = 4

// Parallel is the data-parallel direct-summation back-end: the
// per-body outer loop is mapped over a worker pool with dynamic
// chunking. Each worker writes only the acceleration slots of its own
// bodies, so no locking is needed.
type Parallel struct {
	host
	workers int
}

// NewParallel returns the worker-pool direct-summation engine. With
// workers <= 0 the pool sizes itself to GOMAXPROCS.
func NewParallel(workers int) *Parallel {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Parallel{workers: workers}
}

func (e *Parallel) TypeName() string { return "openmp" }

func (e *Parallel) Fcompute(t float64, y, f *Buffer) error {
	if err := e.checkCompute(y, f); err != nil {
		return err
	}
	e.adviseCompute()
	e.copyVelocities(y, f)
	parallelFor(e.workers, e.data.N(), func(i int) {
		bodyAccel(e.data, y.Elems(), f.Elems(), i)
	})
	return nil
}

// parallelFor maps fn over [0, n) with dynamic chunking: workers claim
// chunks off a shared cursor until the range is drained, then the call
// returns. Runs to completion on the calling goroutine plus its pool.
func parallelFor(workers, n int, fn func(i int)) {
	if workers <= 1 || n <= parallelChunk {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var cursor int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				c := atomic.AddInt64(&cursor, 1) - 1
				start := int(c) * parallelChunk
				if start >= n {
					return
				}
				end := start + parallelChunk
				if end > n {
					end = n
				}
				for i := start; i < end; i++ {
					fn(i)
				}
			}
		}()
	}
	wg.Wait()
}
