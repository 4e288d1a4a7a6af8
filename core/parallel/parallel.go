// Package parallel provides the bounded parallel-execution helpers used by the
// pipeline (one goroutine per selection unit) and by cross-validation folds
// inside the forest strategy.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides items across available CPU cores and runs fn on each
// contiguous range (start, end).
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeN(items, runtime.NumCPU(), fn)
}

// ParallelizeN is Parallelize with an explicit worker cap. Nested callers use
// it to keep outer parallelism times fold parallelism at or below NumCPU.
func ParallelizeN(items, maxWorkers int, fn func(start, end int)) {
	if items == 0 {
		return
	}
	numWorkers := maxWorkers
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division so every item lands in exactly one chunk.
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ForEach runs fn for each index in [0, items) on a pool of at most maxWorkers
// goroutines. Unlike ParallelizeN the unit of dispatch is a single index, which
// suits selection units whose cost varies widely between cohorts.
func ForEach(items, maxWorkers int, fn func(i int)) {
	if items == 0 {
		return
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if maxWorkers > items {
		maxWorkers = items
	}

	work := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				fn(i)
			}
		}()
	}
	for i := 0; i < items; i++ {
		work <- i
	}
	close(work)
	wg.Wait()
}
