// Package workers splits index ranges across a fixed number of goroutines.
package workers

import (
	"runtime"
	"sync"
)

// Count returns n when positive, otherwise the number of available CPUs.
func Count(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Run calls fn(i) for every i in [0, n) using at most workers goroutines.
// Each worker owns a contiguous range of indices, so fn may write to
// index-addressed output without locking.
func Run(n, workers int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers = Count(workers)
	if workers > n {
		workers = n
	}

	// Small jobs are not worth the goroutine overhead
	if workers == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	perWorker := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		startIdx := w * perWorker
		endIdx := startIdx + perWorker
		if endIdx > n {
			endIdx = n
		}
		if startIdx >= n {
			break
		}

		wg.Add(1)
		go func(startIdx, endIdx int) {
			defer wg.Done()
			for i := startIdx; i < endIdx; i++ {
				fn(i)
			}
		}(startIdx, endIdx)
	}
	wg.Wait()
}
