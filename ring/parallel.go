//
// parallel.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ring

import (
	"runtime"
	"sync"
)

// DefaultGrain is the minimum per-worker index range for ParallelFor.
const DefaultGrain = 4096

// ParallelFor runs fn over the index range [0, n) partitioned into
// contiguous chunks of at least grain indices. With n below grain the
// whole range runs on the calling goroutine. The function returns
// after all chunks have completed. Chunks must be independent: fn may
// not share mutable state across index ranges.
func ParallelFor(n, grain int, fn func(beg, end int)) {
	if grain < 1 {
		grain = DefaultGrain
	}
	if n <= grain {
		if n > 0 {
			fn(0, n)
		}
		return
	}
	workers := runtime.NumCPU()
	chunk := (n + workers - 1) / workers
	if chunk < grain {
		chunk = grain
	}

	var wg sync.WaitGroup
	for beg := 0; beg < n; beg += chunk {
		end := beg + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(beg, end int) {
			defer wg.Done()
			fn(beg, end)
		}(beg, end)
	}
	wg.Wait()
}
