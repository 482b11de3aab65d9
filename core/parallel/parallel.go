// Package parallel splits row ranges across CPU cores.
package parallel

import (
	"runtime"
	"sync"
)

// chunks はitems個の要素をワーカー数で分割した [start, end) の範囲を返す
func chunks(items int) [][2]int {
	if items <= 0 {
		return nil
	}
	workers := runtime.NumCPU()
	if workers > items {
		workers = items
	}
	size := (items + workers - 1) / workers

	out := make([][2]int, 0, workers)
	for start := 0; start < items; start += size {
		end := start + size
		if end > items {
			end = items
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

// ForEachChunk runs fn(0, items) on the calling goroutine when items <= threshold.
// Otherwise it runs fn over contiguous ranges covering [0, items), one
// goroutine per range, and waits for all of them. The error of the lowest
// range is returned.
func ForEachChunk(items, threshold int, fn func(start, end int) error) error {
	if items <= 0 {
		return nil
	}
	if items <= threshold {
		return fn(0, items)
	}

	ranges := chunks(items)
	errs := make([]error, len(ranges))

	var wg sync.WaitGroup
	for i, r := range ranges {
		wg.Add(1)
		go func(i, s, e int) {
			defer wg.Done()
			errs[i] = fn(s, e)
		}(i, r[0], r[1])
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
