// Package parallel provides CPU-parallel range helpers used by block-local
// linear algebra operations (per-block Jacobian determinants) where each
// block can be processed independently.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides the specified total number (items) according to the number of CPU cores,
// and executes the specified function (fn) in parallel for each range (start, end)
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	// Get the number of available CPU cores
	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items // No need for more workers than items
	}

	// Calculate the number of items each worker handles (ceiling division)
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup

	// Start workers equal to the number of CPU cores
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}

		// Skip if there's no range to handle
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	// Wait for all workers to finish processing
	wg.Wait()
}

// ParallelizeWithThreshold performs parallelization only when the number of items exceeds the threshold
// If below threshold, normal sequential processing is performed
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		// Sequential processing when below threshold
		fn(0, items)
		return
	}

	// Parallel processing when above threshold
	Parallelize(items, fn)
}

// MapReduceFloat64 applies fn to every index in [0, items) in parallel and
// combines the per-worker partial results with combine. The identity value
// must be the neutral element of combine (0 for sums, 1 for products).
// Combination order across workers is unspecified, so combine must be
// commutative and associative.
func MapReduceFloat64(items int, identity float64, fn func(i int) float64, combine func(a, b float64) float64) float64 {
	if items == 0 {
		return identity
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	partials := make([]float64, numWorkers)
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			partials[w] = identity
			continue
		}

		wg.Add(1)
		go func(w, s, e int) {
			defer wg.Done()
			acc := identity
			for i := s; i < e; i++ {
				acc = combine(acc, fn(i))
			}
			partials[w] = acc
		}(w, start, end)
	}

	wg.Wait()

	result := identity
	for _, p := range partials {
		result = combine(result, p)
	}
	return result
}
