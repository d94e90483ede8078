package proximity

import (
	"sync"

	"github.com/akmonengine/proximity/gjk"
)

// task splits data into workersCount contiguous chunks and calls fn on every
// element, one goroutine per chunk.
func task[T any](workersCount int, data []T, fn func(data T)) {
	var wg sync.WaitGroup
	dataSize := len(data)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		start, end := workerID*chunkSize, min((workerID+1)*chunkSize, dataSize)
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(data[i])
			}
		}(start, end)
	}
	wg.Wait()
}

// Distances runs Distance on every pair, spread over Config.Workers
// goroutines. Results are in input order.
func (d *Detector) Distances(pairs []Pair) []gjk.DistanceResult {
	results := make([]gjk.DistanceResult, len(pairs))
	indices := make([]int, len(pairs))
	for i := range indices {
		indices[i] = i
	}

	task(d.config.Workers, indices, func(i int) {
		results[i] = d.Distance(pairs[i].A, pairs[i].B)
	})

	return results
}
