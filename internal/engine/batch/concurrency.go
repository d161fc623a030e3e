// internal/engine/batch/concurrency.go
package batch

import (
	"runtime"
)

// OptimalConcurrency picks a worker count for network-bound extractions
func OptimalConcurrency() int {
	numCPU := runtime.NumCPU()

	// Extractions mostly wait on the network
	optimal := numCPU * 4

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	availMB := (m.Sys - m.Alloc) / 1024 / 1024

	// A page plus its parsed tree stays well under 20MB
	maxByMemory := int(availMB / 20)

	if optimal < 4 {
		optimal = 4
	}
	if optimal > 32 {
		optimal = 32
	}

	if maxByMemory > 0 && maxByMemory < optimal {
		return maxByMemory
	}
	return optimal
}
