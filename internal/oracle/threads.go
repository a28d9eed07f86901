package oracle

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// OptimalThreadCount resolves the configured interpreter thread count.
// Zero selects the number of physical cores; any value is capped at the
// number of CPUs available to the process.
func OptimalThreadCount(configured int) int {
	available := runtime.NumCPU()

	if configured > 0 {
		return min(configured, available)
	}

	switch {
	case cpuid.CPU.PhysicalCores > 0:
		return min(cpuid.CPU.PhysicalCores, available)
	case cpuid.CPU.LogicalCores > 0:
		return min(cpuid.CPU.LogicalCores, available)
	default:
		return available
	}
}

// CPUBrand returns the processor brand string for diagnostics.
func CPUBrand() string {
	return cpuid.CPU.BrandName
}
