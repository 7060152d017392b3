// File: pool/stats.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

// MemoryStats is a point-in-time copy of per-type byte and segment counts.
type MemoryStats struct {
	MemSizes    []int64
	NumSegments []int64
}

// NewMemoryStats returns zeroed stats for n types.
func NewMemoryStats(n int) MemoryStats {
	return MemoryStats{
		MemSizes:    make([]int64, n),
		NumSegments: make([]int64, n),
	}
}

// Len returns the number of types covered.
func (s MemoryStats) Len() int { return len(s.MemSizes) }

// Clear zeroes all counters.
func (s MemoryStats) Clear() {
	for i := range s.MemSizes {
		s.MemSizes[i] = 0
		s.NumSegments[i] = 0
	}
}

// Add accumulates other into s. Both must cover the same types.
func (s MemoryStats) Add(other MemoryStats) {
	assertf(s.Len() == other.Len(), "stats for %d types added to stats for %d types", other.Len(), s.Len())
	for i := range s.MemSizes {
		s.MemSizes[i] += other.MemSizes[i]
		s.NumSegments[i] += other.NumSegments[i]
	}
}

func (s MemoryStats) TotalMemSize() (total int64) {
	for _, v := range s.MemSizes {
		total += v
	}
	return total
}

func (s MemoryStats) TotalSegments() (total int64) {
	for _, v := range s.NumSegments {
		total += v
	}
	return total
}

// ReturnStats counts what a reclamation cycle handed back per phase.
type ReturnStats struct {
	VMSegments int64
	VMBytes    int64
	OSSegments int64
	OSBytes    int64
}

func (r *ReturnStats) Add(other ReturnStats) {
	r.VMSegments += other.VMSegments
	r.VMBytes += other.VMBytes
	r.OSSegments += other.OSSegments
	r.OSBytes += other.OSBytes
}
