// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract segment memory APIs used by the free pool.

package api

// SegmentAllocator supplies and releases the raw memory behind segments.
// Implementations must be safe for concurrent use.
type SegmentAllocator interface {
	// Alloc returns a block of exactly size bytes.
	Alloc(size int) ([]byte, error)

	// Free releases a block previously returned by Alloc.
	Free(mem []byte)
}
