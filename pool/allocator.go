// File: pool/allocator.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral segment allocators. The default allocator is selected
// through platform-specific factories in separate files.

package pool

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/momentics/hioload-segpool/api"
)

// HeapAllocator backs segments with Go heap memory. Freed blocks are left to
// the garbage collector.
type HeapAllocator struct {
	live      atomic.Int64
	liveBytes atomic.Int64
}

func (h *HeapAllocator) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "segment size %d", size)
	}
	h.live.Add(1)
	h.liveBytes.Add(int64(size))
	return make([]byte, size), nil
}

func (h *HeapAllocator) Free(mem []byte) {
	h.live.Add(-1)
	h.liveBytes.Add(-int64(len(mem)))
}

// Live returns the number of blocks allocated and not yet freed.
func (h *HeapAllocator) Live() int64 { return h.live.Load() }

// LiveBytes returns the bytes allocated and not yet freed.
func (h *HeapAllocator) LiveBytes() int64 { return h.liveBytes.Load() }

// DefaultAllocator returns the platform allocator: anonymous mappings on
// linux, the Go heap elsewhere.
func DefaultAllocator() api.SegmentAllocator {
	return platformAllocator()
}

var _ api.SegmentAllocator = (*HeapAllocator)(nil)
