//go:build linux
// +build linux

// File: pool/allocator_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux segment allocator using anonymous private mappings, so destroyed
// segments go straight back to the OS instead of waiting for the Go GC.

package pool

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-segpool/api"
	"github.com/momentics/hioload-segpool/log"
)

// MmapAllocator maps one anonymous region per segment.
type MmapAllocator struct {
	live      atomic.Int64
	liveBytes atomic.Int64
}

func NewMmapAllocator() *MmapAllocator {
	return &MmapAllocator{}
}

func (m *MmapAllocator) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "segment size %d", size)
	}
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "mmap %d bytes", size), api.ErrResourceExhausted)
	}
	m.live.Add(1)
	m.liveBytes.Add(int64(size))
	return mem, nil
}

func (m *MmapAllocator) Free(mem []byte) {
	if len(mem) == 0 {
		return
	}
	n := int64(len(mem))
	if err := unix.Munmap(mem); err != nil {
		log.Errorf("segment allocator: munmap %d bytes: %v", n, err)
		return
	}
	m.live.Add(-1)
	m.liveBytes.Add(-n)
}

// Live returns the number of mappings not yet released.
func (m *MmapAllocator) Live() int64 { return m.live.Load() }

// LiveBytes returns the mapped bytes not yet released.
func (m *MmapAllocator) LiveBytes() int64 { return m.liveBytes.Load() }

func platformAllocator() api.SegmentAllocator {
	return NewMmapAllocator()
}

var _ api.SegmentAllocator = (*MmapAllocator)(nil)
