//go:build !linux
// +build !linux

// File: pool/allocator_stub.go
// Author: momentics <momentics@gmail.com>
//
// Heap fallback for platforms without an mmap allocator.

package pool

import "github.com/momentics/hioload-segpool/api"

func platformAllocator() api.SegmentAllocator {
	return &HeapAllocator{}
}
