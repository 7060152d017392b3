// File: pool/segment.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-size memory block chained into free lists while unused.

package pool

import (
	"sync/atomic"

	"github.com/momentics/hioload-segpool/api"
)

// Segment is a fixed-capacity block of memory of one segment type. The next
// link belongs to whichever list or chain currently owns the segment.
type Segment struct {
	next  atomic.Pointer[Segment]
	size  int64
	typ   int
	mem   []byte
	alloc api.SegmentAllocator
	freed atomic.Bool
}

func newSegment(typ, size int, alloc api.SegmentAllocator) (*Segment, error) {
	mem, err := alloc.Alloc(size)
	if err != nil {
		return nil, err
	}
	return &Segment{size: int64(size), typ: typ, mem: mem, alloc: alloc}, nil
}

// MemSize returns the size of the segment in bytes.
func (s *Segment) MemSize() int64 { return s.size }

// Next returns the following segment in the owning chain.
func (s *Segment) Next() *Segment { return s.next.Load() }

// SetNext relinks the segment. Only the current owner may call it.
func (s *Segment) SetNext(next *Segment) { s.next.Store(next) }

// Type returns the segment type index.
func (s *Segment) Type() int { return s.typ }

// Bytes returns the backing memory.
func (s *Segment) Bytes() []byte { return s.mem }

// free releases the backing memory. A segment is destroyed at most once.
func (s *Segment) free() {
	assertf(s.freed.CompareAndSwap(false, true), "segment of type %d destroyed twice", s.typ)
	s.next.Store(nil)
	s.alloc.Free(s.mem)
	s.mem = nil
}
