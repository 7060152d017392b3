// File: pool/freepool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Aggregate of one FreeList per configured segment type.

package pool

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/momentics/hioload-segpool/api"
	"github.com/momentics/hioload-segpool/control"
	"github.com/momentics/hioload-segpool/internal/concurrency"
)

// FreePool owns exactly one FreeList per segment type. It is created when
// the owning collector starts and closed at shutdown.
type FreePool struct {
	config   api.SegmentConfig
	category api.Category
	alloc    api.SegmentAllocator
	barrier  *concurrency.Barrier
	lists    []*FreeList
	closed   atomic.Bool
}

// Option customizes a FreePool.
type Option func(*FreePool)

// WithCategory tags the pool for reporting.
func WithCategory(c api.Category) Option {
	return func(fp *FreePool) { fp.category = c }
}

// WithAllocator sets the allocator backing new segments.
func WithAllocator(a api.SegmentAllocator) Option {
	return func(fp *FreePool) { fp.alloc = a }
}

// WithBarrierSlots sizes the quiescence barrier shared by all lists.
func WithBarrierSlots(n int) Option {
	return func(fp *FreePool) { fp.barrier = concurrency.NewBarrier(n) }
}

// NewFreePool builds a pool for cfg.
func NewFreePool(cfg api.SegmentConfig, opts ...Option) (*FreePool, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	fp := &FreePool{config: cfg, category: api.CategoryCardSet}
	for _, opt := range opts {
		opt(fp)
	}
	if fp.alloc == nil {
		fp.alloc = DefaultAllocator()
	}
	if fp.barrier == nil {
		fp.barrier = concurrency.NewBarrier(0)
	}
	fp.lists = make([]*FreeList, cfg.NumTypes())
	for i := range fp.lists {
		fp.lists[i] = newFreeList(fp.barrier)
	}
	return fp, nil
}

func (fp *FreePool) NumTypes() int { return len(fp.lists) }

func (fp *FreePool) Category() api.Category { return fp.category }

func (fp *FreePool) Config() api.SegmentConfig { return fp.config }

func (fp *FreePool) checkType(typ int) {
	assertf(typ >= 0 && typ < len(fp.lists), "segment type %d out of range [0, %d)", typ, len(fp.lists))
}

// FreeList returns the list for typ.
func (fp *FreePool) FreeList(typ int) *FreeList {
	fp.checkType(typ)
	return fp.lists[typ]
}

// MemorySizes snapshots every list. Each list is read independently.
func (fp *FreePool) MemorySizes() MemoryStats {
	stats := NewMemoryStats(len(fp.lists))
	for i, fl := range fp.lists {
		stats.MemSizes[i] = fl.MemSize()
		stats.NumSegments[i] = fl.NumSegments()
	}
	return stats
}

// MemSize returns the bytes held across all lists.
func (fp *FreePool) MemSize() int64 {
	var total int64
	for _, fl := range fp.lists {
		total += fl.MemSize()
	}
	return total
}

// PrintTo writes a per-type summary to w.
func (fp *FreePool) PrintTo(w io.Writer) {
	fmt.Fprintf(w, "  Free Pool: size %d\n", fp.MemSize())
	for i, fl := range fp.lists {
		fl.PrintTo(w, "    "+fp.config.TypeName(i))
	}
}

// NewSegment allocates a fresh segment of typ.
func (fp *FreePool) NewSegment(typ int) (*Segment, error) {
	fp.checkType(typ)
	if fp.closed.Load() {
		return nil, api.ErrPoolClosed
	}
	seg, err := newSegment(typ, fp.config.SegmentSize(typ), fp.alloc)
	if err != nil {
		return nil, errors.Wrapf(err, "free pool %s: new %s segment", fp.category, fp.config.TypeName(typ))
	}
	return seg, nil
}

// Acquire pops a free segment of typ, allocating one if the list is empty.
func (fp *FreePool) Acquire(typ int) (*Segment, error) {
	fp.checkType(typ)
	if fp.closed.Load() {
		return nil, api.ErrPoolClosed
	}
	if seg := fp.lists[typ].Pop(); seg != nil {
		return seg, nil
	}
	return fp.NewSegment(typ)
}

// Release hands seg back to its type's list. After Close the segment is
// destroyed instead.
func (fp *FreePool) Release(seg *Segment) {
	assertf(seg != nil, "release of nil segment")
	fp.checkType(seg.Type())
	fp.lists[seg.Type()].Push(seg)
}

// UpdateReturnProcessors visits every list with the processor of its type.
func (fp *FreePool) UpdateReturnProcessors(set *ReturnMemoryProcessorSet) {
	assertf(set.Len() == len(fp.lists), "processor set for %d types visiting pool of %d types", set.Len(), len(fp.lists))
	for i, fl := range fp.lists {
		set.At(i).Visit(fl)
	}
	set.startCycle()
}

// Close destroys every free segment. Segments held by clients or detached
// by a running reclamation cycle are destroyed when they come back.
func (fp *FreePool) Close() (segments, bytes int64) {
	if !fp.closed.CompareAndSwap(false, true) {
		return 0, 0
	}
	for _, fl := range fp.lists {
		n, b := fl.Close()
		segments += n
		bytes += b
	}
	return segments, bytes
}

// RegisterProbes exposes pool counters through dp.
func (fp *FreePool) RegisterProbes(dp *control.DebugProbes) {
	prefix := "freepool." + fp.category.String()
	dp.RegisterProbe(prefix+".bytes", func() any { return fp.MemSize() })
	dp.RegisterProbe(prefix+".types", func() any {
		stats := fp.MemorySizes()
		out := make(map[string][2]int64, stats.Len())
		for i := 0; i < stats.Len(); i++ {
			out[fp.config.TypeName(i)] = [2]int64{stats.NumSegments[i], stats.MemSizes[i]}
		}
		return out
	})
	dp.RegisterProbe(prefix+".barrier.inflight", func() any { return fp.barrier.InFlight() })
}
