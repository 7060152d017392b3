// File: pool/freelist.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lock-free stack of free segments of one type with O(1) detach and splice.

package pool

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/momentics/hioload-segpool/internal/concurrency"
)

// listHead is an immutable view of a free list. Every mutation publishes a
// freshly allocated record, so a compare-and-swap against a record that was
// loaded earlier fails whenever anything changed in between.
type listHead struct {
	top    *Segment
	bottom *Segment
	count  int64
	bytes  int64
}

// FreeList is a lock-free singly linked list of free segments. The byte and
// segment counters always describe exactly the chain reachable from the head.
// Once closed, segments linked onto the list are destroyed.
type FreeList struct {
	head    atomic.Pointer[listHead]
	barrier *concurrency.Barrier
	closed  atomic.Bool
}

// NewFreeList creates an empty free list with its own barrier.
func NewFreeList() *FreeList {
	return newFreeList(concurrency.NewBarrier(0))
}

func newFreeList(b *concurrency.Barrier) *FreeList {
	fl := &FreeList{barrier: b}
	fl.head.Store(&listHead{})
	return fl
}

// Push inserts seg at the head.
func (fl *FreeList) Push(seg *Segment) {
	assertf(seg != nil, "push of nil segment")
	if fl.closed.Load() {
		seg.free()
		return
	}
	for {
		h := fl.head.Load()
		seg.SetNext(h.top)
		n := &listHead{top: seg, bottom: h.bottom, count: h.count + 1, bytes: h.bytes + seg.MemSize()}
		if n.bottom == nil {
			n.bottom = seg
		}
		if fl.head.CompareAndSwap(h, n) {
			fl.drainIfClosed()
			return
		}
	}
}

// Pop removes the head segment, or returns nil if the list is empty.
func (fl *FreeList) Pop() *Segment {
	tok := fl.barrier.Enter()
	defer fl.barrier.Exit(tok)
	for {
		h := fl.head.Load()
		top := h.top
		if top == nil {
			return nil
		}
		next := top.Next()
		n := &listHead{top: next, bottom: h.bottom, count: h.count - 1, bytes: h.bytes - top.MemSize()}
		if next == nil {
			n.bottom = nil
		}
		if fl.head.CompareAndSwap(h, n) {
			top.SetNext(nil)
			return top
		}
	}
}

// GetAll detaches the whole chain in one step and leaves the list empty.
func (fl *FreeList) GetAll() (first, last *Segment, count, bytes int64) {
	tok := fl.barrier.Enter()
	defer fl.barrier.Exit(tok)
	for {
		h := fl.head.Load()
		if h.top == nil {
			return nil, nil, 0, 0
		}
		if fl.head.CompareAndSwap(h, &listHead{}) {
			return h.top, h.bottom, h.count, h.bytes
		}
	}
}

// BulkAdd splices the chain first..last, holding count segments and bytes
// bytes, onto the head.
func (fl *FreeList) BulkAdd(first, last *Segment, count, bytes int64) {
	assertf(first != nil && last != nil, "bulk add of empty chain")
	assertf(count > 0 && bytes > 0, "bulk add with count %d bytes %d", count, bytes)
	if verifyChains {
		verifyChain(first, last, count, bytes)
	}
	for {
		h := fl.head.Load()
		last.SetNext(h.top)
		n := &listHead{top: first, bottom: h.bottom, count: h.count + count, bytes: h.bytes + bytes}
		if n.bottom == nil {
			n.bottom = last
		}
		if fl.head.CompareAndSwap(h, n) {
			fl.drainIfClosed()
			return
		}
	}
}

// MemSize returns the bytes held by the list.
func (fl *FreeList) MemSize() int64 {
	return fl.head.Load().bytes
}

// NumSegments returns the number of segments held by the list.
func (fl *FreeList) NumSegments() int64 {
	return fl.head.Load().count
}

// PrintTo writes one summary line prefixed by prefix.
func (fl *FreeList) PrintTo(w io.Writer, prefix string) {
	h := fl.head.Load()
	fmt.Fprintf(w, "%s: segments %d size %d\n", prefix, h.count, h.bytes)
}

// Close marks the list closed and destroys every segment on it. Segments
// linked afterwards by Push or BulkAdd are destroyed as well.
func (fl *FreeList) Close() (count, bytes int64) {
	fl.closed.Store(true)
	return fl.FreeAll()
}

// Closed reports whether Close was called.
func (fl *FreeList) Closed() bool { return fl.closed.Load() }

// drainIfClosed runs after a successful link. Close stores the flag before
// its own detach, so a link that raced with Close is either detached by it
// or observes the flag here.
func (fl *FreeList) drainIfClosed() {
	if fl.closed.Load() {
		fl.FreeAll()
	}
}

// FreeAll detaches and destroys every segment on the list.
func (fl *FreeList) FreeAll() (count, bytes int64) {
	cur, _, _, _ := fl.GetAll()
	for cur != nil {
		next := cur.Next()
		count++
		bytes += cur.MemSize()
		cur.free()
		cur = next
	}
	return count, bytes
}

// synchronize waits for pops and detaches already in flight on this list.
func (fl *FreeList) synchronize() {
	fl.barrier.Synchronize()
}

// verifyChain walks first..last and checks it against count and bytes.
func verifyChain(first, last *Segment, count, bytes int64) {
	var n, b int64
	cur := first
	for {
		assertf(cur != nil, "chain ends before its last segment after %d segments", n)
		n++
		b += cur.MemSize()
		if cur == last {
			break
		}
		cur = cur.Next()
	}
	assertf(n == count && b == bytes,
		"chain holds %d segments %d bytes, expected %d segments %d bytes", n, b, count, bytes)
}
