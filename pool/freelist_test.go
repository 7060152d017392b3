package pool

import (
	"bytes"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSegments(t *testing.T, alloc *HeapAllocator, n, size int) []*Segment {
	t.Helper()
	segs := make([]*Segment, n)
	for i := range segs {
		seg, err := newSegment(0, size, alloc)
		require.NoError(t, err)
		segs[i] = seg
	}
	return segs
}

// chainOf walks the list without mutating it. Only valid while nothing else
// touches the list.
func chainOf(fl *FreeList) []*Segment {
	var out []*Segment
	for cur := fl.head.Load().top; cur != nil; cur = cur.Next() {
		out = append(out, cur)
	}
	return out
}

func requireConsistent(t *testing.T, fl *FreeList) {
	t.Helper()
	var n, b int64
	for _, seg := range chainOf(fl) {
		n++
		b += seg.MemSize()
	}
	require.Equal(t, n, fl.NumSegments())
	require.Equal(t, b, fl.MemSize())
	h := fl.head.Load()
	if n == 0 {
		require.Nil(t, h.bottom)
	} else {
		require.Nil(t, h.bottom.Next())
	}
}

func TestFreeList_PushPop(t *testing.T) {
	alloc := &HeapAllocator{}
	fl := NewFreeList()
	require.Nil(t, fl.Pop())

	segs := makeSegments(t, alloc, 3, 64)
	for _, s := range segs {
		fl.Push(s)
	}
	requireConsistent(t, fl)
	require.Equal(t, int64(3), fl.NumSegments())
	require.Equal(t, int64(192), fl.MemSize())

	// LIFO
	require.Same(t, segs[2], fl.Pop())
	require.Same(t, segs[1], fl.Pop())
	requireConsistent(t, fl)
	got := fl.Pop()
	require.Same(t, segs[0], got)
	require.Nil(t, got.Next())
	require.Nil(t, fl.Pop())
	requireConsistent(t, fl)
}

func TestFreeList_GetAllAndBulkAdd(t *testing.T) {
	alloc := &HeapAllocator{}
	fl := NewFreeList()
	first, last, n, b := fl.GetAll()
	require.Nil(t, first)
	require.Nil(t, last)
	require.Zero(t, n)
	require.Zero(t, b)

	segs := makeSegments(t, alloc, 4, 10)
	for _, s := range segs {
		fl.Push(s)
	}
	first, last, n, b = fl.GetAll()
	require.Same(t, segs[3], first)
	require.Same(t, segs[0], last)
	require.Equal(t, int64(4), n)
	require.Equal(t, int64(40), b)
	require.Zero(t, fl.NumSegments())
	requireConsistent(t, fl)

	extra := makeSegments(t, alloc, 1, 10)[0]
	fl.Push(extra)
	fl.BulkAdd(first, last, n, b)
	requireConsistent(t, fl)
	require.Equal(t, int64(5), fl.NumSegments())
	require.Equal(t, int64(50), fl.MemSize())
	chain := chainOf(fl)
	require.Same(t, segs[3], chain[0])
	require.Same(t, extra, chain[4])
}

func TestFreeList_BulkAddEmptyChainPanics(t *testing.T) {
	fl := NewFreeList()
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		require.True(t, errors.IsAssertionFailure(err))
	}()
	fl.BulkAdd(nil, nil, 0, 0)
}

func TestFreeList_FreeAll(t *testing.T) {
	alloc := &HeapAllocator{}
	fl := NewFreeList()
	for _, s := range makeSegments(t, alloc, 5, 32) {
		fl.Push(s)
	}
	require.Equal(t, int64(5), alloc.Live())
	n, b := fl.FreeAll()
	assert.Equal(t, int64(5), n)
	assert.Equal(t, int64(160), b)
	assert.Zero(t, alloc.Live())
	assert.Zero(t, alloc.LiveBytes())
	assert.Zero(t, fl.NumSegments())
}

func TestFreeList_PrintTo(t *testing.T) {
	alloc := &HeapAllocator{}
	fl := NewFreeList()
	for _, s := range makeSegments(t, alloc, 2, 100) {
		fl.Push(s)
	}
	var buf bytes.Buffer
	fl.PrintTo(&buf, "    Howl")
	require.Equal(t, "    Howl: segments 2 size 200\n", buf.String())
}

func TestVerifyChain(t *testing.T) {
	alloc := &HeapAllocator{}
	segs := makeSegments(t, alloc, 3, 8)
	segs[0].SetNext(segs[1])
	segs[1].SetNext(segs[2])
	require.NotPanics(t, func() { verifyChain(segs[0], segs[2], 3, 24) })
	require.Panics(t, func() { verifyChain(segs[0], segs[2], 2, 24) })
	segs[1].SetNext(nil)
	require.Panics(t, func() { verifyChain(segs[0], segs[2], 3, 24) })
}

// Concurrent producers and consumers over a fixed set of segments. Each
// segment must be held by at most one goroutine at a time and none may be
// lost.
func TestFreeList_ConcurrentOwnership(t *testing.T) {
	const (
		workers = 8
		rounds  = 2000
		nsegs   = 64
	)
	alloc := &HeapAllocator{}
	fl := NewFreeList()
	segs := makeSegments(t, alloc, nsegs, 16)
	for _, s := range segs {
		fl.Push(s)
	}

	var owners sync.Map
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			held := make([]*Segment, 0, 4)
			for i := 0; i < rounds; i++ {
				if seg := fl.Pop(); seg != nil {
					if prev, loaded := owners.LoadOrStore(seg, id); loaded {
						t.Errorf("segment owned by %v and %d", prev, id)
						return
					}
					held = append(held, seg)
				}
				if len(held) == cap(held) || (i%3 == 0 && len(held) > 0) {
					seg := held[len(held)-1]
					held = held[:len(held)-1]
					owners.Delete(seg)
					fl.Push(seg)
				}
				if i%97 == 0 {
					first, last, n, b := fl.GetAll()
					if first != nil {
						fl.barrier.Synchronize()
						fl.BulkAdd(first, last, n, b)
					}
				}
			}
			for _, seg := range held {
				owners.Delete(seg)
				fl.Push(seg)
			}
		}(w)
	}
	wg.Wait()

	requireConsistent(t, fl)
	require.Equal(t, int64(nsegs), fl.NumSegments())
	seen := make(map[*Segment]bool, nsegs)
	for _, s := range chainOf(fl) {
		require.False(t, seen[s], "segment reachable twice")
		seen[s] = true
	}
	for _, s := range segs {
		require.True(t, seen[s], "segment lost")
	}
}

func TestFreeList_LinkAfterClose(t *testing.T) {
	alloc := &HeapAllocator{}
	fl := filledList(t, alloc, 3, 10)
	first, last, n, b := fl.GetAll()

	cn, cb := fl.Close()
	require.Zero(t, cn)
	require.Zero(t, cb)
	require.True(t, fl.Closed())

	fl.BulkAdd(first, last, n, b)
	require.Zero(t, fl.NumSegments())
	require.Zero(t, alloc.Live())

	fl.Push(makeSegments(t, alloc, 1, 10)[0])
	require.Zero(t, fl.NumSegments())
	require.Zero(t, alloc.Live())
}
