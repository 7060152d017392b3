package concurrency

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarrier_SlotRounding(t *testing.T) {
	b := NewBarrier(5)
	require.Len(t, b.slots, 8)
	require.Equal(t, uint32(7), b.mask)

	b = NewBarrier(0)
	require.GreaterOrEqual(t, len(b.slots), 4)
}

func TestBarrier_EnterExit(t *testing.T) {
	b := NewBarrier(4)
	t1 := b.Enter()
	t2 := b.Enter()
	require.NotEqual(t, t1, t2)
	require.Equal(t, 2, b.InFlight())
	b.Exit(t1)
	b.Exit(t2)
	require.Equal(t, 0, b.InFlight())
}

func TestBarrier_SynchronizeNoReaders(t *testing.T) {
	b := NewBarrier(4)
	before := b.Epoch()
	b.Synchronize()
	assert.Equal(t, before+1, b.Epoch())
}

func TestBarrier_SynchronizeWaitsForOpenSection(t *testing.T) {
	b := NewBarrier(4)
	tok := b.Enter()

	var done atomic.Bool
	finished := make(chan struct{})
	go func() {
		b.Synchronize()
		done.Store(true)
		close(finished)
	}()

	time.Sleep(20 * time.Millisecond)
	require.False(t, done.Load(), "Synchronize returned while a section was open")

	b.Exit(tok)
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("Synchronize did not return after Exit")
	}
}

func TestBarrier_SynchronizeIgnoresLaterSections(t *testing.T) {
	b := NewBarrier(4)
	b.Synchronize()
	// A section opened at the current epoch is newer than any earlier
	// synchronize and must not hold up one already satisfied.
	tok := b.Enter()
	defer b.Exit(tok)
	require.Equal(t, 1, b.InFlight())
	require.Equal(t, b.Epoch(), b.slots[tok].epoch.Load())
}

func TestBarrier_MoreReadersThanSlots(t *testing.T) {
	b := NewBarrier(2)
	var wg sync.WaitGroup
	var sections atomic.Int64
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				tok := b.Enter()
				sections.Add(1)
				b.Exit(tok)
			}
		}()
	}
	for i := 0; i < 100; i++ {
		b.Synchronize()
	}
	wg.Wait()
	require.Equal(t, int64(16*1000), sections.Load())
	require.Equal(t, 0, b.InFlight())
}
