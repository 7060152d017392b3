// File: internal/concurrency/barrier.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Quiescence barrier: readers enter short critical sections, a writer calls
// Synchronize to wait until every section that was open when it started has
// exited. Readers never block each other; the writer only waits for sections
// already in flight.

package concurrency

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

const slotIdle = uint64(0)

// Token identifies an open critical section. It must be passed to Exit
// exactly once.
type Token int

type barrierSlot struct {
	// epoch observed at entry, slotIdle while free.
	epoch atomic.Uint64
	_     cpu.CacheLinePad
}

// Barrier tracks in-flight critical sections against a global epoch.
type Barrier struct {
	epoch atomic.Uint64
	_     cpu.CacheLinePad
	hint  atomic.Uint32
	_     cpu.CacheLinePad
	mask  uint32
	slots []barrierSlot
}

// NewBarrier creates a barrier with room for nslots concurrently open
// sections, rounded up to a power of two. nslots <= 0 selects 4*GOMAXPROCS.
// More concurrent readers than slots is allowed; excess readers yield until
// a slot frees up.
func NewBarrier(nslots int) *Barrier {
	if nslots <= 0 {
		nslots = 4 * runtime.GOMAXPROCS(0)
	}
	size := 1
	for size < nslots {
		size <<= 1
	}
	b := &Barrier{
		mask:  uint32(size - 1),
		slots: make([]barrierSlot, size),
	}
	b.epoch.Store(1)
	return b
}

// Enter opens a critical section.
func (b *Barrier) Enter() Token {
	for spins := 0; ; spins++ {
		i := b.hint.Add(1) & b.mask
		if b.slots[i].epoch.CompareAndSwap(slotIdle, b.epoch.Load()) {
			return Token(i)
		}
		if spins > len(b.slots) {
			runtime.Gosched()
			spins = 0
		}
	}
}

// Exit closes the critical section opened by Enter.
func (b *Barrier) Exit(tok Token) {
	b.slots[tok].epoch.Store(slotIdle)
}

// Synchronize advances the epoch and waits until every critical section that
// entered before the advance has exited. Sections entered afterwards are not
// waited for.
func (b *Barrier) Synchronize() {
	target := b.epoch.Add(1)
	for i := range b.slots {
		slot := &b.slots[i]
		for spins := 0; ; spins++ {
			if v := slot.epoch.Load(); v == slotIdle || v >= target {
				break
			}
			if spins > 64 {
				runtime.Gosched()
			}
		}
	}
}

// InFlight returns the number of currently open critical sections.
func (b *Barrier) InFlight() int {
	n := 0
	for i := range b.slots {
		if b.slots[i].epoch.Load() != slotIdle {
			n++
		}
	}
	return n
}

// Epoch returns the current global epoch.
func (b *Barrier) Epoch() uint64 {
	return b.epoch.Load()
}
