// File: pool/processor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Two-phase reclamation of one free list. Phase one hands the retained part
// of a detached chain back to the list; phase two destroys the rest. Both
// phases run in deadline-bounded slices.

package pool

import (
	"github.com/momentics/hioload-segpool/api"
	"github.com/momentics/hioload-segpool/clock"
	"github.com/momentics/hioload-segpool/log"
)

// ReturnMemoryProcessor drains one FreeList per cycle. Between Visit and the
// end of ReturnToOS the detached chain is owned by the processor alone and
// is never reachable from the list.
type ReturnMemoryProcessor struct {
	clk         api.Clock
	returnBytes int64

	// keepBytes is what phase one still has to put back on source.
	keepBytes int64
	// source is set while phase one is outstanding.
	source *FreeList

	first         *Segment
	last          *Segment
	numUnlinked   int64
	unlinkedBytes int64

	returned ReturnStats
}

// NewReturnMemoryProcessor creates a processor that gives back up to
// returnBytes per cycle. A nil clk selects clock.Default.
func NewReturnMemoryProcessor(returnBytes int64, clk api.Clock) *ReturnMemoryProcessor {
	if clk == nil {
		clk = clock.Default
	}
	return &ReturnMemoryProcessor{clk: clk, returnBytes: returnBytes}
}

// ReturnBytes returns the configured per-cycle target.
func (p *ReturnMemoryProcessor) ReturnBytes() int64 { return p.returnBytes }

// Visit detaches the whole chain of fl when there is something to give back.
// The retained budget is computed from what was actually detached, since
// concurrent pushes and pops may have changed the list after the target was
// chosen.
func (p *ReturnMemoryProcessor) Visit(fl *FreeList) {
	assertf(fl != nil, "visit of nil free list")
	assertf(p.source == nil && p.first == nil, "processor visited with reclamation outstanding")

	p.keepBytes = 0
	p.returned = ReturnStats{}
	if p.returnBytes <= 0 || fl.NumSegments() == 0 {
		return
	}
	first, last, count, bytes := fl.GetAll()
	if first == nil {
		// Emptied by consumers since the size check.
		return
	}
	p.first, p.last = first, last
	p.numUnlinked, p.unlinkedBytes = count, bytes
	p.keepBytes = bytes - min(p.returnBytes, bytes)
	p.source = fl
}

// ReturnToVM moves retained segments from the head of the detached chain
// back onto the source list. It reports whether phase one has more work.
func (p *ReturnMemoryProcessor) ReturnToVM(deadline int64) bool {
	assertf(!p.FinishedReturnToVM(), "return to VM without a visited list")

	var keptNum, keptBytes int64
	var lastKept *Segment
	cur := p.first
	for cur != nil && p.keepBytes > 0 {
		if p.clk.ElapsedCounter() > deadline {
			break
		}
		size := cur.MemSize()
		keptNum++
		keptBytes += size
		p.keepBytes -= size
		lastKept = cur
		cur = cur.Next()
	}

	if keptNum > 0 {
		lastKept.SetNext(nil)
		// Pops that loaded a head before GetAll may still dereference these
		// segments; let them drain before the segments become poppable again.
		p.source.synchronize()
		p.source.BulkAdd(p.first, lastKept, keptNum, keptBytes)

		p.first = cur
		if cur == nil {
			p.last = nil
		}
		p.numUnlinked -= keptNum
		p.unlinkedBytes -= keptBytes
		p.returned.VMSegments += keptNum
		p.returned.VMBytes += keptBytes
	}
	log.Tracef("segment free pool: returned to VM %d segments size %d", keptNum, keptBytes)

	if p.keepBytes <= 0 || p.first == nil {
		p.keepBytes = 0
		p.source = nil
	}
	return p.source != nil
}

// ReturnToOS destroys what phase one left on the detached chain. It reports
// whether phase two has more work.
func (p *ReturnMemoryProcessor) ReturnToOS(deadline int64) bool {
	assertf(p.FinishedReturnToVM(), "return to OS before return to VM finished")
	assertf(!p.FinishedReturnToOS(), "return to OS after the phase finished")

	var freedNum, freedBytes int64
	for p.first != nil {
		if p.clk.ElapsedCounter() > deadline {
			break
		}
		cur := p.first
		p.first = cur.Next()
		size := cur.MemSize()
		cur.free()
		freedNum++
		freedBytes += size
	}
	if p.first == nil {
		p.last = nil
	}
	p.numUnlinked -= freedNum
	p.unlinkedBytes -= freedBytes
	p.returned.OSSegments += freedNum
	p.returned.OSBytes += freedBytes
	log.Tracef("segment free pool: returned to OS %d segments size %d", freedNum, freedBytes)

	return p.first != nil
}

func (p *ReturnMemoryProcessor) FinishedReturnToVM() bool { return p.source == nil }

func (p *ReturnMemoryProcessor) FinishedReturnToOS() bool { return p.first == nil }

// Detached returns what the processor currently owns.
func (p *ReturnMemoryProcessor) Detached() (count, bytes int64) {
	return p.numUnlinked, p.unlinkedBytes
}

// Returned returns the totals of the current cycle.
func (p *ReturnMemoryProcessor) Returned() ReturnStats { return p.returned }
