// File: pool/processor_set.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"github.com/eapache/queue"

	"github.com/momentics/hioload-segpool/api"
)

type setPhase int

const (
	phaseVM setPhase = iota
	phaseOS
)

// ReturnMemoryProcessorSet holds one processor per segment type and runs
// the phases across all of them under one deadline per slice.
type ReturnMemoryProcessorSet struct {
	procs []*ReturnMemoryProcessor

	phase setPhase
	// pending holds indices of processors that may still have work in the
	// current phase, in type order.
	pending *queue.Queue
}

// NewReturnMemoryProcessorSet creates one processor per entry of
// returnBytes, all reading clk.
func NewReturnMemoryProcessorSet(returnBytes []int64, clk api.Clock) *ReturnMemoryProcessorSet {
	set := &ReturnMemoryProcessorSet{
		procs:   make([]*ReturnMemoryProcessor, len(returnBytes)),
		pending: queue.New(),
	}
	for i, rb := range returnBytes {
		set.procs[i] = NewReturnMemoryProcessor(rb, clk)
	}
	return set
}

func (s *ReturnMemoryProcessorSet) Len() int { return len(s.procs) }

// At returns the processor for type i.
func (s *ReturnMemoryProcessorSet) At(i int) *ReturnMemoryProcessor {
	assertf(i >= 0 && i < len(s.procs), "processor index %d out of range [0, %d)", i, len(s.procs))
	return s.procs[i]
}

// VisitAll visits every list of fp.
func (s *ReturnMemoryProcessorSet) VisitAll(fp *FreePool) {
	fp.UpdateReturnProcessors(s)
}

// startCycle queues every processor with phase one work.
func (s *ReturnMemoryProcessorSet) startCycle() {
	s.phase = phaseVM
	s.requeue(func(p *ReturnMemoryProcessor) bool { return !p.FinishedReturnToVM() })
}

func (s *ReturnMemoryProcessorSet) enterReturnToOS() {
	s.phase = phaseOS
	s.requeue(func(p *ReturnMemoryProcessor) bool { return !p.FinishedReturnToOS() })
}

func (s *ReturnMemoryProcessorSet) requeue(unfinished func(*ReturnMemoryProcessor) bool) {
	for s.pending.Length() > 0 {
		s.pending.Remove()
	}
	for i, p := range s.procs {
		if unfinished(p) {
			s.pending.Add(i)
		}
	}
}

// ReturnToVM advances phase one. It stops at the first processor that did
// not finish before deadline and reports true in that case.
func (s *ReturnMemoryProcessorSet) ReturnToVM(deadline int64) bool {
	if s.phase != phaseVM {
		return false
	}
	for s.pending.Length() > 0 {
		p := s.procs[s.pending.Peek().(int)]
		if !p.FinishedReturnToVM() && p.ReturnToVM(deadline) {
			return true
		}
		s.pending.Remove()
	}
	s.enterReturnToOS()
	return false
}

// ReturnToOS advances phase two with the same stopping rule as ReturnToVM.
func (s *ReturnMemoryProcessorSet) ReturnToOS(deadline int64) bool {
	if s.phase == phaseVM {
		assertf(s.FinishedReturnToVM(), "return to OS before return to VM finished")
		s.enterReturnToOS()
	}
	for s.pending.Length() > 0 {
		p := s.procs[s.pending.Peek().(int)]
		if !p.FinishedReturnToOS() && p.ReturnToOS(deadline) {
			return true
		}
		s.pending.Remove()
	}
	return false
}

func (s *ReturnMemoryProcessorSet) FinishedReturnToVM() bool {
	for _, p := range s.procs {
		if !p.FinishedReturnToVM() {
			return false
		}
	}
	return true
}

func (s *ReturnMemoryProcessorSet) FinishedReturnToOS() bool {
	for _, p := range s.procs {
		if !p.FinishedReturnToOS() {
			return false
		}
	}
	return true
}

// Returned sums the cycle totals of every processor.
func (s *ReturnMemoryProcessorSet) Returned() ReturnStats {
	var total ReturnStats
	for _, p := range s.procs {
		total.Add(p.Returned())
	}
	return total
}
