// File: reclaim/task.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One reclamation cycle over a FreePool as a resumable state machine.

package reclaim

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/momentics/hioload-segpool/api"
	"github.com/momentics/hioload-segpool/clock"
	"github.com/momentics/hioload-segpool/log"
	"github.com/momentics/hioload-segpool/pool"
)

// State of a Task.
type State int

const (
	StateInactive State = iota
	StateCalculateTargets
	StateReturnToVM
	StateReturnToOS
	StateCleanup
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateCalculateTargets:
		return "calculate-targets"
	case StateReturnToVM:
		return "return-to-vm"
	case StateReturnToOS:
		return "return-to-os"
	case StateCleanup:
		return "cleanup"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// UsedFunc reports in-use bytes per segment type.
type UsedFunc func() []int64

// Task runs reclamation cycles over one pool. A Task is driven by a single
// goroutine.
type Task struct {
	fp     *pool.FreePool
	clk    api.Clock
	policy Policy
	used   UsedFunc

	state   State
	set     *pool.ReturnMemoryProcessorSet
	targets []int64

	last pool.ReturnStats
}

// NewTask creates an inactive task. A nil clk selects clock.Default; a nil
// used counts every type as unused.
func NewTask(fp *pool.FreePool, policy Policy, clk api.Clock, used UsedFunc) *Task {
	if clk == nil {
		clk = clock.Default
	}
	return &Task{fp: fp, clk: clk, policy: policy, used: used}
}

func (t *Task) State() State { return t.state }

// Active reports whether a cycle is in progress.
func (t *Task) Active() bool { return t.state != StateInactive }

// SetPolicy replaces the policy. It takes effect at the next Start.
func (t *Task) SetPolicy(p Policy) { t.policy = p }

// Start begins a cycle.
func (t *Task) Start() {
	if t.Active() {
		panic(errors.AssertionFailedf("reclaim task started while %s", t.state))
	}
	t.state = StateCalculateTargets
}

// Step runs the cycle until deadline and reports whether work remains.
func (t *Task) Step(deadline int64) bool {
	if !t.Active() {
		panic(errors.AssertionFailedf("reclaim task stepped while inactive"))
	}
	for {
		switch t.state {
		case StateCalculateTargets:
			t.calculateTargets()
			t.state = StateReturnToVM
		case StateReturnToVM:
			if t.set.ReturnToVM(deadline) {
				return true
			}
			t.state = StateReturnToOS
		case StateReturnToOS:
			if t.set.ReturnToOS(deadline) {
				return true
			}
			t.state = StateCleanup
		case StateCleanup:
			t.cleanup()
			return false
		default:
			panic(errors.AssertionFailedf("reclaim task in unexpected %s", t.state))
		}
	}
}

// Targets returns the per-type targets of the current or last cycle.
func (t *Task) Targets() []int64 { return t.targets }

// LastReturned returns the totals of the last completed cycle.
func (t *Task) LastReturned() pool.ReturnStats { return t.last }

func (t *Task) calculateTargets() {
	var used []int64
	if t.used != nil {
		used = t.used()
	}
	t.targets = t.policy.Targets(t.fp.MemorySizes(), used)
	t.set = pool.NewReturnMemoryProcessorSet(t.targets, t.clk)
	t.set.VisitAll(t.fp)
	log.Debugf("reclaim %s: targets %v", t.fp.Category(), t.targets)
}

func (t *Task) cleanup() {
	t.last = t.set.Returned()
	t.set = nil
	t.state = StateInactive
}
