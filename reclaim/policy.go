// File: reclaim/policy.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reclaim

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/momentics/hioload-segpool/api"
	"github.com/momentics/hioload-segpool/control"
	"github.com/momentics/hioload-segpool/pool"
)

// Setting keys read from the config store.
const (
	KeyKeepRatio    = "reclaim.keep_ratio"
	KeyKeepBytes    = "reclaim.keep_bytes"
	KeyStepDuration = "reclaim.step_duration"
	KeyStepDelay    = "reclaim.step_delay"
	KeyInterval     = "reclaim.interval"
	KeyCPU          = "reclaim.cpu"
)

// Policy decides how much free memory each type keeps and how the work of a
// cycle is sliced.
type Policy struct {
	// KeepRatio is the fraction of in-use bytes kept free per type.
	KeepRatio float64
	// KeepBytes is the minimum kept free per type.
	KeepBytes int64
	// StepDuration bounds one slice of a cycle.
	StepDuration time.Duration
	// StepDelay separates slices of one cycle.
	StepDelay time.Duration
	// Interval separates cycles.
	Interval time.Duration
	// CPU pins the reclaimer thread; negative disables pinning.
	CPU int
}

// DefaultSettings returns the reclaim.* defaults for a control.ConfigStore.
func DefaultSettings() map[string]any {
	return map[string]any{
		KeyKeepRatio:    0.1,
		KeyKeepBytes:    int64(0),
		KeyStepDuration: time.Millisecond,
		KeyStepDelay:    10 * time.Millisecond,
		KeyInterval:     time.Second,
		KeyCPU:          int64(-1),
	}
}

// PolicyFromConfig reads and validates the policy from cs.
func PolicyFromConfig(cs *control.ConfigStore) (Policy, error) {
	var (
		p   Policy
		err error
		cpu int64
	)
	if p.KeepRatio, err = cs.Float64(KeyKeepRatio); err != nil {
		return Policy{}, err
	}
	if p.KeepBytes, err = cs.Int64(KeyKeepBytes); err != nil {
		return Policy{}, err
	}
	if p.StepDuration, err = cs.Duration(KeyStepDuration); err != nil {
		return Policy{}, err
	}
	if p.StepDelay, err = cs.Duration(KeyStepDelay); err != nil {
		return Policy{}, err
	}
	if p.Interval, err = cs.Duration(KeyInterval); err != nil {
		return Policy{}, err
	}
	if cpu, err = cs.Int64(KeyCPU); err != nil {
		return Policy{}, err
	}
	p.CPU = int(cpu)
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate rejects policies the reclaimer cannot run.
func (p Policy) Validate() error {
	switch {
	case p.KeepRatio < 0:
		return errors.Wrapf(api.ErrInvalidConfig, "%s %v is negative", KeyKeepRatio, p.KeepRatio)
	case p.KeepBytes < 0:
		return errors.Wrapf(api.ErrInvalidConfig, "%s %d is negative", KeyKeepBytes, p.KeepBytes)
	case p.StepDuration <= 0:
		return errors.Wrapf(api.ErrInvalidConfig, "%s %v must be positive", KeyStepDuration, p.StepDuration)
	case p.StepDelay < 0:
		return errors.Wrapf(api.ErrInvalidConfig, "%s %v is negative", KeyStepDelay, p.StepDelay)
	case p.Interval <= 0:
		return errors.Wrapf(api.ErrInvalidConfig, "%s %v must be positive", KeyInterval, p.Interval)
	}
	return nil
}

// Targets returns the bytes to give back per type. used may be nil or
// shorter than free, missing entries count as zero.
//
//	keep   = min(free, max(KeepBytes, used*KeepRatio))
//	return = free - keep
func (p Policy) Targets(free pool.MemoryStats, used []int64) []int64 {
	targets := make([]int64, free.Len())
	for i := range targets {
		var u int64
		if i < len(used) {
			u = used[i]
		}
		keep := max(p.KeepBytes, int64(float64(u)*p.KeepRatio))
		keep = min(free.MemSizes[i], keep)
		targets[i] = free.MemSizes[i] - keep
	}
	return targets
}
