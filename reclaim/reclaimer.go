// File: reclaim/reclaimer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Background driver for reclamation cycles.

package reclaim

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-segpool/affinity"
	"github.com/momentics/hioload-segpool/api"
	"github.com/momentics/hioload-segpool/clock"
	"github.com/momentics/hioload-segpool/control"
	"github.com/momentics/hioload-segpool/log"
	"github.com/momentics/hioload-segpool/pool"
)

// Metric keys published by the reclaimer.
const (
	MetricCycles     = "reclaim.cycles"
	MetricSteps      = "reclaim.steps"
	MetricVMSegments = "reclaim.vm.segments"
	MetricVMBytes    = "reclaim.vm.bytes"
	MetricOSSegments = "reclaim.os.segments"
	MetricOSBytes    = "reclaim.os.bytes"
	MetricLastCycle  = "reclaim.last_cycle"
)

// Reclaimer periodically gives back excess free memory of a pool.
type Reclaimer struct {
	fp      *pool.FreePool
	store   *control.ConfigStore
	metrics *control.MetricsRegistry
	clk     api.Clock
	used    UsedFunc

	mu     sync.Mutex
	policy Policy
	task   *Task

	reload atomic.Bool
	wake   chan struct{}
}

// Option customizes a Reclaimer.
type Option func(*Reclaimer)

// WithClock sets the clock used for slice deadlines.
func WithClock(clk api.Clock) Option {
	return func(r *Reclaimer) { r.clk = clk }
}

// WithMetrics publishes counters into mr instead of a private registry.
func WithMetrics(mr *control.MetricsRegistry) Option {
	return func(r *Reclaimer) { r.metrics = mr }
}

// WithUsedFunc supplies in-use bytes per type for the keep ratio.
func WithUsedFunc(fn UsedFunc) Option {
	return func(r *Reclaimer) { r.used = fn }
}

// New creates a reclaimer for fp configured from store. Missing reclaim.*
// keys are an error; seed the store with DefaultSettings.
func New(fp *pool.FreePool, store *control.ConfigStore, opts ...Option) (*Reclaimer, error) {
	policy, err := PolicyFromConfig(store)
	if err != nil {
		return nil, err
	}
	r := &Reclaimer{
		fp:     fp,
		store:  store,
		clk:    clock.Default,
		policy: policy,
		wake:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = control.NewMetricsRegistry()
	}
	r.task = NewTask(fp, policy, r.clk, r.used)
	store.OnReload(func() {
		r.reload.Store(true)
		r.Schedule()
	})
	return r, nil
}

// Policy returns the policy in effect.
func (r *Reclaimer) Policy() Policy {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.policy
}

// Metrics returns the registry the reclaimer publishes into.
func (r *Reclaimer) Metrics() *control.MetricsRegistry { return r.metrics }

// Schedule requests a cycle as soon as the running one, if any, is done.
func (r *Reclaimer) Schedule() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// applyReload rereads the policy after a config change. A bad config keeps
// the previous policy.
func (r *Reclaimer) applyReload() {
	if !r.reload.CompareAndSwap(true, false) {
		return
	}
	p, err := PolicyFromConfig(r.store)
	if err != nil {
		log.Warnf("reclaim %s: config reload rejected: %v", r.fp.Category(), err)
		return
	}
	r.mu.Lock()
	r.policy = p
	r.mu.Unlock()
	log.Infof("reclaim %s: policy reloaded: %+v", r.fp.Category(), p)
}

// RunCycle performs one complete cycle in deadline-bounded slices. If ctx is
// done between slices, the rest of the cycle runs without a deadline so no
// segment stays detached from the pool.
func (r *Reclaimer) RunCycle(ctx context.Context) pool.ReturnStats {
	r.applyReload()
	policy := r.Policy()
	r.task.SetPolicy(policy)
	r.task.Start()

	var steps int64
	for {
		steps++
		if !r.task.Step(clock.Deadline(r.clk, policy.StepDuration)) {
			break
		}
		if ctx.Err() != nil || !r.pause(ctx, policy.StepDelay) {
			log.Debugf("reclaim %s: cancelled mid-cycle, finishing", r.fp.Category())
			steps++
			r.task.Step(clock.Never)
			break
		}
	}

	ret := r.task.LastReturned()
	r.metrics.Add(MetricCycles, 1)
	r.metrics.Add(MetricSteps, steps)
	r.metrics.Add(MetricVMSegments, ret.VMSegments)
	r.metrics.Add(MetricVMBytes, ret.VMBytes)
	r.metrics.Add(MetricOSSegments, ret.OSSegments)
	r.metrics.Add(MetricOSBytes, ret.OSBytes)
	r.metrics.Set(MetricLastCycle, ret)
	log.Verbosef("reclaim %s: cycle done in %d steps, kept %d segments size %d, released %d segments size %d",
		r.fp.Category(), steps, ret.VMSegments, ret.VMBytes, ret.OSSegments, ret.OSBytes)
	return ret
}

// pause sleeps for d and reports false if ctx ended first.
func (r *Reclaimer) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Run drives cycles every policy interval, or earlier on Schedule, until ctx
// ends. With a CPU configured, Run pins its goroutine's thread and should be
// given a goroutine of its own.
func (r *Reclaimer) Run(ctx context.Context) error {
	policy := r.Policy()
	if policy.CPU >= 0 {
		if err := affinity.PinCurrentThread(policy.CPU); err != nil {
			log.Warnf("reclaim %s: pin to cpu %d: %v", r.fp.Category(), policy.CPU, err)
		}
	}
	log.Infof("reclaim %s: starting, interval %v step %v", r.fp.Category(), policy.Interval, policy.StepDuration)

	timer := time.NewTimer(policy.Interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Infof("reclaim %s: stopping", r.fp.Category())
			return nil
		case <-timer.C:
		case <-r.wake:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
		r.RunCycle(ctx)
		timer.Reset(r.Policy().Interval)
	}
}
