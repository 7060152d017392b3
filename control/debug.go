// File: control/debug.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Named state readers for live pools. FreePool.RegisterProbes publishes its
// per-type free bytes and barrier occupancy here.

package control

import (
	"sync"

	"github.com/momentics/hioload-segpool/api"
)

// DebugProbes maps names like "freepool.cardset.bytes" to state readers.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe installs fn under name, replacing any reader already there.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// DumpState calls every reader and collects the results by name. Readers
// run under the registry read lock and must not register.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any)
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}

var _ api.Debug = (*DebugProbes)(nil)
