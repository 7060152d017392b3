// File: api/debug.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Introspection hook implemented by control.DebugProbes.

package api

// Debug collects named readers of pool state.
type Debug interface {
	// DumpState evaluates every reader.
	DumpState() map[string]any

	// RegisterProbe adds or replaces the reader for name.
	RegisterProbe(name string, fn func() any)
}
