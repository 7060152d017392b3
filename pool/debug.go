//go:build debug
// +build debug

// File: pool/debug.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Debug build: chain verification on every splice.

package pool

// verifyChains re-walks every spliced chain and checks its counters.
const verifyChains = true
