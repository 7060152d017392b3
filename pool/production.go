//go:build !debug
// +build !debug

// File: pool/production.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Default build: chain verification disabled.

package pool

const verifyChains = false
