// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error values for hioload-segpool.

package api

import "github.com/cockroachdb/errors"

// Common errors used across the library. Contract violations are not part
// of this list: they panic with assertion failures.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrNotSupported      = errors.New("operation not supported")
	ErrPoolClosed        = errors.New("free pool is closed")
)
