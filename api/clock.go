// File: api/clock.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Clock is a monotonic tick source. Deadlines handed to the reclamation
// phases are absolute values in the same unit.
type Clock interface {
	ElapsedCounter() int64
}
