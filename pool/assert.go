// File: pool/assert.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import "github.com/cockroachdb/errors"

func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(errors.AssertionFailedf(format, args...))
	}
}
