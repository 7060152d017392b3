// File: api/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Configuration policy contract for segment types.

package api

// SegmentConfig describes the segment types a free pool manages. Type
// identifiers are dense indices in [0, NumTypes()).
type SegmentConfig interface {
	// NumTypes returns the number of configured segment types.
	NumTypes() int

	// TypeName returns a human readable name for type i.
	TypeName(i int) string

	// SegmentSize returns the byte size of a segment of type i.
	SegmentSize(i int) int
}

// Category tags a pool for accounting and reporting.
type Category string

const (
	CategoryCardSet Category = "cardset"
	CategoryTest    Category = "test"
)

func (c Category) String() string {
	if c == "" {
		return "unknown"
	}
	return string(c)
}
