// File: pool/configuration.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Static segment type configuration.

package pool

import (
	"github.com/cockroachdb/errors"

	"github.com/momentics/hioload-segpool/api"
)

// TypeConfig describes one segment type.
type TypeConfig struct {
	Name        string
	SegmentSize int
}

// Configuration is an ordered list of segment types; the index is the type id.
type Configuration []TypeConfig

func (c Configuration) NumTypes() int { return len(c) }

func (c Configuration) TypeName(i int) string { return c[i].Name }

func (c Configuration) SegmentSize(i int) int { return c[i].SegmentSize }

// DefaultCardSetConfiguration returns the segment types backing card set
// containers.
func DefaultCardSetConfiguration() Configuration {
	return Configuration{
		{Name: "Array Of Cards", SegmentSize: 8 * 1024},
		{Name: "Howl", SegmentSize: 16 * 1024},
		{Name: "Bitmap", SegmentSize: 32 * 1024},
		{Name: "Container Pointers", SegmentSize: 4 * 1024},
	}
}

// validateConfig rejects configurations a pool cannot be built from.
func validateConfig(cfg api.SegmentConfig) error {
	if cfg == nil || cfg.NumTypes() <= 0 {
		return errors.Wrap(api.ErrInvalidConfig, "no segment types configured")
	}
	for i := 0; i < cfg.NumTypes(); i++ {
		if size := cfg.SegmentSize(i); size <= 0 {
			return errors.Wrapf(api.ErrInvalidConfig, "type %d (%s): segment size %d", i, cfg.TypeName(i), size)
		}
	}
	return nil
}

var _ api.SegmentConfig = Configuration(nil)
