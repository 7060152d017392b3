// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with dynamic update and hot-reload propagation.

package control

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/momentics/hioload-segpool/api"
)

// ConfigStore is a dynamic key/value map with atomic snapshot and listener support.
type ConfigStore struct {
	mu        sync.RWMutex
	config    map[string]any
	listeners []func()
}

// NewConfigStore initializes a config store seeded with defaults.
func NewConfigStore(defaults ...map[string]any) *ConfigStore {
	cs := &ConfigStore{
		config:    make(map[string]any),
		listeners: make([]func(), 0),
	}
	for _, d := range defaults {
		for k, v := range d {
			cs.config[k] = v
		}
	}
	return cs
}

// GetSnapshot returns a copy of all config values.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	copy := make(map[string]any, len(cs.config))
	for k, v := range cs.config {
		copy[k] = v
	}
	return copy
}

// SetConfig merges new values and dispatches reload listeners.
func (cs *ConfigStore) SetConfig(newCfg map[string]any) {
	cs.mu.Lock()
	for k, v := range newCfg {
		cs.config[k] = v
	}
	listeners := append([]func(){}, cs.listeners...)
	cs.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// OnReload registers a listener hook called synchronously after SetConfig.
func (cs *ConfigStore) OnReload(fn func()) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

func (cs *ConfigStore) lookup(key string) (any, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	v, ok := cs.config[key]
	if !ok {
		return nil, errors.Wrapf(api.ErrInvalidConfig, "missing setting %q", key)
	}
	return v, nil
}

// Int64 returns the integer value for key.
func (cs *ConfigStore) Int64(key string) (int64, error) {
	v, err := cs.lookup(key)
	if err != nil {
		return 0, err
	}
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int64:
		return val, nil
	case int32:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case float64:
		return int64(val), nil
	}
	return 0, errors.Wrapf(api.ErrInvalidConfig, "setting %q not an integer: %T", key, v)
}

// Float64 returns the float value for key.
func (cs *ConfigStore) Float64(key string) (float64, error) {
	v, err := cs.lookup(key)
	if err != nil {
		return 0, err
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	}
	return 0, errors.Wrapf(api.ErrInvalidConfig, "setting %q not a float: %T", key, v)
}

// Duration returns the duration for key. Strings are parsed with
// time.ParseDuration, integers are taken as nanoseconds.
func (cs *ConfigStore) Duration(key string) (time.Duration, error) {
	v, err := cs.lookup(key)
	if err != nil {
		return 0, err
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, errors.Wrapf(api.ErrInvalidConfig, "setting %q: %v", key, err)
		}
		return d, nil
	case int:
		return time.Duration(val), nil
	case int64:
		return time.Duration(val), nil
	}
	return 0, errors.Wrapf(api.ErrInvalidConfig, "setting %q not a duration: %T", key, v)
}

// String returns the string value for key.
func (cs *ConfigStore) String(key string) (string, error) {
	v, err := cs.lookup(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Wrapf(api.ErrInvalidConfig, "setting %q not a string: %T", key, v)
	}
	return s, nil
}
