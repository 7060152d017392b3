// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime configuration, metrics and debug introspection for hioload-segpool.
//
// Provides concurrent-safe state handling primitives including:
//   - Snapshot config reads, typed getters and reload listeners
//   - Counters and gauges fed by the reclamation task
//   - State export through registered debug probes
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
