// File: pool/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Prometheus export of free pool occupancy.

package pool

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector reports per-type free bytes and segments of a FreePool. Values
// are read at scrape time.
type Collector struct {
	fp       *FreePool
	bytes    *prometheus.Desc
	segments *prometheus.Desc
}

// NewCollector creates a collector for fp under namespace.
func NewCollector(fp *FreePool, namespace string) *Collector {
	constLabels := prometheus.Labels{"category": fp.Category().String()}
	return &Collector{
		fp: fp,
		bytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "free_pool", "bytes"),
			"Bytes held in the free list of a segment type.",
			[]string{"type"}, constLabels,
		),
		segments: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "free_pool", "segments"),
			"Segments held in the free list of a segment type.",
			[]string{"type"}, constLabels,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.bytes
	ch <- c.segments
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.fp.MemorySizes()
	cfg := c.fp.Config()
	for i := 0; i < stats.Len(); i++ {
		name := cfg.TypeName(i)
		ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.GaugeValue, float64(stats.MemSizes[i]), name)
		ch <- prometheus.MustNewConstMetric(c.segments, prometheus.GaugeValue, float64(stats.NumSegments[i]), name)
	}
}

var _ prometheus.Collector = (*Collector)(nil)
