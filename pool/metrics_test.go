package pool

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	fp, _ := newTestPool(t)
	fillPool(t, fp, 0, 3)
	fillPool(t, fp, 1, 1)

	c := NewCollector(fp, "segpool")
	require.Equal(t, 4, testutil.CollectAndCount(c))
	require.Equal(t, 2, testutil.CollectAndCount(c, "segpool_free_pool_bytes"))

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))
	families, err := reg.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var typ, category string
			for _, lp := range m.GetLabel() {
				switch lp.GetName() {
				case "type":
					typ = lp.GetValue()
				case "category":
					category = lp.GetValue()
				}
			}
			require.Equal(t, "test", category)
			values[mf.GetName()+"/"+typ] = m.GetGauge().GetValue()
		}
	}
	require.Equal(t, map[string]float64{
		"segpool_free_pool_bytes/Small":    30,
		"segpool_free_pool_bytes/Large":    100,
		"segpool_free_pool_segments/Small": 3,
		"segpool_free_pool_segments/Large": 1,
	}, values)
}
