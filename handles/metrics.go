package handles

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	liveHandles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sighost_live_handles",
			Help: "Number of live handles (number of registry entries).",
		},
	)
	handleCollectors = []prometheus.Collector{
		liveHandles,
	}

	metricsOnce sync.Once
)

func initMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(handleCollectors...)
	})
}
