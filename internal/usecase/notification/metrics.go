package notification

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	publishTotal  *prometheus.CounterVec
	dispatchTotal *prometheus.CounterVec
	deadTotal     *prometheus.CounterVec

	dispatchLatency *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		publishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notify",
			Name:      "publish_total",
			Help:      "Total number of notices handed to the delivery queue.",
		}, []string{"kind", "result"}),
		dispatchTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notify",
			Name:      "dispatch_total",
			Help:      "Total number of notice delivery attempts.",
		}, []string{"kind", "stage", "result"}),
		deadTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notify",
			Name:      "dead_total",
			Help:      "Total number of notices that exhausted their retries.",
		}, []string{"kind"}),
		dispatchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "notify",
			Name:      "dispatch_latency_seconds",
			Help:      "Latency distribution for notice delivery.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}, []string{"kind", "result"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
