package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	exchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ipcbench",
			Subsystem: "exchange",
			Name:      "total",
			Help:      "Request/response exchanges by outcome.",
		},
		[]string{"client", "result"},
	)
	exchangeRTT = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ipcbench",
			Subsystem: "exchange",
			Name:      "rtt_seconds",
			Help:      "Request-to-complete-response round trip time.",
			Buckets:   prometheus.ExponentialBuckets(10e-6, 2, 20),
		},
		[]string{"client"},
	)
	bytesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ipcbench",
			Subsystem: "exchange",
			Name:      "bytes_received_total",
			Help:      "Payload bytes reassembled from the channel.",
		},
		[]string{"client"},
	)
	segmentsPerResponse = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ipcbench",
			Subsystem: "exchange",
			Name:      "segments_per_response",
			Help:      "Segments per completed response message.",
			Buckets:   prometheus.LinearBuckets(1, 1, 16),
		},
		[]string{"client"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(exchanges, exchangeRTT, bytesReceived, segmentsPerResponse)
	})
}

// RecordExchange records one completed or failed exchange. result is
// "ok" or the failing error kind.
func RecordExchange(client, result string, rtt time.Duration, segments, bytes int) {
	RegisterMetrics()
	exchanges.WithLabelValues(client, result).Inc()
	if result != "ok" {
		return
	}
	exchangeRTT.WithLabelValues(client).Observe(rtt.Seconds())
	bytesReceived.WithLabelValues(client).Add(float64(bytes))
	segmentsPerResponse.WithLabelValues(client).Observe(float64(segments))
}
