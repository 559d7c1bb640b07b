// Package observability owns process-local session metrics.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	handshakes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pybricksdev",
			Subsystem: "session",
			Name:      "handshakes_total",
			Help:      "New transport connections established.",
		},
		[]string{"address"},
	)
	probeReuses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pybricksdev",
			Subsystem: "session",
			Name:      "probe_reuses_total",
			Help:      "Cached connections revalidated and reused.",
		},
		[]string{"address"},
	)
	evictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pybricksdev",
			Subsystem: "session",
			Name:      "evictions_total",
			Help:      "Cached connections evicted after a failed probe.",
		},
		[]string{"address"},
	)
	uploads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pybricksdev",
			Subsystem: "session",
			Name:      "uploads_total",
			Help:      "Files uploaded to devices.",
		},
	)
	uploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pybricksdev",
			Subsystem: "session",
			Name:      "upload_bytes_total",
			Help:      "Bytes uploaded to devices.",
		},
	)
	processStarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pybricksdev",
			Subsystem: "session",
			Name:      "process_starts_total",
			Help:      "Remote processes spawned.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(handshakes, probeReuses, evictions, uploads, uploadBytes, processStarts)
	})
}

func RecordHandshake(address string) {
	RegisterMetrics()
	handshakes.WithLabelValues(address).Inc()
}

func RecordProbeReuse(address string) {
	RegisterMetrics()
	probeReuses.WithLabelValues(address).Inc()
}

func RecordEviction(address string) {
	RegisterMetrics()
	evictions.WithLabelValues(address).Inc()
}

func RecordUpload(bytes int64) {
	RegisterMetrics()
	uploads.Inc()
	if bytes > 0 {
		uploadBytes.Add(float64(bytes))
	}
}

func RecordProcessStart() {
	RegisterMetrics()
	processStarts.Inc()
}
