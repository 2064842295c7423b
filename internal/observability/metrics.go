package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SnapshotsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "visualdelta",
		Name:      "snapshots_processed_total",
		Help:      "Total number of snapshots processed per call",
	}, []string{"call_id"})

	EventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "visualdelta",
		Name:      "events_emitted_total",
		Help:      "Total number of visual events emitted, by type",
	}, []string{"event_type"})

	ADLinesSpoken = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "visualdelta",
		Name:      "ad_lines_spoken_total",
		Help:      "Total number of audio-description lines produced",
	}, []string{"event_type"})

	ADCandidatesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "visualdelta",
		Name:      "ad_candidates_rejected_total",
		Help:      "Total number of AD candidates rejected before announcement",
	}, []string{"reason"})

	LLMFallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "visualdelta",
		Name:      "llm_fallback_total",
		Help:      "Total number of times the verbalizer fell back to the template path",
	}, []string{"reason"})

	PipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "visualdelta",
		Name:      "pipeline_duration_seconds",
		Help:      "Duration of one snapshot's pipeline processing",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"stage"})

	ActiveCalls = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "visualdelta",
		Name:      "active_calls",
		Help:      "Number of calls with a live pipeline instance",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "visualdelta",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "visualdelta",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})

	EventBusPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "visualdelta",
		Name:      "eventbus_published_total",
		Help:      "Total number of events published to the event bus",
	}, []string{"subject"})

	EventBusConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "visualdelta",
		Name:      "eventbus_consumed_total",
		Help:      "Total number of events consumed from the event bus",
	}, []string{"subject"})
)
