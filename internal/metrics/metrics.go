package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sorabang_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sorabang_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sorabang_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	MessagesSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sorabang_messages_submitted_total",
			Help: "Total voice messages submitted",
		},
		[]string{"flow"}, // "upload" or "session"
	)

	MessageDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sorabang_message_duration_seconds",
			Help:    "Duration of submitted voice messages",
			Buckets: []float64{5, 15, 30, 60, 90, 120},
		},
	)

	RecordingSessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sorabang_recording_sessions_started_total",
			Help: "Total chunked recording sessions started",
		},
	)

	RecordingSessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sorabang_recording_sessions_expired_total",
			Help: "Total recording sessions discarded after idling out",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sorabang_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	BlockedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sorabang_blocked_requests_total",
			Help: "Total blocked requests",
		},
		[]string{"reason"},
	)
)
