package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "reunite",
		Name:      "registrations_total",
		Help:      "Total number of persons registered",
	})

	CandidatesFound = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "reunite",
		Name:      "candidates_found_total",
		Help:      "Total number of match candidates surfaced above threshold",
	})

	MatchesConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reunite",
		Name:      "matches_confirmed_total",
		Help:      "Total number of confirmed matches",
	}, []string{"method"})

	SMSSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "reunite",
		Name:      "sms_sent_total",
		Help:      "Total number of SMS notifications delivered to the gateway",
	})

	SMSFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "reunite",
		Name:      "sms_failed_total",
		Help:      "Total number of SMS notifications that failed",
	})

	CatalogFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reunite",
		Name:      "catalog_fallbacks_total",
		Help:      "Total number of locale lookups that fell back to the default catalog",
	}, []string{"locale"})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "reunite",
		Name:      "queue_depth",
		Help:      "Number of pending notification tasks in queue",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reunite",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "reunite",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
