package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eats"

var (
	CartMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "mutations_total",
		Help:      "Cart mutations by operation and persistence outcome.",
	}, []string{"operation", "outcome"})

	CartHydrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "hydrations_total",
		Help:      "Cart hydrations by source state (found, missing, malformed, error).",
	}, []string{"state"})

	CheckoutSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "sessions_total",
		Help:      "Checkout session submissions by outcome.",
	}, []string{"outcome"})

	SearchFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "search",
		Name:      "fetches_total",
		Help:      "Search provider fetches by outcome.",
	}, []string{"outcome"})

	UpstreamRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Upstream restaurant API request duration.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "outcome"})
)

const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeStale   = "stale"
	OutcomeCached  = "cached"
)
