package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Turn outcomes recorded by ConversationTurns.
const (
	OutcomeCommitted = "committed"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapcook_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snapcook_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	// Business metrics
	IngredientAnalyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapcook_ingredient_analyses_total",
			Help: "Total ingredient analyses",
		},
		[]string{"source"}, // "image", "text" or "both"
	)

	RecipeQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapcook_recipe_queries_total",
			Help: "Total recipe similarity queries",
		},
	)

	ConversationTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapcook_conversation_turns_total",
			Help: "Total conversation turns by outcome",
		},
		[]string{"outcome"},
	)

	StreamedFragments = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapcook_streamed_fragments_total",
			Help: "Total assistant fragments streamed to clients",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapcook_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)
)
