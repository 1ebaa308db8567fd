package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jeevamithra_http_requests_total",
			Help: "HTTP requests served, by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jeevamithra_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	GenerationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jeevamithra_generation_requests_total",
			Help: "Text generation calls by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jeevamithra_generation_duration_seconds",
			Help:    "Text generation latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"backend"},
	)

	Fallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jeevamithra_canned_fallbacks_total",
			Help: "Canned fallback substitutions by component and reason",
		},
		[]string{"component", "reason"},
	)

	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jeevamithra_classifications_total",
			Help: "Chat utterances by health classification outcome",
		},
		[]string{"outcome"},
	)

	SpeechCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jeevamithra_speech_cache_lookups_total",
			Help: "Text-to-speech cache lookups by level and result",
		},
		[]string{"level", "result"},
	)

	TokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jeevamithra_tokens_total",
			Help: "Approximate tokens sent to and received from the model",
		},
		[]string{"direction"},
	)
)

// ObserveUsage records a TokenUsage against the token counters.
func ObserveUsage(u TokenUsage) {
	if u.IsZero() {
		return
	}
	TokensUsed.WithLabelValues("prompt").Add(float64(u.PromptTokens))
	TokensUsed.WithLabelValues("completion").Add(float64(u.CompletionTokens))
}
