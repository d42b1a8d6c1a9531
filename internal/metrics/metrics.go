package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_insights_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_insights_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	InvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_insights_invocations_total",
			Help: "Total number of handler invocations by handler and response status.",
		},
		[]string{"handler", "status"},
	)

	CompletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_insights_completions_total",
			Help: "Total number of completion API calls by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	CompletionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_insights_completion_duration_seconds",
			Help:    "Completion API call latency in seconds.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"operation"},
	)

	CompletionTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_insights_completion_tokens_total",
			Help: "Tokens consumed by completion API calls.",
		},
		[]string{"operation", "kind"},
	)

	SessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_insights_sessions_total",
			Help: "Session establishment attempts by verification mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		InvocationsTotal,
		CompletionsTotal,
		CompletionDuration,
		CompletionTokens,
		SessionsTotal,
	)
}

// ObserveInvocation counts one handler response
func ObserveInvocation(handler string, status int) {
	InvocationsTotal.WithLabelValues(handler, strconv.Itoa(status)).Inc()
}

// ObserveCompletion records the outcome and latency of one completion call
func ObserveCompletion(operation string, err error, latency time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	CompletionsTotal.WithLabelValues(operation, outcome).Inc()
	CompletionDuration.WithLabelValues(operation).Observe(latency.Seconds())
}

// ObserveTokens adds prompt and completion token counts for an operation
func ObserveTokens(operation string, prompt, completion int64) {
	if prompt > 0 {
		CompletionTokens.WithLabelValues(operation, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		CompletionTokens.WithLabelValues(operation, "completion").Add(float64(completion))
	}
}

// ObserveSession counts one session establishment attempt
func ObserveSession(mode string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	SessionsTotal.WithLabelValues(mode, outcome).Inc()
}
