package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Runs
	RunsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uistudio_runs_created_total",
			Help: "Total number of generation runs created",
		},
		[]string{"mode", "stack"},
	)
	RunStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uistudio_run_status_changes_total",
			Help: "Number of run status transitions",
		},
		[]string{"from", "to"},
	)
	ActiveRuns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "uistudio_runs_active",
			Help: "Current number of runs executing",
		},
	)
	RunDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uistudio_run_duration_seconds",
			Help:    "Histogram of pipeline run durations in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8), // 1s..128s
		},
		[]string{"stack", "result"},
	)

	// Pipeline
	StagesEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uistudio_stages_emitted_total",
			Help: "Pipeline stage records emitted",
		},
		[]string{"stage"},
	)
	ScaffoldFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uistudio_scaffold_fallbacks_total",
			Help: "Scaffolds replaced by the deterministic fallback template",
		},
		[]string{"stack"},
	)
	StylingOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uistudio_styling_outcomes_total",
			Help: "Styling pass outcomes",
		},
		[]string{"outcome"}, // applied|skipped|rejected|failed
	)
	AnalysisDefaults = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "uistudio_analysis_defaults_total",
			Help: "Layout analyses replaced by the default section set",
		},
	)

	// Preview
	PreviewCompileSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uistudio_preview_compile_seconds",
			Help:    "Duration of preview compile and isolation",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 10),
		},
		[]string{"stack"},
	)
	PreviewCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uistudio_preview_cache_total",
			Help: "Preview cache lookups by result",
		},
		[]string{"result"}, // hit|miss
	)

	// LLM
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uistudio_llm_requests_total",
			Help: "Number of collaborator requests by backend and phase",
		},
		[]string{"backend", "phase"},
	)
	LLMDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uistudio_llm_duration_seconds",
			Help:    "Collaborator call latency",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"backend", "phase"},
	)

	// DB / file storage ops
	StoreOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uistudio_store_ops_total",
			Help: "Storage operations performed",
		},
		[]string{"store", "op"}, // op: get|put|delete|list
	)

	// Streaming
	StreamConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "uistudio_stream_connections",
			Help: "Current number of open progress streams",
		},
		[]string{"transport"}, // sse|ws
	)

	// HTTP
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path"},
	)
	HTTPErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of HTTP request errors.",
		},
		[]string{"method", "path", "status"},
	)

	// Errors
	Errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uistudio_errors_total",
			Help: "Errors encountered in components",
		},
		[]string{"component", "type"},
	)
)

func init() {
	prometheus.MustRegister(
		// Runs
		RunsCreated,
		RunStatusChanges,
		ActiveRuns,
		RunDurationSeconds,
		// Pipeline
		StagesEmitted,
		ScaffoldFallbacks,
		StylingOutcomes,
		AnalysisDefaults,
		// Preview
		PreviewCompileSeconds,
		PreviewCacheHits,
		// LLM
		LLMRequests,
		LLMDurationSeconds,
		// DB
		StoreOps,
		// Streams
		StreamConnections,
		// HTTP
		HTTPRequestDuration,
		HTTPRequests,
		HTTPErrors,
		// Errors
		Errors,
	)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewServer returns the standalone metrics server listening on addr.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Runs
func IncRunsCreated(mode, stack string) {
	RunsCreated.WithLabelValues(mode, stack).Inc()
}

func IncRunStatusChange(from, to string) {
	RunStatusChanges.WithLabelValues(from, to).Inc()
}

func IncActiveRuns() { ActiveRuns.Inc() }

func DecActiveRuns() { ActiveRuns.Dec() }

func ObserveRunDuration(stack, result string, d time.Duration) {
	RunDurationSeconds.WithLabelValues(stack, result).Observe(d.Seconds())
}

// Pipeline
func IncStageEmitted(stage string) {
	StagesEmitted.WithLabelValues(stage).Inc()
}

func IncScaffoldFallback(stack string) {
	ScaffoldFallbacks.WithLabelValues(stack).Inc()
}

func IncStylingOutcome(outcome string) {
	StylingOutcomes.WithLabelValues(outcome).Inc()
}

func IncAnalysisDefault() {
	AnalysisDefaults.Inc()
}

// Preview
func ObservePreviewCompile(stack string, d time.Duration) {
	PreviewCompileSeconds.WithLabelValues(stack).Observe(d.Seconds())
}

func IncPreviewCache(result string) {
	PreviewCacheHits.WithLabelValues(result).Inc()
}

// LLM
func IncLLMRequest(backend, phase string) {
	LLMRequests.WithLabelValues(backend, phase).Inc()
}

func ObserveLLMDuration(backend, phase string, d time.Duration) {
	LLMDurationSeconds.WithLabelValues(backend, phase).Observe(d.Seconds())
}

// DB / file ops
func IncStoreOp(store, op string) {
	StoreOps.WithLabelValues(store, op).Inc()
}

// Streams
func IncStreamConnections(transport string) {
	StreamConnections.WithLabelValues(transport).Inc()
}

func DecStreamConnections(transport string) {
	StreamConnections.WithLabelValues(transport).Dec()
}

// HTTP
func ObserveHTTPRequest(method, path, status string, d time.Duration) {
	HTTPRequests.WithLabelValues(method, path).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}

func IncHTTPError(method, path, status string) {
	HTTPErrors.WithLabelValues(method, path, status).Inc()
}

// Errors
func IncError(component, typ string) {
	Errors.WithLabelValues(component, typ).Inc()
}
