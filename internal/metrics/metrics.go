package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the VOD service. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	requestsTotal     prometheus.Counter
	errorsTotal       prometheus.Counter
	cacheLookupsTotal *prometheus.CounterVec
	lazyTranscodes    *prometheus.CounterVec
	pollAttemptsTotal prometheus.Counter
	transcodeJobs     *prometheus.CounterVec
	transcodeDuration prometheus.Histogram
}

// New creates and registers the service metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vod_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vod_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	cacheLookupsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vod_cache_lookups_total",
		Help: "Cache lookups by namespace and result (hit, miss, error)",
	}, []string{"namespace", "result"})
	lazyTranscodes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vod_lazy_transcodes_total",
		Help: "Transcodes triggered by a playlist request, by outcome",
	}, []string{"outcome"})
	pollAttemptsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vod_playlist_poll_attempts_total",
		Help: "Storage checks made while waiting for a lazily transcoded playlist",
	})
	transcodeJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vod_transcode_jobs_total",
		Help: "Transcode jobs run, by outcome",
	}, []string{"outcome"})
	transcodeDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vod_transcode_duration_seconds",
		Help:    "Wall time of transcode jobs",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 900},
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		cacheLookupsTotal,
		lazyTranscodes,
		pollAttemptsTotal,
		transcodeJobs,
		transcodeDuration,
	)

	return &Metrics{
		registry:          registry,
		requestsTotal:     requestsTotal,
		errorsTotal:       errorsTotal,
		cacheLookupsTotal: cacheLookupsTotal,
		lazyTranscodes:    lazyTranscodes,
		pollAttemptsTotal: pollAttemptsTotal,
		transcodeJobs:     transcodeJobs,
		transcodeDuration: transcodeDuration,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	if m == nil {
		return
	}
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	if m == nil {
		return
	}
	m.errorsTotal.Inc()
}

// ObserveCacheLookup records one lookup; result is "hit", "miss" or "error".
func (m *Metrics) ObserveCacheLookup(namespace, result string) {
	if m == nil {
		return
	}
	m.cacheLookupsTotal.WithLabelValues(namespace, result).Inc()
}

func (m *Metrics) IncLazyTranscode(outcome string) {
	if m == nil {
		return
	}
	m.lazyTranscodes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncPollAttempts() {
	if m == nil {
		return
	}
	m.pollAttemptsTotal.Inc()
}

// ObserveTranscodeJob records a finished job and its duration.
func (m *Metrics) ObserveTranscodeJob(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.transcodeJobs.WithLabelValues(outcome).Inc()
	m.transcodeDuration.Observe(d.Seconds())
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
