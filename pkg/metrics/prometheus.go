package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetches     *prometheus.CounterVec
	fetchTime   *prometheus.HistogramVec
	cache       *prometheus.CounterVec
	directives  *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder registered on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrotilt_indicator_fetches_total",
				Help: "Indicator fetch attempts by outcome",
			},
			[]string{"indicator", "ok"},
		),
		fetchTime: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macrotilt_indicator_fetch_duration_seconds",
				Help:    "Duration of indicator fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"indicator"},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrotilt_cache_lookups_total",
				Help: "Indicator cache lookups by result",
			},
			[]string{"result"},
		),
		directives: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrotilt_directives_total",
				Help: "Directives issued per ticker",
			},
			[]string{"ticker", "directive"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrotilt_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macrotilt_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFetch records one indicator fetch.
func (r *Recorder) RecordFetch(indicator string, ok bool, seconds float64) {
	r.fetches.WithLabelValues(indicator, strconv.FormatBool(ok)).Inc()
	r.fetchTime.WithLabelValues(indicator).Observe(seconds)
}

// RecordCache records a cache hit or miss.
func (r *Recorder) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cache.WithLabelValues(result).Inc()
}

// RecordDirective counts an issued directive. Sized directives collapse to their verb.
func (r *Recorder) RecordDirective(ticker, directive string) {
	r.directives.WithLabelValues(ticker, verb(directive)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func verb(directive string) string {
	for i := 0; i < len(directive); i++ {
		if directive[i] == ' ' {
			return directive[:i]
		}
	}
	return directive
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordFetch(string, bool, float64) {}
func (Nop) RecordCache(bool)                  {}
func (Nop) RecordDirective(string, string)    {}
func (Nop) RecordError(string)                {}
func (Nop) RecordLatency(string, float64)     {}
