package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mailsift"

// Metrics groups the pipeline counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	RunsTotal            *prometheus.CounterVec
	RunDuration          prometheus.Histogram
	MessagesTotal        *prometheus.CounterVec
	ClassificationsTotal *prometheus.CounterVec
	ExtractionsTotal     *prometheus.CounterVec
	PromotionsTotal      *prometheus.CounterVec
	StagingSweptTotal    prometheus.Counter
}

// NewMetrics registers the collectors on reg. Passing prometheus.NewRegistry()
// keeps tests isolated from the default registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingestion_runs_total",
				Help:      "Ingestion runs by outcome",
			},
			[]string{"outcome"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ingestion_run_duration_seconds",
				Help:      "Wall time of a full ingestion run",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
		MessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Processed messages by persistence outcome",
			},
			[]string{"outcome"},
		),
		ClassificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "classifications_total",
				Help:      "Classifications by category",
			},
			[]string{"category"},
		),
		ExtractionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extractions_total",
				Help:      "Attachment extractions by strategy and result",
			},
			[]string{"strategy", "success"},
		),
		PromotionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attachment_promotions_total",
				Help:      "Durable attachment uploads by outcome",
			},
			[]string{"outcome"},
		),
		StagingSweptTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "staging_swept_files_total",
				Help:      "Files removed from the staging area",
			},
		),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRun(success bool, started time.Time) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) IncMessages(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.MessagesTotal.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) IncClassification(category string) {
	if m == nil {
		return
	}
	m.ClassificationsTotal.WithLabelValues(category).Inc()
}

func (m *Metrics) IncExtraction(strategy string, success bool) {
	if m == nil {
		return
	}
	result := "true"
	if !success {
		result = "false"
	}
	m.ExtractionsTotal.WithLabelValues(strategy, result).Inc()
}

func (m *Metrics) IncPromotion(outcome string) {
	if m == nil {
		return
	}
	m.PromotionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.StagingSweptTotal.Add(float64(n))
}
