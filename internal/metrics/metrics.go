// Package metrics provides the Prometheus metrics of the classification service.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "textorigin"

// Metrics contains all Prometheus metrics of the service. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	PredictionTotal    *prometheus.CounterVec
	PredictionDuration prometheus.Histogram
	TrainingTotal      *prometheus.CounterVec
	TrainingDuration   prometheus.Histogram
	CorpusSamples      *prometheus.GaugeVec
	ModelVersion       prometheus.Gauge
	AdminLoginTotal    *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the metrics and registers them, together with the Go and process
// collectors, on a fresh registry.
func New() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register go collector: %w", err)
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("failed to register process collector: %w", err)
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.PredictionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Total number of prediction requests partitioned by outcome.",
		},
		[]string{"status"},
	)
	m.PredictionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time taken to classify one text.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~1.6s
		},
	)
	m.TrainingTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_runs_total",
			Help:      "Total number of retrain runs partitioned by outcome.",
		},
		[]string{"status"},
	)
	m.TrainingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "training_duration_seconds",
			Help:      "Time taken by one retrain run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		},
	)
	m.CorpusSamples = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_samples",
			Help:      "Number of corpus samples per label.",
		},
		[]string{"label"},
	)
	m.ModelVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_version",
			Help:      "Version of the live model, 0 when none is loaded.",
		},
	)
	m.AdminLoginTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_logins_total",
			Help:      "Total number of admin login attempts partitioned by outcome.",
		},
		[]string{"status"},
	)
}

// RecordPrediction records one prediction outcome and its duration.
func (m *Metrics) RecordPrediction(durationSeconds float64, err error) {
	if m == nil {
		return
	}
	m.PredictionTotal.WithLabelValues(statusOf(err)).Inc()
	if err == nil {
		m.PredictionDuration.Observe(durationSeconds)
	}
}

// RecordTraining records one retrain outcome: "success", "error" or "skipped".
func (m *Metrics) RecordTraining(status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.TrainingTotal.WithLabelValues(status).Inc()
	m.TrainingDuration.Observe(durationSeconds)
}

func (m *Metrics) SetModelVersion(v int64) {
	if m == nil {
		return
	}
	m.ModelVersion.Set(float64(v))
}

func (m *Metrics) SetCorpusSamples(label string, n int) {
	if m == nil {
		return
	}
	m.CorpusSamples.WithLabelValues(label).Set(float64(n))
}

func (m *Metrics) RecordLogin(status string) {
	if m == nil {
		return
	}
	m.AdminLoginTotal.WithLabelValues(status).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Describe implements the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.PredictionTotal.Describe(ch)
	ch <- m.PredictionDuration.Desc()
	m.TrainingTotal.Describe(ch)
	ch <- m.TrainingDuration.Desc()
	m.CorpusSamples.Describe(ch)
	ch <- m.ModelVersion.Desc()
	m.AdminLoginTotal.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.PredictionTotal.Collect(ch)
	ch <- m.PredictionDuration
	m.TrainingTotal.Collect(ch)
	ch <- m.TrainingDuration
	m.CorpusSamples.Collect(ch)
	ch <- m.ModelVersion
	m.AdminLoginTotal.Collect(ch)
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
