// Package metrics exposes Prometheus collectors for the report pipeline.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	stageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medsum",
			Name:      "pipeline_stage_total",
			Help:      "Pipeline stage executions by stage and result",
		},
		[]string{"stage", "result"},
	)

	providerReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medsum",
			Name:      "provider_requests_total",
			Help:      "Summarization requests by provider, model and result",
		},
		[]string{"provider", "model", "result"},
	)

	providerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medsum",
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of summarization requests by provider and model",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider", "model"},
	)

	registry = prometheus.NewRegistry()
	initOnce sync.Once
)

// Init registers collectors. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		registry.MustRegister(stageTotal, providerReqs, providerLatency)
	})
}

// Handler returns the http.Handler for /metrics.
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ObserveStage counts one pipeline stage outcome.
func ObserveStage(stage string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	stageTotal.WithLabelValues(stage, result).Inc()
}

func ObserveProvider(provider, model, result string, dur time.Duration) {
	providerReqs.WithLabelValues(provider, model, result).Inc()
	providerLatency.WithLabelValues(provider, model).Observe(dur.Seconds())
}
