// Package metrics holds the Prometheus collectors shared by the pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineStage = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flux_pipeline_stage_total",
		Help: "Pipeline stage executions by outcome.",
	}, []string{"stage", "outcome"})

	ExternalCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flux_external_call_duration_seconds",
		Help:    "Latency of calls to Drive, Sheets and the model API.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"service", "operation"})

	TaskCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flux_task_cache_total",
		Help: "Task list cache lookups.",
	}, []string{"result"})
)

// Stage records the outcome of a pipeline stage.
func Stage(stage string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	PipelineStage.WithLabelValues(stage, outcome).Inc()
}

// ObserveCall records how long an external call took since start.
func ObserveCall(service, operation string, start time.Time) time.Duration {
	d := time.Since(start)
	ExternalCallDuration.WithLabelValues(service, operation).Observe(d.Seconds())
	return d
}
