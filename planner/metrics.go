package planner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	plansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshpath_plans_total",
		Help: "Total planning calls by outcome",
	}, []string{"outcome"})

	planDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meshpath_plan_duration_seconds",
		Help:    "Duration of planning calls",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"outcome"})

	verticesFixed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "meshpath_wavefront_vertices_fixed",
		Help:    "Vertices expanded by one propagation",
		Buckets: prometheus.ExponentialBuckets(16, 4, 10),
	})

	pathSamples = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "meshpath_path_samples",
		Help:    "Samples in successfully extracted paths",
		Buckets: prometheus.ExponentialBuckets(2, 4, 10),
	})
)

func recordPlan(res *Result) {
	outcome := res.Outcome.String()
	plansTotal.WithLabelValues(outcome).Inc()
	planDuration.WithLabelValues(outcome).Observe(res.Duration.Seconds())
	if res.Propagation != nil {
		verticesFixed.Observe(float64(res.Propagation.Stats.Popped))
	}
	if res.Outcome == Success {
		pathSamples.Observe(float64(len(res.Path)))
	}
}
