package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments of the calculation API.
type Metrics struct {
	Calculations *prometheus.CounterVec
	Duration     prometheus.Histogram
}

// Calculation outcome labels.
const (
	OutcomeOK         = "ok"
	OutcomeUndefined  = "undefined"
	OutcomeBadRequest = "bad_request"
)

// NewMetrics registers the API instruments on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Calculations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mucalc",
			Name:      "calculations_total",
			Help:      "MU calculations by outcome.",
		}, []string{"outcome"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mucalc",
			Name:      "calculation_duration_seconds",
			Help:      "Latency of calculation requests.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
