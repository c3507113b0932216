package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts ingestion outcomes and which extraction strategies fired.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ingests       *prometheus.CounterVec
	strategies    *prometheus.CounterVec
	fetchDuration prometheus.Histogram
}

// NewMetrics creates the scraper metrics and registers them with reg. A nil
// registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ingests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebox_ingest_total",
				Help: "Recipe ingestions by outcome",
			},
			[]string{"outcome"},
		),
		strategies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebox_ingest_strategy_total",
				Help: "Extraction strategies that produced the kept value, by field",
			},
			[]string{"field", "strategy"},
		),
		fetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recipebox_fetch_duration_seconds",
				Help:    "Time spent fetching recipe pages",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
	}
}

func (m *Metrics) ingest(outcome string) {
	if m == nil {
		return
	}
	m.ingests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) strategy(field, name string) {
	if m == nil {
		return
	}
	m.strategies.WithLabelValues(field, name).Inc()
}

func (m *Metrics) fetched(d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(d.Seconds())
}
