// Package metrics exposes Prometheus instrumentation for Harvest.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	filterEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "harvest",
			Name:      "filter_evaluations_total",
			Help:      "Number of catalog filter evaluations by surface",
		},
		[]string{"surface"},
	)

	filterMatched = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "harvest",
			Name:      "filter_matched_farms",
			Help:      "Number of farms returned per filter evaluation",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"surface"},
	)

	catalogFarms = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "harvest",
		Name:      "catalog_farms",
		Help:      "Number of farms in the current catalog snapshot",
	})

	catalogReloads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "harvest",
		Name:      "catalog_reloads_total",
		Help:      "Number of catalog reloads that published a new snapshot",
	})

	sessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "harvest",
			Name:      "session_events_total",
			Help:      "Session lifecycle and state events",
		},
		[]string{"event"},
	)
)

func init() {
	prometheus.MustRegister(filterEvaluations, filterMatched, catalogFarms, catalogReloads, sessionEvents)
}

// ObserveFilter records one filter evaluation on the given surface.
func ObserveFilter(surface string, matched int) {
	filterEvaluations.WithLabelValues(surface).Inc()
	filterMatched.WithLabelValues(surface).Observe(float64(matched))
}

// SetCatalogSize records the size of the current snapshot.
func SetCatalogSize(n int) {
	catalogFarms.Set(float64(n))
}

// CatalogReloaded counts a published reload.
func CatalogReloaded() {
	catalogReloads.Inc()
}

// SessionEvent counts a session event such as "started", "updated" or "ended".
func SessionEvent(event string) {
	sessionEvents.WithLabelValues(event).Inc()
}
