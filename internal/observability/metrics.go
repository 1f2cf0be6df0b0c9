package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resolution sources for the rooms_resolved_total counter.
const (
	SourceCache   = "cache"
	SourceDefault = "default"
)

// Metrics holds the add-on's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// RoomChanges counts current-room transitions.
	RoomChanges prometheus.Counter
	// Resolutions counts stub upgrades by source.
	Resolutions *prometheus.CounterVec
	// ExportDuration observes full room export scans.
	ExportDuration prometheus.Histogram
	// Hazards counts saved crusher annotations.
	Hazards prometheus.Counter
}

// NewMetrics creates and registers every collector.
//
// Postcondition: Returns Metrics whose collectors are registered on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RoomChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roomshelper",
			Name:      "room_changes_total",
			Help:      "Current-room transitions observed by the locator.",
		}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomshelper",
			Name:      "rooms_resolved_total",
			Help:      "Catalog stubs resolved, by source.",
		}, []string{"source"}),
		ExportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "roomshelper",
			Name:      "export_duration_seconds",
			Help:      "Wall time of full room export scans.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		Hazards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roomshelper",
			Name:      "crushers_saved_total",
			Help:      "Crusher annotations attached to rooms.",
		}),
	}
	m.registry.MustRegister(m.RoomChanges, m.Resolutions, m.ExportDuration, m.Hazards)
	return m
}

// ObserveExport records one export scan duration.
func (m *Metrics) ObserveExport(d time.Duration) {
	m.ExportDuration.Observe(d.Seconds())
}

// Handler returns the HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
