package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the registry service.
type Metrics struct {
	// Events counts emitted domain events by kind and disable reason.
	Events *prometheus.CounterVec
	// Rejections counts failed operations by operation and error kind.
	Rejections *prometheus.CounterVec
	// Accounts reports the number of accounts by enablement.
	Accounts *prometheus.GaugeVec
	// Zones reports the zone counter.
	Zones prometheus.Gauge

	registry *prometheus.Registry
}

// New creates the metrics on a dedicated registry, so several services can
// coexist in one process (as they do in tests).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)

	return &Metrics{
		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_registry_events_total",
			Help: "Total number of domain events emitted by the registries",
		}, []string{"kind", "reason"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_registry_rejections_total",
			Help: "Total number of rejected registry operations",
		}, []string{"operation", "error"}),
		Accounts: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ledger_registry_accounts",
			Help: "Number of registered accounts",
		}, []string{"enabled"}),
		Zones: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_registry_zones",
			Help: "Number of catalogued zones",
		}),
		registry: reg,
	}
}

// ObserveEvent increments the event counter.
func (m *Metrics) ObserveEvent(kind, reason string) {
	m.Events.WithLabelValues(kind, reason).Inc()
}

// ObserveRejection increments the rejection counter.
func (m *Metrics) ObserveRejection(operation, kind string) {
	m.Rejections.WithLabelValues(operation, kind).Inc()
}

// SetAccounts records the enabled and disabled account counts.
func (m *Metrics) SetAccounts(enabled, disabled int) {
	m.Accounts.WithLabelValues("true").Set(float64(enabled))
	m.Accounts.WithLabelValues("false").Set(float64(disabled))
}

// SetZones records the zone counter.
func (m *Metrics) SetZones(total uint32) {
	m.Zones.Set(float64(total))
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
