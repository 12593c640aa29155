// Package metrics holds the Prometheus instruments for the outbound gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks gateway request outcomes per backend operation.
type Metrics struct {
	RequestsTotal *prometheus.CounterVec
	ErrorsTotal   *prometheus.CounterVec
}

// New registers the gateway metrics on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the gateway metrics on reg; tests pass a fresh registry
// so repeated construction does not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scanview_gateway_requests_total",
			Help: "Total gateway calls by backend operation",
		}, []string{"operation"}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scanview_gateway_errors_total",
			Help: "Total gateway failures by backend operation and error kind",
		}, []string{"operation", "kind"}),
	}
}

// ObserveRequest records one attempted gateway call.
func (m *Metrics) ObserveRequest(operation string) {
	m.RequestsTotal.WithLabelValues(operation).Inc()
}

// ObserveError records one failed gateway call with its taxonomy kind.
func (m *Metrics) ObserveError(operation, kind string) {
	m.ErrorsTotal.WithLabelValues(operation, kind).Inc()
}
