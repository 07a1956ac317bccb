// Package telemetry holds the Prometheus collectors for RPC traffic and
// collection figures.
package telemetry

import (
	"net/http"
	"time"

	"github.com/mmynk/wasteline/internal/calculator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wasteline"

// Metrics is the set of collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	households    *prometheus.GaugeVec
	pendingAmount prometheus.Gauge
	netProfit     prometheus.Gauge
}

// New creates collectors on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
		households: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "households",
			Help:      "Households by payment status at the last metrics computation.",
		}, []string{"status"}),
		pendingAmount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_amount",
			Help:      "Fees outstanding for the current period.",
		}),
		netProfit: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "net_profit",
			Help:      "Collections minus expenses for the current period.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.households,
		m.pendingAmount,
		m.netProfit,
	)
	return m
}

// ObserveRPC records one finished call. code is "ok" or a Connect code name.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	m.requests.WithLabelValues(procedure, code).Inc()
	m.duration.WithLabelValues(procedure, code).Observe(elapsed.Seconds())
}

// ObserveSummary refreshes the collection gauges.
func (m *Metrics) ObserveSummary(s calculator.Summary) {
	m.households.WithLabelValues("paid").Set(float64(s.PaidCount))
	m.households.WithLabelValues("due").Set(float64(s.DueCount))
	m.pendingAmount.Set(s.PendingAmount)
	m.netProfit.Set(s.NetProfit)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
