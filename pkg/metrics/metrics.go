// Package metrics exposes Prometheus collectors for the dispatch core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors. A nil *Metrics is a no-op everywhere, so
// metering stays optional.
type Metrics struct {
	Dispatches       *prometheus.CounterVec
	ProviderFailures *prometheus.CounterVec
	CreditsSpent     prometheus.Counter
	Balance          prometheus.Gauge
	DispatchSeconds  prometheus.Histogram
}

// New registers the collectors on the given registerer. Using an explicit
// registerer keeps tests isolated from each other.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "xenoai_dispatches_total",
			Help: "Dispatch results by outcome and provider.",
		}, []string{"outcome", "provider"}),
		ProviderFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "xenoai_provider_failures_total",
			Help: "Provider-level failures by provider.",
		}, []string{"provider"}),
		CreditsSpent: factory.NewCounter(prometheus.CounterOpts{
			Name: "xenoai_credits_spent_total",
			Help: "Credits deducted for settled dispatches.",
		}),
		Balance: factory.NewGauge(prometheus.GaugeOpts{
			Name: "xenoai_credit_balance",
			Help: "Current credit balance.",
		}),
		DispatchSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "xenoai_dispatch_duration_seconds",
			Help:    "End-to-end dispatch latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveDispatch records one terminal dispatch result.
func (m *Metrics) ObserveDispatch(outcome, provider string, seconds float64) {
	if m == nil {
		return
	}
	m.Dispatches.WithLabelValues(outcome, provider).Inc()
	m.DispatchSeconds.Observe(seconds)
}

// IncProviderFailure counts one failed provider attempt.
func (m *Metrics) IncProviderFailure(provider string) {
	if m == nil {
		return
	}
	m.ProviderFailures.WithLabelValues(provider).Inc()
}

// AddCreditsSpent accumulates settled spend.
func (m *Metrics) AddCreditsSpent(n int64) {
	if m == nil {
		return
	}
	m.CreditsSpent.Add(float64(n))
}

// SetBalance publishes the current balance.
func (m *Metrics) SetBalance(n int64) {
	if m == nil {
		return
	}
	m.Balance.Set(float64(n))
}
