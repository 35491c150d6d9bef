package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// GigMetrics tracks the native gig-coordination modules: intake volume,
// attestation throughput, and reward flow through the treasury.
type GigMetrics struct {
	submissionsReceived *prometheus.CounterVec
	validationsReceived *prometheus.CounterVec
	submissionsDecided  *prometheus.CounterVec
	submissionsExpired  prometheus.Counter
	treasuryBalance     prometheus.Gauge
	rewardsDistributed  *prometheus.CounterVec
	feesAllocated       prometheus.Counter
}

var (
	gigOnce     sync.Once
	gigRegistry *GigMetrics
)

// Gig returns the process-wide gig-coordination metrics registry.
func Gig() *GigMetrics {
	gigOnce.Do(func() {
		gigRegistry = &GigMetrics{
			submissionsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "gigchain",
				Subsystem: "submission",
				Name:      "received_total",
				Help:      "Count of hash submissions accepted by intake.",
			}, []string{"result"}),
			validationsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "gigchain",
				Subsystem: "aggregator",
				Name:      "validations_total",
				Help:      "Count of accepted verifier attestations by vote.",
			}, []string{"vote"}),
			submissionsDecided: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "gigchain",
				Subsystem: "aggregator",
				Name:      "decided_total",
				Help:      "Count of claims reaching a terminal decision by outcome.",
			}, []string{"outcome"}),
			submissionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "gigchain",
				Subsystem: "aggregator",
				Name:      "expired_total",
				Help:      "Count of claims expired by the per-block hook without a decision.",
			}),
			treasuryBalance: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "gigchain",
				Subsystem: "treasury",
				Name:      "balance",
				Help:      "Treasury free balance as last observed from a deposit or transfer.",
			}),
			rewardsDistributed: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "gigchain",
				Subsystem: "treasury_manager",
				Name:      "rewards_distributed_total",
				Help:      "Count of reward distributions by recipient role.",
			}, []string{"role"}),
			feesAllocated: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "gigchain",
				Subsystem: "treasury_manager",
				Name:      "fees_allocated_total",
				Help:      "Count of developer fee allocations carved out of a distribution.",
			}),
		}
		prometheus.MustRegister(
			gigRegistry.submissionsReceived,
			gigRegistry.validationsReceived,
			gigRegistry.submissionsDecided,
			gigRegistry.submissionsExpired,
			gigRegistry.treasuryBalance,
			gigRegistry.rewardsDistributed,
			gigRegistry.feesAllocated,
		)
	})
	return gigRegistry
}

func (m *GigMetrics) ObserveSubmissionReceived() {
	if m == nil {
		return
	}
	m.submissionsReceived.WithLabelValues("accepted").Inc()
}

func (m *GigMetrics) ObserveValidation(isValid bool) {
	if m == nil {
		return
	}
	vote := "invalid"
	if isValid {
		vote = "valid"
	}
	m.validationsReceived.WithLabelValues(vote).Inc()
}

func (m *GigMetrics) ObserveDecision(valid bool) {
	if m == nil {
		return
	}
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	m.submissionsDecided.WithLabelValues(outcome).Inc()
}

func (m *GigMetrics) ObserveExpiry() {
	if m == nil {
		return
	}
	m.submissionsExpired.Inc()
}

func (m *GigMetrics) SetTreasuryBalance(amount float64) {
	if m == nil {
		return
	}
	m.treasuryBalance.Set(amount)
}

func (m *GigMetrics) ObserveRewardDistributed(role string) {
	if m == nil {
		return
	}
	if role == "" {
		role = "unknown"
	}
	m.rewardsDistributed.WithLabelValues(role).Inc()
}

func (m *GigMetrics) ObserveFeeAllocated() {
	if m == nil {
		return
	}
	m.feesAllocated.Inc()
}
