package observability

import (
	"gigchain/core/events"
	"gigchain/observability/metrics"
)

// ChainMetricsEmitter adapts the typed domain event stream into Prometheus
// observations, the same role this package's Events() registry plays for
// the generic transfer counter.
type ChainMetricsEmitter struct{}

// Emit implements events.Emitter.
func (ChainMetricsEmitter) Emit(event events.Event) {
	g := metrics.Gig()
	switch e := event.(type) {
	case events.SubmissionReceived:
		g.ObserveSubmissionReceived()
	case events.ValidationCompleted:
		g.ObserveValidation(e.IsValid)
	case events.SubmissionValidated:
		g.ObserveDecision(e.Valid)
	case events.SubmissionExpired:
		g.ObserveExpiry()
	case events.FundsDeposited:
		Events().RecordTransfer("deposit")
	case events.FundsTransferred:
		Events().RecordTransfer("transfer")
	case events.RewardsDistributed:
		g.ObserveRewardDistributed("miner")
		for range e.Committee {
			g.ObserveRewardDistributed("verifier")
		}
	case events.FeesAllocated:
		g.ObserveFeeAllocated()
	}
}
