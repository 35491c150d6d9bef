// Package params holds the fixed protocol constants that parameterize every
// native module: URL and committee size limits, verification timing, and the
// treasury reward split. Unlike the teacher's governance-mutable param store
// (native/params keyed entries resolved through on-chain proposals), these
// values are frozen at genesis and loaded once from the node's TOML
// configuration, since nothing in the specification makes them
// governance-adjustable.
package params

import "errors"

// Params collects every tunable constant the native modules need at
// construction time.
type Params struct {
	// MaxUrlLength bounds the byte length of a whitelisted gig URL.
	MaxUrlLength int `toml:"MaxUrlLength"`

	// MaxAssignments bounds how many concurrent committee assignments a
	// single verifier may hold.
	MaxAssignments int `toml:"MaxAssignments"`

	// MaxVerifierSubmissions caps how many attestations one claim accepts;
	// the attestation that fills the tally triggers the decision rule.
	MaxVerifierSubmissions int `toml:"MaxVerifierSubmissions"`

	// VerificationTimeout is the number of blocks a committee has to reach
	// a decision before the submission is expired.
	VerificationTimeout uint64 `toml:"VerificationTimeout"`

	// TotalReward is the fixed payout, in base units, distributed per
	// validated submission.
	TotalReward uint64 `toml:"TotalReward"`

	// FeeSplitTreasuryPercent is the treasury's share of TotalReward; the
	// remainder is paid to DevAccount as the developer fee.
	FeeSplitTreasuryPercent uint64 `toml:"FeeSplitTreasuryPercent"`

	// MinerRewardPercentage and VerifierRewardPercentage split what remains
	// after the developer fee, and must sum to 100.
	MinerRewardPercentage    uint64 `toml:"MinerRewardPercentage"`
	VerifierRewardPercentage uint64 `toml:"VerifierRewardPercentage"`

	// MinerDeposit and VerifierDeposit are the reserved balances required
	// to register in each registry.
	MinerDeposit    uint64 `toml:"MinerDeposit"`
	VerifierDeposit uint64 `toml:"VerifierDeposit"`

	// DevAccount receives the developer fee carved out of every distribution.
	DevAccount string `toml:"DevAccount"`
}

// Default returns the protocol's baked-in defaults, used when a node config
// omits the [Params] table entirely.
func Default() Params {
	return Params{
		MaxUrlLength:             256,
		MaxAssignments:           8,
		MaxVerifierSubmissions:   5,
		VerificationTimeout:      100,
		TotalReward:              1000,
		FeeSplitTreasuryPercent:  80,
		MinerRewardPercentage:    60,
		VerifierRewardPercentage: 40,
		MinerDeposit:             100,
		VerifierDeposit:          100,
	}
}

// Validate checks the internal consistency of a loaded parameter set.
func (p Params) Validate() error {
	if p.MaxUrlLength <= 0 {
		return errors.New("params: MaxUrlLength must be positive")
	}
	if p.MaxAssignments <= 0 {
		return errors.New("params: MaxAssignments must be positive")
	}
	if p.MaxVerifierSubmissions <= 0 {
		return errors.New("params: MaxVerifierSubmissions must be positive")
	}
	if p.VerificationTimeout == 0 {
		return errors.New("params: VerificationTimeout must be positive")
	}
	if p.MinerRewardPercentage+p.VerifierRewardPercentage != 100 {
		return errors.New("params: MinerRewardPercentage + VerifierRewardPercentage must equal 100")
	}
	if p.FeeSplitTreasuryPercent > 100 {
		return errors.New("params: FeeSplitTreasuryPercent must be between 0 and 100")
	}
	if p.DevAccount == "" {
		return errors.New("params: DevAccount must be set")
	}
	return nil
}
