// Package chain dispatches every extrinsic across the native modules,
// wrapping each call in a state-trie snapshot so a returned error leaves no
// partial side effects — the module-level analogue of the teacher's
// StateTransition.ApplyTransaction dispatch loop.
package chain

import (
	"errors"

	"github.com/holiman/uint256"

	"gigchain/core/events"
	"gigchain/core/state"
	"gigchain/core/types"
	"gigchain/crypto"
	"gigchain/native/aggregator"
	"gigchain/native/minerregistry"
	"gigchain/native/params"
	"gigchain/native/submission"
	"gigchain/native/treasury"
	"gigchain/native/verifierregistry"
	"gigchain/native/whitelist"
	"gigchain/storage/trie"
)

var ErrRootOriginRequired = errors.New("chain: call requires root origin")
var ErrSignedOriginRequired = errors.New("chain: call requires a signed origin")

// Chain wires the native modules into the single dispatch surface every
// extrinsic in the external interface table is routed through.
type Chain struct {
	trie *trie.Trie
	mgr  *state.Manager

	Whitelist        *whitelist.Registry
	MinerRegistry    *minerregistry.Registry
	VerifierRegistry *verifierregistry.Registry
	Submission       *submission.Intake
	Aggregator       *aggregator.Aggregator
	Treasury         *treasury.Treasury
	TreasuryManager  *treasury.Manager

	emitter events.Emitter
}

// New constructs a Chain over the supplied trie, wiring every native module
// with the parameters in p. devAccount receives the developer fee carved
// out of each distribution.
func New(t *trie.Trie, p params.Params, devAccount crypto.Address) (*Chain, error) {
	mgr := state.NewManager(t)

	wl := whitelist.NewRegistry(mgr, p.MaxUrlLength)
	miners := minerregistry.NewRegistry(mgr)
	verifiers := verifierregistry.NewRegistry(mgr, p.MaxAssignments)
	intake := submission.NewIntake(mgr, wl, verifiers, p.MaxUrlLength)
	tr := treasury.New(mgr, mgr)
	mgmt, err := treasury.NewManager(tr, devAccount, p.FeeSplitTreasuryPercent, p.MinerRewardPercentage, p.VerifierRewardPercentage)
	if err != nil {
		return nil, err
	}
	agg := aggregator.New(mgr, verifiers, intake, mgmt, p.MaxVerifierSubmissions, p.VerificationTimeout, uint256.NewInt(p.TotalReward))

	c := &Chain{
		trie:             t,
		mgr:              mgr,
		Whitelist:        wl,
		MinerRegistry:    miners,
		VerifierRegistry: verifiers,
		Submission:       intake,
		Aggregator:       agg,
		Treasury:         tr,
		TreasuryManager:  mgmt,
		emitter:          events.NoopEmitter{},
	}
	return c, nil
}

// SetEmitter configures the event emitter shared by every wired module.
func (c *Chain) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	c.emitter = emitter
	c.Whitelist.SetEmitter(emitter)
	c.MinerRegistry.SetEmitter(emitter)
	c.VerifierRegistry.SetEmitter(emitter)
	c.Submission.SetEmitter(emitter)
	c.Aggregator.SetEmitter(emitter)
	c.Treasury.SetEmitter(emitter)
	c.TreasuryManager.SetEmitter(emitter)
}

// apply runs fn against the live trie, committing its writes on success and
// discarding them on error so a failed extrinsic never leaves a partial
// mutation observable to the next call.
func (c *Chain) apply(fn func() error) error {
	if err := fn(); err != nil {
		c.trie.Discard()
		return err
	}
	if _, err := c.trie.Commit(); err != nil {
		c.trie.Discard()
		return err
	}
	return nil
}

// WhitelistAddURL implements whitelist.add_url (root-only).
func (c *Chain) WhitelistAddURL(root types.Origin, url []byte) error {
	if !root.IsRoot() {
		return ErrRootOriginRequired
	}
	return c.apply(func() error { return c.Whitelist.Add(url) })
}

// WhitelistRemoveURL implements whitelist.remove_url (root-only).
func (c *Chain) WhitelistRemoveURL(root types.Origin, url []byte) error {
	if !root.IsRoot() {
		return ErrRootOriginRequired
	}
	return c.apply(func() error { return c.Whitelist.Remove(url) })
}

// MinerRegister implements miner.register (signed).
func (c *Chain) MinerRegister(signed types.Origin, deposit *uint256.Int) error {
	caller, ok := signed.Signer()
	if !ok {
		return ErrSignedOriginRequired
	}
	return c.apply(func() error { return c.MinerRegistry.Register(caller, deposit) })
}

// VerifierRegister implements verifier.register (signed).
func (c *Chain) VerifierRegister(signed types.Origin, deposit *uint256.Int) error {
	caller, ok := signed.Signer()
	if !ok {
		return ErrSignedOriginRequired
	}
	return c.apply(func() error { return c.VerifierRegistry.Register(caller, deposit) })
}

// SubmitHash implements submission.submit_hash (signed).
func (c *Chain) SubmitHash(signed types.Origin, url []byte, hash types.Hash) error {
	miner, ok := signed.Signer()
	if !ok {
		return ErrSignedOriginRequired
	}
	return c.apply(func() error { return c.Submission.SubmitHash(miner, url, hash) })
}

// SubmitVerification implements aggregator.submit_verification (signed). It
// is the sole state-mutating verification path; verifier.validate_submission
// from the wire surface dispatches here as well, since the two call sites
// the original design exposed are unified in the aggregator.
func (c *Chain) SubmitVerification(signed types.Origin, minerClaimed crypto.Address, hash types.Hash, isValid bool, now uint64) error {
	verifier, ok := signed.Signer()
	if !ok {
		return ErrSignedOriginRequired
	}
	return c.apply(func() error {
		return c.Aggregator.SubmitVerification(verifier, minerClaimed, hash, isValid, now)
	})
}

// ValidateSubmission implements verifier.validate_submission (signed), kept
// as a thin alias over SubmitVerification — the two state-mutating paths the
// original design exposed are unified into one, per the resolved design
// note on dual verification paths.
func (c *Chain) ValidateSubmission(signed types.Origin, minerClaimed crypto.Address, hash types.Hash, isValid bool, now uint64) error {
	return c.SubmitVerification(signed, minerClaimed, hash, isValid, now)
}

// DepositFunds implements treasury.deposit_funds (signed).
func (c *Chain) DepositFunds(signed types.Origin, amount *uint256.Int) error {
	depositor, ok := signed.Signer()
	if !ok {
		return ErrSignedOriginRequired
	}
	return c.apply(func() error { return c.Treasury.Deposit(depositor, amount) })
}

// TransferFunds implements treasury.transfer_funds (root-only).
func (c *Chain) TransferFunds(root types.Origin, recipient crypto.Address, amount *uint256.Int) error {
	if !root.IsRoot() {
		return ErrRootOriginRequired
	}
	return c.apply(func() error { return c.Treasury.Transfer(recipient, amount) })
}

// Distribute implements treasury_manager.distribute (root-only). Exposed for
// direct invocation/testing; in normal operation the aggregator calls the
// same path automatically once a claim is decided valid.
func (c *Chain) Distribute(root types.Origin, miner crypto.Address, committee []crypto.Address, totalReward *uint256.Int) error {
	if !root.IsRoot() {
		return ErrRootOriginRequired
	}
	return c.apply(func() error { return c.TreasuryManager.Distribute(miner, committee, totalReward) })
}

// Tick implements the per-block hook: an open claim with attestations whose
// deadline has not passed is handed to the decision rule, and an open claim
// whose deadline has passed is expired. The set of open claims comes from the
// aggregator's own maintained index, not a caller-supplied hash list, so a
// host only ever needs to pass the current block number. Each decided/
// expired claim's committee has its assignment queue cleared so
// VerifierRegistry.Assignments does not grow unbounded across the claim
// lifecycle.
func (c *Chain) Tick(blockNumber uint64) error {
	return c.apply(func() error {
		open, err := c.Aggregator.OpenHashes()
		if err != nil {
			return err
		}
		if err := c.Aggregator.Tick(blockNumber); err != nil {
			return err
		}
		for _, hash := range open {
			processed, err := c.Aggregator.IsProcessed(hash)
			if err != nil {
				return err
			}
			if !processed {
				continue
			}
			if err := c.clearCommitteeAssignments(hash); err != nil {
				return err
			}
		}
		return nil
	})
}

// clearCommitteeAssignments releases hash from every verifier's assignment
// queue once the aggregator has reached a terminal decision for it.
func (c *Chain) clearCommitteeAssignments(hash types.Hash) error {
	pending, err := c.VerifierRegistry.PendingAssignments()
	if err != nil {
		return err
	}
	for verifier, assignments := range pending {
		for _, assigned := range assignments {
			if assigned == hash {
				if err := c.VerifierRegistry.ClearAssignment(verifier, hash); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}
