// Package aggregator tallies verifier attestations for a claim and decides,
// by threshold or by deadline, whether the claim is valid.
package aggregator

import (
	"bytes"
	"errors"
	"sort"

	"github.com/holiman/uint256"

	"gigchain/core/events"
	"gigchain/core/types"
	"gigchain/crypto"
)

var (
	ErrAttestationsFull           = errors.New("aggregator: attestation tally full")
	ErrSubmissionAlreadyProcessed = errors.New("aggregator: submission already processed")
	ErrVerificationExpired        = errors.New("aggregator: verification deadline has passed")
	ErrMinerMismatch              = errors.New("aggregator: claimed miner disagrees with submission record")
	ErrNotAssigned                = errors.New("aggregator: verifier is not assigned to this claim")
	ErrAlreadyAttested            = errors.New("aggregator: verifier already attested for this claim")
)

const minAttestationsToDecide = 3

type aggregatorState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
	KVGetList(key []byte, out interface{}) error
}

// assignmentChecker is the narrow view of verifierregistry.Registry the
// aggregator depends on to enforce that only assigned committee members may
// attest.
type assignmentChecker interface {
	IsAssigned(verifier crypto.Address, hash types.Hash) (bool, error)
}

// submissionLookup is the narrow view of submission.Intake the aggregator
// depends on to resolve the authoritative miner for a claim.
type submissionLookup interface {
	SubmissionMiner(hash types.Hash) (crypto.Address, bool, error)
}

// distributor is the narrow view of treasury.Manager the aggregator invokes
// on a valid decision.
type distributor interface {
	Distribute(miner crypto.Address, committee []crypto.Address, totalReward *uint256.Int) error
}

type attestation struct {
	Verifier []byte
	IsValid  bool
}

func tallyKey(hash types.Hash) []byte {
	return append([]byte("submission/attestation/"), hash[:]...)
}

func deadlineKey(hash types.Hash) []byte {
	return append([]byte("submission/deadline/"), hash[:]...)
}

func processedKey(hash types.Hash) []byte {
	return append([]byte("submission/processed/"), hash[:]...)
}

func minerForHashKey(hash types.Hash) []byte {
	return append([]byte("submission/miner-for-hash/"), hash[:]...)
}

// openHashIndexKey is the maintained sorted index of every claim hash with a
// currently open deadline, letting Tick discover what needs finalizing
// without a caller-supplied hash list — the same role verifierIndexKey plays
// for the verifier pool in native/verifierregistry.
var openHashIndexKey = []byte("aggregator/deadline/index")

// Aggregator implements the verification tally and decision logic.
type Aggregator struct {
	state                  aggregatorState
	assignments            assignmentChecker
	submissions            submissionLookup
	treasuryManager        distributor
	emitter                events.Emitter
	maxVerifierSubmissions int
	verificationTimeout    uint64
	totalReward            *uint256.Int
}

// New constructs a verification aggregator.
func New(state aggregatorState, assignments assignmentChecker, submissions submissionLookup, treasuryManager distributor, maxVerifierSubmissions int, verificationTimeout uint64, totalReward *uint256.Int) *Aggregator {
	return &Aggregator{
		state:                  state,
		assignments:            assignments,
		submissions:            submissions,
		treasuryManager:        treasuryManager,
		emitter:                events.NoopEmitter{},
		maxVerifierSubmissions: maxVerifierSubmissions,
		verificationTimeout:    verificationTimeout,
		totalReward:            totalReward,
	}
}

// SetEmitter configures the event emitter used by the aggregator.
func (a *Aggregator) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		a.emitter = events.NoopEmitter{}
		return
	}
	a.emitter = emitter
}

func (a *Aggregator) emit(event events.Event) {
	if a == nil || a.emitter == nil {
		return
	}
	a.emitter.Emit(event)
}

func (a *Aggregator) tally(hash types.Hash) ([]attestation, error) {
	var tally []attestation
	if err := a.kvGetList(tallyKey(hash), &tally); err != nil {
		return nil, err
	}
	return tally, nil
}

func (a *Aggregator) kvGetList(key []byte, out *[]attestation) error {
	ok, err := a.state.KVGet(key, out)
	if err != nil {
		return err
	}
	if !ok {
		*out = nil
	}
	return nil
}

func (a *Aggregator) loadOpenHashes() ([]types.Hash, error) {
	var raw [][]byte
	if err := a.state.KVGetList(openHashIndexKey, &raw); err != nil {
		return nil, err
	}
	out := make([]types.Hash, 0, len(raw))
	for _, b := range raw {
		var h types.Hash
		copy(h[:], b)
		out = append(out, h)
	}
	return out, nil
}

func (a *Aggregator) saveOpenHashes(index []types.Hash) error {
	sort.Slice(index, func(i, j int) bool { return bytes.Compare(index[i][:], index[j][:]) < 0 })
	raw := make([][]byte, len(index))
	for i, h := range index {
		raw[i] = append([]byte(nil), h[:]...)
	}
	return a.state.KVPut(openHashIndexKey, raw)
}

func (a *Aggregator) indexOpenHash(hash types.Hash) error {
	index, err := a.loadOpenHashes()
	if err != nil {
		return err
	}
	for _, existing := range index {
		if existing == hash {
			return nil
		}
	}
	index = append(index, hash)
	return a.saveOpenHashes(index)
}

func (a *Aggregator) unindexOpenHash(hash types.Hash) error {
	index, err := a.loadOpenHashes()
	if err != nil {
		return err
	}
	out := index[:0]
	for _, existing := range index {
		if existing != hash {
			out = append(out, existing)
		}
	}
	return a.saveOpenHashes(out)
}

// OpenHashes returns every claim hash with a currently open deadline, ordered
// deterministically by hash bytes (the maintained index). Tick uses this
// internally; it is also exposed so a caller can clear any per-claim
// supplemental bookkeeping (e.g. committee assignment queues) once a hash
// stops appearing here.
func (a *Aggregator) OpenHashes() ([]types.Hash, error) {
	return a.loadOpenHashes()
}

// IsProcessed reports whether hash has reached a terminal decision.
func (a *Aggregator) IsProcessed(hash types.Hash) (bool, error) {
	return a.state.KVGet(processedKey(hash), nil)
}

// Deadline returns the block number by which hash must be decided, and
// whether a deadline is currently set (the claim is open).
func (a *Aggregator) Deadline(hash types.Hash) (uint64, bool, error) {
	var deadline uint64
	ok, err := a.state.KVGet(deadlineKey(hash), &deadline)
	return deadline, ok, err
}

// minerForHash returns the cached claimed-miner for hash, if present.
func (a *Aggregator) minerForHash(hash types.Hash) (crypto.Address, bool, error) {
	var raw []byte
	ok, err := a.state.KVGet(minerForHashKey(hash), &raw)
	if err != nil || !ok {
		return crypto.Address{}, ok, err
	}
	addr, err := crypto.NewAddress(crypto.GigPrefix, raw)
	return addr, true, err
}

// Outcome returns the attestation tally recorded for hash, for
// observability/indexing.
func (a *Aggregator) Outcome(hash types.Hash) ([]types.Hash, []bool, error) {
	tally, err := a.tally(hash)
	if err != nil {
		return nil, nil, err
	}
	verifiers := make([]types.Hash, 0, len(tally))
	votes := make([]bool, 0, len(tally))
	for _, a := range tally {
		var h types.Hash
		copy(h[:], a.Verifier)
		verifiers = append(verifiers, h)
		votes = append(votes, a.IsValid)
	}
	return verifiers, votes, nil
}

// SubmitVerification implements aggregator.submit_verification. The caller
// must be the committee member assigned to hash (checked against
// VerifierRegistry.Assignments); the two state-mutating call sites the
// source exposed (registry-level validate_submission and the aggregator
// path) are unified here, with ValidationCompleted emitted on every accepted
// attestation.
func (a *Aggregator) SubmitVerification(verifier crypto.Address, minerClaimed crypto.Address, hash types.Hash, isValid bool, now uint64) error {
	assigned, err := a.assignments.IsAssigned(verifier, hash)
	if err != nil {
		return err
	}
	if !assigned {
		return ErrNotAssigned
	}

	processed, err := a.IsProcessed(hash)
	if err != nil {
		return err
	}
	if processed {
		return ErrSubmissionAlreadyProcessed
	}

	cachedMiner, cached, err := a.minerForHash(hash)
	if err != nil {
		return err
	}
	if !cached {
		if recordMiner, ok, err := a.submissions.SubmissionMiner(hash); err == nil && ok {
			if recordMiner != minerClaimed {
				return ErrMinerMismatch
			}
		} else if err != nil {
			return err
		}
		if err := a.state.KVPut(minerForHashKey(hash), minerClaimed.Bytes()); err != nil {
			return err
		}
	} else if cachedMiner != minerClaimed {
		return ErrMinerMismatch
	}

	tally, err := a.tally(hash)
	if err != nil {
		return err
	}
	for _, existing := range tally {
		if string(existing.Verifier) == string(verifier.Bytes()) {
			return ErrAlreadyAttested
		}
	}
	if a.maxVerifierSubmissions > 0 && len(tally) >= a.maxVerifierSubmissions {
		return ErrAttestationsFull
	}
	tally = append(tally, attestation{Verifier: verifier.Bytes(), IsValid: isValid})
	if err := a.state.KVPut(tallyKey(hash), tally); err != nil {
		return err
	}

	a.emit(events.ValidationCompleted{Verifier: verifier, Hash: hash, IsValid: isValid})

	deadline, open, err := a.Deadline(hash)
	if err != nil {
		return err
	}
	if open {
		if now > deadline {
			return ErrVerificationExpired
		}
	} else {
		deadline = now + a.verificationTimeout
		if err := a.state.KVPut(deadlineKey(hash), deadline); err != nil {
			return err
		}
		if err := a.indexOpenHash(hash); err != nil {
			return err
		}
	}

	if a.maxVerifierSubmissions > 0 && len(tally) >= a.maxVerifierSubmissions {
		return a.process(hash)
	}
	return nil
}

// process implements the decision rule: a two-thirds inclusive majority of
// at least 3 attestations decides the claim; integer arithmetic only, to
// keep the decision deterministic across replicas.
func (a *Aggregator) process(hash types.Hash) error {
	tally, err := a.tally(hash)
	if err != nil {
		return err
	}
	t := len(tally)
	if t < minAttestationsToDecide {
		return nil
	}
	p := 0
	for _, att := range tally {
		if att.IsValid {
			p++
		}
	}

	// The authoritative miner is always read from the Submissions ledger;
	// the MinerForHash cache is consulted only as a fallback for a claim
	// whose submission record has since been garbage-collected.
	miner, ok, err := a.submissions.SubmissionMiner(hash)
	if err != nil {
		return err
	}
	if !ok {
		miner, ok, err = a.minerForHash(hash)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("aggregator: no miner recorded for claim")
		}
	}

	valid := 3*p >= 2*t
	if valid {
		committee := make([]crypto.Address, 0, t)
		for _, att := range tally {
			addr, err := crypto.NewAddress(crypto.GigPrefix, att.Verifier)
			if err != nil {
				return err
			}
			committee = append(committee, addr)
		}
		if err := a.treasuryManager.Distribute(miner, committee, a.totalReward); err != nil {
			return err
		}
	}
	a.emit(events.SubmissionValidated{Miner: miner, Hash: hash, Valid: valid})

	return a.markProcessed(hash)
}

// expire discards an unresolved claim once its deadline has passed without
// moving funds.
func (a *Aggregator) expire(hash types.Hash) error {
	if err := a.state.KVDelete(deadlineKey(hash)); err != nil {
		return err
	}
	if err := a.state.KVDelete(minerForHashKey(hash)); err != nil {
		return err
	}
	a.emit(events.SubmissionExpired{Hash: hash})
	return a.markProcessed(hash)
}

func (a *Aggregator) markProcessed(hash types.Hash) error {
	if err := a.unindexOpenHash(hash); err != nil {
		return err
	}
	return a.state.KVPut(processedKey(hash), struct{}{})
}

// Tick implements the per-block hook: an open claim with at least one
// attestation whose deadline has not passed is handed to process (which
// decides once at least three attestations are in), and an open claim whose
// deadline has passed is expired.
// The set of open claims is read from the aggregator's own maintained index
// rather than supplied by the caller, so a host scans autonomously by block
// number alone, matching an on_finalize(n) hook rather than an index the
// caller must already know. Processed is a terminal guard so iteration order
// never affects the outcome.
func (a *Aggregator) Tick(blockNumber uint64) error {
	hashes, err := a.loadOpenHashes()
	if err != nil {
		return err
	}
	for _, hash := range hashes {
		processed, err := a.IsProcessed(hash)
		if err != nil {
			return err
		}
		if processed {
			continue
		}
		deadline, open, err := a.Deadline(hash)
		if err != nil {
			return err
		}
		if !open {
			continue
		}
		tally, err := a.tally(hash)
		if err != nil {
			return err
		}
		switch {
		case len(tally) > 0 && blockNumber <= deadline:
			if err := a.process(hash); err != nil {
				return err
			}
		case blockNumber > deadline:
			if err := a.expire(hash); err != nil {
				return err
			}
		}
	}
	return nil
}
