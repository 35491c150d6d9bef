// Package submission implements claim intake: whitelist gating, duplicate
// rejection, and deterministic committee selection over the verifier pool.
package submission

import (
	"errors"

	"gigchain/core/events"
	"gigchain/core/types"
	"gigchain/crypto"
)

var (
	ErrUrlTooLong            = errors.New("submission: url exceeds MaxUrlLength")
	ErrNotWhitelisted        = errors.New("submission: url is not whitelisted")
	ErrDuplicateSubmission   = errors.New("submission: hash already submitted")
	ErrInsufficientVerifiers = errors.New("submission: fewer than 3 verifiers in the committee pool")
)

const (
	minCommitteeSize = 3
	maxCommitteeSize = 10
)

type intakeState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// whitelistChecker is the narrow view of whitelist.Registry intake depends
// on.
type whitelistChecker interface {
	IsWhitelisted(url []byte) (bool, error)
}

// verifierPool is the narrow view of verifierregistry.Registry intake
// depends on.
type verifierPool interface {
	Pool() ([]crypto.Address, error)
	Assign(verifier crypto.Address, hash types.Hash) error
}

// Record is the persisted (miner, url) pair a claim hash resolves to. The
// miner is stored as raw address bytes: crypto.Address's fields are
// unexported and therefore invisible to RLP's reflection-based encoder.
type Record struct {
	MinerBytes []byte
	URL        []byte
}

// Miner reconstructs the typed miner address from the persisted record.
func (rec Record) Miner() (crypto.Address, error) {
	return crypto.NewAddress(crypto.GigPrefix, rec.MinerBytes)
}

func submissionKey(hash types.Hash) []byte {
	buf := make([]byte, 0, len("submission/record/")+32)
	buf = append(buf, "submission/record/"...)
	buf = append(buf, hash[:]...)
	return buf
}

// Intake wires whitelist gating and verifier committee assignment around the
// Submissions ledger.
type Intake struct {
	state     intakeState
	whitelist whitelistChecker
	verifiers verifierPool
	emitter   events.Emitter
	maxUrlLen int
}

// NewIntake constructs a submission intake component.
func NewIntake(state intakeState, whitelist whitelistChecker, verifiers verifierPool, maxUrlLen int) *Intake {
	return &Intake{state: state, whitelist: whitelist, verifiers: verifiers, emitter: events.NoopEmitter{}, maxUrlLen: maxUrlLen}
}

// SetEmitter configures the event emitter used by the intake component.
func (in *Intake) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		in.emitter = events.NoopEmitter{}
		return
	}
	in.emitter = emitter
}

func (in *Intake) emit(event events.Event) {
	if in == nil || in.emitter == nil {
		return
	}
	in.emitter.Emit(event)
}

// Submission returns the persisted record for hash, if any.
func (in *Intake) Submission(hash types.Hash) (*Record, bool, error) {
	var record Record
	ok, err := in.state.KVGet(submissionKey(hash), &record)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &record, true, nil
}

// SubmissionMiner resolves the authoritative miner recorded for hash. It is
// the narrow accessor the aggregator depends on to resolve the claimed
// miner against the Submissions ledger rather than trusting the caller.
func (in *Intake) SubmissionMiner(hash types.Hash) (crypto.Address, bool, error) {
	record, ok, err := in.Submission(hash)
	if err != nil || !ok {
		return crypto.Address{}, ok, err
	}
	miner, err := record.Miner()
	return miner, true, err
}

// SubmitHash implements submission.submit_hash: validates the URL against
// the whitelist, rejects duplicate hashes, persists the claim, draws a
// deterministic committee from the verifier pool, and assigns each member.
func (in *Intake) SubmitHash(miner crypto.Address, url []byte, hash types.Hash) error {
	if in.maxUrlLen > 0 && len(url) > in.maxUrlLen {
		return ErrUrlTooLong
	}
	whitelisted, err := in.whitelist.IsWhitelisted(url)
	if err != nil {
		return err
	}
	if !whitelisted {
		return ErrNotWhitelisted
	}
	if _, exists, err := in.Submission(hash); err != nil {
		return err
	} else if exists {
		return ErrDuplicateSubmission
	}

	pool, err := in.verifiers.Pool()
	if err != nil {
		return err
	}
	if len(pool) < minCommitteeSize {
		return ErrInsufficientVerifiers
	}

	committee := selectCommittee(pool, hash)

	if err := in.state.KVPut(submissionKey(hash), Record{MinerBytes: miner.Bytes(), URL: append([]byte(nil), url...)}); err != nil {
		return err
	}

	for _, v := range committee {
		if err := in.verifiers.Assign(v, hash); err != nil {
			return err
		}
	}

	in.emit(events.SubmissionReceived{Miner: miner, Hash: hash, URL: append([]byte(nil), url...)})
	return nil
}

func clampCommitteeSize(poolSize int) int {
	k := poolSize
	if k < minCommitteeSize {
		k = minCommitteeSize
	}
	if k > maxCommitteeSize {
		k = maxCommitteeSize
	}
	return k
}

func selectCommittee(pool []crypto.Address, hash types.Hash) []crypto.Address {
	addrs := make([][]byte, len(pool))
	for i, addr := range pool {
		addrs[i] = addr.Bytes()
	}

	seed := seedFromHash(hash[:])
	fisherYatesShuffle(addrs, newSplitmix64(seed))

	k := clampCommitteeSize(len(pool))
	if k > len(addrs) {
		k = len(addrs)
	}
	committee := make([]crypto.Address, 0, k)
	for _, raw := range addrs[:k] {
		addr, _ := crypto.NewAddress(crypto.GigPrefix, raw)
		committee = append(committee, addr)
	}
	return committee
}
