// Package verifierregistry tracks verifier deposits and the committee pool
// they draw from, along with each verifier's open assignment queue.
package verifierregistry

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
	ErrVerifierAlreadyRegistered = errors.New("verifierregistry: verifier already registered")
	ErrInsufficientFunds         = errors.New("verifierregistry: insufficient funds for deposit")
	ErrAssignmentsFull           = errors.New("verifierregistry: assignment queue full")
	ErrVerifierNotRegistered     = errors.New("verifierregistry: verifier not registered")
	ErrNotDeregisterable         = errors.New("verifierregistry: verifier has open assignments")
)

type registryState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
	KVGetList(key []byte, out interface{}) error
	Reserve(addr crypto.Address, amount *uint256.Int) error
	Unreserve(addr crypto.Address, amount *uint256.Int) error
}

var verifierIndexKey = []byte("verifier/registry/index")

func reserveKey(addr crypto.Address) []byte {
	buf := make([]byte, 0, len("verifier/registry/")+20)
	buf = append(buf, "verifier/registry/"...)
	buf = append(buf, addr.Bytes()...)
	return buf
}

func assignmentsKey(addr crypto.Address) []byte {
	buf := make([]byte, 0, len("verifier/assignments/")+20)
	buf = append(buf, "verifier/assignments/"...)
	buf = append(buf, addr.Bytes()...)
	return buf
}

// Entry describes a registered verifier's currently reserved deposit.
type Entry struct {
	Verifier crypto.Address
	Deposit  *uint256.Int
}

// Registry persists verifier registration deposits and their assignment
// queues.
type Registry struct {
	state          registryState
	emitter        events.Emitter
	maxAssignments int
}

// NewRegistry constructs a verifier registry backed by the provided state
// accessor, bounding each verifier's assignment queue to maxAssignments.
func NewRegistry(state registryState, maxAssignments int) *Registry {
	return &Registry{state: state, emitter: events.NoopEmitter{}, maxAssignments: maxAssignments}
}

// SetEmitter configures the event emitter used by the registry.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

func (r *Registry) emit(event events.Event) {
	if r == nil || r.emitter == nil {
		return
	}
	r.emitter.Emit(event)
}

func (r *Registry) loadIndex() ([][]byte, error) {
	var index [][]byte
	if err := r.state.KVGetList(verifierIndexKey, &index); err != nil {
		return nil, err
	}
	return index, nil
}

func (r *Registry) saveIndex(index [][]byte) error {
	sort.Slice(index, func(i, j int) bool { return bytes.Compare(index[i], index[j]) < 0 })
	return r.state.KVPut(verifierIndexKey, index)
}

func (r *Registry) indexInsert(addr crypto.Address) error {
	index, err := r.loadIndex()
	if err != nil {
		return err
	}
	b := addr.Bytes()
	for _, existing := range index {
		if bytes.Equal(existing, b) {
			return nil
		}
	}
	index = append(index, b)
	return r.saveIndex(index)
}

func (r *Registry) indexRemove(addr crypto.Address) error {
	index, err := r.loadIndex()
	if err != nil {
		return err
	}
	b := addr.Bytes()
	out := index[:0]
	for _, existing := range index {
		if !bytes.Equal(existing, b) {
			out = append(out, existing)
		}
	}
	return r.saveIndex(out)
}

// Reserved returns the deposit currently reserved for addr, and whether the
// account is registered.
func (r *Registry) Reserved(addr crypto.Address) (*uint256.Int, bool, error) {
	var stored [32]byte
	ok, err := r.state.KVGet(reserveKey(addr), &stored)
	if err != nil || !ok {
		return uint256.NewInt(0), ok, err
	}
	return new(uint256.Int).SetBytes32(stored[:]), true, nil
}

// Register reserves deposit against caller's free balance and adds caller to
// the committee pool.
func (r *Registry) Register(caller crypto.Address, deposit *uint256.Int) error {
	_, registered, err := r.Reserved(caller)
	if err != nil {
		return err
	}
	if registered {
		return ErrVerifierAlreadyRegistered
	}
	if deposit == nil {
		deposit = uint256.NewInt(0)
	}
	if err := r.state.Reserve(caller, deposit); err != nil {
		return ErrInsufficientFunds
	}
	stored := deposit.Bytes32()
	if err := r.state.KVPut(reserveKey(caller), stored); err != nil {
		return err
	}
	if err := r.indexInsert(caller); err != nil {
		return err
	}
	r.emit(events.VerifierRegistered{Verifier: caller, Deposit: deposit})
	return nil
}

// Deregister releases a verifier's reservation and removes it from the pool.
// Fails ErrNotDeregisterable if the verifier has open assignments.
func (r *Registry) Deregister(caller crypto.Address) error {
	deposit, registered, err := r.Reserved(caller)
	if err != nil {
		return err
	}
	if !registered {
		return ErrVerifierNotRegistered
	}
	assignments, err := r.Assignments(caller)
	if err != nil {
		return err
	}
	if len(assignments) > 0 {
		return ErrNotDeregisterable
	}
	if err := r.state.Unreserve(caller, deposit); err != nil {
		return err
	}
	if err := r.state.KVDelete(reserveKey(caller)); err != nil {
		return err
	}
	if err := r.state.KVDelete(assignmentsKey(caller)); err != nil {
		return err
	}
	r.emit(events.VerifierDeregistered{Verifier: caller})
	return nil
}

// Iter returns the registered verifier pool, ordered deterministically by
// address bytes (the maintained VerifierIndex), each paired with its
// currently reserved deposit.
func (r *Registry) Iter() ([]Entry, error) {
	index, err := r.loadIndex()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(index))
	for _, raw := range index {
		addr, err := crypto.NewAddress(crypto.GigPrefix, raw)
		if err != nil {
			return nil, err
		}
		deposit, registered, err := r.Reserved(addr)
		if err != nil {
			return nil, err
		}
		if !registered {
			continue
		}
		entries = append(entries, Entry{Verifier: addr, Deposit: deposit})
	}
	return entries, nil
}

// Pool returns the registered verifier pool as a plain address slice,
// ordered deterministically by the maintained VerifierIndex. Used by
// submission intake, which only needs identities to seed committee
// selection, not reserved balances.
func (r *Registry) Pool() ([]crypto.Address, error) {
	entries, err := r.Iter()
	if err != nil {
		return nil, err
	}
	out := make([]crypto.Address, len(entries))
	for i, entry := range entries {
		out[i] = entry.Verifier
	}
	return out, nil
}

// Assign appends hash to verifier's assignment queue. Internal operation;
// callers outside submission intake must not invoke this directly.
func (r *Registry) Assign(verifier crypto.Address, hash types.Hash) error {
	assignments, err := r.Assignments(verifier)
	if err != nil {
		return err
	}
	if r.maxAssignments > 0 && len(assignments) >= r.maxAssignments {
		return ErrAssignmentsFull
	}
	assignments = append(assignments, hash)
	if err := r.state.KVPut(assignmentsKey(verifier), assignments); err != nil {
		return err
	}
	r.emit(events.SubmissionAssigned{Hash: hash, Verifier: verifier})
	return nil
}

// Assignments returns verifier's open assignment queue.
func (r *Registry) Assignments(verifier crypto.Address) ([]types.Hash, error) {
	var assignments []types.Hash
	if err := r.state.KVGetList(assignmentsKey(verifier), &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// IsAssigned reports whether hash is in verifier's open assignment queue.
func (r *Registry) IsAssigned(verifier crypto.Address, hash types.Hash) (bool, error) {
	assignments, err := r.Assignments(verifier)
	if err != nil {
		return false, err
	}
	for _, h := range assignments {
		if h == hash {
			return true, nil
		}
	}
	return false, nil
}

// ClearAssignment removes hash from verifier's assignment queue once the
// claim has been processed or expired. Supplemental bookkeeping so
// Assignments does not grow unbounded across the claim lifecycle.
func (r *Registry) ClearAssignment(verifier crypto.Address, hash types.Hash) error {
	assignments, err := r.Assignments(verifier)
	if err != nil {
		return err
	}
	out := assignments[:0]
	for _, h := range assignments {
		if h != hash {
			out = append(out, h)
		}
	}
	return r.state.KVPut(assignmentsKey(verifier), out)
}

// PendingAssignments lists every verifier's currently open assignments,
// keyed by verifier; verifiers with an empty queue are omitted. The result
// is a map, so iterating it has no defined order. Read-side helper; carries
// no mutating semantics.
func (r *Registry) PendingAssignments() (map[crypto.Address][]types.Hash, error) {
	entries, err := r.Iter()
	if err != nil {
		return nil, err
	}
	out := make(map[crypto.Address][]types.Hash, len(entries))
	for _, entry := range entries {
		assignments, err := r.Assignments(entry.Verifier)
		if err != nil {
			return nil, err
		}
		if len(assignments) > 0 {
			out[entry.Verifier] = assignments
		}
	}
	return out, nil
}
