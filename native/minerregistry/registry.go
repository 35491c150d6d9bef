// Package minerregistry tracks miner deposits reserved against the native
// ledger. Submission intake does not consult it: submitting a hash does not
// require the miner to be registered here.
package minerregistry

import (
	"errors"

	"github.com/holiman/uint256"

	"gigchain/core/events"
	"gigchain/crypto"
)

var (
	ErrMinerAlreadyRegistered = errors.New("minerregistry: miner already registered")
	ErrInsufficientFunds      = errors.New("minerregistry: insufficient funds for deposit")
)

type registryState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
	Reserve(addr crypto.Address, amount *uint256.Int) error
	Unreserve(addr crypto.Address, amount *uint256.Int) error
}

func reserveKey(addr crypto.Address) []byte {
	buf := make([]byte, 0, len("miner/registry/")+20)
	buf = append(buf, "miner/registry/"...)
	buf = append(buf, addr.Bytes()...)
	return buf
}

// Registry persists miner registration deposits.
type Registry struct {
	state   registryState
	emitter events.Emitter
}

// NewRegistry constructs a miner registry backed by the provided state
// accessor.
func NewRegistry(state registryState) *Registry {
	return &Registry{state: state, emitter: events.NoopEmitter{}}
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

// Reserved returns the deposit currently reserved for addr, and whether the
// account is registered at all.
func (r *Registry) Reserved(addr crypto.Address) (*uint256.Int, bool, error) {
	var stored [32]byte
	ok, err := r.state.KVGet(reserveKey(addr), &stored)
	if err != nil || !ok {
		return uint256.NewInt(0), ok, err
	}
	return new(uint256.Int).SetBytes32(stored[:]), true, nil
}

// Register reserves deposit against caller's free balance and records the
// miner as active. Fails ErrMinerAlreadyRegistered if caller is already
// registered, ErrInsufficientFunds if the reservation cannot be made.
func (r *Registry) Register(caller crypto.Address, deposit *uint256.Int) error {
	_, registered, err := r.Reserved(caller)
	if err != nil {
		return err
	}
	if registered {
		return ErrMinerAlreadyRegistered
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
	r.emit(events.MinerRegistered{Miner: caller, Deposit: deposit})
	return nil
}

// Deregister releases a registered miner's reservation and removes it from
// the registry. Supplemental lifecycle operation (symmetric with
// verifierregistry.Deregister); not named in spec.md.
func (r *Registry) Deregister(caller crypto.Address) error {
	deposit, registered, err := r.Reserved(caller)
	if err != nil {
		return err
	}
	if !registered {
		return nil
	}
	if err := r.state.Unreserve(caller, deposit); err != nil {
		return err
	}
	return r.state.KVDelete(reserveKey(caller))
}
