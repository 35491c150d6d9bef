// Package treasury holds the chain's protocol-owned reward pool: a
// module-derived account that accepts deposits and pays out only under
// root authority, with a mirrored balance ledger for fast invariant checks.
package treasury

import (
	"errors"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"gigchain/core/events"
	"gigchain/crypto"
)

var ErrInsufficientFunds = errors.New("treasury: insufficient funds")

const moduleSeed = "module/treasury/account"

// balanceLedger is the narrow view of state.Manager the treasury depends on
// for moving funds.
type balanceLedger interface {
	FreeBalance(addr crypto.Address) (*uint256.Int, error)
	Transfer(sender, recipient crypto.Address, amount *uint256.Int) error
}

var treasuryBalanceKey = []byte("treasury/mirrored-balance")

type mirrorState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// Treasury implements the protocol-owned reward pool account.
type Treasury struct {
	ledger  balanceLedger
	mirror  mirrorState
	emitter events.Emitter
	account crypto.Address
}

// New constructs the treasury, deriving its account deterministically from a
// fixed tag so every replica and client agree on the address.
func New(ledger balanceLedger, mirror mirrorState) *Treasury {
	digest := ethcrypto.Keccak256([]byte(moduleSeed))
	account := crypto.MustNewAddress(crypto.ModulePrefix, digest[len(digest)-20:])
	return &Treasury{ledger: ledger, mirror: mirror, emitter: events.NoopEmitter{}, account: account}
}

// SetEmitter configures the event emitter used by the treasury.
func (t *Treasury) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		t.emitter = events.NoopEmitter{}
		return
	}
	t.emitter = emitter
}

func (t *Treasury) emit(event events.Event) {
	if t == nil || t.emitter == nil {
		return
	}
	t.emitter.Emit(event)
}

// AccountID returns the treasury's module-derived account.
func (t *Treasury) AccountID() crypto.Address {
	return t.account
}

func (t *Treasury) mirroredBalance() (*uint256.Int, error) {
	var stored [32]byte
	ok, err := t.mirror.KVGet(treasuryBalanceKey, &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return uint256.NewInt(0), nil
	}
	return new(uint256.Int).SetBytes32(stored[:]), nil
}

func (t *Treasury) setMirroredBalance(amount *uint256.Int) error {
	stored := amount.Bytes32()
	return t.mirror.KVPut(treasuryBalanceKey, stored)
}

// reconcile syncs the mirrored balance with the ledger's observed free
// balance of the treasury account, per the invariant that the two never
// drift outside a pending extrinsic.
func (t *Treasury) reconcile() (*uint256.Int, error) {
	observed, err := t.ledger.FreeBalance(t.account)
	if err != nil {
		return nil, err
	}
	if err := t.setMirroredBalance(observed); err != nil {
		return nil, err
	}
	return observed, nil
}

// Deposit moves amount from depositor to the treasury account and increments
// the mirrored balance.
func (t *Treasury) Deposit(depositor crypto.Address, amount *uint256.Int) error {
	if err := t.ledger.Transfer(depositor, t.account, amount); err != nil {
		return err
	}
	if _, err := t.reconcile(); err != nil {
		return err
	}
	t.emit(events.FundsDeposited{From: depositor, Amount: amount})
	return nil
}

// Transfer moves amount from the treasury to recipient (root-only). The
// mirrored balance is reconciled against the ledger before acting so a
// caller cannot exploit a stale mirror.
func (t *Treasury) Transfer(recipient crypto.Address, amount *uint256.Int) error {
	balance, err := t.reconcile()
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return ErrInsufficientFunds
	}
	if err := t.ledger.Transfer(t.account, recipient, amount); err != nil {
		return err
	}
	if _, err := t.reconcile(); err != nil {
		return err
	}
	t.emit(events.FundsTransferred{Recipient: recipient, Amount: amount})
	return nil
}
