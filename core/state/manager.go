// Package state implements the chain's single source of truth: a trie-backed
// key/value store plus the typed accessors the native modules use to read and
// write their ledgers. Every mutation goes through the underlying trie so
// that a block's state root is a pure function of its applied extrinsics.
package state

import (
	"fmt"
	"reflect"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"gigchain/crypto"
	"gigchain/storage/trie"
)

// Manager provides typed read/write access to chain state backed by a trie.
type Manager struct {
	trie *trie.Trie
}

// NewManager creates a state manager operating on the provided trie.
func NewManager(tr *trie.Trie) *Manager {
	return &Manager{trie: tr}
}

// Trie exposes the underlying trie for snapshotting and commit/discard by
// the chain orchestrator.
func (m *Manager) Trie() *trie.Trie {
	return m.trie
}

func kvKey(key []byte) []byte {
	buf := make([]byte, len(kvPrefix)+len(key))
	copy(buf, kvPrefix)
	copy(buf[len(kvPrefix):], key)
	return ethcrypto.Keccak256(buf)
}

// KVPut RLP-encodes value and stores it under key, keccak256-hashed to match
// the trie's fixed-width key requirement.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("state: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.trie.Update(kvKey(key), encoded)
}

// KVDelete removes the value stored under key.
func (m *Manager) KVDelete(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("state: key must not be empty")
	}
	return m.trie.Update(kvKey(key), nil)
}

// KVGet decodes the value stored under key into out. The boolean result
// reports whether the key existed.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("state: key must not be empty")
	}
	data, err := m.trie.Get(kvKey(key))
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVGetList decodes an RLP-encoded slice stored under key into out, which
// must be a pointer to a slice. Missing keys yield an empty (non-nil) slice.
func (m *Manager) KVGetList(key []byte, out interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("state: key must not be empty")
	}
	hashed := kvKey(key)
	data, err := m.trie.Get(hashed)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		val := reflect.ValueOf(out)
		if val.Kind() != reflect.Ptr || val.IsNil() {
			return fmt.Errorf("state: destination must be a non-nil pointer")
		}
		elem := val.Elem()
		if elem.Kind() != reflect.Slice {
			return fmt.Errorf("state: destination must point to a slice")
		}
		elem.Set(reflect.MakeSlice(elem.Type(), 0, 0))
		return nil
	}
	return rlp.DecodeBytes(data, out)
}

func balanceKey(addr crypto.Address) []byte {
	return ethcrypto.Keccak256(append(append([]byte(nil), balancePrefix...), addr.Bytes()...))
}

func reservedKey(addr crypto.Address) []byte {
	return ethcrypto.Keccak256(append(append([]byte(nil), reservedPrefix...), addr.Bytes()...))
}

func (m *Manager) loadUint256(key []byte) (*uint256.Int, error) {
	data, err := m.trie.Get(key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return uint256.NewInt(0), nil
	}
	var stored [32]byte
	if err := rlp.DecodeBytes(data, &stored); err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes32(stored[:]), nil
}

func (m *Manager) writeUint256(key []byte, amount *uint256.Int) error {
	if amount == nil {
		amount = uint256.NewInt(0)
	}
	stored := amount.Bytes32()
	encoded, err := rlp.EncodeToBytes(stored)
	if err != nil {
		return err
	}
	return m.trie.Update(key, encoded)
}

// FreeBalance returns the spendable balance held by addr.
func (m *Manager) FreeBalance(addr crypto.Address) (*uint256.Int, error) {
	return m.loadUint256(balanceKey(addr))
}

// ReservedBalance returns the balance addr has locked (e.g. a registry
// deposit) and which cannot be spent until released.
func (m *Manager) ReservedBalance(addr crypto.Address) (*uint256.Int, error) {
	return m.loadUint256(reservedKey(addr))
}

// SetFreeBalance overwrites addr's spendable balance. Exposed for genesis
// seeding and tests; ordinary transfers should use AddFreeBalance /
// SubFreeBalance.
func (m *Manager) SetFreeBalance(addr crypto.Address, amount *uint256.Int) error {
	return m.writeUint256(balanceKey(addr), amount)
}

// AddFreeBalance credits addr's spendable balance by amount.
func (m *Manager) AddFreeBalance(addr crypto.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	bal, err := m.FreeBalance(addr)
	if err != nil {
		return err
	}
	sum, overflow := new(uint256.Int).AddOverflow(bal, amount)
	if overflow {
		return fmt.Errorf("state: balance overflow for %s", addr)
	}
	return m.writeUint256(balanceKey(addr), sum)
}

// SubFreeBalance debits addr's spendable balance by amount, returning
// ErrInsufficientBalance if the account does not hold enough.
func (m *Manager) SubFreeBalance(addr crypto.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	bal, err := m.FreeBalance(addr)
	if err != nil {
		return err
	}
	if bal.Lt(amount) {
		return ErrInsufficientBalance
	}
	return m.writeUint256(balanceKey(addr), new(uint256.Int).Sub(bal, amount))
}

// Reserve moves amount from addr's free balance into its reserved balance.
func (m *Manager) Reserve(addr crypto.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	if err := m.SubFreeBalance(addr, amount); err != nil {
		return err
	}
	reserved, err := m.ReservedBalance(addr)
	if err != nil {
		return err
	}
	sum, overflow := new(uint256.Int).AddOverflow(reserved, amount)
	if overflow {
		return fmt.Errorf("state: reserved balance overflow for %s", addr)
	}
	return m.writeUint256(reservedKey(addr), sum)
}

// Unreserve moves amount from addr's reserved balance back into its free
// balance, returning ErrInsufficientBalance if less than amount is reserved.
func (m *Manager) Unreserve(addr crypto.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	reserved, err := m.ReservedBalance(addr)
	if err != nil {
		return err
	}
	if reserved.Lt(amount) {
		return ErrInsufficientBalance
	}
	if err := m.writeUint256(reservedKey(addr), new(uint256.Int).Sub(reserved, amount)); err != nil {
		return err
	}
	return m.AddFreeBalance(addr, amount)
}

// Transfer atomically moves amount from sender's free balance to
// recipient's. Callers that need all-or-nothing semantics across several
// transfers should operate on a Trie.Copy() and Commit/Discard the whole
// batch; a single Transfer call is itself atomic since SubFreeBalance fails
// before any state is written.
func (m *Manager) Transfer(sender, recipient crypto.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	if err := m.SubFreeBalance(sender, amount); err != nil {
		return err
	}
	return m.AddFreeBalance(recipient, amount)
}
