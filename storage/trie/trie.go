// Package trie wraps a flat key-value Database with a deterministic content
// hash, so every replica that applies the same sequence of puts/deletes
// converges on the same root. Keys are iterated in sorted order; the root is
// the keccak256 of the concatenated, length-prefixed (key, value) pairs —
// the "sorted-key tree or equivalent" construction callers need for
// chain-state hashing equivalence without a full Merkle-Patricia trie.
//
// Get/Update accept already-namespaced keys, matching the historical
// convention of the project this package is adapted from.
package trie

import (
	"encoding/binary"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"gigchain/storage"
)

// Trie is not safe for concurrent use.
type Trie struct {
	store storage.Database

	mu      sync.RWMutex
	overlay map[string][]byte // pending writes since the last Commit
	deleted map[string]struct{}
	root    common.Hash
}

// NewTrie opens a trie view over store. root is advisory: the store is the
// source of truth, and Hash always reflects its current contents plus any
// uncommitted overlay writes.
func NewTrie(store storage.Database, root []byte) (*Trie, error) {
	t := &Trie{
		store:   store,
		overlay: make(map[string][]byte),
		deleted: make(map[string]struct{}),
	}
	if len(root) > 0 {
		copy(t.root[:], root)
	}
	return t, nil
}

// Get retrieves a value, preferring the uncommitted overlay.
func (t *Trie) Get(key []byte) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	k := string(key)
	if _, gone := t.deleted[k]; gone {
		return nil, nil
	}
	if v, ok := t.overlay[k]; ok {
		return append([]byte(nil), v...), nil
	}
	v, err := t.store.Get(key)
	if err != nil {
		return nil, nil //nolint:nilerr // absent key is a valid "not found" outcome here
	}
	return v, nil
}

// Update stages a key for insertion, or deletion when value is empty.
func (t *Trie) Update(key, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := string(key)
	if len(value) == 0 {
		delete(t.overlay, k)
		t.deleted[k] = struct{}{}
		return nil
	}
	delete(t.deleted, k)
	cp := make([]byte, len(value))
	copy(cp, value)
	t.overlay[k] = cp
	return nil
}

// Hash computes the deterministic content root over the committed store plus
// the pending overlay, without mutating either.
func (t *Trie) Hash() common.Hash {
	t.mu.RLock()
	merged := make(map[string][]byte)
	_ = t.store.Iterate(func(key, value []byte) error {
		merged[string(key)] = append([]byte(nil), value...)
		return nil
	})
	for k := range t.deleted {
		delete(merged, k)
	}
	for k, v := range t.overlay {
		merged[k] = v
	}
	t.mu.RUnlock()

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	hasher := ethcrypto.NewKeccakState()
	var lenBuf [8]byte
	for _, k := range keys {
		v := merged[k]
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(k)))
		hasher.Write(lenBuf[:])
		hasher.Write([]byte(k))
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(v)))
		hasher.Write(lenBuf[:])
		hasher.Write(v)
	}
	var out common.Hash
	hasher.Read(out[:])
	return out
}

// Root returns the root as of the last Commit (or the constructor root if
// nothing has been committed yet).
func (t *Trie) Root() common.Hash {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

// Commit flushes the overlay to the backing store and returns the new root.
func (t *Trie) Commit() (common.Hash, error) {
	t.mu.Lock()
	for k := range t.deleted {
		if err := t.store.Delete([]byte(k)); err != nil {
			t.mu.Unlock()
			return common.Hash{}, err
		}
	}
	for k, v := range t.overlay {
		if err := t.store.Put([]byte(k), v); err != nil {
			t.mu.Unlock()
			return common.Hash{}, err
		}
	}
	t.overlay = make(map[string][]byte)
	t.deleted = make(map[string]struct{})
	t.mu.Unlock()

	root := t.Hash()
	t.mu.Lock()
	t.root = root
	t.mu.Unlock()
	return root, nil
}

// Discard drops all uncommitted writes, rolling the view back to the last
// Commit. Combined with Copy, this gives extrinsic-level atomicity: take a
// Copy before a mutating operation, and Discard it on error.
func (t *Trie) Discard() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.overlay = make(map[string][]byte)
	t.deleted = make(map[string]struct{})
}

// Copy returns an independent view sharing the same backing store but with
// its own overlay, so speculative writes in the copy never affect the
// original unless the caller commits them.
func (t *Trie) Copy() *Trie {
	t.mu.RLock()
	defer t.mu.RUnlock()
	clone := &Trie{
		store:   t.store,
		overlay: make(map[string][]byte, len(t.overlay)),
		deleted: make(map[string]struct{}, len(t.deleted)),
		root:    t.root,
	}
	for k, v := range t.overlay {
		clone.overlay[k] = append([]byte(nil), v...)
	}
	for k := range t.deleted {
		clone.deleted[k] = struct{}{}
	}
	return clone
}

// Store exposes the backing storage.
func (t *Trie) Store() storage.Database {
	return t.store
}
