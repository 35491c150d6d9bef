package verifierregistry

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"gigchain/core/state"
	"gigchain/core/types"
	"gigchain/crypto"
	"gigchain/storage"
	"gigchain/storage/trie"
)

func newTestRegistry(t *testing.T, maxAssignments int) (*Registry, *state.Manager) {
	t.Helper()
	db := storage.NewMemDB()
	tr, err := trie.NewTrie(db, nil)
	require.NoError(t, err)
	mgr := state.NewManager(tr)
	return NewRegistry(mgr, maxAssignments), mgr
}

func addrWithLastByte(b byte) crypto.Address {
	raw := make([]byte, 20)
	raw[19] = b
	return crypto.MustNewAddress(crypto.GigPrefix, raw)
}

func TestRegisterAndIterOrdering(t *testing.T) {
	r, mgr := newTestRegistry(t, 4)
	v3, v1, v2 := addrWithLastByte(3), addrWithLastByte(1), addrWithLastByte(2)

	for _, v := range []crypto.Address{v3, v1, v2} {
		require.NoError(t, mgr.AddFreeBalance(v, uint256.NewInt(10)))
		require.NoError(t, r.Register(v, uint256.NewInt(10)))
	}

	require.ErrorIs(t, r.Register(v1, uint256.NewInt(1)), ErrVerifierAlreadyRegistered)

	entries, err := r.Iter()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, v1, entries[0].Verifier)
	require.Equal(t, v2, entries[1].Verifier)
	require.Equal(t, v3, entries[2].Verifier)
}

func TestAssignBoundsAndIsAssigned(t *testing.T) {
	r, mgr := newTestRegistry(t, 2)
	v := addrWithLastByte(1)
	require.NoError(t, mgr.AddFreeBalance(v, uint256.NewInt(10)))
	require.NoError(t, r.Register(v, uint256.NewInt(10)))

	h1 := types.Hash{0x01}
	h2 := types.Hash{0x02}
	h3 := types.Hash{0x03}

	require.NoError(t, r.Assign(v, h1))
	require.NoError(t, r.Assign(v, h2))
	require.ErrorIs(t, r.Assign(v, h3), ErrAssignmentsFull)

	assigned, err := r.IsAssigned(v, h1)
	require.NoError(t, err)
	require.True(t, assigned)

	require.NoError(t, r.ClearAssignment(v, h1))
	assigned, err = r.IsAssigned(v, h1)
	require.NoError(t, err)
	require.False(t, assigned)
	require.NoError(t, r.Assign(v, h3))
}

func TestDeregisterRequiresEmptyQueue(t *testing.T) {
	r, mgr := newTestRegistry(t, 4)
	v := addrWithLastByte(1)
	require.NoError(t, mgr.AddFreeBalance(v, uint256.NewInt(10)))
	require.NoError(t, r.Register(v, uint256.NewInt(10)))
	require.NoError(t, r.Assign(v, types.Hash{0x01}))

	require.ErrorIs(t, r.Deregister(v), ErrNotDeregisterable)

	require.NoError(t, r.ClearAssignment(v, types.Hash{0x01}))
	require.NoError(t, r.Deregister(v))

	_, registered, err := r.Reserved(v)
	require.NoError(t, err)
	require.False(t, registered)
}
