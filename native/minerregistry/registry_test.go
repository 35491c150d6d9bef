package minerregistry

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"gigchain/core/state"
	"gigchain/crypto"
	"gigchain/storage"
	"gigchain/storage/trie"
)

func newTestRegistry(t *testing.T) (*Registry, *state.Manager) {
	t.Helper()
	db := storage.NewMemDB()
	tr, err := trie.NewTrie(db, nil)
	require.NoError(t, err)
	mgr := state.NewManager(tr)
	return NewRegistry(mgr), mgr
}

func TestRegisterReservesDeposit(t *testing.T) {
	r, mgr := newTestRegistry(t)
	miner := crypto.MustNewAddress(crypto.GigPrefix, make([]byte, 20))

	require.ErrorIs(t, r.Register(miner, uint256.NewInt(100)), ErrInsufficientFunds)

	require.NoError(t, mgr.AddFreeBalance(miner, uint256.NewInt(100)))
	require.NoError(t, r.Register(miner, uint256.NewInt(100)))

	reserved, registered, err := r.Reserved(miner)
	require.NoError(t, err)
	require.True(t, registered)
	require.Equal(t, uint256.NewInt(100), reserved)

	free, err := mgr.FreeBalance(miner)
	require.NoError(t, err)
	require.True(t, free.IsZero())

	require.ErrorIs(t, r.Register(miner, uint256.NewInt(1)), ErrMinerAlreadyRegistered)
}

func TestDeregisterReleasesDeposit(t *testing.T) {
	r, mgr := newTestRegistry(t)
	miner := crypto.MustNewAddress(crypto.GigPrefix, make([]byte, 20))
	require.NoError(t, mgr.AddFreeBalance(miner, uint256.NewInt(50)))
	require.NoError(t, r.Register(miner, uint256.NewInt(50)))

	require.NoError(t, r.Deregister(miner))
	_, registered, err := r.Reserved(miner)
	require.NoError(t, err)
	require.False(t, registered)

	free, err := mgr.FreeBalance(miner)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(50), free)
}
