package state

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"gigchain/crypto"
	"gigchain/storage"
	"gigchain/storage/trie"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	db := storage.NewMemDB()
	tr, err := trie.NewTrie(db, nil)
	require.NoError(t, err)
	return NewManager(tr)
}

func TestKVPutGetDelete(t *testing.T) {
	mgr := newTestManager(t)

	type payload struct {
		Foo string
		Bar uint64
	}

	ok, err := mgr.KVGet([]byte("missing"), nil)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, mgr.KVPut([]byte("k"), payload{Foo: "hi", Bar: 42}))

	var got payload
	ok, err = mgr.KVGet([]byte("k"), &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, payload{Foo: "hi", Bar: 42}, got)

	require.NoError(t, mgr.KVDelete([]byte("k")))
	ok, err = mgr.KVGet([]byte("k"), &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKVGetListDefaultsEmpty(t *testing.T) {
	mgr := newTestManager(t)

	var out []string
	require.NoError(t, mgr.KVGetList([]byte("missing-list"), &out))
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestBalancePrimitives(t *testing.T) {
	mgr := newTestManager(t)
	addr := crypto.MustNewAddress(crypto.GigPrefix, make([]byte, 20))

	bal, err := mgr.FreeBalance(addr)
	require.NoError(t, err)
	require.True(t, bal.IsZero())

	require.NoError(t, mgr.AddFreeBalance(addr, uint256.NewInt(100)))
	bal, err = mgr.FreeBalance(addr)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(100), bal)

	require.ErrorIs(t, mgr.SubFreeBalance(addr, uint256.NewInt(200)), ErrInsufficientBalance)

	require.NoError(t, mgr.Reserve(addr, uint256.NewInt(40)))
	free, err := mgr.FreeBalance(addr)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(60), free)
	reserved, err := mgr.ReservedBalance(addr)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(40), reserved)

	require.NoError(t, mgr.Unreserve(addr, uint256.NewInt(40)))
	free, err = mgr.FreeBalance(addr)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(100), free)
}

func TestTransferMovesFunds(t *testing.T) {
	mgr := newTestManager(t)
	alice := crypto.MustNewAddress(crypto.GigPrefix, append(make([]byte, 19), 0x01))
	bob := crypto.MustNewAddress(crypto.GigPrefix, append(make([]byte, 19), 0x02))

	require.NoError(t, mgr.AddFreeBalance(alice, uint256.NewInt(500)))
	require.NoError(t, mgr.Transfer(alice, bob, uint256.NewInt(200)))

	aliceBal, err := mgr.FreeBalance(alice)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(300), aliceBal)

	bobBal, err := mgr.FreeBalance(bob)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(200), bobBal)

	require.ErrorIs(t, mgr.Transfer(alice, bob, uint256.NewInt(1000)), ErrInsufficientBalance)
}

func TestStateVersionRoundTrip(t *testing.T) {
	mgr := newTestManager(t)

	_, ok, err := mgr.StateVersion()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, mgr.SetStateVersion(StateVersion))
	version, ok, err := mgr.StateVersion()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StateVersion, version)
}
