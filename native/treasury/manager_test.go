package treasury

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"gigchain/core/state"
	"gigchain/crypto"
	"gigchain/storage"
	"gigchain/storage/trie"
)

func addrWithLastByte(b byte) crypto.Address {
	raw := make([]byte, 20)
	raw[19] = b
	return crypto.MustNewAddress(crypto.GigPrefix, raw)
}

func TestDistributeSplitsRewardWithFirstMemberRemainder(t *testing.T) {
	db := storage.NewMemDB()
	tr, err := trie.NewTrie(db, nil)
	require.NoError(t, err)
	mgr := state.NewManager(tr)
	treasuryAcct := New(mgr, mgr)

	dev := addrWithLastByte(0xde)
	require.NoError(t, mgr.AddFreeBalance(treasuryAcct.AccountID(), uint256.NewInt(1000)))

	rm, err := NewManager(treasuryAcct, dev, 80, 60, 40)
	require.NoError(t, err)

	miner := addrWithLastByte(0x01)
	v1, v2, v3 := addrWithLastByte(0x11), addrWithLastByte(0x12), addrWithLastByte(0x13)
	committee := []crypto.Address{v1, v2, v3}

	require.NoError(t, rm.Distribute(miner, committee, uint256.NewInt(1000)))

	devBal, err := mgr.FreeBalance(dev)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(200), devBal)

	minerBal, err := mgr.FreeBalance(miner)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(480), minerBal)

	v1Bal, err := mgr.FreeBalance(v1)
	require.NoError(t, err)
	v2Bal, err := mgr.FreeBalance(v2)
	require.NoError(t, err)
	v3Bal, err := mgr.FreeBalance(v3)
	require.NoError(t, err)

	require.Equal(t, uint256.NewInt(108), v1Bal)
	require.Equal(t, uint256.NewInt(106), v2Bal)
	require.Equal(t, uint256.NewInt(106), v3Bal)

	treasuryBal, err := mgr.FreeBalance(treasuryAcct.AccountID())
	require.NoError(t, err)
	require.True(t, treasuryBal.IsZero())
}

func TestDistributeRequiresNonEmptyCommittee(t *testing.T) {
	db := storage.NewMemDB()
	tr, err := trie.NewTrie(db, nil)
	require.NoError(t, err)
	mgr := state.NewManager(tr)
	treasuryAcct := New(mgr, mgr)
	dev := addrWithLastByte(0xde)
	rm, err := NewManager(treasuryAcct, dev, 80, 60, 40)
	require.NoError(t, err)

	require.ErrorIs(t, rm.Distribute(addrWithLastByte(1), nil, uint256.NewInt(100)), ErrNoVerifiersAssigned)
}

func TestNewManagerRejectsBadSplit(t *testing.T) {
	_, err := NewManager(nil, crypto.Address{}, 80, 50, 40)
	require.Error(t, err)
}
