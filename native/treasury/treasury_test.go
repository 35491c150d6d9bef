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

func newTestTreasury(t *testing.T) (*Treasury, *state.Manager) {
	t.Helper()
	db := storage.NewMemDB()
	tr, err := trie.NewTrie(db, nil)
	require.NoError(t, err)
	mgr := state.NewManager(tr)
	return New(mgr, mgr), mgr
}

func TestAccountIDIsStableAndModulePrefixed(t *testing.T) {
	tr1, _ := newTestTreasury(t)
	tr2, _ := newTestTreasury(t)
	require.Equal(t, tr1.AccountID(), tr2.AccountID())
	require.Equal(t, crypto.ModulePrefix, tr1.AccountID().Prefix())
}

func TestDepositAndTransfer(t *testing.T) {
	tr, mgr := newTestTreasury(t)
	depositor := crypto.MustNewAddress(crypto.GigPrefix, make([]byte, 20))
	require.NoError(t, mgr.AddFreeBalance(depositor, uint256.NewInt(500)))

	require.NoError(t, tr.Deposit(depositor, uint256.NewInt(200)))

	balance, err := mgr.FreeBalance(tr.AccountID())
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(200), balance)

	recipient := crypto.MustNewAddress(crypto.GigPrefix, append(make([]byte, 19), 0x02))
	require.NoError(t, tr.Transfer(recipient, uint256.NewInt(150)))

	recipientBalance, err := mgr.FreeBalance(recipient)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(150), recipientBalance)

	require.ErrorIs(t, tr.Transfer(recipient, uint256.NewInt(1000)), ErrInsufficientFunds)
}
