package submission

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"gigchain/core/state"
	"gigchain/core/types"
	"gigchain/crypto"
	"gigchain/native/verifierregistry"
	"gigchain/native/whitelist"
	"gigchain/storage"
	"gigchain/storage/trie"
)

func addrWithLastByte(b byte) crypto.Address {
	raw := make([]byte, 20)
	raw[19] = b
	return crypto.MustNewAddress(crypto.GigPrefix, raw)
}

func newTestIntake(t *testing.T, verifierCount int) (*Intake, *whitelist.Registry, *verifierregistry.Registry) {
	t.Helper()
	db := storage.NewMemDB()
	tr, err := trie.NewTrie(db, nil)
	require.NoError(t, err)
	mgr := state.NewManager(tr)

	wl := whitelist.NewRegistry(mgr, 256)
	vr := verifierregistry.NewRegistry(mgr, 10)
	for i := 0; i < verifierCount; i++ {
		v := addrWithLastByte(byte(i + 1))
		require.NoError(t, mgr.AddFreeBalance(v, uint256.NewInt(10)))
		require.NoError(t, vr.Register(v, uint256.NewInt(10)))
	}
	return NewIntake(mgr, wl, vr, 256), wl, vr
}

func TestSubmitHashRejectsUnwhitelistedURL(t *testing.T) {
	intake, _, _ := newTestIntake(t, 3)
	miner := addrWithLastByte(0xaa)
	err := intake.SubmitHash(miner, []byte("https://example.com"), types.Hash{0x01})
	require.ErrorIs(t, err, ErrNotWhitelisted)
}

func TestSubmitHashRequiresMinimumVerifiers(t *testing.T) {
	intake, wl, _ := newTestIntake(t, 2)
	url := []byte("https://example.com")
	require.NoError(t, wl.Add(url))
	miner := addrWithLastByte(0xaa)
	err := intake.SubmitHash(miner, url, types.Hash{0x01})
	require.ErrorIs(t, err, ErrInsufficientVerifiers)
}

func TestSubmitHashPersistsClaimAndAssignsCommittee(t *testing.T) {
	intake, wl, vr := newTestIntake(t, 5)
	url := []byte("https://example.com")
	require.NoError(t, wl.Add(url))
	miner := addrWithLastByte(0xaa)
	hash := types.Hash{0x01, 0x02, 0x03}

	require.NoError(t, intake.SubmitHash(miner, url, hash))

	record, ok, err := intake.Submission(hash)
	require.NoError(t, err)
	require.True(t, ok)
	gotMiner, err := record.Miner()
	require.NoError(t, err)
	require.Equal(t, miner, gotMiner)

	require.ErrorIs(t, intake.SubmitHash(miner, url, hash), ErrDuplicateSubmission)

	assigned, err := vr.PendingAssignments()
	require.NoError(t, err)
	total := 0
	for _, hashes := range assigned {
		total += len(hashes)
	}
	require.Equal(t, 5, total)
}
