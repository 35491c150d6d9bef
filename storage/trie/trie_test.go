package trie

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"gigchain/storage"
)

func TestTrieCommitFlushPersistsData(t *testing.T) {
	dir := t.TempDir()

	db1, err := storage.NewLevelDB(dir)
	require.NoError(t, err)

	tr, err := NewTrie(db1, nil)
	require.NoError(t, err)

	key := crypto.Keccak256Hash([]byte("key"))
	value := []byte("value")

	require.NoError(t, tr.Update(key.Bytes(), value))
	root, err := tr.Commit()
	require.NoError(t, err)
	require.NotEqual(t, [32]byte{}, root)

	require.NoError(t, db1.Close())

	db2, err := storage.NewLevelDB(dir)
	require.NoError(t, err)
	defer db2.Close()

	restored, err := NewTrie(db2, root.Bytes())
	require.NoError(t, err)

	got, err := restored.Get(key.Bytes())
	require.NoError(t, err)
	require.Equal(t, value, got)
}

func TestTrieCopyIsolatesOverlay(t *testing.T) {
	db := storage.NewMemDB()
	tr, err := NewTrie(db, nil)
	require.NoError(t, err)

	require.NoError(t, tr.Update([]byte("a"), []byte("1")))
	_, err = tr.Commit()
	require.NoError(t, err)

	speculative := tr.Copy()
	require.NoError(t, speculative.Update([]byte("a"), []byte("2")))

	got, err := tr.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), got)

	speculative.Discard()
	got, err = speculative.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), got)
}
