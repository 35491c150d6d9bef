package submission

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeedFromHashIsZeroExtended(t *testing.T) {
	seed := seedFromHash([]byte("claim-hash"))
	for i := 16; i < 32; i++ {
		require.Zero(t, seed[i])
	}
}

func TestShuffleIsDeterministicForSameSeed(t *testing.T) {
	hash := []byte("a-claim-hash")
	pool := func() [][]byte {
		return [][]byte{{1}, {2}, {3}, {4}, {5}, {6}}
	}

	seed1 := seedFromHash(hash)
	p1 := pool()
	fisherYatesShuffle(p1, newSplitmix64(seed1))

	seed2 := seedFromHash(hash)
	p2 := pool()
	fisherYatesShuffle(p2, newSplitmix64(seed2))

	require.Equal(t, p1, p2)
}

func TestShuffleDiffersAcrossHashes(t *testing.T) {
	pool := func() [][]byte {
		return [][]byte{{1}, {2}, {3}, {4}, {5}, {6}, {7}, {8}}
	}

	p1 := pool()
	fisherYatesShuffle(p1, newSplitmix64(seedFromHash([]byte("hash-a"))))

	p2 := pool()
	fisherYatesShuffle(p2, newSplitmix64(seedFromHash([]byte("hash-b"))))

	require.NotEqual(t, p1, p2)
}
