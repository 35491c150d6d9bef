package types

import ethcrypto "github.com/ethereum/go-ethereum/crypto"

// Hash is the fixed-width content identifier a work claim is keyed by.
type Hash [32]byte

// HashFromBytes copies a 32-byte slice into a Hash.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != 32 {
		return h, ErrInvalidHashLength
	}
	copy(h[:], b)
	return h, nil
}

// Bytes returns a copy of the hash's bytes.
func (h Hash) Bytes() []byte {
	out := make([]byte, 32)
	copy(out, h[:])
	return out
}

// HashURL derives a claim hash deterministically from its source URL and an
// arbitrary content digest supplied by the miner's off-chain compute. It is
// a convenience for tests and tooling; the chain itself treats Hash as an
// opaque caller-supplied identifier.
func HashURL(url []byte, digest []byte) Hash {
	var h Hash
	copy(h[:], ethcrypto.Keccak256(url, digest))
	return h
}
