// Package crypto provides the account-identifier primitives used across the
// chain's native modules. Signature verification and key custody are the
// host chain's responsibility; this package only knows how to encode and
// decode the 20-byte principals that ledgers key off of.
package crypto

import (
	"crypto/rand"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
)

// AddressPrefix identifies the bech32 human-readable part used for an
// address family.
type AddressPrefix string

const (
	// GigPrefix is the human-readable prefix for ordinary chain accounts
	// (miners, verifiers, the developer account, and so on).
	GigPrefix AddressPrefix = "gig"
	// ModulePrefix is used for deterministically-derived module accounts
	// such as the treasury.
	ModulePrefix AddressPrefix = "gigmod"
)

// Address represents a 20-byte account identifier bound to a human-readable
// prefix. It is comparable and therefore safe to use as a map key after
// converting to its raw form via Bytes/Array.
type Address struct {
	prefix AddressPrefix
	bytes  [20]byte
}

// NewAddress constructs an address from a 20-byte slice.
func NewAddress(prefix AddressPrefix, b []byte) (Address, error) {
	if len(b) != 20 {
		return Address{}, fmt.Errorf("crypto: address must be 20 bytes, got %d", len(b))
	}
	var a Address
	a.prefix = prefix
	copy(a.bytes[:], b)
	return a, nil
}

// MustNewAddress constructs an address and panics on invalid input. Intended
// for use with compile-time-known byte literals (tests, constants).
func MustNewAddress(prefix AddressPrefix, b []byte) Address {
	addr, err := NewAddress(prefix, b)
	if err != nil {
		panic(err)
	}
	return addr
}

// String renders the address in bech32 form.
func (a Address) String() string {
	conv, err := bech32.ConvertBits(a.bytes[:], 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(a.prefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Bytes returns a copy of the underlying 20 address bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, 20)
	copy(out, a.bytes[:])
	return out
}

// Array returns the raw 20-byte array form, suitable as a map key.
func (a Address) Array() [20]byte {
	return a.bytes
}

// Prefix returns the address's human-readable prefix.
func (a Address) Prefix() AddressPrefix {
	return a.prefix
}

// IsZero reports whether the address is the all-zero principal.
func (a Address) IsZero() bool {
	return a.bytes == [20]byte{}
}

// DecodeAddress parses a bech32-encoded address string.
func DecodeAddress(addrStr string) (Address, error) {
	prefix, decoded, err := bech32.Decode(addrStr)
	if err != nil {
		return Address{}, fmt.Errorf("crypto: invalid bech32 address: %w", err)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("crypto: invalid bech32 payload: %w", err)
	}
	return NewAddress(AddressPrefix(prefix), conv)
}

// GenerateAddress returns a random address with the given prefix. It is a
// test and tooling helper; production accounts are derived from the host
// chain's key material.
func GenerateAddress(prefix AddressPrefix) (Address, error) {
	var raw [20]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return Address{}, err
	}
	return NewAddress(prefix, raw[:])
}
