package types

import "gigchain/crypto"

// OriginKind distinguishes the two authorization capabilities every
// extrinsic in this chain is dispatched with. The host chain runtime
// verifies the underlying signature or governance decision before handing a
// call an Origin; this module only ever inspects which kind it received.
type OriginKind uint8

const (
	// OriginSigned carries the authenticated account that dispatched the
	// call.
	OriginSigned OriginKind = iota
	// OriginRoot denotes a governance-level call with no associated
	// account.
	OriginRoot
)

// Origin is the authorization capability passed into every native-module
// operation, replacing the host framework's OriginFor<T>/ensure_root/
// ensure_signed idiom with an explicit value a standalone rewrite can model.
type Origin struct {
	kind   OriginKind
	signer crypto.Address
}

// RootOrigin constructs the governance-level origin.
func RootOrigin() Origin {
	return Origin{kind: OriginRoot}
}

// SignedOrigin constructs an origin authenticated as addr.
func SignedOrigin(addr crypto.Address) Origin {
	return Origin{kind: OriginSigned, signer: addr}
}

// Signer returns the signing account and true if the origin is signed.
func (o Origin) Signer() (crypto.Address, bool) {
	if o.kind != OriginSigned {
		return crypto.Address{}, false
	}
	return o.signer, true
}

// IsRoot reports whether the origin is the root/governance capability.
func (o Origin) IsRoot() bool {
	return o.kind == OriginRoot
}
