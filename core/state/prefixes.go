package state

// Key prefixes for every namespace this chain's native modules persist into
// the underlying trie. Centralising them here keeps the keyspace
// collision-free and gives one place to audit when a module is added.
var (
	balancePrefix     = []byte("balance/free/")
	reservedPrefix    = []byte("balance/reserved/")
	kvPrefix          = []byte("kv/")
	whitelistPrefix   = []byte("whitelist/url/")
	minerPrefix       = []byte("miner/registry/")
	verifierPrefix    = []byte("verifier/registry/")
	verifierIndexKey  = []byte("verifier/registry/index")
	submissionPrefix  = []byte("submission/record/")
	assignmentPrefix  = []byte("submission/assignment/")
	attestationPrefix = []byte("submission/attestation/")
)
