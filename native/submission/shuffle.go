package submission

import (
	"golang.org/x/crypto/blake2b"
)

// seedFromHash derives the 32-byte PRNG seed from a claim hash: a full
// Blake2-128 digest, zero-extended to 32 bytes. This mirrors the protocol's
// "Blake2-128, zero-extend to 32 bytes" requirement — the high 16 bytes are
// always zero.
func seedFromHash(hash []byte) [32]byte {
	h, err := blake2b.New(16, nil)
	if err != nil {
		panic(err)
	}
	h.Write(hash)
	digest := h.Sum(nil)
	var seed [32]byte
	copy(seed[:16], digest)
	return seed
}

// splitmix64Rand is a small, dependency-free PRNG seeded deterministically
// from a 32-byte value. It exists so committee selection produces
// bit-identical output across every replica given the same seed, which a
// platform-provided "small fast RNG" cannot guarantee.
type splitmix64Rand struct {
	state uint64
}

func newSplitmix64(seed [32]byte) *splitmix64Rand {
	var s uint64
	for i := 0; i < 8; i++ {
		s |= uint64(seed[i]) << (8 * i)
	}
	return &splitmix64Rand{state: s}
}

func (r *splitmix64Rand) next() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// uintn returns a uniform random value in [0, n) without modulo bias, using
// Lemire's multiply-and-reject reduction over the 64-bit stream.
func (r *splitmix64Rand) uintn(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	hi, lo := bitsMul64(r.next(), n)
	if lo < n {
		threshold := -n % n
		for lo < threshold {
			hi, lo = bitsMul64(r.next(), n)
		}
	}
	return hi
}

func bitsMul64(x, y uint64) (hi, lo uint64) {
	const mask32 = (1 << 32) - 1
	x0, x1 := x&mask32, x>>32
	y0, y1 := y&mask32, y>>32
	w0 := x0 * y0
	t := x1*y0 + w0>>32
	w1 := t & mask32
	w2 := t >> 32
	w1 += x0 * y1
	hi = x1*y1 + w2 + w1>>32
	lo = x * y
	return hi, lo
}

// fisherYatesShuffle permutes pool in place using the provided PRNG,
// producing a deterministic function of (seed, |pool|) for every replica.
func fisherYatesShuffle(pool [][]byte, rng *splitmix64Rand) {
	for i := len(pool) - 1; i > 0; i-- {
		j := rng.uintn(uint64(i + 1))
		pool[i], pool[j] = pool[j], pool[i]
	}
}
