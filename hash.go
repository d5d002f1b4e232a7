package floatmap

import "hash/maphash"

// Fixed odd multiplicative constants for the second and third hash
// derivations. Opaque tuning constants, not cryptographic values.
const (
	prime2 = 0xb4b82e39
	prime3 = 0xced1c241
)

type HashFunc[K comparable] func(K) uint32

// Maps built with the default hash function share one seed, so any two of
// them agree on key hashes. Equal and Hash rely on this.
var defaultSeed = maphash.MakeSeed()

func MakeDefaultHashFunc[K comparable]() HashFunc[K] {
	return func(k K) uint32 {
		return uint32(maphash.Comparable(defaultSeed, k))
	}
}

// hash2 scrambles the key hash with an odd constant and folds the high bits
// of the product back down, keeping the candidate indices pairwise
// independent for well-distributed hashes.
func (t *table[K]) hash2(h uint32) uint32 {
	h *= prime2
	return (h ^ h>>t.hashShift) & t.mask
}

func (t *table[K]) hash3(h uint32) uint32 {
	h *= prime3
	return (h ^ h>>t.hashShift) & t.mask
}
