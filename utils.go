package floatmap

import "math/bits"

// Returns the next power of 2 for the given value `v`.
func NextPowerOf2(v uint32) uint32 {
	if v <= 1 {
		return 1
	}

	return uint32(1) << min(bits.Len32(v-1), 31)
}
