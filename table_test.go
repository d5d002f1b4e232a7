package floatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable[K comparable](capacity int, opts ...Option[K]) *table[K] {
	var tt table[K]
	if err := tt.init(capacity, opts...); err != nil {
		panic(err)
	}

	return &tt
}

// collideHash forces every key into the same three candidate slots, so the
// eviction walk and the stash are exercised deterministically.
func collideHash(string) uint32 { return 0 }

func TestTable_init(t *testing.T) {
	tt := newTable[string](64)

	require.Equal(t, 64, tt.capacity)
	require.Equal(t, 51, tt.threshold) // 64 * 0.8
	require.Equal(t, uint32(63), tt.mask)
	require.Equal(t, uint32(25), tt.hashShift)
	require.Equal(t, 12, tt.stashCapacity) // max(3, 2*log2(64))
	require.Equal(t, 8, tt.pushIterations)
	require.Len(t, tt.keys, 64+12)
	require.Len(t, tt.values, 64+12)
	require.Len(t, tt.occupied, 64+12)
}

func TestTable_init_RoundsCapacity(t *testing.T) {
	tt := newTable[string](51)

	require.Equal(t, 64, tt.capacity)
}

func TestTable_init_MinimumStash(t *testing.T) {
	tt := newTable[string](2)

	require.Equal(t, 3, tt.stashCapacity)
}

func TestTable_put_Stash(t *testing.T) {
	tt := newTable(8, WithHashFunc[string](collideHash))
	require.Equal(t, 6, tt.stashCapacity)

	keys := []string{"a", "b", "c", "d", "e"}
	for i, key := range keys {
		tt.put(key, float32(i))
	}

	// All keys share one candidate slot: one lives in the main region, the
	// rest overflow into the stash.
	require.Equal(t, 5, tt.size)
	require.Equal(t, 4, tt.stashSize)

	for i, key := range keys {
		require.Equal(t, float32(i), tt.get(key, -1))
	}
}

func TestTable_put_StashOverflowGrows(t *testing.T) {
	tt := newTable(8, WithHashFunc[string](collideHash))

	keys := []string{"a", "b", "c", "d", "e", "f", "g"}
	for i, key := range keys {
		tt.put(key, float32(i))
	}

	// One main slot plus a full stash.
	require.Equal(t, 8, tt.capacity)
	require.Equal(t, 6, tt.stashSize)

	tt.put("h", 7)

	require.Equal(t, 16, tt.capacity)
	require.Equal(t, 8, tt.size)

	for i, key := range append(keys, "h") {
		require.Equal(t, float32(i), tt.get(key, -1))
	}
}

func TestTable_put_UsesInjectedRandom(t *testing.T) {
	calls := 0
	random := func(n int) int {
		assert.Equal(t, 3, n)
		calls++

		return 0
	}

	tt := newTable(8, WithHashFunc[string](collideHash), WithRandFunc[string](random))

	tt.put("a", 1)
	require.Equal(t, 0, calls)

	// Second colliding key forces a full eviction walk.
	tt.put("b", 2)
	require.Equal(t, tt.pushIterations, calls)
}

func TestTable_removeStash_Compacts(t *testing.T) {
	tt := newTable(8, WithHashFunc[string](collideHash))

	for i, key := range []string{"a", "b", "c", "d"} {
		tt.put(key, float32(i))
	}
	require.Equal(t, 3, tt.stashSize)

	// "a" holds the main slot; the stash holds b, c, d in push order.
	require.Equal(t, float32(1), tt.remove("b", -1))

	require.Equal(t, 2, tt.stashSize)
	require.Equal(t, 3, tt.size)

	// The stash stays dense from capacity to capacity+stashSize-1.
	require.True(t, tt.occupied[8])
	require.True(t, tt.occupied[9])
	require.False(t, tt.occupied[10])

	require.Equal(t, float32(-1), tt.get("b", -1))
	require.Equal(t, float32(2), tt.get("c", -1))
	require.Equal(t, float32(3), tt.get("d", -1))
}

func TestTable_put_RoundTrip(t *testing.T) {
	tt := newTable[uint64](16)

	const n = 10000
	for i := range uint64(n) {
		tt.put(i, float32(i))
	}

	require.Equal(t, n, tt.size)
	require.Equal(t, uint32(tt.capacity), NextPowerOf2(uint32(tt.capacity)))
	require.LessOrEqual(t, tt.size, tt.threshold+tt.stashCapacity)

	for i := range uint64(n) {
		require.Equal(t, float32(i), tt.get(i, -1))
	}

	for i := range uint64(n / 2) {
		require.Equal(t, float32(i), tt.remove(i, -1))
	}

	require.Equal(t, n/2, tt.size)

	for i := range uint64(n) {
		if i < n/2 {
			require.False(t, tt.containsKey(i))
			require.Equal(t, float32(-1), tt.get(i, -1))
		} else {
			require.True(t, tt.containsKey(i))
			require.Equal(t, float32(i), tt.get(i, -1))
		}
	}
}

func TestTable_resize_PreservesEntries(t *testing.T) {
	tt := newTable[uint64](4)
	require.Equal(t, 4, tt.capacity)

	const n = 100
	for i := range uint64(n) {
		tt.put(i, float32(i)*10)
	}

	require.Greater(t, tt.capacity, 4)

	for i := range uint64(n) {
		require.Equal(t, float32(i)*10, tt.get(i, -1))
	}
}

func TestTable_clear(t *testing.T) {
	tt := newTable(8, WithHashFunc[string](collideHash))

	for i, key := range []string{"a", "b", "c"} {
		tt.put(key, float32(i))
	}

	tt.clear()

	require.Equal(t, 0, tt.size)
	require.Equal(t, 0, tt.stashSize)
	require.Equal(t, 8, tt.capacity)
	require.False(t, tt.containsKey("a"))

	// The table stays usable after clearing.
	tt.put("x", 42)
	require.Equal(t, float32(42), tt.get("x", -1))
}

func TestTable_clearCapacity(t *testing.T) {
	tt := newTable[uint64](1024)
	for i := range uint64(10) {
		tt.put(i, float32(i))
	}

	tt.clearCapacity(16)

	require.Equal(t, 0, tt.size)
	require.Equal(t, 16, tt.capacity)

	// A maximum at or above the current capacity only clears.
	tt.put(1, 1)
	tt.clearCapacity(64)

	require.Equal(t, 0, tt.size)
	require.Equal(t, 16, tt.capacity)
}

func TestTable_shrink(t *testing.T) {
	tt := newTable[uint64](1024)
	for i := range uint64(10) {
		tt.put(i, float32(i))
	}

	require.NoError(t, tt.shrink(16))
	require.Equal(t, 16, tt.capacity)

	for i := range uint64(10) {
		require.Equal(t, float32(i), tt.get(i, -1))
	}

	// Shrinking below the item count clamps to the next power of two that
	// still fits every entry.
	require.NoError(t, tt.shrink(0))
	require.Equal(t, 16, tt.capacity)

	err := tt.shrink(-1)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestTable_ensureCapacity(t *testing.T) {
	tt := newTable[uint64](4)

	require.NoError(t, tt.ensureCapacity(100)) // ceil(100/0.8) = 125 -> 128
	require.Equal(t, 128, tt.capacity)

	err := tt.ensureCapacity(-1)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}
