// Package floatmap provides an unordered map from arbitrary comparable keys
// to float32 values, built on cuckoo hashing with 3 hashes, random walking,
// and a small stash for problematic keys. No allocation is done except when
// growing the table size.
//
// Get, ContainsKey and Remove are typically O(1), worst case O(log(n)).
// Put may be a bit slower, depending on hash collisions. Load factors
// greater than 0.91 greatly increase the chances the map will have to
// rehash to the next higher power-of-two size.
//
// The map is not safe for concurrent use; callers needing concurrent access
// must serialize externally.
package floatmap

import "iter"

// Map is a cuckoo hash map with float32 values.
type Map[K comparable] struct {
	table[K]
}

// Returns a new map sized to the next power of two of initialCapacity.
func New[K comparable](initialCapacity int, opts ...Option[K]) (*Map[K], error) {
	var m Map[K]
	if err := m.init(initialCapacity, opts...); err != nil {
		return nil, err
	}

	return &m, nil
}

// Put inserts the key or updates its value in place. Insertion may trigger
// growth of the backing buffers.
func (m *Map[K]) Put(key K, value float32) {
	m.put(key, value)
}

// PutAll inserts every entry of the other map.
func (m *Map[K]) PutAll(other *Map[K]) {
	for key, value := range other.All() {
		m.put(key, value)
	}
}

// Get returns the value stored for the key, or defaultValue when the key is
// absent.
func (m *Map[K]) Get(key K, defaultValue float32) float32 {
	return m.get(key, defaultValue)
}

// Increment returns the key's current value and adds delta to the stored
// value. If the key is not in the map, defaultValue+delta is stored and
// defaultValue is returned.
func (m *Map[K]) Increment(key K, defaultValue, delta float32) float32 {
	return m.increment(key, defaultValue, delta)
}

// Remove deletes the key and returns the value it held, or defaultValue when
// the key was absent.
func (m *Map[K]) Remove(key K, defaultValue float32) float32 {
	return m.remove(key, defaultValue)
}

func (m *Map[K]) ContainsKey(key K) bool {
	return m.containsKey(key)
}

// ContainsValue reports whether any key maps to the value. This traverses
// the entire map and compares every value.
func (m *Map[K]) ContainsValue(value float32) bool {
	return m.containsValue(value)
}

// FindKey returns the first key mapping to the value, scanning the whole
// map. The second result is false when no key maps to it.
func (m *Map[K]) FindKey(value float32) (K, bool) {
	return m.findKey(value)
}

func (m *Map[K]) Size() int {
	return m.size
}

func (m *Map[K]) IsEmpty() bool {
	return m.size == 0
}

// Clear removes all entries, keeping the current capacity.
func (m *Map[K]) Clear() {
	m.clear()
}

// ClearCapacity removes all entries and shrinks the backing buffers to the
// given capacity if they are larger.
func (m *Map[K]) ClearCapacity(maximumCapacity int) {
	m.clearCapacity(maximumCapacity)
}

// Shrink reduces the backing buffers to the specified capacity or less. If
// the map holds more items than the requested capacity, the next power of
// two above the item count is used instead.
func (m *Map[K]) Shrink(maximumCapacity int) error {
	return m.shrink(maximumCapacity)
}

// EnsureCapacity grows the backing buffers to fit the specified number of
// additional items, avoiding multiple resizes when adding many items.
func (m *Map[K]) EnsureCapacity(additionalCapacity int) error {
	return m.ensureCapacity(additionalCapacity)
}

// Equal reports structural equality with the other map, ignoring slot
// layout. Both maps must hash keys the same way.
func (m *Map[K]) Equal(other *Map[K]) bool {
	if other == nil {
		return false
	}
	if other == m {
		return true
	}

	return m.equal(&other.table)
}

// Hash combines all key/value pairs independently of slot layout.
func (m *Map[K]) Hash() uint32 {
	return m.hash()
}

// String formats the map as {k=v, k=v, ...} in reverse internal slot order.
func (m *Map[K]) String() string {
	return m.string()
}

// Stats returns a snapshot of the table geometry and occupancy.
func (m *Map[K]) Stats() Stats {
	return Stats{
		Size:           m.size,
		Capacity:       m.capacity,
		Threshold:      m.threshold,
		StashSize:      m.stashSize,
		StashCapacity:  m.stashCapacity,
		PushIterations: m.pushIterations,
	}
}

// All returns a single-use range-over-func iterator over all entries. The
// map must not be mutated during iteration; use the Entries cursor for
// removal while iterating.
func (m *Map[K]) All() iter.Seq2[K, float32] {
	return func(yield func(K, float32) bool) {
		for i, n := 0, m.capacity+m.stashSize; i < n; i++ {
			if m.occupied[i] && !yield(m.keys[i], m.values[i]) {
				return
			}
		}
	}
}
