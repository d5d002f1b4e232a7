package floatmap

import "fmt"

// Entry is a transient key/value pair materialized by iteration; it is not
// how the map stores entries.
type Entry[K comparable] struct {
	Key   K
	Value float32
}

func (e Entry[K]) String() string {
	return fmt.Sprintf("%v=%v", e.Key, e.Value)
}

// cursor is the scanning state shared by the three iterator kinds. It walks
// the main and stash regions in slot order, skipping empty slots, producing
// one element per Next call. Cursors are plain values borrowing the map;
// construct as many as needed, they cost no allocation.
type cursor[K comparable] struct {
	t *table[K]

	nextIndex    int
	currentIndex int
	hasNext      bool
}

// Reset rewinds the cursor to the first occupied slot.
func (c *cursor[K]) Reset() {
	c.currentIndex = -1
	c.nextIndex = -1
	c.findNextIndex()
}

func (c *cursor[K]) findNextIndex() {
	c.hasNext = false

	n := c.t.capacity + c.t.stashSize
	for c.nextIndex++; c.nextIndex < n; c.nextIndex++ {
		if c.t.occupied[c.nextIndex] {
			c.hasNext = true
			return
		}
	}
}

func (c *cursor[K]) HasNext() bool {
	return c.hasNext
}

// Remove deletes the element most recently produced by Next. Removing a
// stash-resident element compacts the stash and resumes scanning from the
// adjusted position, so the moved entry is still visited.
func (c *cursor[K]) Remove() {
	if c.currentIndex < 0 {
		panic("floatmap: Next must be called before Remove")
	}

	t := c.t
	if c.currentIndex >= t.capacity {
		t.removeStashIndex(c.currentIndex)
		c.nextIndex = c.currentIndex - 1
		c.findNextIndex()
	} else {
		t.keys[c.currentIndex] = t.zeroK
		t.occupied[c.currentIndex] = false
	}

	c.currentIndex = -1
	t.size--
}

type Entries[K comparable] struct {
	cursor[K]
}

// Returns a fresh cursor over the entries in the map. Remove is supported.
func (m *Map[K]) Entries() Entries[K] {
	e := Entries[K]{cursor[K]{t: &m.table}}
	e.Reset()

	return e
}

// Next returns the next entry. The second result is false when the cursor
// is exhausted.
func (e *Entries[K]) Next() (Entry[K], bool) {
	if !e.hasNext {
		return Entry[K]{}, false
	}

	entry := Entry[K]{
		Key:   e.t.keys[e.nextIndex],
		Value: e.t.values[e.nextIndex],
	}
	e.currentIndex = e.nextIndex
	e.findNextIndex()

	return entry, true
}

type Keys[K comparable] struct {
	cursor[K]
}

// Returns a fresh cursor over the keys in the map. Remove is supported.
func (m *Map[K]) Keys() Keys[K] {
	k := Keys[K]{cursor[K]{t: &m.table}}
	k.Reset()

	return k
}

func (k *Keys[K]) Next() (K, bool) {
	if !k.hasNext {
		return k.t.zeroK, false
	}

	key := k.t.keys[k.nextIndex]
	k.currentIndex = k.nextIndex
	k.findNextIndex()

	return key, true
}

// Collect appends the remaining keys to a new slice.
func (k *Keys[K]) Collect() []K {
	keys := make([]K, 0, k.t.size)
	for k.hasNext {
		key, _ := k.Next()
		keys = append(keys, key)
	}

	return keys
}

type Values[K comparable] struct {
	cursor[K]
}

// Returns a fresh cursor over the values in the map. Remove is supported.
func (m *Map[K]) Values() Values[K] {
	v := Values[K]{cursor[K]{t: &m.table}}
	v.Reset()

	return v
}

func (v *Values[K]) Next() (float32, bool) {
	if !v.hasNext {
		return 0, false
	}

	value := v.t.values[v.nextIndex]
	v.currentIndex = v.nextIndex
	v.findNextIndex()

	return value, true
}

// Collect appends the remaining values to a new slice.
func (v *Values[K]) Collect() []float32 {
	values := make([]float32, 0, v.t.size)
	for v.hasNext {
		value, _ := v.Next()
		values = append(values, value)
	}

	return values
}
