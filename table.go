package floatmap

import (
	"fmt"
	"math"
	"math/bits"
	"math/rand/v2"
	"strings"
)

const (
	// maxCapacity is the largest allowed main-table capacity.
	maxCapacity = 1 << 30

	defaultLoadFactor = 0.8
)

// RandFunc returns a uniform value in [0, n). The eviction walk draws from
// it to pick which of the three candidate slots to displace.
type RandFunc func(n int) int

type table[K comparable] struct {
	// Three parallel buffers sized capacity+stashCapacity. Slots 0..capacity-1
	// are the main region, the tail is the stash. occupied is the structural
	// empty/full marker; there is no sentinel key or value.
	keys     []K
	values   []float32
	occupied []bool

	capacity  int
	size      int
	stashSize int

	loadFactor     float32
	threshold      int
	mask           uint32
	hashShift      uint32
	stashCapacity  int
	pushIterations int

	hashFunc HashFunc[K]
	random   RandFunc

	zeroK K
}

type Option[K comparable] func(t *table[K])

// Override default hash function.
func WithHashFunc[K comparable](f HashFunc[K]) Option[K] {
	return func(t *table[K]) {
		t.hashFunc = f
	}
}

// Override the default load factor (0.8). Values above ~0.91 greatly
// increase the odds of rehashing to the next power-of-two size.
func WithLoadFactor[K comparable](loadFactor float32) Option[K] {
	return func(t *table[K]) {
		t.loadFactor = loadFactor
	}
}

// Override the eviction-walk randomness source.
func WithRandFunc[K comparable](random RandFunc) Option[K] {
	return func(t *table[K]) {
		t.random = random
	}
}

func (t *table[K]) init(initialCapacity int, opts ...Option[K]) error {
	t.loadFactor = defaultLoadFactor

	for _, opt := range opts {
		opt(t)
	}

	if initialCapacity < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, initialCapacity)
	}

	if initialCapacity > maxCapacity {
		return fmt.Errorf("%w: %d", ErrCapacityTooLarge, initialCapacity)
	}

	capacity := int(NextPowerOf2(uint32(initialCapacity)))
	if capacity > maxCapacity {
		return fmt.Errorf("%w: %d", ErrCapacityTooLarge, capacity)
	}

	if t.loadFactor <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidLoadFactor, t.loadFactor)
	}

	if t.hashFunc == nil {
		t.hashFunc = MakeDefaultHashFunc[K]()
	}

	if t.random == nil {
		t.random = rand.IntN
	}

	t.applyCapacity(capacity)

	return nil
}

// applyCapacity recomputes every capacity-derived parameter and allocates
// fresh buffers. capacity must be a power of two.
func (t *table[K]) applyCapacity(capacity int) {
	log2 := bits.TrailingZeros32(uint32(capacity))

	t.capacity = capacity
	t.threshold = int(float32(capacity) * t.loadFactor)
	t.mask = uint32(capacity - 1)
	t.hashShift = uint32(31 - log2)
	t.stashCapacity = max(3, 2*log2)
	t.pushIterations = max(min(capacity, 8), int(math.Sqrt(float64(capacity)))/8)

	t.keys = make([]K, capacity+t.stashCapacity)
	t.values = make([]float32, capacity+t.stashCapacity)
	t.occupied = make([]bool, capacity+t.stashCapacity)
}

// holds reports whether slot index is occupied by exactly this key.
func (t *table[K]) holds(index uint32, key K) bool {
	return t.occupied[index] && t.keys[index] == key
}

func (t *table[K]) get(key K, defaultValue float32) float32 {
	h := t.hashFunc(key)
	index := h & t.mask
	if !t.holds(index, key) {
		index = t.hash2(h)
		if !t.holds(index, key) {
			index = t.hash3(h)
			if !t.holds(index, key) {
				return t.getStash(key, defaultValue)
			}
		}
	}

	return t.values[index]
}

func (t *table[K]) getStash(key K, defaultValue float32) float32 {
	for i, n := t.capacity, t.capacity+t.stashSize; i < n; i++ {
		if t.keys[i] == key {
			return t.values[i]
		}
	}

	return defaultValue
}

func (t *table[K]) put(key K, value float32) {
	h := t.hashFunc(key)

	// Update in place when the key is already resident.
	index1 := h & t.mask
	if t.holds(index1, key) {
		t.values[index1] = value
		return
	}

	index2 := t.hash2(h)
	if t.holds(index2, key) {
		t.values[index2] = value
		return
	}

	index3 := t.hash3(h)
	if t.holds(index3, key) {
		t.values[index3] = value
		return
	}

	for i, n := t.capacity, t.capacity+t.stashSize; i < n; i++ {
		if t.keys[i] == key {
			t.values[i] = value
			return
		}
	}

	switch {
	case !t.occupied[index1]:
		t.place(index1, key, value)
	case !t.occupied[index2]:
		t.place(index2, key, value)
	case !t.occupied[index3]:
		t.place(index3, key, value)
	default:
		t.push(key, value, index1, index2, index3)
	}
}

// putResize skips the duplicate-key checks; every key replayed through it
// during a resize is already known to be distinct.
func (t *table[K]) putResize(key K, value float32) {
	h := t.hashFunc(key)

	index1 := h & t.mask
	if !t.occupied[index1] {
		t.place(index1, key, value)
		return
	}

	index2 := t.hash2(h)
	if !t.occupied[index2] {
		t.place(index2, key, value)
		return
	}

	index3 := t.hash3(h)
	if !t.occupied[index3] {
		t.place(index3, key, value)
		return
	}

	t.push(key, value, index1, index2, index3)
}

// place fills an empty slot. The growth check runs after placement, so the
// table may sit exactly at threshold until the next insert.
func (t *table[K]) place(index uint32, key K, value float32) {
	t.keys[index] = key
	t.values[index] = value
	t.occupied[index] = true

	t.size++
	if t.size > t.threshold {
		t.resize(t.capacity << 1)
	}
}

// push runs the random-walk eviction: displace one of the three occupied
// candidates, then try to re-home the displaced key, repeating with it as
// the new insertee. The walk is bounded by pushIterations; on failure the
// last evicted pair goes to the stash.
func (t *table[K]) push(insertKey K, insertValue float32, index1, index2, index3 uint32) {
	var (
		evictedKey   K
		evictedValue float32
	)

	for i := 0; ; {
		var index uint32
		switch t.random(3) {
		case 0:
			index = index1
		case 1:
			index = index2
		default:
			index = index3
		}

		evictedKey, evictedValue = t.keys[index], t.values[index]
		t.keys[index], t.values[index] = insertKey, insertValue

		// The evicted key may hash to an empty slot of its own.
		h := t.hashFunc(evictedKey)

		index1 = h & t.mask
		if !t.occupied[index1] {
			t.place(index1, evictedKey, evictedValue)
			return
		}

		index2 = t.hash2(h)
		if !t.occupied[index2] {
			t.place(index2, evictedKey, evictedValue)
			return
		}

		index3 = t.hash3(h)
		if !t.occupied[index3] {
			t.place(index3, evictedKey, evictedValue)
			return
		}

		if i++; i == t.pushIterations {
			break
		}

		insertKey, insertValue = evictedKey, evictedValue
	}

	t.putStash(evictedKey, evictedValue)
}

func (t *table[K]) putStash(key K, value float32) {
	if t.stashSize == t.stashCapacity {
		// Too many pushes occurred and the stash is full; grow and retry.
		t.resize(t.capacity << 1)
		t.putResize(key, value)
		return
	}

	index := t.capacity + t.stashSize
	t.keys[index] = key
	t.values[index] = value
	t.occupied[index] = true

	t.stashSize++
	t.size++
}

func (t *table[K]) increment(key K, defaultValue, delta float32) float32 {
	h := t.hashFunc(key)
	index := h & t.mask
	if !t.holds(index, key) {
		index = t.hash2(h)
		if !t.holds(index, key) {
			index = t.hash3(h)
			if !t.holds(index, key) {
				return t.incrementStash(key, defaultValue, delta)
			}
		}
	}

	value := t.values[index]
	t.values[index] = value + delta

	return value
}

func (t *table[K]) incrementStash(key K, defaultValue, delta float32) float32 {
	for i, n := t.capacity, t.capacity+t.stashSize; i < n; i++ {
		if t.keys[i] == key {
			value := t.values[i]
			t.values[i] = value + delta

			return value
		}
	}

	t.put(key, defaultValue+delta)

	return defaultValue
}

func (t *table[K]) remove(key K, defaultValue float32) float32 {
	h := t.hashFunc(key)

	index := h & t.mask
	if t.holds(index, key) {
		return t.clearSlot(index)
	}

	index = t.hash2(h)
	if t.holds(index, key) {
		return t.clearSlot(index)
	}

	index = t.hash3(h)
	if t.holds(index, key) {
		return t.clearSlot(index)
	}

	return t.removeStash(key, defaultValue)
}

func (t *table[K]) clearSlot(index uint32) float32 {
	oldValue := t.values[index]
	t.keys[index] = t.zeroK
	t.occupied[index] = false
	t.size--

	return oldValue
}

func (t *table[K]) removeStash(key K, defaultValue float32) float32 {
	for i, n := t.capacity, t.capacity+t.stashSize; i < n; i++ {
		if t.keys[i] == key {
			oldValue := t.values[i]
			t.removeStashIndex(i)
			t.size--

			return oldValue
		}
	}

	return defaultValue
}

// removeStashIndex keeps the stash dense: the last stash entry moves into
// the freed slot. The bounded linear stash scans depend on this.
func (t *table[K]) removeStashIndex(index int) {
	t.stashSize--

	last := t.capacity + t.stashSize
	if index < last {
		t.keys[index] = t.keys[last]
		t.values[index] = t.values[last]
	}

	t.keys[last] = t.zeroK
	t.occupied[last] = false
}

func (t *table[K]) containsKey(key K) bool {
	h := t.hashFunc(key)
	if t.holds(h&t.mask, key) || t.holds(t.hash2(h), key) || t.holds(t.hash3(h), key) {
		return true
	}

	for i, n := t.capacity, t.capacity+t.stashSize; i < n; i++ {
		if t.keys[i] == key {
			return true
		}
	}

	return false
}

func (t *table[K]) containsValue(value float32) bool {
	for i := t.capacity + t.stashSize; i > 0; {
		i--
		if t.occupied[i] && t.values[i] == value {
			return true
		}
	}

	return false
}

func (t *table[K]) findKey(value float32) (K, bool) {
	for i := t.capacity + t.stashSize; i > 0; {
		i--
		if t.occupied[i] && t.values[i] == value {
			return t.keys[i], true
		}
	}

	return t.zeroK, false
}

func (t *table[K]) clear() {
	if t.size == 0 {
		return
	}

	for i := range t.capacity + t.stashSize {
		t.keys[i] = t.zeroK
		t.occupied[i] = false
	}

	t.size = 0
	t.stashSize = 0
}

// resize rebuilds the table at newCapacity and replays every resident pair
// through the no-duplicate-check insertion path.
func (t *table[K]) resize(newCapacity int) {
	var (
		oldEnd      = t.capacity + t.stashSize
		oldKeys     = t.keys
		oldValues   = t.values
		oldOccupied = t.occupied
		oldSize     = t.size
	)

	t.applyCapacity(newCapacity)
	t.size = 0
	t.stashSize = 0

	if oldSize == 0 {
		return
	}

	for i := range oldEnd {
		if oldOccupied[i] {
			t.putResize(oldKeys[i], oldValues[i])
		}
	}
}

// clearCapacity empties the table and shrinks the buffers to the given
// capacity if they are larger.
func (t *table[K]) clearCapacity(maximumCapacity int) {
	if maximumCapacity < 0 {
		maximumCapacity = 0
	}

	if t.capacity <= maximumCapacity {
		t.clear()
		return
	}

	t.size = 0
	t.resize(int(NextPowerOf2(uint32(maximumCapacity))))
}

func (t *table[K]) shrink(maximumCapacity int) error {
	if maximumCapacity < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, maximumCapacity)
	}

	if t.size > maximumCapacity {
		maximumCapacity = t.size
	}
	if t.capacity <= maximumCapacity {
		return nil
	}

	t.resize(int(NextPowerOf2(uint32(maximumCapacity))))

	return nil
}

func (t *table[K]) ensureCapacity(additionalCapacity int) error {
	if additionalCapacity < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, additionalCapacity)
	}

	sizeNeeded := t.size + additionalCapacity
	if sizeNeeded >= t.threshold {
		needed := math.Ceil(float64(sizeNeeded) / float64(t.loadFactor))
		t.resize(int(NextPowerOf2(uint32(needed))))
	}

	return nil
}

func (t *table[K]) equal(other *table[K]) bool {
	if other.size != t.size {
		return false
	}

	for i := range t.capacity + t.stashSize {
		if !t.occupied[i] {
			continue
		}

		key := t.keys[i]
		// 0 doubles as the probe default here, so a stored 0 needs the
		// extra containsKey probe on the other table.
		otherValue := other.get(key, 0)
		if otherValue == 0 && !other.containsKey(key) {
			return false
		}
		if otherValue != t.values[i] {
			return false
		}
	}

	return true
}

func (t *table[K]) hash() uint32 {
	var h uint32
	for i := range t.capacity + t.stashSize {
		if !t.occupied[i] {
			continue
		}

		h += t.hashFunc(t.keys[i]) * 31
		h += math.Float32bits(t.values[i])
	}

	return h
}

func (t *table[K]) string() string {
	if t.size == 0 {
		return "{}"
	}

	var sb strings.Builder
	sb.WriteByte('{')

	first := true
	for i := t.capacity + t.stashSize; i > 0; {
		i--
		if !t.occupied[i] {
			continue
		}

		if !first {
			sb.WriteString(", ")
		}
		first = false

		fmt.Fprintf(&sb, "%v=%v", t.keys[i], t.values[i])
	}

	sb.WriteByte('}')

	return sb.String()
}
