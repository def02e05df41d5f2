// Copyright 2025 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package chain is a Go implementation of a hash table that resolves
// collisions with separate chaining. If you're not familiar with chaining
// see https://en.wikipedia.org/wiki/Hash_table#Separate_chaining.
//
// # Chaining
//
// A chain.Map is a bucket array in which every bucket holds the head of a
// singly-linked list of entries whose keys hash to that bucket. Lookup
// computes hash(key) mod bucket count and walks the chain comparing keys
// with the table's equality function. Insertion prepends a new entry at the
// head of its chain, which is O(1) and tends to keep recently inserted keys
// near the front. When an insertion pushes the load factor (entries divided
// by buckets) above the configured maximum, the bucket count doubles and
// every entry is relinked into its new bucket. Entries are relinked, never
// copied, so a value pointer obtained from Ref stays valid across growth
// and an erase never moves the surviving entries.
//
// Chaining occupies the opposite corner of the design space from open
// addressing schemes such as Go's builtin map or Swiss tables: it walks a
// pointer per probe step rather than scanning a contiguous group, but in
// exchange its entries have stable identity for the lifetime of the table.
// That stability is what makes the Ref API and the cheap relink-only rehash
// possible.
//
// # Duplicates
//
// By default a Map holds at most one entry per key. A map constructed with
// the WithDuplicates option instead admits any number of entries with equal
// keys: Insert always adds, Erase removes every match, and Count reports
// the multiplicity. The policy is chosen once at construction and is part
// of the table's identity.
//
// # Iteration
//
// The map can be traversed with a cursor (Iter, Find, EqualRange) or with
// range-over-func iterators (All, Keys, Values). Rehashing redistributes
// every entry, so it invalidates all outstanding cursors. Rather than
// leaving use of a stale cursor undefined, every cursor is stamped with the
// map's rehash generation and panics if used after the map has rehashed.
// Erase never invalidates cursors positioned at other entries.
package chain

import (
	"errors"
	"fmt"
	"hash/maphash"
	"iter"
	"strings"
)

const (
	debug = false

	// The bucket count used by New when the caller does not specify one.
	defaultBucketCount = 16
	// The smallest bucket count Rehash will produce.
	minBucketCount = 8
	// The load factor threshold above which an insertion grows the table,
	// unless overridden with WithMaxLoadFactor.
	defaultMaxLoadFactor = 0.75
)

// ErrKeyNotFound is returned by At when the key is not present in the map.
var ErrKeyNotFound = errors.New("chain: key not found")

// HashFunc hashes keys of type K. A map's hash function must be consistent
// with its equality function: keys that compare equal must hash to the same
// value. The default hash function is backed by hash/maphash and is seeded
// per map.
type HashFunc[K comparable] func(key K) uint64

func defaultHash[K comparable]() HashFunc[K] {
	seed := maphash.MakeSeed()
	return func(key K) uint64 {
		return maphash.Comparable(seed, key)
	}
}

func defaultEqual[K comparable](a, b K) bool {
	return a == b
}

// node is a chain element. A node is referenced by exactly one link: the
// head of its bucket or the next pointer of its predecessor in the chain.
type node[K comparable, V any] struct {
	next  *node[K, V]
	key   K
	value V
}

// Map is an unordered map from keys to values, implemented as a hash table
// with separate chaining. By default a Map[K,V] hashes keys with the same
// hash function as Go's builtin map[K]V; a different hash function can be
// specified using the WithHash option.
//
// A Map is NOT goroutine-safe.
type Map[K comparable, V any] struct {
	// The hash function applied to keys of type K.
	hash HashFunc[K]
	// The equality function applied to keys. Defaults to ==.
	equal func(a, b K) bool
	// buckets holds the head of the entry chain for each bucket, or nil for
	// an empty bucket. len(buckets) is always at least 1.
	buckets []*node[K, V]
	// The number of entries across all chains.
	size int
	// The load factor threshold above which an insertion doubles the bucket
	// count.
	maxLoad float64
	// multi permits multiple entries with equal keys. Fixed at construction.
	multi bool
	// gen counts rehashes. Iterators capture gen at creation and panic when
	// used after it has changed. See Iterator.
	gen uint64
}

// New constructs a new Map with the specified initial bucket count. If
// initialCapacity is not positive the map starts with a default bucket
// count of 16. The zero value for a Map is not usable.
func New[K comparable, V any](initialCapacity int, options ...option[K, V]) *Map[K, V] {
	if initialCapacity <= 0 {
		initialCapacity = defaultBucketCount
	}
	m := &Map[K, V]{
		hash:    defaultHash[K](),
		equal:   defaultEqual[K],
		maxLoad: defaultMaxLoadFactor,
	}
	for _, op := range options {
		op.apply(m)
	}
	m.buckets = make([]*node[K, V], initialCapacity)
	m.checkInvariants()
	return m
}

// Collect constructs a Map from the key-value pairs in seq. If seq yields a
// key more than once, the last value wins.
func Collect[K comparable, V any](seq iter.Seq2[K, V], options ...option[K, V]) *Map[K, V] {
	m := New[K, V](0, options...)
	for k, v := range seq {
		m.InsertOrAssign(k, v)
	}
	return m
}

// Insert adds an entry to the map and returns an iterator positioned at it,
// along with true. If the key is already present (and the map does not allow
// duplicates), nothing is inserted and Insert returns an iterator positioned
// at the existing entry, along with false.
func (m *Map[K, V]) Insert(key K, value V) (Iterator[K, V], bool) {
	h := m.hash(key)
	i := m.bucketIndex(h)
	if !m.multi {
		if n := m.findInBucket(key, i); n != nil {
			return m.iterAt(n, i), false
		}
	}
	n := &node[K, V]{next: m.buckets[i], key: key, value: value}
	m.buckets[i] = n
	m.size++
	if debug {
		fmt.Printf("insert(%v): bucket=%d size=%d buckets=%d\n", key, i, m.size, len(m.buckets))
	}
	if m.maybeGrow() {
		i = m.bucketIndex(h)
	}
	m.checkInvariants()
	return m.iterAt(n, i), true
}

// InsertOrAssign adds an entry to the map, or overwrites the value of the
// first existing entry with an equal key. It returns an iterator positioned
// at the entry and true if an insertion took place, false if an existing
// value was overwritten.
func (m *Map[K, V]) InsertOrAssign(key K, value V) (Iterator[K, V], bool) {
	h := m.hash(key)
	i := m.bucketIndex(h)
	if n := m.findInBucket(key, i); n != nil {
		n.value = value
		return m.iterAt(n, i), false
	}
	n := &node[K, V]{next: m.buckets[i], key: key, value: value}
	m.buckets[i] = n
	m.size++
	if m.maybeGrow() {
		i = m.bucketIndex(h)
	}
	m.checkInvariants()
	return m.iterAt(n, i), true
}

// TryEmplace adds an entry to the map whose value is produced by construct,
// which is invoked only if an insertion actually takes place. If the key is
// already present (and the map does not allow duplicates), construct is not
// called and the existing entry is left untouched. The return values are
// those of Insert.
func (m *Map[K, V]) TryEmplace(key K, construct func() V) (Iterator[K, V], bool) {
	h := m.hash(key)
	i := m.bucketIndex(h)
	if !m.multi {
		if n := m.findInBucket(key, i); n != nil {
			return m.iterAt(n, i), false
		}
	}
	n := &node[K, V]{next: m.buckets[i], key: key, value: construct()}
	m.buckets[i] = n
	m.size++
	if m.maybeGrow() {
		i = m.bucketIndex(h)
	}
	m.checkInvariants()
	return m.iterAt(n, i), true
}

// Put inserts an entry into the map, overwriting an existing value if an
// entry with the same key already exists.
func (m *Map[K, V]) Put(key K, value V) {
	m.InsertOrAssign(key, value)
}

// Get retrieves the value from the map for the specified key, return
// ok=false if the key is not present.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	if n, _ := m.findNode(key); n != nil {
		return n.value, true
	}
	return value, false
}

// Find returns an iterator positioned at the first entry with the specified
// key, or an end iterator if the key is not present.
func (m *Map[K, V]) Find(key K) Iterator[K, V] {
	n, i := m.findNode(key)
	if n == nil {
		return m.end()
	}
	return m.iterAt(n, i)
}

// At returns the value for the specified key, or ErrKeyNotFound if the key
// is not present. Callers that expect absence should prefer Get or Find.
func (m *Map[K, V]) At(key K) (V, error) {
	if n, _ := m.findNode(key); n != nil {
		return n.value, nil
	}
	var zero V
	return zero, ErrKeyNotFound
}

// Ref returns a pointer to the value for the specified key, inserting a
// zero value first if the key is not present. The insertion counts toward
// the load factor and can grow the map. The returned pointer remains valid
// until the entry is erased or the map is cleared; it is not affected by
// growth, since rehashing relinks entries without copying them.
func (m *Map[K, V]) Ref(key K) *V {
	i := m.bucketIndex(m.hash(key))
	if n := m.findInBucket(key, i); n != nil {
		return &n.value
	}
	n := &node[K, V]{next: m.buckets[i], key: key}
	m.buckets[i] = n
	m.size++
	m.maybeGrow()
	m.checkInvariants()
	return &n.value
}

// Delete deletes the entry corresponding to the specified key from the map.
// It is a noop to delete a non-existent key.
func (m *Map[K, V]) Delete(key K) {
	m.Erase(key)
}

// Erase removes the first entry with the specified key, or every such entry
// if the map allows duplicates, and returns the number of entries removed.
// Erasing an absent key returns 0. Surviving entries are never relocated.
func (m *Map[K, V]) Erase(key K) int {
	i := m.bucketIndex(m.hash(key))
	var removed int
	var prev *node[K, V]
	for n := m.buckets[i]; n != nil; {
		if m.equal(n.key, key) {
			// Unlink n. Its own next pointer is deliberately left intact so
			// that an iterator positioned at n can still walk the remainder
			// of the chain.
			if prev != nil {
				prev.next = n.next
			} else {
				m.buckets[i] = n.next
			}
			m.size--
			removed++
			if !m.multi {
				break
			}
			n = n.next
		} else {
			prev = n
			n = n.next
		}
	}
	if debug {
		fmt.Printf("erase(%v): bucket=%d removed=%d size=%d\n", key, i, removed, m.size)
	}
	m.checkInvariants()
	return removed
}

// Count returns the number of entries with the specified key: 0 or 1 unless
// the map allows duplicates.
func (m *Map[K, V]) Count(key K) int {
	i := m.bucketIndex(m.hash(key))
	var count int
	for n := m.buckets[i]; n != nil; n = n.next {
		if m.equal(n.key, key) {
			count++
		}
	}
	return count
}

// Contains reports whether the map holds an entry with the specified key.
func (m *Map[K, V]) Contains(key K) bool {
	n, _ := m.findNode(key)
	return n != nil
}

// Clear removes every entry from the map. The bucket count is retained.
func (m *Map[K, V]) Clear() {
	clear(m.buckets)
	m.size = 0
	m.gen++
	m.checkInvariants()
}

// Reserve grows the bucket array to hold at least n buckets. It is shorthand
// for Rehash.
func (m *Map[K, V]) Reserve(n int) {
	m.Rehash(n)
}

// Rehash grows the bucket array to max(n, Len(), 8) buckets and relinks
// every entry into its new bucket. Rehash never shrinks the bucket array: a
// target at or below the current bucket count is a no-op, and a no-op does
// not invalidate iterators. Entries are relinked in place, not copied, so
// pointers returned by Ref remain valid.
func (m *Map[K, V]) Rehash(n int) {
	target := max(n, m.size, minBucketCount)
	if target <= len(m.buckets) {
		return
	}
	m.rehash(target)
	m.checkInvariants()
}

// maybeGrow doubles the bucket count if the load factor exceeds the
// configured maximum, reporting whether it did. A single doubling per
// mutation mirrors the growth policy of insertions.
func (m *Map[K, V]) maybeGrow() bool {
	if float64(m.size)/float64(len(m.buckets)) <= m.maxLoad {
		return false
	}
	m.rehash(2 * len(m.buckets))
	return true
}

// rehash replaces the bucket array with one of the specified size and
// relinks every entry into the bucket its key now hashes to. Chain order
// within a bucket is not preserved. Rehashing bumps the map's generation,
// invalidating all outstanding iterators.
func (m *Map[K, V]) rehash(count int) {
	if debug {
		fmt.Printf("rehash: buckets=%d->%d size=%d\n", len(m.buckets), count, m.size)
	}
	buckets := make([]*node[K, V], count)
	for _, head := range m.buckets {
		for n := head; n != nil; {
			next := n.next
			i := int(m.hash(n.key) % uint64(count))
			n.next = buckets[i]
			buckets[i] = n
			n = next
		}
	}
	m.buckets = buckets
	m.gen++
}

// LoadFactor returns the number of entries divided by the bucket count.
func (m *Map[K, V]) LoadFactor() float64 {
	return float64(m.size) / float64(len(m.buckets))
}

// MaxLoadFactor returns the load factor threshold above which an insertion
// grows the table.
func (m *Map[K, V]) MaxLoadFactor() float64 {
	return m.maxLoad
}

// SetMaxLoadFactor sets the load factor threshold and immediately grows the
// table if the current load factor now exceeds it. The value must be
// positive. Like insertion-triggered growth, the re-check performs at most
// one doubling, so a drastic reduction of the threshold may leave the load
// factor above it until subsequent insertions catch up.
func (m *Map[K, V]) SetMaxLoadFactor(f float64) {
	if f <= 0 {
		panic("chain: max load factor must be positive")
	}
	m.maxLoad = f
	m.maybeGrow()
	m.checkInvariants()
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.size
}

// BucketCount returns the current number of buckets.
func (m *Map[K, V]) BucketCount() int {
	return len(m.buckets)
}

// BucketSize returns the length of the chain in bucket i. It panics if i is
// out of range.
func (m *Map[K, V]) BucketSize(i int) int {
	var count int
	for n := m.buckets[i]; n != nil; n = n.next {
		count++
	}
	return count
}

// Bucket returns the index of the bucket the specified key hashes to. The
// index is stale after the next rehash.
func (m *Map[K, V]) Bucket(key K) int {
	return m.bucketIndex(m.hash(key))
}

// All returns an iterator over key-value pairs from m. The map may be
// mutated during iteration as long as no mutation rehashes it, though there
// is no guarantee that the mutations will be visible to the iteration; a
// rehash mid-iteration is detected and panics.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		gen := m.gen
		for i := 0; i < len(m.buckets); i++ {
			for n := m.buckets[i]; n != nil; n = n.next {
				if !yield(n.key, n.value) {
					return
				}
				if m.gen != gen {
					panic("chain: map rehashed during iteration")
				}
			}
		}
	}
}

// Keys returns an iterator over keys in m.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values returns an iterator over values in m.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Clone returns a copy of the map with the same bucket count, duplicate
// policy, maximum load factor, hash function, and equality function.
// Entries are reinserted, so chain order within a bucket is not preserved.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := &Map[K, V]{
		hash:    m.hash,
		equal:   m.equal,
		buckets: make([]*node[K, V], len(m.buckets)),
		maxLoad: m.maxLoad,
		multi:   m.multi,
	}
	for k, v := range m.All() {
		i := c.bucketIndex(c.hash(k))
		c.buckets[i] = &node[K, V]{next: c.buckets[i], key: k, value: v}
		c.size++
	}
	c.checkInvariants()
	return c
}

// Equal reports whether two maps contain the same entries: the sizes are
// equal and every entry of a is found in b, by key, with an equal value.
// The result is independent of bucket layout and insertion order. In a map
// that allows duplicates only the first entry per key is compared.
func Equal[K, V comparable](a, b *Map[K, V]) bool {
	return EqualFunc(a, b, func(x, y V) bool { return x == y })
}

// EqualFunc is like Equal, but compares values using eq.
func EqualFunc[K comparable, V1, V2 any](a *Map[K, V1], b *Map[K, V2], eq func(V1, V2) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	for k, v := range a.All() {
		n, _ := b.findNode(k)
		if n == nil || !eq(v, n.value) {
			return false
		}
	}
	return true
}

// bucketIndex returns the bucket the hash value h falls in.
func (m *Map[K, V]) bucketIndex(h uint64) int {
	return int(h % uint64(len(m.buckets)))
}

// findInBucket returns the first node in bucket i whose key equals the
// specified key, or nil.
func (m *Map[K, V]) findInBucket(key K, i int) *node[K, V] {
	for n := m.buckets[i]; n != nil; n = n.next {
		if m.equal(n.key, key) {
			return n
		}
	}
	return nil
}

// findNode returns the first node matching key and the index of its bucket.
func (m *Map[K, V]) findNode(key K) (*node[K, V], int) {
	i := m.bucketIndex(m.hash(key))
	return m.findInBucket(key, i), i
}

func (m *Map[K, V]) checkInvariants() {
	if invariants {
		if len(m.buckets) == 0 {
			panic("invariant failed: map has no buckets")
		}
		// Verify every entry is in the bucket its key hashes to, and that it
		// can be found by key.
		var size int
		for i, head := range m.buckets {
			for n := head; n != nil; n = n.next {
				size++
				if j := m.bucketIndex(m.hash(n.key)); j != i {
					panic(fmt.Sprintf("invariant failed: %v in bucket %d, expected %d\n%s",
						n.key, i, j, m.debugString()))
				}
				if m.findInBucket(n.key, i) == nil {
					panic(fmt.Sprintf("invariant failed: %v not findable in bucket %d\n%s",
						n.key, i, m.debugString()))
				}
			}
		}
		if size != m.size {
			panic(fmt.Sprintf("invariant failed: found %d entries, but size is %d\n%s",
				size, m.size, m.debugString()))
		}
	}
}

func (m *Map[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "buckets=%d  size=%d  max-load=%.2f\n", len(m.buckets), m.size, m.maxLoad)
	for i, head := range m.buckets {
		if head == nil {
			continue
		}
		fmt.Fprintf(&buf, "  %4d:", i)
		for n := head; n != nil; n = n.next {
			fmt.Fprintf(&buf, " %v", n.key)
		}
		fmt.Fprintf(&buf, "\n")
	}
	return buf.String()
}
