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

package chain

import "iter"

// Set is an unordered set of keys, backed by a Map whose entries carry an
// empty payload. Every operation is a direct pass-through to the underlying
// table, with iterator-shaped results projected down to keys. A Set holds
// at most one entry per key.
//
// A Set is NOT goroutine-safe.
type Set[K comparable] struct {
	m *Map[K, struct{}]
}

// NewSet constructs a new Set with the specified initial bucket count. If
// initialCapacity is not positive the set starts with a default bucket
// count of 16. Options are forwarded to the underlying table, except that
// WithDuplicates panics: a Set is unique-key by contract. The zero value
// for a Set is not usable.
func NewSet[K comparable](initialCapacity int, options ...option[K, struct{}]) *Set[K] {
	for _, op := range options {
		if _, ok := op.(duplicatesOption[K, struct{}]); ok {
			panic("chain: WithDuplicates is not applicable to Set")
		}
	}
	return &Set[K]{m: New[K, struct{}](initialCapacity, options...)}
}

// CollectSet constructs a Set from the keys in seq. Keys yielded more than
// once appear in the set once.
func CollectSet[K comparable](seq iter.Seq[K], options ...option[K, struct{}]) *Set[K] {
	s := NewSet[K](0, options...)
	for k := range seq {
		s.Insert(k)
	}
	return s
}

// SetIterator is a cursor over the keys of a Set. It has the same traversal
// order and invalidation behavior as the Map Iterator it wraps.
type SetIterator[K comparable] struct {
	it Iterator[K, struct{}]
}

// Valid reports whether the iterator is positioned at a key.
func (it *SetIterator[K]) Valid() bool {
	return it.it.Valid()
}

// Next advances the iterator to the next key. It panics if the iterator is
// already at the end.
func (it *SetIterator[K]) Next() {
	it.it.Next()
}

// Key returns the key the iterator is positioned at.
func (it *SetIterator[K]) Key() K {
	return it.it.Key()
}

// Equal reports whether two iterators are positioned at the same key. All
// end iterators of a set compare equal to each other.
func (it *SetIterator[K]) Equal(other SetIterator[K]) bool {
	return it.it.Equal(other.it)
}

// Insert adds the key to the set and returns an iterator positioned at it,
// along with true. If the key is already present, nothing is inserted and
// Insert returns an iterator positioned at the existing key, along with
// false.
func (s *Set[K]) Insert(key K) (SetIterator[K], bool) {
	it, inserted := s.m.Insert(key, struct{}{})
	return SetIterator[K]{it}, inserted
}

// Erase removes the key from the set, returning the number of keys removed
// (0 or 1).
func (s *Set[K]) Erase(key K) int {
	return s.m.Erase(key)
}

// Find returns an iterator positioned at the key, or an end iterator if the
// key is not present.
func (s *Set[K]) Find(key K) SetIterator[K] {
	return SetIterator[K]{s.m.Find(key)}
}

// Count returns 1 if the key is present and 0 otherwise.
func (s *Set[K]) Count(key K) int {
	return s.m.Count(key)
}

// Contains reports whether the key is present in the set.
func (s *Set[K]) Contains(key K) bool {
	return s.m.Contains(key)
}

// EqualRange returns the bounds of the range of keys matching the specified
// key: at most one element, or an empty range of two end iterators if the
// key is not present.
func (s *Set[K]) EqualRange(key K) (SetIterator[K], SetIterator[K]) {
	lo, hi := s.m.EqualRange(key)
	return SetIterator[K]{lo}, SetIterator[K]{hi}
}

// Len returns the number of keys in the set.
func (s *Set[K]) Len() int {
	return s.m.Len()
}

// Clear removes every key from the set. The bucket count is retained.
func (s *Set[K]) Clear() {
	s.m.Clear()
}

// Reserve grows the bucket array to hold at least n buckets. It is
// shorthand for Rehash.
func (s *Set[K]) Reserve(n int) {
	s.m.Reserve(n)
}

// Rehash grows the bucket array to max(n, Len(), 8) buckets and relinks
// every key into its new bucket. Rehash never shrinks the bucket array.
func (s *Set[K]) Rehash(n int) {
	s.m.Rehash(n)
}

// LoadFactor returns the number of keys divided by the bucket count.
func (s *Set[K]) LoadFactor() float64 {
	return s.m.LoadFactor()
}

// MaxLoadFactor returns the load factor threshold above which an insertion
// grows the table.
func (s *Set[K]) MaxLoadFactor() float64 {
	return s.m.MaxLoadFactor()
}

// SetMaxLoadFactor sets the load factor threshold and immediately grows the
// table if the current load factor now exceeds it. The value must be
// positive.
func (s *Set[K]) SetMaxLoadFactor(f float64) {
	s.m.SetMaxLoadFactor(f)
}

// BucketCount returns the current number of buckets.
func (s *Set[K]) BucketCount() int {
	return s.m.BucketCount()
}

// BucketSize returns the length of the chain in bucket i. It panics if i is
// out of range.
func (s *Set[K]) BucketSize(i int) int {
	return s.m.BucketSize(i)
}

// Bucket returns the index of the bucket the specified key hashes to. The
// index is stale after the next rehash.
func (s *Set[K]) Bucket(key K) int {
	return s.m.Bucket(key)
}

// Iter returns an iterator positioned at the first key of the set, or an
// end iterator if the set is empty.
func (s *Set[K]) Iter() SetIterator[K] {
	return SetIterator[K]{s.m.Iter()}
}

// All returns an iterator over keys in s. The set may be mutated during
// iteration as long as no mutation rehashes it; a rehash mid-iteration is
// detected and panics.
func (s *Set[K]) All() iter.Seq[K] {
	return s.m.Keys()
}

// Equal reports whether two sets contain the same keys. The result is
// independent of bucket layout and insertion order.
func (s *Set[K]) Equal(other *Set[K]) bool {
	return EqualFunc(s.m, other.m, func(struct{}, struct{}) bool { return true })
}

// Clone returns a copy of the set with the same bucket count, maximum load
// factor, hash function, and equality function.
func (s *Set[K]) Clone() *Set[K] {
	return &Set[K]{m: s.m.Clone()}
}
