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

// Iterator is a cursor over the entries of a Map:
//
//	for it := m.Iter(); it.Valid(); it.Next() {
//		fmt.Println(it.Key(), it.Value())
//	}
//
// A full traversal visits every entry exactly once, walking each bucket's
// chain in turn and skipping empty buckets; the order depends on the bucket
// layout and is not otherwise specified.
//
// An Iterator is invalidated by any rehash of its map: growth triggered by
// an insertion, an explicit Rehash or Reserve that changes the bucket
// count, and Clear. The iterator carries the rehash generation of the map
// at the time it was created, and its methods panic once the map's
// generation has moved on, rather than traversing a relinked table in a
// corrupted order. Erase does not invalidate iterators positioned at other
// entries; an iterator positioned at the erased entry itself continues to
// walk the remainder of that entry's old chain.
//
// The zero value for an Iterator is not usable; obtain one from Iter, Find,
// EqualRange, or the insertion operations.
type Iterator[K comparable, V any] struct {
	m      *Map[K, V]
	n      *node[K, V]
	bucket int
	gen    uint64
}

// Iter returns an iterator positioned at the first entry of the map, or an
// end iterator if the map is empty.
func (m *Map[K, V]) Iter() Iterator[K, V] {
	it := Iterator[K, V]{m: m, gen: m.gen}
	it.skipEmpty()
	return it
}

// EqualRange returns the bounds of the range of entries matching the
// specified key: an iterator positioned at the first match and an iterator
// positioned just past it. If the key is not present, both bounds are end
// iterators. The range never spans more than one entry, even in a map that
// allows duplicates, because duplicates are separate chain entries that are
// not grouped contiguously; callers that want every duplicate should use
// Count or All instead.
func (m *Map[K, V]) EqualRange(key K) (Iterator[K, V], Iterator[K, V]) {
	lo := m.Find(key)
	if !lo.Valid() {
		return lo, lo
	}
	hi := lo
	hi.Next()
	return lo, hi
}

// iterAt returns an iterator positioned at node n in the specified bucket,
// stamped with the map's current generation.
func (m *Map[K, V]) iterAt(n *node[K, V], bucket int) Iterator[K, V] {
	return Iterator[K, V]{m: m, n: n, bucket: bucket, gen: m.gen}
}

// end returns the one-past-the-last-bucket sentinel position.
func (m *Map[K, V]) end() Iterator[K, V] {
	return Iterator[K, V]{m: m, bucket: len(m.buckets), gen: m.gen}
}

// Valid reports whether the iterator is positioned at an entry. An end
// iterator is not valid.
func (it *Iterator[K, V]) Valid() bool {
	it.check()
	return it.n != nil
}

// Next advances the iterator to the next entry: the successor in the
// current chain, or the head of the next non-empty bucket. It panics if the
// iterator is already at the end.
func (it *Iterator[K, V]) Next() {
	n := it.ref()
	it.n = n.next
	if it.n == nil {
		it.bucket++
		it.skipEmpty()
	}
}

// Key returns the key of the entry the iterator is positioned at.
func (it *Iterator[K, V]) Key() K {
	return it.ref().key
}

// Value returns the value of the entry the iterator is positioned at.
func (it *Iterator[K, V]) Value() V {
	return it.ref().value
}

// Ref returns a pointer to the value of the entry the iterator is
// positioned at. Like the pointers returned by Map.Ref, it remains valid
// until the entry is erased, even across rehashes.
func (it *Iterator[K, V]) Ref() *V {
	return &it.ref().value
}

// Equal reports whether two iterators are positioned at the same entry. All
// end iterators of a map compare equal to each other.
func (it *Iterator[K, V]) Equal(other Iterator[K, V]) bool {
	return it.n == other.n
}

// skipEmpty positions the iterator at the head of the first non-empty
// bucket at or after it.bucket, or at the end if every remaining bucket is
// empty.
func (it *Iterator[K, V]) skipEmpty() {
	for it.bucket < len(it.m.buckets) && it.m.buckets[it.bucket] == nil {
		it.bucket++
	}
	if it.bucket < len(it.m.buckets) {
		it.n = it.m.buckets[it.bucket]
	} else {
		it.n = nil
	}
}

func (it *Iterator[K, V]) check() {
	if it.gen != it.m.gen {
		panic("chain: iterator used after rehash")
	}
}

// ref returns the node the iterator is positioned at, panicking if the
// iterator has been invalidated by a rehash or is at the end.
func (it *Iterator[K, V]) ref() *node[K, V] {
	it.check()
	if it.n == nil {
		panic("chain: iterator is not positioned at an entry")
	}
	return it.n
}
