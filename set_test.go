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

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetBasic(t *testing.T) {
	fruits := CollectSet(slices.Values([]string{"apple", "banana", "cherry"}))
	require.Equal(t, 3, fruits.Len())

	_, inserted := fruits.Insert("mango")
	require.True(t, inserted)

	// A duplicate insert is rejected.
	_, inserted = fruits.Insert("banana")
	require.False(t, inserted)
	require.Equal(t, 4, fruits.Len())

	it := fruits.Find("banana")
	require.True(t, it.Valid())
	require.Equal(t, "banana", it.Key())
	require.True(t, fruits.Contains("banana"))
	require.Equal(t, 1, fruits.Count("apple"))
	require.Equal(t, 0, fruits.Count("pear"))

	require.Equal(t, 1, fruits.Erase("apple"))
	require.False(t, fruits.Contains("apple"))
	require.Equal(t, 3, fruits.Len())

	got := slices.Sorted(fruits.All())
	require.Equal(t, []string{"banana", "cherry", "mango"}, got)
}

func TestSetCollect(t *testing.T) {
	// Duplicate elements in the source collapse to one.
	s := CollectSet(slices.Values([]int{1, 2, 2, 3, 3, 3}))
	require.Equal(t, 3, s.Len())
	for _, k := range []int{1, 2, 3} {
		require.True(t, s.Contains(k))
	}
}

func TestSetIterator(t *testing.T) {
	s := NewSet[int](16)
	for i := 0; i < 10; i++ {
		s.Insert(i)
	}

	seen := make(map[int]bool)
	var visits int
	for it := s.Iter(); it.Valid(); it.Next() {
		seen[it.Key()] = true
		visits++
	}
	require.Equal(t, s.Len(), visits)
	require.Equal(t, 10, len(seen))

	it := NewSet[int](16).Iter()
	require.False(t, it.Valid())
	require.Panics(t, func() { it.Key() })
}

func TestSetEqualRange(t *testing.T) {
	s := NewSet[string](16)
	s.Insert("apple")
	s.Insert("banana")

	lo, hi := s.EqualRange("apple")
	require.True(t, lo.Valid())
	require.Equal(t, "apple", lo.Key())
	lo.Next()
	require.True(t, lo.Equal(hi))

	lo, hi = s.EqualRange("pear")
	require.False(t, lo.Valid())
	require.True(t, lo.Equal(hi))
}

func TestSetTableControls(t *testing.T) {
	s := NewSet[int](16)
	require.Equal(t, 16, s.BucketCount())
	require.Equal(t, 0.75, s.MaxLoadFactor())

	for i := 0; i < 12; i++ {
		s.Insert(i)
	}
	require.Equal(t, 16, s.BucketCount())
	require.Equal(t, 0.75, s.LoadFactor())

	// The 13th insert crosses the threshold and doubles the buckets.
	s.Insert(12)
	require.Equal(t, 32, s.BucketCount())
	for i := 0; i < 13; i++ {
		require.True(t, s.Contains(i))
	}

	s.Reserve(100)
	require.GreaterOrEqual(t, s.BucketCount(), 100)
	for i := 0; i < 13; i++ {
		require.True(t, s.Contains(i))
	}

	s.SetMaxLoadFactor(0.1)
	require.Equal(t, 0.1, s.MaxLoadFactor())
	require.LessOrEqual(t, s.LoadFactor(), 0.1)

	i := s.Bucket(5)
	require.Less(t, i, s.BucketCount())
	require.GreaterOrEqual(t, s.BucketSize(i), 1)

	s.Clear()
	require.Equal(t, 0, s.Len())
	require.GreaterOrEqual(t, s.BucketCount(), 100)

	s.Insert(1)
	require.True(t, s.Contains(1))
}

func TestSetRehash(t *testing.T) {
	s := NewSet[int](8)
	for i := 0; i < 5; i++ {
		s.Insert(i)
	}

	s.Rehash(64)
	require.Equal(t, 64, s.BucketCount())
	for i := 0; i < 5; i++ {
		require.True(t, s.Contains(i))
	}

	// Rehash never shrinks.
	s.Rehash(8)
	require.Equal(t, 64, s.BucketCount())
}

func TestSetEqual(t *testing.T) {
	a := NewSet[string](16)
	b := NewSet[string](4)
	for _, k := range []string{"apple", "banana", "cherry"} {
		a.Insert(k)
	}
	for _, k := range []string{"cherry", "apple", "banana"} {
		b.Insert(k)
	}

	// Equality ignores bucket layout and insertion order.
	require.True(t, a.Equal(b))
	require.True(t, b.Equal(a))

	b.Insert("date")
	require.False(t, a.Equal(b))
	require.False(t, b.Equal(a))
}

func TestSetClone(t *testing.T) {
	a := NewSet[string](16)
	a.Insert("apple")
	a.Insert("banana")

	c := a.Clone()
	require.True(t, a.Equal(c))

	c.Erase("apple")
	require.True(t, a.Contains("apple"))
	require.False(t, c.Contains("apple"))
}

func TestSetOptions(t *testing.T) {
	// Options flow through to the underlying table.
	s := NewSet[int](16, WithHash[int, struct{}](func(key int) uint64 {
		return 7
	}))
	for i := 0; i < 5; i++ {
		s.Insert(i)
	}
	require.Equal(t, 5, s.Len())
	require.Equal(t, 5, s.BucketSize(s.Bucket(0)))
	for i := 0; i < 5; i++ {
		require.True(t, s.Contains(i))
	}

	require.Panics(t, func() {
		NewSet[int](0, WithDuplicates[int, struct{}]())
	})
}
