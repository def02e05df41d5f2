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

// option provide an interface to do work on Map while it is being created.
type option[K comparable, V any] interface {
	apply(m *Map[K, V])
}

type hashOption[K comparable, V any] struct {
	hash HashFunc[K]
}

func (op hashOption[K, V]) apply(m *Map[K, V]) {
	m.hash = op.hash
}

// WithHash is an option to specify the hash function to use for a Map[K,V].
// The hash function must be consistent with the equality function: keys that
// compare equal must hash to the same value.
func WithHash[K comparable, V any](hash HashFunc[K]) option[K, V] {
	return hashOption[K, V]{hash}
}

type equalOption[K comparable, V any] struct {
	equal func(a, b K) bool
}

func (op equalOption[K, V]) apply(m *Map[K, V]) {
	m.equal = op.equal
}

// WithEqual is an option to specify the key equality function to use for a
// Map[K,V]. The default is ==. A custom equality function is almost always
// paired with a custom hash function via WithHash, since keys that compare
// equal must hash to the same value.
func WithEqual[K comparable, V any](equal func(a, b K) bool) option[K, V] {
	return equalOption[K, V]{equal}
}

type maxLoadFactorOption[K comparable, V any] struct {
	maxLoadFactor float64
}

func (op maxLoadFactorOption[K, V]) apply(m *Map[K, V]) {
	if op.maxLoadFactor <= 0 {
		panic("chain: max load factor must be positive")
	}
	m.maxLoad = op.maxLoadFactor
}

// WithMaxLoadFactor is an option to specify the load factor threshold above
// which an insertion doubles the bucket count. The default is 0.75. The value
// must be positive.
func WithMaxLoadFactor[K comparable, V any](maxLoadFactor float64) option[K, V] {
	return maxLoadFactorOption[K, V]{maxLoadFactor}
}

type duplicatesOption[K comparable, V any] struct{}

func (op duplicatesOption[K, V]) apply(m *Map[K, V]) {
	m.multi = true
}

// WithDuplicates is an option to permit multiple entries with equal keys in a
// Map[K,V]. The policy is fixed for the lifetime of the map. It changes the
// behavior of several operations: Insert and TryEmplace skip the existence
// scan and always add an entry, Erase removes every matching entry rather
// than the first, and Count may report values greater than 1.
func WithDuplicates[K comparable, V any]() option[K, V] {
	return duplicatesOption[K, V]{}
}
