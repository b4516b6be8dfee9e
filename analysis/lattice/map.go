// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lattice

// MapDomain lifts an inner domain pointwise over maps. Unlike a domain that
// orders maps by their key sets, an absent key here stands for the inner
// bottom: a key bound to bottom and a missing key are equal elements, and a
// key present on only one side orders the maps strictly only when its value
// sits strictly above bottom. The fixed-point engine keeps one key set across
// all stores of a run and never observes the difference.
type MapDomain[K comparable, E any] struct {
	inner Domain[E]
}

// NewMapDomain lifts an inner domain over maps.
func NewMapDomain[K comparable, E any](inner Domain[E]) MapDomain[K, E] {
	return MapDomain[K, E]{inner: inner}
}

// Bottom implements Domain.
func (MapDomain[K, E]) Bottom() map[K]E { return map[K]E{} }

// Join implements Domain.
func (d MapDomain[K, E]) Join(a, b map[K]E) map[K]E {
	return d.pointwise(a, b, d.inner.Join)
}

// Widen implements Domain.
func (d MapDomain[K, E]) Widen(next, prev map[K]E) map[K]E {
	return d.pointwise(next, prev, d.inner.Widen)
}

// Narrow implements Domain.
func (d MapDomain[K, E]) Narrow(next, prev map[K]E) map[K]E {
	return d.pointwise(next, prev, d.inner.Narrow)
}

func (d MapDomain[K, E]) pointwise(a, b map[K]E, op func(E, E) E) map[K]E {
	out := make(map[K]E, len(a))
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			bv = d.inner.Bottom()
		}
		out[k] = op(av, bv)
	}
	for k, bv := range b {
		if _, ok := a[k]; !ok {
			out[k] = op(d.inner.Bottom(), bv)
		}
	}
	return out
}

// Compare implements Domain.
func (d MapDomain[K, E]) Compare(a, b map[K]E) Order {
	result := Equal
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			bv = d.inner.Bottom()
		}
		result = Product(result, d.inner.Compare(av, bv))
		if result == Incomparable {
			return Incomparable
		}
	}
	for k, bv := range b {
		if _, ok := a[k]; !ok {
			result = Product(result, d.inner.Compare(d.inner.Bottom(), bv))
			if result == Incomparable {
				return Incomparable
			}
		}
	}
	return result
}
