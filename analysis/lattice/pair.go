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

// Pair is an element of a product domain.
type Pair[A, B any] struct {
	First  A
	Second B
}

// PairDomain is the product of two domains under the componentwise order.
type PairDomain[A, B any] struct {
	first  Domain[A]
	second Domain[B]
}

// NewPairDomain builds the product of two domains.
func NewPairDomain[A, B any](first Domain[A], second Domain[B]) PairDomain[A, B] {
	return PairDomain[A, B]{first: first, second: second}
}

// Bottom implements Domain.
func (d PairDomain[A, B]) Bottom() Pair[A, B] {
	return Pair[A, B]{First: d.first.Bottom(), Second: d.second.Bottom()}
}

// Join implements Domain.
func (d PairDomain[A, B]) Join(a, b Pair[A, B]) Pair[A, B] {
	return Pair[A, B]{
		First:  d.first.Join(a.First, b.First),
		Second: d.second.Join(a.Second, b.Second),
	}
}

// Widen implements Domain.
func (d PairDomain[A, B]) Widen(next, prev Pair[A, B]) Pair[A, B] {
	return Pair[A, B]{
		First:  d.first.Widen(next.First, prev.First),
		Second: d.second.Widen(next.Second, prev.Second),
	}
}

// Narrow implements Domain.
func (d PairDomain[A, B]) Narrow(next, prev Pair[A, B]) Pair[A, B] {
	return Pair[A, B]{
		First:  d.first.Narrow(next.First, prev.First),
		Second: d.second.Narrow(next.Second, prev.Second),
	}
}

// Compare implements Domain.
func (d PairDomain[A, B]) Compare(a, b Pair[A, B]) Order {
	return Product(d.first.Compare(a.First, b.First), d.second.Compare(a.Second, b.Second))
}
