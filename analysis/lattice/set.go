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

// Set is a finite set of values, ordered by inclusion.
type Set[T comparable] map[T]bool

// NewSet builds a set from its elements.
func NewSet[T comparable](xs ...T) Set[T] {
	s := make(Set[T], len(xs))
	for _, x := range xs {
		s[x] = true
	}
	return s
}

// Contains reports membership.
func (s Set[T]) Contains(x T) bool { return s[x] }

// Copy returns an independent set with the same elements.
func (s Set[T]) Copy() Set[T] {
	out := make(Set[T], len(s))
	for x := range s {
		out[x] = true
	}
	return out
}

// SetDomain is the powerset domain over a value type. Widening is the plain
// union: ascending chains stabilize whenever the value universe is finite,
// which holds for every analysis shipped here.
type SetDomain[T comparable] struct{}

// NewSetDomain builds the powerset domain.
func NewSetDomain[T comparable]() SetDomain[T] {
	return SetDomain[T]{}
}

// Bottom implements Domain.
func (SetDomain[T]) Bottom() Set[T] { return Set[T]{} }

// Join implements Domain.
func (SetDomain[T]) Join(a, b Set[T]) Set[T] {
	out := a.Copy()
	for x := range b {
		out[x] = true
	}
	return out
}

// Widen implements Domain.
func (d SetDomain[T]) Widen(next, prev Set[T]) Set[T] {
	return d.Join(next, prev)
}

// Narrow implements Domain. The intersection lies between the operands of
// any decreasing iteration.
func (SetDomain[T]) Narrow(next, prev Set[T]) Set[T] {
	out := make(Set[T])
	for x := range next {
		if prev[x] {
			out[x] = true
		}
	}
	return out
}

// Compare implements Domain.
func (SetDomain[T]) Compare(a, b Set[T]) Order {
	aInB := subset(a, b)
	bInA := subset(b, a)
	switch {
	case aInB && bInA:
		return Equal
	case aInB:
		return Less
	case bInA:
		return Greater
	default:
		return Incomparable
	}
}

func subset[T comparable](a, b Set[T]) bool {
	for x := range a {
		if !b[x] {
			return false
		}
	}
	return true
}
