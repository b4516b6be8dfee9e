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

// Package lattice defines the abstract-domain interface of the fixed-point
// engine and generic combinators for assembling product, powerset, and map
// domains out of smaller ones.
package lattice

// Order is the outcome of comparing two elements of a partial order.
type Order int

const (
	// Incomparable means neither element approximates the other.
	Incomparable Order = iota
	// Less means the first element strictly under-approximates the second.
	Less
	// Equal means the two elements coincide.
	Equal
	// Greater means the first element strictly over-approximates the second.
	Greater
)

func (o Order) String() string {
	switch o {
	case Incomparable:
		return "incomparable"
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	default:
		return "unknown"
	}
}

// AtMost reports whether the comparison outcome is Less or Equal.
func (o Order) AtMost() bool { return o == Less || o == Equal }

// A Domain packages the lattice operations over an element type. Elements
// are treated as immutable: every operation returns a fresh element and
// never mutates its operands. Join must be commutative, associative, and
// idempotent; Widen(next, prev) must over-approximate Join(next, prev) and
// stabilize every ascending chain; Narrow(next, prev) must stay between its
// operands.
type Domain[E any] interface {
	// Bottom returns the least element.
	Bottom() E

	// Join returns the least upper bound of a and b.
	Join(a, b E) E

	// Widen extrapolates from the previous iterate to a post-fixed point.
	Widen(next, prev E) E

	// Narrow refines a post-fixed point toward the previous iterate.
	Narrow(next, prev E) E

	// Compare relates a and b under the partial order.
	Compare(a, b E) Order
}

// Product combines two component comparisons under the product order: the
// pair relation holds only when it holds componentwise.
func Product(a, b Order) Order {
	switch {
	case a == Equal:
		return b
	case b == Equal:
		return a
	case a == b:
		return a
	default:
		return Incomparable
	}
}
