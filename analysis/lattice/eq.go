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

import "fmt"

// EqDomain is the degenerate domain over values ordered only by equality,
// with a designated bottom below everything. Joining two distinct non-bottom
// values has no upper bound and panics; use it for components that a
// transfer function never actually merges.
type EqDomain[T comparable] struct {
	bot T
}

// NewEqDomain builds the equality domain with the given bottom value.
func NewEqDomain[T comparable](bot T) EqDomain[T] {
	return EqDomain[T]{bot: bot}
}

// Bottom implements Domain.
func (d EqDomain[T]) Bottom() T { return d.bot }

// Join implements Domain.
func (d EqDomain[T]) Join(a, b T) T {
	switch {
	case a == b, b == d.bot:
		return a
	case a == d.bot:
		return b
	default:
		panic(fmt.Sprintf("no upper bound for distinct values %v and %v", a, b))
	}
}

// Widen implements Domain.
func (d EqDomain[T]) Widen(next, prev T) T { return d.Join(next, prev) }

// Narrow implements Domain.
func (d EqDomain[T]) Narrow(next, _ T) T { return next }

// Compare implements Domain.
func (d EqDomain[T]) Compare(a, b T) Order {
	switch {
	case a == b:
		return Equal
	case a == d.bot:
		return Less
	case b == d.bot:
		return Greater
	default:
		return Incomparable
	}
}
