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

// Package signs infers the sign of every integer register under a
// two's-complement reading: negative, zero, positive, or unknown.
package signs

import (
	"github.com/awslabs/ar-ir-tools/analysis/lattice"
)

// Sign is one element of the five-point sign lattice.
type Sign int

const (
	// Bot is the sign of a register no execution has written yet.
	Bot Sign = iota
	// Neg covers strictly negative values.
	Neg
	// Zero covers exactly zero.
	Zero
	// Pos covers strictly positive values.
	Pos
	// Top covers any value, including non-integers.
	Top
)

func (s Sign) String() string {
	switch s {
	case Bot:
		return "bot"
	case Neg:
		return "neg"
	case Zero:
		return "zero"
	case Pos:
		return "pos"
	case Top:
		return "top"
	default:
		return "unknown"
	}
}

// Domain is the sign lattice. The lattice is finite, so widening is the
// join.
type Domain struct{}

var _ lattice.Domain[Sign] = Domain{}

// Bottom implements lattice.Domain.
func (Domain) Bottom() Sign { return Bot }

// Join implements lattice.Domain.
func (Domain) Join(a, b Sign) Sign {
	switch {
	case a == b:
		return a
	case a == Bot:
		return b
	case b == Bot:
		return a
	default:
		return Top
	}
}

// Widen implements lattice.Domain.
func (d Domain) Widen(next, prev Sign) Sign { return d.Join(next, prev) }

// Narrow implements lattice.Domain.
func (Domain) Narrow(next, _ Sign) Sign { return next }

// Compare implements lattice.Domain.
func (Domain) Compare(a, b Sign) lattice.Order {
	switch {
	case a == b:
		return lattice.Equal
	case a == Bot, b == Top:
		return lattice.Less
	case b == Bot, a == Top:
		return lattice.Greater
	default:
		return lattice.Incomparable
	}
}
