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

package signs

import (
	"github.com/awslabs/ar-ir-tools/analysis/fixpoint"
	"github.com/awslabs/ar-ir-tools/analysis/ir/bridge"
)

// Analyze runs the sign analysis forward over one function body.
func Analyze(cfg *bridge.Cfg) fixpoint.CfgState[Sign] {
	analysis := &fixpoint.Analysis[Sign]{
		Cfg:       cfg,
		Domain:    Domain{},
		Transfer:  &transfer{},
		Direction: fixpoint.Forward,
	}
	return analysis.Run()
}

type transfer struct{}

var _ fixpoint.Transfer[Sign] = &transfer{}

// Instruction implements fixpoint.Transfer.
func (t *transfer) Instruction(inst bridge.Instruction, store fixpoint.VariableStore[Sign]) {
	slot := inst.ResultSlot()
	if slot == bridge.NoRegister {
		return
	}
	switch i := inst.(type) {
	case bridge.BinaryOp:
		store.Set(slot, binarySign(i.Op, t.signOf(i.LHS, store), t.signOf(i.RHS, store)))
	case bridge.Phi:
		merged := Bot
		for _, option := range i.Options {
			merged = Domain{}.Join(merged, t.signOf(option.Value, store))
		}
		store.Set(slot, merged)
	case bridge.Select:
		store.Set(slot, Domain{}.Join(t.signOf(i.ThenValue, store), t.signOf(i.ElseValue, store)))
	case bridge.Freeze:
		store.Set(slot, t.signOf(i.Operand, store))
	case bridge.CastBitvec:
		// a widening cast preserves the two's-complement sign; a
		// truncation can flip it
		if i.BitsInto >= i.BitsFrom {
			store.Set(slot, t.signOf(i.Operand, store))
		} else {
			store.Set(slot, Top)
		}
	default:
		store.Set(slot, Top)
	}
}

// Terminator implements fixpoint.Transfer. Only an invoke writes a register.
func (t *transfer) Terminator(term bridge.Terminator, store fixpoint.VariableStore[Sign]) {
	if invoke, ok := term.(bridge.Invoke); ok && invoke.Result != bridge.NoRegister {
		store.Set(invoke.Result, Top)
	}
}

func (t *transfer) signOf(v bridge.Value, store fixpoint.VariableStore[Sign]) Sign {
	switch value := v.(type) {
	case bridge.ConstantValue:
		if literal, ok := value.Constant.(bridge.Bitvec); ok {
			return literalSign(literal)
		}
		return Top
	case bridge.Register:
		return store.Get(value.Index)
	default:
		return Top
	}
}

func literalSign(literal bridge.Bitvec) Sign {
	// the top bit of a width outside 1..64 is not addressable here
	if literal.Bits < 1 || literal.Bits > 64 {
		return Top
	}
	if literal.Value == 0 {
		return Zero
	}
	if literal.Bits < 64 && literal.Value&(uint64(1)<<(literal.Bits-1)) != 0 {
		return Neg
	}
	if literal.Bits == 64 && literal.Value>>63 != 0 {
		return Neg
	}
	return Pos
}

//gocyclo:ignore
func binarySign(op bridge.BinaryOperator, lhs, rhs Sign) Sign {
	if lhs == Bot || rhs == Bot {
		return Bot
	}
	switch op {
	case bridge.OpAdd:
		switch {
		case lhs == Zero:
			return rhs
		case rhs == Zero:
			return lhs
		case lhs == rhs && lhs != Top:
			// overflow aside, same-sign addition keeps the sign
			return lhs
		default:
			return Top
		}
	case bridge.OpSub:
		return binarySign(bridge.OpAdd, lhs, negate(rhs))
	case bridge.OpMul:
		switch {
		case lhs == Zero || rhs == Zero:
			return Zero
		case lhs == Top || rhs == Top:
			return Top
		case lhs == rhs:
			return Pos
		default:
			return Neg
		}
	case bridge.OpAnd:
		if lhs == Zero || rhs == Zero {
			return Zero
		}
		return Top
	case bridge.OpOr, bridge.OpXor:
		if lhs == Zero {
			return rhs
		}
		if rhs == Zero {
			return lhs
		}
		return Top
	case bridge.OpShl, bridge.OpShr, bridge.OpDiv, bridge.OpMod:
		if lhs == Zero {
			return Zero
		}
		return Top
	default:
		return Top
	}
}

func negate(s Sign) Sign {
	switch s {
	case Neg:
		return Pos
	case Pos:
		return Neg
	default:
		return s
	}
}
