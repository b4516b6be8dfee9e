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

// Package liveness computes, per block, the registers whose values may
// still be read on some path from the block entry.
package liveness

import (
	"github.com/awslabs/ar-ir-tools/analysis/fixpoint"
	"github.com/awslabs/ar-ir-tools/analysis/ir/bridge"
	"github.com/awslabs/ar-ir-tools/analysis/lattice"
	"golang.org/x/tools/container/intsets"
)

// Domain is the two-point liveness lattice over one register: dead below
// live.
type Domain struct{}

var _ lattice.Domain[bool] = Domain{}

// Bottom implements lattice.Domain.
func (Domain) Bottom() bool { return false }

// Join implements lattice.Domain.
func (Domain) Join(a, b bool) bool { return a || b }

// Widen implements lattice.Domain.
func (d Domain) Widen(next, prev bool) bool { return d.Join(next, prev) }

// Narrow implements lattice.Domain.
func (Domain) Narrow(next, _ bool) bool { return next }

// Compare implements lattice.Domain.
func (Domain) Compare(a, b bool) lattice.Order {
	switch {
	case a == b:
		return lattice.Equal
	case b:
		return lattice.Less
	default:
		return lattice.Greater
	}
}

// Analyze runs the liveness analysis backward and returns the set of
// registers live at each block entry.
func Analyze(cfg *bridge.Cfg) map[bridge.BlockLabel]*intsets.Sparse {
	analysis := &fixpoint.Analysis[bool]{
		Cfg:       cfg,
		Domain:    Domain{},
		Transfer:  &transfer{},
		Direction: fixpoint.Backward,
	}
	state := analysis.Run()

	live := make(map[bridge.BlockLabel]*intsets.Sparse, len(state))
	for label, block := range state {
		set := &intsets.Sparse{}
		for slot, isLive := range block.In {
			if isLive {
				set.Insert(int(slot))
			}
		}
		live[label] = set
	}
	return live
}

type transfer struct{}

var _ fixpoint.Transfer[bool] = &transfer{}

// Instruction implements fixpoint.Transfer: the definition dies before the
// instruction, the operands become live.
func (t *transfer) Instruction(inst bridge.Instruction, store fixpoint.VariableStore[bool]) {
	if slot := inst.ResultSlot(); slot != bridge.NoRegister {
		store.Set(slot, false)
	}
	for _, used := range instructionUses(inst) {
		store.Set(used, true)
	}
}

// Terminator implements fixpoint.Transfer.
func (t *transfer) Terminator(term bridge.Terminator, store fixpoint.VariableStore[bool]) {
	if invoke, ok := term.(bridge.Invoke); ok && invoke.Result != bridge.NoRegister {
		store.Set(invoke.Result, false)
	}
	for _, used := range terminatorUses(term) {
		store.Set(used, true)
	}
}

// instructionUses lists the registers an instruction reads. The switch is
// exhaustive over the instruction sum.
//gocyclo:ignore
func instructionUses(inst bridge.Instruction) []bridge.RegisterSlot {
	switch i := inst.(type) {
	case bridge.Alloca:
		return registersIn(i.Size)
	case bridge.Load:
		return registersIn(i.Pointer)
	case bridge.Store:
		return registersIn(i.Pointer, i.Stored)
	case bridge.Call:
		return registersIn(append([]bridge.Value{i.Callee}, i.Args...)...)
	case bridge.BinaryOp:
		return registersIn(i.LHS, i.RHS)
	case bridge.CompareOp:
		return registersIn(i.LHS, i.RHS)
	case bridge.CastBitvec:
		return registersIn(i.Operand)
	case bridge.CastPtrToBitvec:
		return registersIn(i.Operand)
	case bridge.CastBitvecToPtr:
		return registersIn(i.Operand)
	case bridge.CastPtr:
		return registersIn(i.Operand)
	case bridge.Freeze:
		return registersIn(i.Operand)
	case bridge.GEP:
		return registersIn(append([]bridge.Value{i.Pointer}, i.Indices...)...)
	case bridge.Select:
		return registersIn(i.Cond, i.ThenValue, i.ElseValue)
	case bridge.Phi:
		var values []bridge.Value
		for _, option := range i.Options {
			values = append(values, option.Value)
		}
		return registersIn(values...)
	case bridge.GetValue:
		return registersIn(i.Aggregate)
	case bridge.SetValue:
		return registersIn(i.Aggregate, i.Stored)
	case bridge.LandingPad:
		return nil
	default:
		return nil
	}
}

// terminatorUses lists the registers a terminator reads.
func terminatorUses(term bridge.Terminator) []bridge.RegisterSlot {
	switch t := term.(type) {
	case bridge.Branch:
		return registersIn(t.Cond)
	case bridge.Switch:
		return registersIn(t.Cond)
	case bridge.IndirectJump:
		return registersIn(t.Address)
	case bridge.Invoke:
		return registersIn(append([]bridge.Value{t.Callee}, t.Args...)...)
	case bridge.Return:
		return registersIn(t.Val)
	case bridge.Resume:
		return registersIn(t.Val)
	default:
		return nil
	}
}

func registersIn(values ...bridge.Value) []bridge.RegisterSlot {
	var slots []bridge.RegisterSlot
	for _, value := range values {
		if register, ok := value.(bridge.Register); ok {
			slots = append(slots, register.Index)
		}
	}
	return slots
}
