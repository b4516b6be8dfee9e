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

package liveness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/container/intsets"

	"github.com/awslabs/ar-ir-tools/analysis/ir/adapter"
	"github.com/awslabs/ar-ir-tools/analysis/ir/bridge"
)

func strPtr(s string) *string { return &s }

func intTy(width int) adapter.Type { return adapter.Type{Kind: adapter.TypeInt, Width: width} }

func voidTy() adapter.Type { return adapter.Type{Kind: adapter.TypeVoid} }

func intVal(width int, repr string) adapter.Value {
	c := adapter.Constant{Ty: intTy(width), Repr: adapter.Const{Kind: adapter.ConstInt, Value: repr}}
	return adapter.Value{Kind: adapter.ValueConstant, Constant: &c}
}

func regVal(index int, ty adapter.Type) adapter.Value {
	return adapter.Value{Kind: adapter.ValueInstruction, Index: index, Ty: &ty}
}

func addInst(index int, lhs, rhs adapter.Value) adapter.Instruction {
	return adapter.Instruction{Ty: intTy(32), Index: index, Repr: adapter.Inst{
		Kind: adapter.InstBinary, Opcode: "add", LHS: &lhs, RHS: &rhs,
	}}
}

func retVoid(index int) adapter.Instruction {
	return adapter.Instruction{Ty: voidTy(), Index: index, Repr: adapter.Inst{Kind: adapter.InstReturn}}
}

func gotoBlock(index, target int) adapter.Instruction {
	return adapter.Instruction{Ty: voidTy(), Index: index, Repr: adapter.Inst{
		Kind: adapter.InstBranch, Targets: []int{target},
	}}
}

func condBranch(index int, cond adapter.Value, thenBlock, elseBlock int) adapter.Instruction {
	return adapter.Instruction{Ty: voidTy(), Index: index, Repr: adapter.Inst{
		Kind: adapter.InstBranch, Cond: &cond, Targets: []int{thenBlock, elseBlock},
	}}
}

func buildCfg(t *testing.T, blocks ...adapter.Block) *bridge.Cfg {
	t.Helper()
	fn := adapter.Function{
		Name:      strPtr("f"),
		Ty:        adapter.Type{Kind: adapter.TypeFunction, Ret: &adapter.Type{Kind: adapter.TypeVoid}},
		IsDefined: true,
		IsExact:   true,
		Blocks:    blocks,
	}
	registry, err := bridge.PopulateTypes(nil)
	require.NoError(t, err)
	symbols, err := bridge.PopulateSymbols(nil, []adapter.Function{fn})
	require.NoError(t, err)
	converted, err := bridge.ConvertFunction(fn, registry, symbols)
	require.NoError(t, err)
	return converted.Body
}

func sparse(slots ...int) *intsets.Sparse {
	set := &intsets.Sparse{}
	for _, slot := range slots {
		set.Insert(slot)
	}
	return set
}

func assertLive(t *testing.T, live map[bridge.BlockLabel]*intsets.Sparse, label bridge.BlockLabel, want *intsets.Sparse) {
	t.Helper()
	got, ok := live[label]
	require.True(t, ok, "missing block %d", label)
	assert.True(t, got.Equals(want), "live at entry of %d: got %s, want %s", label, got, want)
}

// TestLivenessDiamond checks the classic diamond: both phi operands stay
// live across the branch they were not defined on.
//
//	0: br 1, 2
//	1: r10 = 1 + 2
//	2: r20 = -1 + -2
//	3: r30 = phi(1: r10, 2: r20)
func TestLivenessDiamond(t *testing.T) {
	cfg := buildCfg(t,
		adapter.Block{Label: 0, Terminator: condBranch(100, intVal(1, "1"), 1, 2)},
		adapter.Block{
			Label:      1,
			Body:       []adapter.Instruction{addInst(10, intVal(32, "1"), intVal(32, "2"))},
			Terminator: gotoBlock(101, 3),
		},
		adapter.Block{
			Label:      2,
			Body:       []adapter.Instruction{addInst(20, intVal(32, "-1"), intVal(32, "-2"))},
			Terminator: gotoBlock(102, 3),
		},
		adapter.Block{
			Label: 3,
			Body: []adapter.Instruction{{Ty: intTy(32), Index: 30, Repr: adapter.Inst{
				Kind: adapter.InstPhi,
				Options: []adapter.PhiOption{
					{Block: 1, Value: regVal(10, intTy(32))},
					{Block: 2, Value: regVal(20, intTy(32))},
				},
			}}},
			Terminator: retVoid(103),
		},
	)

	live := Analyze(cfg)
	assertLive(t, live, 3, sparse(10, 20))
	assertLive(t, live, 1, sparse(20))
	assertLive(t, live, 2, sparse(10))
	assertLive(t, live, 0, sparse(10, 20))
}

func TestLivenessDeadResult(t *testing.T) {
	// r0 feeds r1, nothing reads r1
	cfg := buildCfg(t, adapter.Block{
		Label: 0,
		Body: []adapter.Instruction{
			addInst(0, intVal(32, "1"), intVal(32, "2")),
			addInst(1, regVal(0, intTy(32)), intVal(32, "3")),
		},
		Terminator: retVoid(100),
	})

	live := Analyze(cfg)
	assertLive(t, live, 0, sparse())
}

func TestLivenessLoopCarried(t *testing.T) {
	// 1: r10 = phi(0: 1, 1: r11); r11 = r10 + 1; br 1, 2
	cfg := buildCfg(t,
		adapter.Block{Label: 0, Terminator: gotoBlock(100, 1)},
		adapter.Block{
			Label: 1,
			Body: []adapter.Instruction{
				{Ty: intTy(32), Index: 10, Repr: adapter.Inst{
					Kind: adapter.InstPhi,
					Options: []adapter.PhiOption{
						{Block: 0, Value: intVal(32, "1")},
						{Block: 1, Value: regVal(11, intTy(32))},
					},
				}},
				addInst(11, regVal(10, intTy(32)), intVal(32, "1")),
			},
			Terminator: condBranch(101, intVal(1, "0"), 1, 2),
		},
		adapter.Block{Label: 2, Terminator: retVoid(102)},
	)

	live := Analyze(cfg)
	// r11 is live around the back edge; the phi kills r10 at the loop header
	assertLive(t, live, 1, sparse(11))
	assertLive(t, live, 0, sparse(11))
	assertLive(t, live, 2, sparse())
}
