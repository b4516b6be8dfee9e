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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func phiInst(index int, options ...adapter.PhiOption) adapter.Instruction {
	return adapter.Instruction{Ty: intTy(32), Index: index, Repr: adapter.Inst{
		Kind: adapter.InstPhi, Options: options,
	}}
}

func terminator(index int, repr adapter.Inst) adapter.Instruction {
	return adapter.Instruction{Ty: voidTy(), Index: index, Repr: repr}
}

func retVoid(index int) adapter.Instruction {
	return terminator(index, adapter.Inst{Kind: adapter.InstReturn})
}

func gotoBlock(index, target int) adapter.Instruction {
	return terminator(index, adapter.Inst{Kind: adapter.InstBranch, Targets: []int{target}})
}

func condBranch(index int, cond adapter.Value, thenBlock, elseBlock int) adapter.Instruction {
	return terminator(index, adapter.Inst{
		Kind: adapter.InstBranch, Cond: &cond, Targets: []int{thenBlock, elseBlock},
	})
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

// buildDiamond joins a positive and a negative value in a phi:
//
//	0: br 1, 2
//	1: r10 = 1 + 2      ; pos
//	2: r20 = -1 + -2    ; neg
//	3: r30 = phi(r10, r20)
func buildDiamond(t *testing.T) *bridge.Cfg {
	t.Helper()
	return buildCfg(t,
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
			Body: []adapter.Instruction{phiInst(30,
				adapter.PhiOption{Block: 1, Value: regVal(10, intTy(32))},
				adapter.PhiOption{Block: 2, Value: regVal(20, intTy(32))},
			)},
			Terminator: retVoid(103),
		},
	)
}

func TestSignsDiamondJoinsToTop(t *testing.T) {
	state := Analyze(buildDiamond(t))

	out := state[3].Out
	assert.Equal(t, Pos, out.Get(10))
	assert.Equal(t, Neg, out.Get(20))
	assert.Equal(t, Top, out.Get(30), "merging pos and neg must lose the sign")
}

func TestSignsDeterministic(t *testing.T) {
	cfg := buildDiamond(t)
	first := Analyze(cfg)
	second := Analyze(cfg)
	assert.Equal(t, first, second)
}

func TestSignsLoopStabilizes(t *testing.T) {
	// 1: r10 = phi(1, r11); r11 = r10 + 1; br 1, 2
	cfg := buildCfg(t,
		adapter.Block{Label: 0, Terminator: gotoBlock(100, 1)},
		adapter.Block{
			Label: 1,
			Body: []adapter.Instruction{
				phiInst(10,
					adapter.PhiOption{Block: 0, Value: intVal(32, "1")},
					adapter.PhiOption{Block: 1, Value: regVal(11, intTy(32))},
				),
				addInst(11, regVal(10, intTy(32)), intVal(32, "1")),
			},
			Terminator: condBranch(101, intVal(1, "0"), 1, 2),
		},
		adapter.Block{Label: 2, Terminator: retVoid(102)},
	)

	state := Analyze(cfg)
	assert.Equal(t, Pos, state[1].Out.Get(10), "incrementing from 1 stays positive")
	assert.Equal(t, Pos, state[2].In.Get(11))
}

func TestLiteralSign(t *testing.T) {
	tests := []struct {
		name    string
		literal bridge.Bitvec
		want    Sign
	}{
		{"zero", bridge.Bitvec{Bits: 32, Value: 0}, Zero},
		{"positive", bridge.Bitvec{Bits: 32, Value: 7}, Pos},
		{"negative i8", bridge.Bitvec{Bits: 8, Value: 0x80}, Neg},
		{"negative i64", bridge.Bitvec{Bits: 64, Value: ^uint64(0)}, Neg},
		{"top bit clear i8", bridge.Bitvec{Bits: 8, Value: 0x7F}, Pos},
		{"width beyond 64 bits", bridge.Bitvec{Bits: 128, Value: ^uint64(0)}, Top},
		{"zero width", bridge.Bitvec{Bits: 0, Value: 3}, Top},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, literalSign(tt.literal))
		})
	}
}

func TestBinarySign(t *testing.T) {
	assert.Equal(t, Pos, binarySign(bridge.OpMul, Neg, Neg))
	assert.Equal(t, Neg, binarySign(bridge.OpMul, Neg, Pos))
	assert.Equal(t, Zero, binarySign(bridge.OpMul, Zero, Top))
	assert.Equal(t, Pos, binarySign(bridge.OpAdd, Pos, Pos))
	assert.Equal(t, Top, binarySign(bridge.OpAdd, Pos, Neg))
	assert.Equal(t, Pos, binarySign(bridge.OpSub, Pos, Neg))
	assert.Equal(t, Zero, binarySign(bridge.OpAnd, Zero, Pos))
	assert.Equal(t, Bot, binarySign(bridge.OpAdd, Bot, Pos))
}
