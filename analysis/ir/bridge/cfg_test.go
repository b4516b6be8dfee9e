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

package bridge

import (
	"reflect"
	"strings"
	"testing"

	"github.com/awslabs/ar-ir-tools/analysis/ir/adapter"
)

func switchTerm(index int, width int, repr string, def *int, cases ...adapter.SwitchCase) adapter.Instruction {
	cond := constVal(intConst(width, repr))
	condTy := intTy(width)
	return newInst(index, voidTy(), adapter.Inst{
		Kind:    adapter.InstSwitch,
		Cond:    &cond,
		CondTy:  &condTy,
		Cases:   cases,
		Default: def,
	})
}

func invokeVoid(index int, callee string, normal, unwind int) adapter.Instruction {
	target := funcTy(voidTy())
	calleeVal := constVal(adapter.Constant{
		Ty:   ptrTy(),
		Repr: adapter.Const{Kind: adapter.ConstFunction, Name: strPtr(callee)},
	})
	return newInst(index, voidTy(), adapter.Inst{
		Kind:       adapter.InstInvokeDirect,
		Callee:     &calleeVal,
		TargetType: &target,
		Normal:     normal,
		Unwind:     unwind,
	})
}

func landingPadInst(index int) adapter.Instruction {
	return newInst(index, anonStructTy(ptrTy(), intTy(32)), adapter.Inst{
		Kind:      adapter.InstLandingPad,
		IsCleanup: true,
	})
}

func resumeTerm(index, padIndex int) adapter.Instruction {
	payload := regVal(padIndex, anonStructTy(ptrTy(), intTy(32)))
	return newInst(index, voidTy(), adapter.Inst{Kind: adapter.InstResume, Value: &payload})
}

func mustConvert(t *testing.T, fn adapter.Function, decls ...adapter.Function) Function {
	t.Helper()
	registry := mustTypes(t)
	symbols := mustSymbols(t, nil, append([]adapter.Function{fn}, decls...))
	converted, err := ConvertFunction(fn, registry, symbols)
	if err != nil {
		t.Fatalf("ConvertFunction: %v", err)
	}
	return converted
}

func convertErr(t *testing.T, fn adapter.Function, decls ...adapter.Function) error {
	t.Helper()
	registry := mustTypes(t)
	symbols := mustSymbols(t, nil, append([]adapter.Function{fn}, decls...))
	_, err := ConvertFunction(fn, registry, symbols)
	if err == nil {
		t.Fatal("expected conversion error")
	}
	return err
}

func TestCfgBranchCollapsesToGoto(t *testing.T) {
	fn := mustConvert(t, voidFunc("f",
		newBlock(0, condBranch(100, boolVal("1"), 1, 1)),
		newBlock(1, retVoid(101)),
	))

	edge, ok := fn.Body.EdgeBetween(0, 1)
	if !ok {
		t.Fatal("missing edge 0 -> 1")
	}
	if edge.Kind != EdgeGoto {
		t.Errorf("coinciding branch targets should collapse to goto, got %s", edge.Kind)
	}
	if succs := fn.Body.Successors(0); !reflect.DeepEqual(succs, []BlockLabel{1}) {
		t.Errorf("successors of 0: got %v, want [1]", succs)
	}
}

func TestCfgDiamond(t *testing.T) {
	fn := mustConvert(t, voidFunc("f",
		newBlock(0, condBranch(100, boolVal("1"), 1, 2)),
		newBlock(1, gotoBlock(101, 3)),
		newBlock(2, gotoBlock(102, 3)),
		newBlock(3, retVoid(103)),
	))

	cfg := fn.Body
	if edge, _ := cfg.EdgeBetween(0, 1); edge.Kind != EdgeBranchTrue {
		t.Errorf("edge 0 -> 1: got %s, want branch-true", edge.Kind)
	}
	if edge, _ := cfg.EdgeBetween(0, 2); edge.Kind != EdgeBranchFalse {
		t.Errorf("edge 0 -> 2: got %s, want branch-false", edge.Kind)
	}
	if preds := cfg.Predecessors(3); !reflect.DeepEqual(preds, []BlockLabel{1, 2}) {
		t.Errorf("predecessors of 3: got %v, want [1 2]", preds)
	}
	if cfg.Entry() != 0 {
		t.Errorf("entry: got %d, want 0", cfg.Entry())
	}
}

func TestCfgSwitchCasesMergeIntoOneEdge(t *testing.T) {
	fn := mustConvert(t, voidFunc("f",
		newBlock(0, switchTerm(100, 32, "9", intPtr(1),
			adapter.SwitchCase{Block: 1, Value: intConst(32, "2")},
			adapter.SwitchCase{Block: 1, Value: intConst(32, "1")},
		)),
		newBlock(1, retVoid(101)),
	))

	edge, ok := fn.Body.EdgeBetween(0, 1)
	if !ok {
		t.Fatal("missing edge 0 -> 1")
	}
	if edge.Kind != EdgeSwitchCase {
		t.Fatalf("edge kind: got %s, want switch-case", edge.Kind)
	}
	if !reflect.DeepEqual(edge.Cases, []uint64{1, 2}) {
		t.Errorf("cases: got %v, want [1 2]", edge.Cases)
	}
	if !edge.HasDefault {
		t.Error("default targeting the same block should merge into the edge")
	}
}

func TestCfgSwitchDuplicateCaseValue(t *testing.T) {
	err := convertErr(t, voidFunc("f",
		newBlock(0, switchTerm(100, 32, "9", nil,
			adapter.SwitchCase{Block: 1, Value: intConst(32, "5")},
			adapter.SwitchCase{Block: 1, Value: intConst(32, "5")},
		)),
		newBlock(1, retVoid(101)),
	))
	if !strings.Contains(err.Error(), "duplicate switch case") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCfgInvokeNormalEqualsUnwind(t *testing.T) {
	callee := adapter.Function{Name: strPtr("g"), Ty: funcTy(voidTy())}
	err := convertErr(t, voidFunc("f",
		newBlock(0, invokeVoid(100, "g", 1, 1)),
		newBlock(1, resumeTerm(102, 101), landingPadInst(101)),
	), callee)
	if !strings.Contains(err.Error(), "incompatible duplicate edge") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCfgInvokeLandingPad(t *testing.T) {
	callee := adapter.Function{Name: strPtr("g"), Ty: funcTy(voidTy())}
	fn := mustConvert(t, voidFunc("f",
		newBlock(0, invokeVoid(100, "g", 1, 2)),
		newBlock(1, retVoid(101)),
		newBlock(2, resumeTerm(103, 102), landingPadInst(102)),
	), callee)

	cfg := fn.Body
	if edge, _ := cfg.EdgeBetween(0, 1); edge.Kind != EdgeInvokeNormal {
		t.Errorf("edge 0 -> 1: got %s, want invoke-normal", edge.Kind)
	}
	if edge, _ := cfg.EdgeBetween(0, 2); edge.Kind != EdgeInvokeUnwind {
		t.Errorf("edge 0 -> 2: got %s, want invoke-unwind", edge.Kind)
	}
}

func TestCfgUnwindTargetWithoutLandingPad(t *testing.T) {
	callee := adapter.Function{Name: strPtr("g"), Ty: funcTy(voidTy())}
	err := convertErr(t, voidFunc("f",
		newBlock(0, invokeVoid(100, "g", 1, 2)),
		newBlock(1, retVoid(101)),
		newBlock(2, retVoid(102)),
	), callee)
	if !strings.Contains(err.Error(), "no landing pad") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCfgLandingPadWithoutUnwindPredecessor(t *testing.T) {
	err := convertErr(t, voidFunc("f",
		newBlock(0, gotoBlock(100, 1)),
		newBlock(1, resumeTerm(102, 101), landingPadInst(101)),
	))
	if !strings.Contains(err.Error(), "no unwind predecessor") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCfgIndirectJumpIdempotent(t *testing.T) {
	address := constVal(adapter.Constant{Ty: ptrTy(), Repr: adapter.Const{Kind: adapter.ConstNull}})
	fn := mustConvert(t, voidFunc("f",
		newBlock(0, newInst(100, voidTy(), adapter.Inst{
			Kind:    adapter.InstIndirectJump,
			Address: &address,
			Targets: []int{1, 1},
		})),
		newBlock(1, retVoid(101)),
	))

	edge, ok := fn.Body.EdgeBetween(0, 1)
	if !ok {
		t.Fatal("missing edge 0 -> 1")
	}
	if edge.Kind != EdgeIndirect {
		t.Errorf("edge kind: got %s, want indirect", edge.Kind)
	}
}

func TestCfgDuplicateLabel(t *testing.T) {
	err := convertErr(t, voidFunc("f",
		newBlock(0, gotoBlock(100, 1)),
		newBlock(1, retVoid(101)),
		newBlock(1, retVoid(102)),
	))
	if !strings.Contains(err.Error(), "duplicate block label") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCfgEqual(t *testing.T) {
	build := func() Function {
		return mustConvert(t, voidFunc("f",
			newBlock(0, condBranch(100, boolVal("1"), 1, 2)),
			newBlock(1, gotoBlock(101, 3)),
			newBlock(2, gotoBlock(102, 3)),
			newBlock(3, retVoid(103)),
		))
	}
	a, b := build(), build()
	if !a.Body.Equal(b.Body) {
		t.Error("identical builds should compare equal")
	}

	c := mustConvert(t, voidFunc("f",
		newBlock(0, condBranch(100, boolVal("1"), 2, 1)),
		newBlock(1, gotoBlock(101, 3)),
		newBlock(2, gotoBlock(102, 3)),
		newBlock(3, retVoid(103)),
	))
	if a.Body.Equal(c.Body) {
		t.Error("swapped branch targets should not compare equal")
	}
}
