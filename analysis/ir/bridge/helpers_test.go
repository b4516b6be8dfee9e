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
	"testing"

	"github.com/awslabs/ar-ir-tools/analysis/ir/adapter"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func intTy(width int) adapter.Type {
	return adapter.Type{Kind: adapter.TypeInt, Width: width}
}

func voidTy() adapter.Type {
	return adapter.Type{Kind: adapter.TypeVoid}
}

func ptrTy() adapter.Type {
	return adapter.Type{Kind: adapter.TypePointer}
}

func typedPtrTy(pointee adapter.Type) adapter.Type {
	return adapter.Type{Kind: adapter.TypeTypedPointer, Pointee: &pointee}
}

func arrayTy(element adapter.Type, length int) adapter.Type {
	return adapter.Type{Kind: adapter.TypeArray, Element: &element, Length: length}
}

func namedStructTy(name string) adapter.Type {
	return adapter.Type{Kind: adapter.TypeStruct, StructName: strPtr(name)}
}

func anonStructTy(fields ...adapter.Type) adapter.Type {
	return adapter.Type{Kind: adapter.TypeStruct, Fields: &fields}
}

func funcTy(ret adapter.Type, params ...adapter.Type) adapter.Type {
	return adapter.Type{Kind: adapter.TypeFunction, Ret: &ret, Params: params}
}

func structDef(name string, fields ...adapter.Type) adapter.UserDefinedStruct {
	return adapter.UserDefinedStruct{Name: strPtr(name), Fields: &fields}
}

func intConst(width int, value string) adapter.Constant {
	return adapter.Constant{
		Ty:   intTy(width),
		Repr: adapter.Const{Kind: adapter.ConstInt, Value: value},
	}
}

func constVal(c adapter.Constant) adapter.Value {
	return adapter.Value{Kind: adapter.ValueConstant, Constant: &c}
}

func boolVal(value string) adapter.Value {
	return constVal(intConst(1, value))
}

func regVal(index int, ty adapter.Type) adapter.Value {
	return adapter.Value{Kind: adapter.ValueInstruction, Index: index, Ty: &ty}
}

func mustTypes(t *testing.T, structs ...adapter.UserDefinedStruct) *TypeRegistry {
	t.Helper()
	registry, err := PopulateTypes(structs)
	if err != nil {
		t.Fatalf("PopulateTypes: %v", err)
	}
	return registry
}

func mustSymbols(t *testing.T, globals []adapter.GlobalVariable, functions []adapter.Function) *SymbolRegistry {
	t.Helper()
	symbols, err := PopulateSymbols(globals, functions)
	if err != nil {
		t.Fatalf("PopulateSymbols: %v", err)
	}
	return symbols
}

func newInst(index int, ty adapter.Type, repr adapter.Inst) adapter.Instruction {
	return adapter.Instruction{Ty: ty, Index: index, Repr: repr}
}

func retVoid(index int) adapter.Instruction {
	return newInst(index, voidTy(), adapter.Inst{Kind: adapter.InstReturn})
}

func gotoBlock(index, target int) adapter.Instruction {
	return newInst(index, voidTy(), adapter.Inst{Kind: adapter.InstBranch, Targets: []int{target}})
}

func condBranch(index int, cond adapter.Value, thenBlock, elseBlock int) adapter.Instruction {
	return newInst(index, voidTy(), adapter.Inst{
		Kind:    adapter.InstBranch,
		Cond:    &cond,
		Targets: []int{thenBlock, elseBlock},
	})
}

func newBlock(label int, term adapter.Instruction, body ...adapter.Instruction) adapter.Block {
	return adapter.Block{Label: label, Body: body, Terminator: term}
}

func voidFunc(name string, blocks ...adapter.Block) adapter.Function {
	return adapter.Function{
		Name:      strPtr(name),
		Ty:        funcTy(voidTy()),
		IsDefined: len(blocks) > 0,
		IsExact:   true,
		Blocks:    blocks,
	}
}
