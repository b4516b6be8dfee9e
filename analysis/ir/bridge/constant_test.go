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
	"testing"

	"github.com/awslabs/ar-ir-tools/analysis/ir/adapter"
)

func TestConvertIntLiteral(t *testing.T) {
	registry := mustTypes(t)
	symbols := mustSymbols(t, nil, nil)

	tests := []struct {
		name  string
		width int
		repr  string
		want  uint64
	}{
		{"small positive", 8, "200", 200},
		{"masked to width", 8, "256", 0},
		{"negative wraps", 8, "-1", 0xFF},
		{"negative 64-bit", 64, "-1", ^uint64(0)},
		{"zero", 32, "0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			converted, err := ConvertConstant(
				intConst(tt.width, tt.repr), IntType{Bits: tt.width}, registry, symbols)
			if err != nil {
				t.Fatalf("ConvertConstant: %v", err)
			}
			got, ok := converted.(Bitvec)
			if !ok {
				t.Fatalf("expected Bitvec, got %T", converted)
			}
			if got.Bits != tt.width || got.Value != tt.want {
				t.Errorf("got %d-bit %d, want %d-bit %d", got.Bits, got.Value, tt.width, tt.want)
			}
		})
	}
}

func TestConvertIntLiteralTypeMismatch(t *testing.T) {
	registry := mustTypes(t)
	symbols := mustSymbols(t, nil, nil)

	// declared i8 but expected i16
	if _, err := ConvertConstant(intConst(8, "1"), IntType{Bits: 16}, registry, symbols); err == nil {
		t.Error("expected type mismatch error")
	}
}

func TestConvertArrayArityMismatch(t *testing.T) {
	registry := mustTypes(t)
	symbols := mustSymbols(t, nil, nil)

	elements := make([]adapter.Constant, 4)
	for i := range elements {
		elements[i] = intConst(32, "7")
	}
	constant := adapter.Constant{
		Ty:   arrayTy(intTy(32), 8),
		Repr: adapter.Const{Kind: adapter.ConstArray, Elements: elements},
	}
	expected := ArrayType{Element: IntType{Bits: 32}, Length: 8}
	if _, err := ConvertConstant(constant, expected, registry, symbols); err == nil {
		t.Error("expected arity mismatch error for 4 elements in an 8-element array")
	}
}

func TestConvertDefaultSynthesis(t *testing.T) {
	registry := mustTypes(t, structDef("pair", intTy(16), typedPtrTy(intTy(8))))
	symbols := mustSymbols(t, nil, nil)

	constant := adapter.Constant{
		Ty:   namedStructTy("pair"),
		Repr: adapter.Const{Kind: adapter.ConstDefault},
	}
	expected, err := registry.Definition("pair")
	if err != nil {
		t.Fatalf("Definition: %v", err)
	}
	converted, err := ConvertConstant(constant, expected, registry, symbols)
	if err != nil {
		t.Fatalf("ConvertConstant: %v", err)
	}
	fields := converted.(StructConst).Fields
	want := []Constant{Bitvec{Bits: 16, Value: 0}, NullPtr{}}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("got %v, want %v", fields, want)
	}
}

func TestConvertGlobalReferences(t *testing.T) {
	registry := mustTypes(t)
	symbols := mustSymbols(t,
		[]adapter.GlobalVariable{{
			Name:        strPtr("counter"),
			Ty:          intTy(64),
			IsDefined:   true,
			IsExact:     true,
			Initializer: ptrConst(intConst(64, "0")),
		}},
		[]adapter.Function{{Name: strPtr("callback"), Ty: funcTy(voidTy())}},
	)

	variable := adapter.Constant{
		Ty:   ptrTy(),
		Repr: adapter.Const{Kind: adapter.ConstVariable, Name: strPtr("counter")},
	}
	converted, err := ConvertConstant(variable, PointerType{}, registry, symbols)
	if err != nil {
		t.Fatalf("ConvertConstant: %v", err)
	}
	if ref, ok := converted.(VariableRef); !ok || ref.Name != "counter" {
		t.Errorf("expected VariableRef{counter}, got %v", converted)
	}

	unknown := adapter.Constant{
		Ty:   ptrTy(),
		Repr: adapter.Const{Kind: adapter.ConstVariable, Name: strPtr("missing")},
	}
	if _, err := ConvertConstant(unknown, PointerType{}, registry, symbols); err == nil {
		t.Error("expected error for unknown global reference")
	}

	function := adapter.Constant{
		Ty:   ptrTy(),
		Repr: adapter.Const{Kind: adapter.ConstFunction, Name: strPtr("callback")},
	}
	converted, err = ConvertConstant(function, PointerType{}, registry, symbols)
	if err != nil {
		t.Fatalf("ConvertConstant: %v", err)
	}
	if ref, ok := converted.(FunctionRef); !ok || ref.Name != "callback" {
		t.Errorf("expected FunctionRef{callback}, got %v", converted)
	}
}

func TestConvertMarkerUnwraps(t *testing.T) {
	registry := mustTypes(t)
	symbols := mustSymbols(t, nil, nil)

	inner := intConst(32, "42")
	marker := adapter.Constant{
		Ty:   intTy(32),
		Repr: adapter.Const{Kind: adapter.ConstMarker, Wrap: &inner},
	}
	converted, err := ConvertConstant(marker, IntType{Bits: 32}, registry, symbols)
	if err != nil {
		t.Fatalf("ConvertConstant: %v", err)
	}
	if got := converted.(Bitvec); got.Value != 42 {
		t.Errorf("expected unwrapped 42, got %v", got)
	}
}

func TestConvertUndefVariants(t *testing.T) {
	registry := mustTypes(t)
	symbols := mustSymbols(t, nil, nil)

	tests := []struct {
		name     string
		ty       adapter.Type
		expected Type
		want     Constant
	}{
		{"bitvec", intTy(16), IntType{Bits: 16}, UndefBitvec{Bits: 16}},
		{"pointer", ptrTy(), PointerType{}, UndefPtr{}},
		{
			"array",
			arrayTy(intTy(8), 3),
			ArrayType{Element: IntType{Bits: 8}, Length: 3},
			UndefArray{Ty: ArrayType{Element: IntType{Bits: 8}, Length: 3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			constant := adapter.Constant{Ty: tt.ty, Repr: adapter.Const{Kind: adapter.ConstUndef}}
			converted, err := ConvertConstant(constant, tt.expected, registry, symbols)
			if err != nil {
				t.Fatalf("ConvertConstant: %v", err)
			}
			if !reflect.DeepEqual(converted, tt.want) {
				t.Errorf("got %v, want %v", converted, tt.want)
			}
		})
	}
}

func ptrConst(c adapter.Constant) *adapter.Constant { return &c }
