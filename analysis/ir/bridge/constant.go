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
	"strconv"

	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/analysis/ir/adapter"
	"github.com/awslabs/ar-ir-tools/internal/funcutil"
)

// Constant is the validated internal representation of an IR constant. A
// constant's shape always matches its declared type; ConvertConstant checks
// this at conversion time.
type Constant interface {
	isConstant()
}

// Bitvec is an integer constant, masked to its bitvector width.
type Bitvec struct {
	Bits  int
	Value uint64
}

// FloatLit is a floating constant; a none value means infinity. The type
// registry rejects floating types, so the variant only appears in constants
// constructed in memory, never from conversion.
type FloatLit struct {
	Value funcutil.Optional[string]
}

// NullPtr is the null pointer constant.
type NullPtr struct{}

// VectorInt is a vector of integer constants.
type VectorInt struct {
	Elements []Constant
}

// VectorFloat is a vector of floating constants.
type VectorFloat struct {
	Elements []Constant
}

// ArrayConst is an array constant with a homogeneous element type.
type ArrayConst struct {
	Sub      Type
	Elements []Constant
}

// StructConst is a struct constant, named or anonymous.
type StructConst struct {
	Name   funcutil.Optional[Identifier]
	Fields []Constant
}

// VariableRef is a reference to a named global variable.
type VariableRef struct {
	Name Identifier
}

// FunctionRef is a reference to a named function.
type FunctionRef struct {
	Name Identifier
}

// The five undefined constants, one per type shape.
type (
	UndefBitvec struct{ Bits int }
	UndefFloat  struct{}
	UndefPtr    struct{}
	UndefArray  struct{ Ty ArrayType }
	UndefStruct struct{ Ty StructType }
)

// Expr is a constant expression, represented as an instruction with the
// NoRegister destination.
type Expr struct {
	Inst Instruction
}

func (Bitvec) isConstant()      {}
func (FloatLit) isConstant()    {}
func (NullPtr) isConstant()     {}
func (VectorInt) isConstant()   {}
func (VectorFloat) isConstant() {}
func (ArrayConst) isConstant()  {}
func (StructConst) isConstant() {}
func (VariableRef) isConstant() {}
func (FunctionRef) isConstant() {}
func (UndefBitvec) isConstant() {}
func (UndefFloat) isConstant()  {}
func (UndefPtr) isConstant()    {}
func (UndefArray) isConstant()  {}
func (UndefStruct) isConstant() {}
func (Expr) isConstant()        {}

// defaultFromType synthesizes the zero constant of a type.
func defaultFromType(ty Type) (Constant, error) {
	switch t := ty.(type) {
	case IntType:
		return Bitvec{Bits: t.Bits, Value: 0}, nil
	case ArrayType:
		element, err := defaultFromType(t.Element)
		if err != nil {
			return nil, err
		}
		elements := make([]Constant, t.Length)
		for i := range elements {
			elements[i] = element
		}
		return ArrayConst{Sub: t.Element, Elements: elements}, nil
	case StructType:
		fields, err := funcutil.MapErr(t.Fields, defaultFromType)
		if err != nil {
			return nil, err
		}
		return StructConst{Name: t.Name, Fields: fields}, nil
	case PointerType:
		return NullPtr{}, nil
	default:
		return nil, ir.Invariantf("trying to create defaults for type: %s", ty)
	}
}

// parseBitvecLiteral parses a decimal integer literal, negative or not, and
// masks it to the bitvector width.
func parseBitvecLiteral(repr string, ty IntType) (uint64, error) {
	if value, err := strconv.ParseUint(repr, 10, 64); err == nil {
		return value & ty.Mask(), nil
	}
	signed, err := strconv.ParseInt(repr, 10, 64)
	if err != nil {
		return 0, ir.Loadingf("malformed integer literal: %q", repr)
	}
	return uint64(signed) & ty.Mask(), nil
}

// ConvertConstant produces a type-checked constant from an adapter constant.
// The declared type of the constant is re-derived through the registry and
// compared structurally against the expected type; any divergence is an
// error, never a coercion.
func ConvertConstant(
	constant adapter.Constant,
	expected Type,
	typing *TypeRegistry,
	symbols *SymbolRegistry,
) (Constant, error) {
	checkType := func() error {
		actual, err := typing.Convert(constant.Ty)
		if err != nil {
			return err
		}
		if !TypeEqual(expected, actual) {
			return ir.Loadingf("type mismatch: expect %s, found %s", expected, actual)
		}
		return nil
	}

	repr := constant.Repr
	switch repr.Kind {
	case adapter.ConstInt:
		if err := checkType(); err != nil {
			return nil, err
		}
		ty, ok := expected.(IntType)
		if !ok {
			return nil, ir.Assumptionf("type mismatch: expect bitvec, found %s", expected)
		}
		value, err := parseBitvecLiteral(repr.Value, ty)
		if err != nil {
			return nil, err
		}
		return Bitvec{Bits: ty.Bits, Value: value}, nil

	case adapter.ConstFloat:
		return nil, ir.NotSupported(ir.FloatingPoint)

	case adapter.ConstNull:
		if err := checkType(); err != nil {
			return nil, err
		}
		if _, ok := expected.(PointerType); !ok {
			return nil, ir.Assumptionf("type mismatch: expect pointer, found %s", expected)
		}
		return NullPtr{}, nil

	case adapter.ConstNone:
		return nil, ir.Assumptionf("unexpected constant none for type: %s", expected)

	case adapter.ConstExtension:
		return nil, ir.NotSupported(ir.ArchSpecificExtension)

	case adapter.ConstUndef:
		if err := checkType(); err != nil {
			return nil, err
		}
		switch ty := expected.(type) {
		case IntType:
			return UndefBitvec{Bits: ty.Bits}, nil
		case PointerType:
			return UndefPtr{}, nil
		case ArrayType:
			return UndefArray{Ty: ty}, nil
		case StructType:
			return UndefStruct{Ty: ty}, nil
		default:
			return nil, ir.Assumptionf("unexpected undef for type: %s", expected)
		}

	case adapter.ConstDefault:
		if err := checkType(); err != nil {
			return nil, err
		}
		return defaultFromType(expected)

	case adapter.ConstVector:
		return nil, ir.NotSupported(ir.Vectorization)

	case adapter.ConstArray:
		if err := checkType(); err != nil {
			return nil, err
		}
		ty, ok := expected.(ArrayType)
		if !ok {
			return nil, ir.Assumptionf("type mismatch: expect array, found %s", expected)
		}
		if len(repr.Elements) != ty.Length {
			return nil, ir.Assumptionf(
				"type mismatch: expect %d elements, found %d", ty.Length, len(repr.Elements))
		}
		elements, err := funcutil.MapErr(repr.Elements, func(e adapter.Constant) (Constant, error) {
			return ConvertConstant(e, ty.Element, typing, symbols)
		})
		if err != nil {
			return nil, err
		}
		return ArrayConst{Sub: ty.Element, Elements: elements}, nil

	case adapter.ConstStruct:
		if err := checkType(); err != nil {
			return nil, err
		}
		ty, ok := expected.(StructType)
		if !ok {
			return nil, ir.Assumptionf("type mismatch: expect struct, found %s", expected)
		}
		if len(repr.Elements) != len(ty.Fields) {
			return nil, ir.Assumptionf(
				"type mismatch: expect %d fields, found %d", len(ty.Fields), len(repr.Elements))
		}
		fields := make([]Constant, len(repr.Elements))
		for i, element := range repr.Elements {
			converted, err := ConvertConstant(element, ty.Fields[i], typing, symbols)
			if err != nil {
				return nil, err
			}
			fields[i] = converted
		}
		return StructConst{Name: ty.Name, Fields: fields}, nil

	case adapter.ConstVariable:
		if err := checkType(); err != nil {
			return nil, err
		}
		if _, ok := expected.(PointerType); !ok {
			return nil, ir.Assumptionf("type mismatch: expect pointer, found %s", expected)
		}
		if repr.Name == nil {
			return nil, ir.Assumptionf("no reference to an anonymous global variable")
		}
		ident := Identifier(*repr.Name)
		if err := symbols.globalReferable(ident); err != nil {
			return nil, err
		}
		return VariableRef{Name: ident}, nil

	case adapter.ConstFunction:
		if err := checkType(); err != nil {
			return nil, err
		}
		if _, ok := expected.(PointerType); !ok {
			return nil, ir.Assumptionf("type mismatch: expect pointer, found %s", expected)
		}
		if repr.Name == nil {
			return nil, ir.Assumptionf("no reference to an anonymous function")
		}
		ident := Identifier(*repr.Name)
		if !symbols.HasFunction(ident) {
			return nil, ir.Assumptionf("reference to an unknown function: %s", ident)
		}
		return FunctionRef{Name: ident}, nil

	case adapter.ConstAlias:
		return nil, ir.NotSupported(ir.GlobalAlias)

	case adapter.ConstInterface:
		return nil, ir.NotSupported(ir.InterfaceResolver)

	case adapter.ConstMarker:
		if repr.Wrap == nil {
			return nil, ir.Invariantf("marker constant without wrapped constant")
		}
		return ConvertConstant(*repr.Wrap, expected, typing, symbols)

	case adapter.ConstPC:
		return nil, ir.NotSupported(ir.ConstantAddressOfInstruction)

	case adapter.ConstExpr:
		if err := checkType(); err != nil {
			return nil, err
		}
		if repr.Inst == nil {
			return nil, ir.Invariantf("expression constant without instruction")
		}
		// expression constants live outside any function body: the parsing
		// context has no blocks, no registers, and no arguments
		ctxt := &Context{Typing: typing, Symbols: symbols}
		inst, err := ctxt.parseInstRepr(*repr.Inst, constant.Ty, NoRegister)
		if err != nil {
			return nil, err
		}
		return Expr{Inst: inst}, nil

	default:
		return nil, ir.Invariantf("unknown constant kind: %q", repr.Kind)
	}
}
