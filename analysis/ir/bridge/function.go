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
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/analysis/ir/adapter"
	"github.com/awslabs/ar-ir-tools/internal/funcutil"
)

// Parameter is a validated function parameter. Pointee, when non-nil, is the
// unified pointee annotation of an opaque pointer parameter.
type Parameter struct {
	Name    funcutil.Optional[string]
	Ty      Type
	Pointee Type
}

// Function is one validated function after one-definition-rule resolution.
// Body is nil for a declaration.
type Function struct {
	Name   Identifier
	Params []Parameter
	Ret    Type // nil means void
	IsWeak bool
	Body   *Cfg
}

// ConvertFunction validates one function record against its declared
// signature and, for a definition, builds its control-flow graph.
func ConvertFunction(
	fn adapter.Function,
	typing *TypeRegistry,
	symbols *SymbolRegistry,
) (Function, error) {
	if fn.Name == nil {
		return Function{}, ir.Assumptionf("no anonymous function")
	}
	ident := Identifier(*fn.Name)

	funcTy, err := typing.Convert(fn.Ty)
	if err != nil {
		return Function{}, err
	}
	signature, ok := funcTy.(FuncType)
	if !ok {
		return Function{}, ir.Assumptionf("function %s with a non-function type", ident)
	}
	if len(signature.Params) != len(fn.Params) {
		return Function{}, ir.Assumptionf(
			"function %s parameter count mismatch: %d in type, %d declared",
			ident, len(signature.Params), len(fn.Params))
	}

	params := make([]Parameter, len(fn.Params))
	for i, param := range fn.Params {
		declared, err := typing.Convert(param.Ty)
		if err != nil {
			return Function{}, err
		}
		if !TypeEqual(declared, signature.Params[i]) {
			return Function{}, ir.Assumptionf(
				"function %s parameter %d type mismatch: expect %s, found %s",
				ident, i, signature.Params[i], declared)
		}
		pointee, err := unifyPointeeAnnotations(param, typing)
		if err != nil {
			return Function{}, err
		}
		if pointee != nil {
			if _, ok := declared.(PointerType); !ok {
				return Function{}, ir.Assumptionf(
					"function %s parameter %d has a pointee annotation on a non-pointer", ident, i)
			}
		}
		params[i] = Parameter{Name: funcutil.FromPtr(param.Name), Ty: declared, Pointee: pointee}
	}

	converted := Function{
		Name:   ident,
		Params: params,
		Ret:    signature.Ret,
		IsWeak: fn.IsDefined && !fn.IsExact,
	}

	if !fn.IsDefined {
		if len(fn.Blocks) != 0 {
			return Function{}, ir.Invariantf("declared-only function %s with blocks", ident)
		}
		return converted, nil
	}
	if fn.IsIntrinsic {
		return Function{}, ir.Assumptionf("intrinsic function %s with a definition", ident)
	}
	if len(fn.Blocks) == 0 {
		return Function{}, ir.Invariantf("defined function %s without blocks", ident)
	}

	ctxt := &Context{
		Typing:  typing,
		Symbols: symbols,
		Blocks:  make(map[BlockLabel]bool, len(fn.Blocks)),
		Insts:   make(map[RegisterSlot]bool),
		Args:    make(map[ArgumentSlot]Type, len(params)),
		Ret:     signature.Ret,
	}
	for i, param := range params {
		ctxt.Args[ArgumentSlot(i)] = param.Ty
	}
	// labels and instruction indices must be module-assigned and unique
	// within the function; references can point forward
	for _, block := range fn.Blocks {
		label := BlockLabel(block.Label)
		if ctxt.Blocks[label] {
			return Function{}, ir.Invariantf("duplicate block label: %d", label)
		}
		ctxt.Blocks[label] = true
		for _, inst := range block.Body {
			if err := registerSlot(ctxt, inst.Index); err != nil {
				return Function{}, err
			}
		}
		if err := registerSlot(ctxt, block.Terminator.Index); err != nil {
			return Function{}, err
		}
	}

	cfg, err := NewCfg(fn.Blocks, ctxt)
	if err != nil {
		return Function{}, err
	}
	converted.Body = cfg
	return converted, nil
}

func registerSlot(ctxt *Context, index int) error {
	slot := RegisterSlot(index)
	if ctxt.Insts[slot] {
		return ir.Invariantf("duplicate instruction index: %d", index)
	}
	ctxt.Insts[slot] = true
	return nil
}

// unifyPointeeAnnotations merges the parameter type attributes that each
// carry a pointee type. Disagreeing annotations on one parameter are a
// malformed record.
func unifyPointeeAnnotations(param adapter.Parameter, typing *TypeRegistry) (Type, error) {
	var unified Type
	for _, annotation := range []*adapter.Type{
		param.ByVal, param.ByRef, param.InAlloca,
		param.StructRet, param.PreAllocated, param.ElementType,
	} {
		if annotation == nil {
			continue
		}
		pointee, err := typing.Convert(*annotation)
		if err != nil {
			return nil, err
		}
		if unified == nil {
			unified = pointee
			continue
		}
		if !TypeEqual(unified, pointee) {
			return nil, ir.Assumptionf(
				"conflicting pointee type annotations: %s vs %s", unified, pointee)
		}
	}
	return unified, nil
}

// sameSignature reports whether two records of the same function agree on
// parameter types, pointee annotations, and return type. Parameter names are
// debug information and do not participate.
func sameSignature(a, b Function) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !TypeEqual(a.Params[i].Ty, b.Params[i].Ty) {
			return false
		}
		x, y := a.Params[i].Pointee, b.Params[i].Pointee
		if (x == nil) != (y == nil) || (x != nil && !TypeEqual(x, y)) {
			return false
		}
	}
	x, y := a.Ret, b.Ret
	return (x == nil) == (y == nil) && (x == nil || TypeEqual(x, y))
}

// ApplyODR resolves the records collected for one function name under the
// one-definition rule: at most one strong definition, which wins over any
// weak definitions; with only weak definitions, all bodies must agree and
// any of them serves; with no definitions, the result is a declaration.
func ApplyODR(records []Function) (Function, error) {
	if len(records) == 0 {
		return Function{}, ir.Invariantf("no records to resolve")
	}
	resolved := records[0]
	for _, record := range records[1:] {
		if !sameSignature(resolved, record) {
			return Function{}, ir.Assumptionf(
				"function %s declared with conflicting signatures", resolved.Name)
		}
		switch {
		case record.Body == nil:
			// a declaration never displaces anything
		case resolved.Body == nil:
			resolved = record
		case !resolved.IsWeak && !record.IsWeak:
			return Function{}, ir.Assumptionf(
				"multiple strong definitions of function: %s", resolved.Name)
		case resolved.IsWeak && !record.IsWeak:
			resolved = record
		case resolved.IsWeak && record.IsWeak:
			if !resolved.Body.Equal(record.Body) {
				return Function{}, ir.Assumptionf(
					"conflicting weak definitions of function: %s", resolved.Name)
			}
		}
	}
	return resolved, nil
}
