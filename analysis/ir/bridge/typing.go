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
	"fmt"
	"reflect"
	"strings"

	"github.com/yourbasic/graph"

	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/analysis/ir/adapter"
	"github.com/awslabs/ar-ir-tools/internal/funcutil"
)

// Type is the validated internal representation of an IR type. The sum is
// closed: IntType, ArrayType, StructType, StructRecurseType, FuncType and
// PointerType are the only implementations.
type Type interface {
	isType()
	String() string
}

// IntType is an integer modeled as a bitvector of the given width.
type IntType struct {
	Bits int
}

// Mask returns the value mask for the bitvector width. Widths of 64 bits and
// above saturate to a full mask.
func (t IntType) Mask() uint64 {
	if t.Bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(t.Bits)) - 1
}

// ArrayType is an array with a fixed length and a homogeneous element type.
type ArrayType struct {
	Element Type
	Length  int
}

// StructType is a struct whose fields are all known. The name is absent for
// anonymous (literal) struct types.
type StructType struct {
	Name   funcutil.Optional[Identifier]
	Fields []Type
}

// StructRecurseType is a by-name back-reference to a struct that belongs to
// the same recursive group as the definition being resolved. Resolving the
// reference through the registry, instead of inlining it, is what breaks
// infinite structural recursion.
type StructRecurseType struct {
	Name Identifier
}

// FuncType is a function signature. A nil Ret means the function returns void.
type FuncType struct {
	Params []Type
	Ret    Type
}

// PointerType is a pointer. A nil Pointee means the pointee is opaque.
type PointerType struct {
	Pointee Type
}

func (IntType) isType()           {}
func (ArrayType) isType()         {}
func (StructType) isType()        {}
func (StructRecurseType) isType() {}
func (FuncType) isType()          {}
func (PointerType) isType()       {}

func (t IntType) String() string {
	return fmt.Sprintf("int%d", t.Bits)
}

func (t ArrayType) String() string {
	return fmt.Sprintf("%s[%d]", t.Element, t.Length)
}

func (t StructType) String() string {
	repr := funcutil.Map(t.Fields, func(f Type) string { return f.String() })
	name := "<anonymous>"
	if t.Name.IsSome() {
		name = t.Name.Value().String()
	}
	return fmt.Sprintf("%s{%s}", name, strings.Join(repr, ","))
}

func (t StructRecurseType) String() string {
	return fmt.Sprintf("%%%s", t.Name)
}

func (t FuncType) String() string {
	repr := funcutil.Map(t.Params, func(p Type) string { return p.String() })
	ret := "void"
	if t.Ret != nil {
		ret = t.Ret.String()
	}
	return fmt.Sprintf("(%s)->%s", strings.Join(repr, ","), ret)
}

func (t PointerType) String() string {
	if t.Pointee == nil {
		return "ptr"
	}
	return fmt.Sprintf("ptr<%s>", t.Pointee)
}

// TypeEqual reports structural equality of two internal types.
func TypeEqual(a, b Type) bool {
	switch x := a.(type) {
	case IntType:
		y, ok := b.(IntType)
		return ok && x.Bits == y.Bits
	case ArrayType:
		y, ok := b.(ArrayType)
		return ok && x.Length == y.Length && TypeEqual(x.Element, y.Element)
	case StructType:
		y, ok := b.(StructType)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		if !funcutil.EqualOption(x.Name, y.Name, func(m, n Identifier) bool { return m == n }) {
			return false
		}
		for i := range x.Fields {
			if !TypeEqual(x.Fields[i], y.Fields[i]) {
				return false
			}
		}
		return true
	case StructRecurseType:
		y, ok := b.(StructRecurseType)
		return ok && x.Name == y.Name
	case FuncType:
		y, ok := b.(FuncType)
		if !ok || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if !TypeEqual(x.Params[i], y.Params[i]) {
				return false
			}
		}
		if x.Ret == nil || y.Ret == nil {
			return x.Ret == nil && y.Ret == nil
		}
		return TypeEqual(x.Ret, y.Ret)
	case PointerType:
		y, ok := b.(PointerType)
		if !ok {
			return false
		}
		if x.Pointee == nil || y.Pointee == nil {
			return x.Pointee == nil && y.Pointee == nil
		}
		return TypeEqual(x.Pointee, y.Pointee)
	default:
		return false
	}
}

// TypeRegistry holds the user-defined struct types of a module, partitioned
// into simple definitions and recursive groups.
type TypeRegistry struct {
	// raw field definitions per named struct
	defs map[Identifier][]adapter.Type
	// recursive groups; each group is sorted by identifier
	groups [][]Identifier
	// group index per name, or -1 for a simple (non-recursive) struct
	groupOf map[Identifier]int
}

// PopulateTypes builds a registry from the flat list of named struct
// definitions: it indexes the definitions, computes the strongly connected
// components of the mention graph among declared names, and validates that
// every definition resolves.
func PopulateTypes(structs []adapter.UserDefinedStruct) (*TypeRegistry, error) {
	defs := make(map[Identifier][]adapter.Type, len(structs))
	for _, def := range structs {
		if def.Name == nil {
			return nil, ir.Assumptionf("user-defined struct type cannot be anonymous")
		}
		if def.Fields == nil {
			return nil, ir.Assumptionf("user-defined struct type cannot be opaque")
		}
		ident := Identifier(*def.Name)
		if _, exists := defs[ident]; exists {
			return nil, ir.Assumptionf("no duplicated definition of struct: %s", ident)
		}
		defs[ident] = *def.Fields
	}

	// dependency graph among declared names: edge A -> B when a field of A
	// transitively mentions B
	names := funcutil.OrderedKeys(defs)
	index := make(map[Identifier]int, len(names))
	for i, name := range names {
		index[name] = i
	}
	deps := graph.New(len(names))
	selfLoop := make([]bool, len(names))
	for i, name := range names {
		mentioned := make(map[Identifier]bool)
		for _, field := range defs[name] {
			collectMentions(field, mentioned)
		}
		for dep := range mentioned {
			j, declared := index[dep]
			if !declared {
				return nil, ir.Assumptionf("reference to undefined named struct: %s", dep)
			}
			if j == i {
				selfLoop[i] = true
			} else {
				deps.Add(i, j)
			}
		}
	}

	registry := &TypeRegistry{
		defs:    defs,
		groupOf: make(map[Identifier]int, len(names)),
	}
	for _, name := range names {
		registry.groupOf[name] = -1
	}
	for _, component := range graph.StrongComponents(deps) {
		if len(component) == 1 && !selfLoop[component[0]] {
			continue
		}
		members := funcutil.Map(component, func(v int) Identifier { return names[v] })
		members = funcutil.SetToOrderedSlice(asSet(members))
		gid := len(registry.groups)
		registry.groups = append(registry.groups, members)
		for _, member := range members {
			registry.groupOf[member] = gid
		}
	}

	// validate every definition up front so that later conversions can only
	// fail on types that never appear in a definition
	for _, name := range names {
		if _, err := registry.definition(name); err != nil {
			return nil, fmt.Errorf("in definition of struct %s: %w", name, err)
		}
	}
	return registry, nil
}

func asSet(ids []Identifier) map[Identifier]bool {
	s := make(map[Identifier]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// collectMentions walks an adapter type and records every named struct it
// transitively mentions.
func collectMentions(t adapter.Type, out map[Identifier]bool) {
	switch t.Kind {
	case adapter.TypeArray, adapter.TypeVector:
		if t.Element != nil {
			collectMentions(*t.Element, out)
		}
	case adapter.TypeStruct:
		if t.StructName != nil {
			out[Identifier(*t.StructName)] = true
			return
		}
		if t.Fields != nil {
			for _, field := range *t.Fields {
				collectMentions(field, out)
			}
		}
	case adapter.TypeFunction:
		for _, param := range t.Params {
			collectMentions(param, out)
		}
		if t.Ret != nil {
			collectMentions(*t.Ret, out)
		}
	case adapter.TypeTypedPointer:
		if t.Pointee != nil {
			collectMentions(*t.Pointee, out)
		}
	}
}

// Group returns the members of the recursive group the named struct belongs
// to, or nil when the struct is a simple definition.
func (r *TypeRegistry) Group(name Identifier) []Identifier {
	gid, ok := r.groupOf[name]
	if !ok || gid < 0 {
		return nil
	}
	return r.groups[gid]
}

// memberSet returns the in-progress membership set to use while resolving the
// fields of the named struct.
func (r *TypeRegistry) memberSet(name Identifier) map[Identifier]bool {
	members := r.Group(name)
	if members == nil {
		return nil
	}
	return asSet(members)
}

// Convert maps an adapter type to an internal type, consulting the registry
// for named struct types.
func (r *TypeRegistry) Convert(t adapter.Type) (Type, error) {
	return r.convert(t, nil)
}

// Definition returns the fully resolved definition of a named struct;
// in-group references inside the fields resolve to back-references.
func (r *TypeRegistry) Definition(name Identifier) (Type, error) {
	return r.definition(name)
}

func (r *TypeRegistry) definition(name Identifier) (Type, error) {
	fields, ok := r.defs[name]
	if !ok {
		return nil, ir.Assumptionf("reference to undefined named struct: %s", name)
	}
	converted, err := funcutil.MapErr(fields, func(f adapter.Type) (Type, error) {
		return r.convert(f, r.memberSet(name))
	})
	if err != nil {
		return nil, err
	}
	return StructType{Name: funcutil.Some(name), Fields: converted}, nil
}

// convert resolves an adapter type under the in-progress group membership
// set: references to members of the active group become back-references,
// everything else resolves structurally.
func (r *TypeRegistry) convert(t adapter.Type, group map[Identifier]bool) (Type, error) {
	switch t.Kind {
	case adapter.TypeVoid:
		return nil, ir.Invariantf("unexpected void type")
	case adapter.TypeInt:
		return IntType{Bits: t.Width}, nil
	case adapter.TypeFloat:
		return nil, ir.NotSupported(ir.FloatingPoint)
	case adapter.TypeArray:
		if t.Element == nil {
			return nil, ir.Invariantf("array type without element type")
		}
		element, err := r.convert(*t.Element, group)
		if err != nil {
			return nil, err
		}
		return ArrayType{Element: element, Length: t.Length}, nil
	case adapter.TypeStruct:
		return r.convertStruct(t, group)
	case adapter.TypeFunction:
		if t.Variadic {
			return nil, ir.NotSupported(ir.VariadicArguments)
		}
		params, err := funcutil.MapErr(t.Params, func(p adapter.Type) (Type, error) {
			return r.convert(p, group)
		})
		if err != nil {
			return nil, err
		}
		var ret Type
		if t.Ret == nil {
			return nil, ir.Invariantf("function type without return type")
		}
		if t.Ret.Kind != adapter.TypeVoid {
			if ret, err = r.convert(*t.Ret, group); err != nil {
				return nil, err
			}
		}
		return FuncType{Params: params, Ret: ret}, nil
	case adapter.TypePointer:
		if t.AddressSpace != 0 {
			return nil, ir.NotSupported(ir.PointerAddressSpace)
		}
		return PointerType{}, nil
	case adapter.TypeTypedPointer:
		if t.AddressSpace != 0 {
			return nil, ir.NotSupported(ir.PointerAddressSpace)
		}
		if t.Pointee == nil {
			return nil, ir.Invariantf("typed pointer without pointee type")
		}
		pointee, err := r.convert(*t.Pointee, group)
		if err != nil {
			return nil, err
		}
		return PointerType{Pointee: pointee}, nil
	case adapter.TypeVector:
		return nil, ir.NotSupported(ir.Vectorization)
	case adapter.TypeExtension:
		return nil, ir.NotSupported(ir.ArchSpecificExtension)
	case adapter.TypeLabel, adapter.TypeToken, adapter.TypeMetadata:
		return nil, ir.Assumptionf("unexpected primitive type: %s", t.Kind)
	default:
		return nil, ir.Invariantf("unknown type kind: %q", t.Kind)
	}
}

func (r *TypeRegistry) convertStruct(t adapter.Type, group map[Identifier]bool) (Type, error) {
	// anonymous struct: fields must be known, resolved under the caller's
	// membership set
	if t.StructName == nil {
		if t.Fields == nil {
			return nil, ir.NotSupported(ir.OpaqueStructDefinition)
		}
		fields, err := funcutil.MapErr(*t.Fields, func(f adapter.Type) (Type, error) {
			return r.convert(f, group)
		})
		if err != nil {
			return nil, err
		}
		return StructType{Name: funcutil.None[Identifier](), Fields: fields}, nil
	}

	name := Identifier(*t.StructName)
	declared, ok := r.defs[name]
	if !ok {
		return nil, ir.Assumptionf("reference to undefined named struct: %s", name)
	}
	// sanity: a reference carrying a field list must agree with the registry
	if t.Fields != nil && !reflect.DeepEqual(*t.Fields, declared) {
		return nil, ir.Assumptionf("conflicting definition of named struct: %s", name)
	}
	// an in-group reference becomes a back-reference, never an inlined copy
	if group[name] {
		return StructRecurseType{Name: name}, nil
	}
	return r.definition(name)
}
