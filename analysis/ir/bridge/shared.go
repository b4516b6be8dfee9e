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

// Package bridge converts the loose adapter records into a validated, typed
// module: registries for types and symbols, type-checked constants and
// instructions, and a control-flow graph per defined function. A conversion
// either yields the whole module or fails on the first violated invariant.
package bridge

import (
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/analysis/ir/adapter"
)

// Identifier is an interned symbol name. Equality and ordering are string
// equality and ordering.
type Identifier string

func (i Identifier) String() string { return string(i) }

// globalInfo records the facts about a declared global that constant
// conversion needs to validate references against.
type globalInfo struct {
	isConst        bool
	hasInitializer bool
}

// SymbolRegistry tracks which global variables and functions are declared in
// the module, so that references can be validated during bridging.
type SymbolRegistry struct {
	globals   map[Identifier]globalInfo
	functions map[Identifier]bool
}

// PopulateSymbols collects the named globals and functions of the module.
// Anonymous globals are rejected; anonymous functions are skipped here and
// rejected later by the function converter.
func PopulateSymbols(globals []adapter.GlobalVariable, functions []adapter.Function) (*SymbolRegistry, error) {
	registry := &SymbolRegistry{
		globals:   make(map[Identifier]globalInfo, len(globals)),
		functions: make(map[Identifier]bool, len(functions)),
	}
	for _, gvar := range globals {
		if gvar.Name == nil {
			return nil, ir.NotSupported(ir.AnonymousGlobalVariable)
		}
		ident := Identifier(*gvar.Name)
		if _, exists := registry.globals[ident]; exists {
			return nil, ir.Assumptionf("duplicate definition of global variable: %s", ident)
		}
		registry.globals[ident] = globalInfo{
			isConst:        gvar.IsConst,
			hasInitializer: gvar.Initializer != nil,
		}
	}
	for _, function := range functions {
		if function.Name == nil {
			return nil, ir.Assumptionf("no anonymous function")
		}
		// multiple records per name are legal and resolved under the ODR
		registry.functions[Identifier(*function.Name)] = true
	}
	return registry, nil
}

// HasGlobal reports whether a global variable with this name is declared.
func (r *SymbolRegistry) HasGlobal(ident Identifier) bool {
	_, ok := r.globals[ident]
	return ok
}

// HasFunction reports whether a function with this name is declared.
func (r *SymbolRegistry) HasFunction(ident Identifier) bool {
	return r.functions[ident]
}

// globalReferable reports whether a reference to the global is legal: the
// global must be known and, when immutable, must carry an initializer.
func (r *SymbolRegistry) globalReferable(ident Identifier) error {
	info, ok := r.globals[ident]
	if !ok {
		return ir.Assumptionf("reference to an unknown global variable: %s", ident)
	}
	if info.isConst && !info.hasInitializer {
		return ir.Assumptionf("reference to an immutable global variable without initializer: %s", ident)
	}
	return nil
}
