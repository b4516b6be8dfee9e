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

// Module is the fully validated module: the type and symbol registries plus
// the converted globals and ODR-resolved functions.
type Module struct {
	Name      string
	Types     *TypeRegistry
	Symbols   *SymbolRegistry
	Globals   map[Identifier]GlobalVariable
	Functions map[Identifier]Function
}

// ConvertModule bridges a deserialized module into the validated form. The
// conversion is all-or-nothing: the first violated invariant aborts it.
func ConvertModule(m *adapter.Module) (*Module, error) {
	if m.Asm != "" {
		return nil, ir.NotSupported(ir.ModuleLevelAssembly)
	}

	typing, err := PopulateTypes(m.Structs)
	if err != nil {
		return nil, err
	}
	symbols, err := PopulateSymbols(m.Globals, m.Functions)
	if err != nil {
		return nil, err
	}

	globals := make(map[Identifier]GlobalVariable, len(m.Globals))
	for _, gvar := range m.Globals {
		converted, err := ConvertGlobal(gvar, typing, symbols)
		if err != nil {
			return nil, err
		}
		globals[converted.Name] = converted
	}

	// several records may exist per function name across translation units;
	// conversion happens per record and resolution per name
	grouped := make(map[Identifier][]Function)
	var names []Identifier
	for _, fn := range m.Functions {
		converted, err := ConvertFunction(fn, typing, symbols)
		if err != nil {
			return nil, err
		}
		if _, seen := grouped[converted.Name]; !seen {
			names = append(names, converted.Name)
		}
		grouped[converted.Name] = append(grouped[converted.Name], converted)
	}

	functions := make(map[Identifier]Function, len(grouped))
	for _, name := range names {
		resolved, err := ApplyODR(grouped[name])
		if err != nil {
			return nil, err
		}
		functions[name] = resolved
	}

	return &Module{
		Name:      m.Name,
		Types:     typing,
		Symbols:   symbols,
		Globals:   globals,
		Functions: functions,
	}, nil
}

// DefinedFunctions returns the names of the functions with a body, in
// ascending name order.
func (m *Module) DefinedFunctions() []Identifier {
	defined := make(map[Identifier]bool, len(m.Functions))
	for name, fn := range m.Functions {
		if fn.Body != nil {
			defined[name] = true
		}
	}
	return funcutil.SetToOrderedSlice(defined)
}
