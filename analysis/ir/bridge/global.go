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
)

// GlobalVariable is a validated module-level variable. Initializer is nil
// for a declaration.
type GlobalVariable struct {
	Name        Identifier
	Ty          Type
	IsConst     bool
	Initializer Constant
}

// ConvertGlobal validates one global variable record. Weak, thread-local,
// extern-initialized, and non-default address space globals are unsupported.
func ConvertGlobal(
	gvar adapter.GlobalVariable,
	typing *TypeRegistry,
	symbols *SymbolRegistry,
) (GlobalVariable, error) {
	if gvar.Name == nil {
		return GlobalVariable{}, ir.NotSupported(ir.AnonymousGlobalVariable)
	}
	ident := Identifier(*gvar.Name)

	if gvar.IsThreadLocal {
		return GlobalVariable{}, ir.NotSupported(ir.ThreadLocalStorage)
	}
	if gvar.AddressSpace != 0 {
		return GlobalVariable{}, ir.NotSupported(ir.PointerAddressSpace)
	}
	if gvar.IsExternInit {
		return GlobalVariable{}, ir.NotSupported(ir.ExternInitializedGlobal)
	}
	if gvar.IsDefined && !gvar.IsExact {
		return GlobalVariable{}, ir.NotSupported(ir.WeakGlobalVariable)
	}
	if gvar.IsDefined != (gvar.Initializer != nil) {
		return GlobalVariable{}, ir.Invariantf(
			"global variable %s disagrees on definition and initializer", ident)
	}

	ty, err := typing.Convert(gvar.Ty)
	if err != nil {
		return GlobalVariable{}, err
	}
	converted := GlobalVariable{Name: ident, Ty: ty, IsConst: gvar.IsConst}
	if gvar.Initializer != nil {
		if converted.Initializer, err = ConvertConstant(*gvar.Initializer, ty, typing, symbols); err != nil {
			return GlobalVariable{}, err
		}
	}
	return converted, nil
}
