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

	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/analysis/ir/adapter"
)

const demoModule = `{
  "name": "demo",
  "asm": "",
  "structs": [
    {"name": "pair", "fields": [{"kind": "int", "width": 32}, {"kind": "int", "width": 32}]}
  ],
  "globals": [
    {
      "name": "zero",
      "ty": {"kind": "struct", "struct_name": "pair"},
      "is_defined": true,
      "is_exact": true,
      "is_const": true,
      "initializer": {
        "ty": {"kind": "struct", "struct_name": "pair"},
        "repr": {"kind": "default"}
      }
    }
  ],
  "functions": [
    {
      "name": "main",
      "ty": {"kind": "function", "ret": {"kind": "void"}},
      "is_defined": true,
      "is_exact": true,
      "params": [],
      "blocks": [
        {
          "label": 0,
          "body": [],
          "terminator": {"ty": {"kind": "void"}, "index": 0, "repr": {"kind": "return"}}
        }
      ]
    }
  ]
}`

func TestConvertModuleEndToEnd(t *testing.T) {
	decoded, err := adapter.DecodeModule(strings.NewReader(demoModule))
	if err != nil {
		t.Fatalf("DecodeModule: %v", err)
	}
	module, err := ConvertModule(decoded)
	if err != nil {
		t.Fatalf("ConvertModule: %v", err)
	}

	if module.Name != "demo" {
		t.Errorf("name: got %q, want demo", module.Name)
	}
	global, ok := module.Globals["zero"]
	if !ok {
		t.Fatal("missing global zero")
	}
	wantInit := StructConst{
		Name:   global.Ty.(StructType).Name,
		Fields: []Constant{Bitvec{Bits: 32}, Bitvec{Bits: 32}},
	}
	if !reflect.DeepEqual(global.Initializer, wantInit) {
		t.Errorf("initializer: got %v, want %v", global.Initializer, wantInit)
	}

	main, ok := module.Functions["main"]
	if !ok || main.Body == nil {
		t.Fatal("main should be a defined function")
	}
	if defined := module.DefinedFunctions(); !reflect.DeepEqual(defined, []Identifier{"main"}) {
		t.Errorf("defined functions: got %v, want [main]", defined)
	}
}

func TestConvertModuleRejectsAsm(t *testing.T) {
	_, err := ConvertModule(&adapter.Module{Name: "m", Asm: "nop"})
	if !ir.IsUnsupported(err, ir.ModuleLevelAssembly) {
		t.Errorf("expected module-level assembly rejection, got %v", err)
	}
}

func TestConvertModuleRejectsWeakGlobal(t *testing.T) {
	module := &adapter.Module{
		Name: "m",
		Globals: []adapter.GlobalVariable{{
			Name:        strPtr("g"),
			Ty:          intTy(32),
			IsDefined:   true,
			IsExact:     false,
			Initializer: ptrConst(intConst(32, "0")),
		}},
	}
	_, err := ConvertModule(module)
	if !ir.IsUnsupported(err, ir.WeakGlobalVariable) {
		t.Errorf("expected weak global rejection, got %v", err)
	}
}

func TestConvertModuleDuplicateGlobal(t *testing.T) {
	global := adapter.GlobalVariable{
		Name:        strPtr("g"),
		Ty:          intTy(32),
		IsDefined:   true,
		IsExact:     true,
		Initializer: ptrConst(intConst(32, "0")),
	}
	_, err := ConvertModule(&adapter.Module{Name: "m", Globals: []adapter.GlobalVariable{global, global}})
	if err == nil || !strings.Contains(err.Error(), "duplicate definition of global") {
		t.Errorf("unexpected error: %v", err)
	}
}
