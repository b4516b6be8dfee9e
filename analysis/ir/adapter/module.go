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

package adapter

import (
	"encoding/json"
	"io"

	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// Module is the root record of a serialized module.
type Module struct {
	// name of the module
	Name string `json:"name"`
	// module-level assembly
	Asm string `json:"asm"`
	// user-defined struct types
	Structs []UserDefinedStruct `json:"structs"`
	// global variables
	Globals []GlobalVariable `json:"globals"`
	// functions, possibly several records per name across translation units
	Functions []Function `json:"functions"`
}

// DecodeModule reads one JSON-serialized module from r.
func DecodeModule(r io.Reader) (*Module, error) {
	var m Module
	dec := json.NewDecoder(r)
	if err := dec.Decode(&m); err != nil {
		return nil, ir.Loadingf("error during deserialization: %v", err)
	}
	return &m, nil
}
