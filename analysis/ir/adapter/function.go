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

// Block is one basic block: a body of instruction records plus a terminator.
type Block struct {
	// a unique id for the block
	Label int `json:"label"`
	// name (which may not be available)
	Name *string `json:"name,omitempty"`
	// list of instructions
	Body []Instruction `json:"body"`
	// terminator
	Terminator Instruction `json:"terminator"`
}

// Function is a function record, possibly a declaration without blocks.
type Function struct {
	// name of the function
	Name *string `json:"name"`
	// type of the function
	Ty Type `json:"ty"`
	// is not just a declaration
	IsDefined bool `json:"is_defined"`
	// the definition (function body) is exact, i.e., not weak linkage
	IsExact bool `json:"is_exact"`
	// whether the function is an intrinsic
	IsIntrinsic bool `json:"is_intrinsic"`
	// parameters
	Params []Parameter `json:"params"`
	// body of the function
	Blocks []Block `json:"blocks"`
}

// Parameter is a function parameter record. The six optional type attributes
// all carry a pointee type for an opaque pointer parameter; the bridge
// unifies them into at most one annotation.
type Parameter struct {
	Name         *string `json:"name,omitempty"`
	Ty           Type    `json:"ty"`
	ByVal        *Type   `json:"by_val,omitempty"`
	ByRef        *Type   `json:"by_ref,omitempty"`
	InAlloca     *Type   `json:"in_alloca,omitempty"`
	StructRet    *Type   `json:"struct_ret,omitempty"`
	PreAllocated *Type   `json:"pre_allocated,omitempty"`
	ElementType  *Type   `json:"element_type,omitempty"`
}
