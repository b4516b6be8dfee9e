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

// ValueKind discriminates the Value record variants.
type ValueKind string

const (
	ValueArgument    ValueKind = "argument"
	ValueConstant    ValueKind = "constant"
	ValueInstruction ValueKind = "instruction"
)

// Value references an argument, a constant, or the result of an instruction.
type Value struct {
	Kind ValueKind `json:"kind"`
	// argument, instruction
	Ty    *Type `json:"ty,omitempty"`
	Index int   `json:"index,omitempty"`
	// constant
	Constant *Constant `json:"constant,omitempty"`
}

// InlineAsm is an inline assembly blob attached to a call site.
type InlineAsm struct {
	Asm         string `json:"asm"`
	Constraints string `json:"constraints"`
}
