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

// ConstKind discriminates the Const record variants.
type ConstKind string

const (
	ConstInt       ConstKind = "int"
	ConstFloat     ConstKind = "float"
	ConstNull      ConstKind = "null"
	ConstNone      ConstKind = "none"
	ConstExtension ConstKind = "extension"
	ConstUndef     ConstKind = "undef"
	ConstDefault   ConstKind = "default"
	ConstVector    ConstKind = "vector"
	ConstArray     ConstKind = "array"
	ConstStruct    ConstKind = "struct"
	ConstVariable  ConstKind = "variable"
	ConstFunction  ConstKind = "function"
	ConstAlias     ConstKind = "alias"
	ConstInterface ConstKind = "interface"
	ConstMarker    ConstKind = "marker"
	ConstPC        ConstKind = "pc"
	ConstExpr      ConstKind = "expr"
)

// Const is the payload of a Constant record.
type Const struct {
	Kind ConstKind `json:"kind"`
	// int (decimal, may exceed 64 bits upstream), float ("" means none)
	Value string `json:"value,omitempty"`
	// vector, array, struct
	Elements []Constant `json:"elements,omitempty"`
	// variable, function, alias, interface: nil means anonymous
	Name *string `json:"name,omitempty"`
	// marker
	Wrap *Constant `json:"wrap,omitempty"`
	// expr: a destination-less instruction
	Inst *Inst `json:"inst,omitempty"`
}

// Constant pairs a Const payload with its declared type.
type Constant struct {
	Ty   Type  `json:"ty"`
	Repr Const `json:"repr"`
}
