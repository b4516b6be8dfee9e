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

// Package adapter defines the plain record tree emitted by the external
// serializer pass. The records are deliberately loose: every variant of the
// source IR is representable, including the ones the bridge rejects. All
// validation happens in the bridge package.
package adapter

// TypeKind discriminates the Type record variants.
type TypeKind string

const (
	TypeVoid         TypeKind = "void"
	TypeInt          TypeKind = "int"
	TypeFloat        TypeKind = "float"
	TypeArray        TypeKind = "array"
	TypeStruct       TypeKind = "struct"
	TypeFunction     TypeKind = "function"
	TypePointer      TypeKind = "pointer"
	TypeVector       TypeKind = "vector"
	TypeExtension    TypeKind = "extension"
	TypeTypedPointer TypeKind = "typed_pointer"
	TypeLabel        TypeKind = "label"
	TypeToken        TypeKind = "token"
	TypeMetadata     TypeKind = "metadata"
)

// Type is a loose representation of a source IR type.
type Type struct {
	Kind TypeKind `json:"kind"`
	// int, float: bit width
	Width int `json:"width,omitempty"`
	// float (name of the format), extension
	Name string `json:"name,omitempty"`
	// array, vector
	Element *Type `json:"element,omitempty"`
	Length  int   `json:"length,omitempty"`
	Fixed   bool  `json:"fixed,omitempty"`
	// struct: nil StructName means anonymous, nil Fields means opaque
	StructName *string `json:"struct_name,omitempty"`
	Fields     *[]Type `json:"fields,omitempty"`
	// function
	Params   []Type `json:"params,omitempty"`
	Variadic bool   `json:"variadic,omitempty"`
	Ret      *Type  `json:"ret,omitempty"`
	// pointer, typed_pointer
	AddressSpace int   `json:"address_space,omitempty"`
	Pointee      *Type `json:"pointee,omitempty"`
}

// UserDefinedStruct is a named struct definition declared at module level.
type UserDefinedStruct struct {
	Name   *string `json:"name"`
	Fields *[]Type `json:"fields"`
}
