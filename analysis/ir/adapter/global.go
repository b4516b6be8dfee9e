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

// GlobalVariable is a module-level variable record.
type GlobalVariable struct {
	// variable name
	Name *string `json:"name"`
	// variable type
	Ty Type `json:"ty"`
	// is not just a declaration
	IsDefined bool `json:"is_defined"`
	// the definition (initialization) is exact, i.e., not weak linkage
	IsExact bool `json:"is_exact"`
	// is constant (immutable) during execution
	IsConst bool `json:"is_const"`
	// is initialized outside of the module
	IsExternInit bool `json:"is_extern_init"`
	// is thread-local (one copy per thread)
	IsThreadLocal bool `json:"is_thread_local"`
	// address space of the global variable
	AddressSpace int `json:"address_space"`
	// initializer
	Initializer *Constant `json:"initializer,omitempty"`
}
