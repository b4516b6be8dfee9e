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
)

// BlockLabel identifies a basic block within a function.
type BlockLabel int

// RegisterSlot identifies the result register of an instruction. Registers
// and arguments are distinguished namespaces.
type RegisterSlot int

// NoRegister is the sentinel result of an instruction without a destination,
// used when an instruction is re-wrapped as an expression constant.
const NoRegister RegisterSlot = -1

// ArgumentSlot identifies a function argument by position.
type ArgumentSlot int

// Value is either a constant, a reference to a function argument, or a
// reference to the register produced by an instruction.
type Value interface {
	isValue()
}

// ConstantValue wraps a constant used as an operand.
type ConstantValue struct {
	Constant Constant
}

// Argument references a function argument by position.
type Argument struct {
	Index ArgumentSlot
	Ty    Type
}

// Register references the result of an instruction.
type Register struct {
	Index RegisterSlot
	Ty    Type
}

func (ConstantValue) isValue() {}
func (Argument) isValue()      {}
func (Register) isValue()      {}

// ExpectConstant unwraps a value known to be a constant.
func ExpectConstant(v Value) (Constant, error) {
	if cv, ok := v.(ConstantValue); ok {
		return cv.Constant, nil
	}
	return nil, ir.Invariantf("expect value to be a constant")
}
