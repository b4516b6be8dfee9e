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

// InstKind discriminates the Inst record variants.
type InstKind string

const (
	// memory
	InstAlloca InstKind = "alloca"
	InstLoad   InstKind = "load"
	InstStore  InstKind = "store"
	InstVAArg  InstKind = "va_arg"
	// calls
	InstIntrinsic    InstKind = "intrinsic"
	InstCallDirect   InstKind = "call_direct"
	InstCallIndirect InstKind = "call_indirect"
	InstCallAsm      InstKind = "call_asm"
	// operators
	InstUnary   InstKind = "unary"
	InstBinary  InstKind = "binary"
	InstCompare InstKind = "compare"
	InstCast    InstKind = "cast"
	InstFreeze  InstKind = "freeze"
	// addressing
	InstGEP InstKind = "gep"
	// choice
	InstITE InstKind = "ite"
	InstPhi InstKind = "phi"
	// aggregates
	InstGetValue      InstKind = "get_value"
	InstSetValue      InstKind = "set_value"
	InstGetElement    InstKind = "get_element"
	InstSetElement    InstKind = "set_element"
	InstShuffleVector InstKind = "shuffle_vector"
	// concurrency
	InstFence         InstKind = "fence"
	InstAtomicCmpXchg InstKind = "atomic_cmpxchg"
	InstAtomicRMW     InstKind = "atomic_rmw"
	// exception handling
	InstLandingPad InstKind = "landing_pad"
	InstCatchPad   InstKind = "catch_pad"
	InstCleanupPad InstKind = "cleanup_pad"
	// terminators
	InstReturn         InstKind = "return"
	InstBranch         InstKind = "branch"
	InstSwitch         InstKind = "switch"
	InstIndirectJump   InstKind = "indirect_jump"
	InstInvokeDirect   InstKind = "invoke_direct"
	InstInvokeIndirect InstKind = "invoke_indirect"
	InstInvokeAsm      InstKind = "invoke_asm"
	InstResume         InstKind = "resume"
	InstCatchSwitch    InstKind = "catch_switch"
	InstCatchReturn    InstKind = "catch_return"
	InstCleanupReturn  InstKind = "cleanup_return"
	InstCallBranch     InstKind = "call_branch"
	InstUnreachable    InstKind = "unreachable"
)

// Inst is the kind-discriminated payload of an instruction. Only the fields
// relevant to the Kind are populated.
type Inst struct {
	Kind InstKind `json:"kind"`

	// alloca
	AllocatedType *Type  `json:"allocated_type,omitempty"`
	Size          *Value `json:"size,omitempty"`

	// load, store, gep, atomics
	PointeeType  *Type  `json:"pointee_type,omitempty"`
	Pointer      *Value `json:"pointer,omitempty"`
	AddressSpace int    `json:"address_space,omitempty"`
	Ordering     string `json:"ordering,omitempty"`

	// store, set_value, set_element, atomic_rmw
	Value *Value `json:"value,omitempty"`

	// calls and invokes
	Callee     *Value     `json:"callee,omitempty"`
	TargetType *Type      `json:"target_type,omitempty"`
	Args       []Value    `json:"args,omitempty"`
	Asm        *InlineAsm `json:"asm,omitempty"`

	// unary, binary, compare, cast, atomic_rmw
	Opcode      string `json:"opcode,omitempty"`
	Predicate   string `json:"predicate,omitempty"`
	OperandType *Type  `json:"operand_type,omitempty"`
	LHS         *Value `json:"lhs,omitempty"`
	RHS         *Value `json:"rhs,omitempty"`
	Operand     *Value `json:"operand,omitempty"`
	SrcType     *Type  `json:"src_ty,omitempty"`
	DstType     *Type  `json:"dst_ty,omitempty"`

	// gep
	SrcPointeeType *Type   `json:"src_pointee_ty,omitempty"`
	DstPointeeType *Type   `json:"dst_pointee_ty,omitempty"`
	Indices        []Value `json:"indices,omitempty"`

	// ite
	Cond      *Value `json:"cond,omitempty"`
	ThenValue *Value `json:"then_value,omitempty"`
	ElseValue *Value `json:"else_value,omitempty"`

	// phi
	Options []PhiOption `json:"options,omitempty"`

	// aggregates
	FromType   *Type  `json:"from_ty,omitempty"`
	Aggregate  *Value `json:"aggregate,omitempty"`
	SlotIndices []int `json:"slot_indices,omitempty"`
	Vector     *Value `json:"vector,omitempty"`
	Slot       *Value `json:"slot,omitempty"`
	Mask       []int64 `json:"mask,omitempty"`

	// landing_pad
	Clauses   []ExceptionClause `json:"clauses,omitempty"`
	IsCleanup bool              `json:"is_cleanup,omitempty"`

	// terminators
	ReturnValue *Value       `json:"return_value,omitempty"`
	Targets     []int        `json:"targets,omitempty"`
	CondTy      *Type        `json:"cond_ty,omitempty"`
	Cases       []SwitchCase `json:"cases,omitempty"`
	Default     *int         `json:"default,omitempty"`
	Address     *Value       `json:"address,omitempty"`
	Normal      int          `json:"normal,omitempty"`
	Unwind      int          `json:"unwind,omitempty"`
}

// Instruction is one instruction record within a block.
type Instruction struct {
	Name  *string `json:"name,omitempty"`
	Ty    Type    `json:"ty"`
	Index int     `json:"index"`
	Repr  Inst    `json:"repr"`
}

// PhiOption is one (incoming block, value) pair of a phi instruction.
type PhiOption struct {
	Block int   `json:"block"`
	Value Value `json:"value"`
}

// SwitchCase is one (case constant, target block) pair of a switch.
type SwitchCase struct {
	Block int      `json:"block"`
	Value Constant `json:"value"`
}

// ExceptionClause is a catch or filter clause of a landing pad.
type ExceptionClause struct {
	IsFilter bool             `json:"is_filter,omitempty"`
	Catch    *GlobalVariable  `json:"catch,omitempty"`
	Filter   []GlobalVariable `json:"filter,omitempty"`
}
