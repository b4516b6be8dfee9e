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

// Instruction is the validated internal representation of a non-terminator
// instruction. The sum is closed and matched exhaustively by transfer
// functions; a new variant is a compile-time gap for every consumer.
type Instruction interface {
	isInstruction()
	// ResultSlot returns the destination register, or NoRegister.
	ResultSlot() RegisterSlot
}

// Alloca reserves stack storage and yields a pointer.
type Alloca struct {
	BaseType Type
	Size     Value // nil when a single element is allocated
	Result   RegisterSlot
}

// Load reads a value of PointeeType through a pointer.
type Load struct {
	PointeeType Type
	Pointer     Value
	Result      RegisterSlot
}

// Store writes a value of PointeeType through a pointer.
type Store struct {
	PointeeType Type
	Pointer     Value
	Stored      Value
}

// Call invokes a callee within the same block. RetTy is nil and Result is
// NoRegister for void calls.
type Call struct {
	Callee Value
	Args   []Value
	RetTy  Type
	Result RegisterSlot
}

// BinaryOp is an integer arithmetic, shift, or bitwise operation.
type BinaryOp struct {
	Bits   int
	Op     BinaryOperator
	LHS    Value
	RHS    Value
	Result RegisterSlot
}

// CompareOp compares two integer operands and yields a 1-bit result.
type CompareOp struct {
	Bits   int
	Pred   ComparePredicate
	LHS    Value
	RHS    Value
	Result RegisterSlot
}

// CastBitvec truncates or extends a bitvector.
type CastBitvec struct {
	BitsFrom int
	BitsInto int
	Operand  Value
	Result   RegisterSlot
}

// CastPtrToBitvec converts a pointer to a bitvector.
type CastPtrToBitvec struct {
	BitsInto int
	Operand  Value
	Result   RegisterSlot
}

// CastBitvecToPtr converts a bitvector to a pointer.
type CastBitvecToPtr struct {
	BitsFrom int
	Operand  Value
	Result   RegisterSlot
}

// CastPtr reinterprets a pointer as a pointer.
type CastPtr struct {
	Operand Value
	Result  RegisterSlot
}

// Freeze stops the propagation of an undefined value.
type Freeze struct {
	Ty      Type
	Operand Value
	Result  RegisterSlot
}

// GEP computes an address from a base pointer and a sequence of indices.
type GEP struct {
	SrcPointeeTy Type
	DstPointeeTy Type
	Pointer      Value
	Indices      []Value
	Result       RegisterSlot
}

// Select chooses between two values on a 1-bit condition.
type Select struct {
	Ty        Type
	Cond      Value
	ThenValue Value
	ElseValue Value
	Result    RegisterSlot
}

// PhiIn is one (incoming block, value) option of a Phi.
type PhiIn struct {
	Block BlockLabel
	Value Value
}

// Phi merges values flowing in from predecessor blocks.
type Phi struct {
	Ty      Type
	Options []PhiIn
	Result  RegisterSlot
}

// GetValue extracts a field or element from an aggregate.
type GetValue struct {
	SrcTy     Type
	Aggregate Value
	Indices   []int
	DstTy     Type
	Result    RegisterSlot
}

// SetValue inserts a value into an aggregate and yields the new aggregate.
type SetValue struct {
	Ty        Type
	Aggregate Value
	Stored    Value
	Indices   []int
	Result    RegisterSlot
}

// LandingPad marks the entry of an exception-unwind target block.
type LandingPad struct {
	Ty        Type
	IsCleanup bool
	Result    RegisterSlot
}

func (Alloca) isInstruction()          {}
func (Load) isInstruction()            {}
func (Store) isInstruction()           {}
func (Call) isInstruction()            {}
func (BinaryOp) isInstruction()        {}
func (CompareOp) isInstruction()       {}
func (CastBitvec) isInstruction()      {}
func (CastPtrToBitvec) isInstruction() {}
func (CastBitvecToPtr) isInstruction() {}
func (CastPtr) isInstruction()         {}
func (Freeze) isInstruction()          {}
func (GEP) isInstruction()             {}
func (Select) isInstruction()          {}
func (Phi) isInstruction()             {}
func (GetValue) isInstruction()        {}
func (SetValue) isInstruction()        {}
func (LandingPad) isInstruction()      {}

func (i Alloca) ResultSlot() RegisterSlot          { return i.Result }
func (i Load) ResultSlot() RegisterSlot            { return i.Result }
func (Store) ResultSlot() RegisterSlot             { return NoRegister }
func (i Call) ResultSlot() RegisterSlot            { return i.Result }
func (i BinaryOp) ResultSlot() RegisterSlot        { return i.Result }
func (i CompareOp) ResultSlot() RegisterSlot       { return i.Result }
func (i CastBitvec) ResultSlot() RegisterSlot      { return i.Result }
func (i CastPtrToBitvec) ResultSlot() RegisterSlot { return i.Result }
func (i CastBitvecToPtr) ResultSlot() RegisterSlot { return i.Result }
func (i CastPtr) ResultSlot() RegisterSlot         { return i.Result }
func (i Freeze) ResultSlot() RegisterSlot          { return i.Result }
func (i GEP) ResultSlot() RegisterSlot             { return i.Result }
func (i Select) ResultSlot() RegisterSlot          { return i.Result }
func (i Phi) ResultSlot() RegisterSlot             { return i.Result }
func (i GetValue) ResultSlot() RegisterSlot        { return i.Result }
func (i SetValue) ResultSlot() RegisterSlot        { return i.Result }
func (i LandingPad) ResultSlot() RegisterSlot      { return i.Result }

// BinaryOperator enumerates the integer binary opcodes.
type BinaryOperator int

const (
	OpAdd BinaryOperator = iota + 1
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpAnd
	OpOr
	OpXor
)

func parseBinaryOperator(opcode string) (BinaryOperator, error) {
	switch opcode {
	case "add":
		return OpAdd, nil
	case "sub":
		return OpSub, nil
	case "mul":
		return OpMul, nil
	case "udiv", "sdiv":
		return OpDiv, nil
	case "urem", "srem":
		return OpMod, nil
	case "shl":
		return OpShl, nil
	case "lshr", "ashr":
		return OpShr, nil
	case "and":
		return OpAnd, nil
	case "or":
		return OpOr, nil
	case "xor":
		return OpXor, nil
	case "fadd", "fsub", "fmul", "fdiv", "frem":
		return 0, ir.NotSupported(ir.FloatingPoint)
	default:
		return 0, ir.Assumptionf("unexpected binary opcode: %s", opcode)
	}
}

// ComparePredicate enumerates the integer comparison predicates.
type ComparePredicate int

const (
	CmpEQ ComparePredicate = iota + 1
	CmpNE
	CmpGT
	CmpGE
	CmpLT
	CmpLE
)

func parseComparePredicate(predicate string) (ComparePredicate, error) {
	switch predicate {
	case "i_eq":
		return CmpEQ, nil
	case "i_ne":
		return CmpNE, nil
	case "i_ugt", "i_sgt":
		return CmpGT, nil
	case "i_uge", "i_sge":
		return CmpGE, nil
	case "i_ult", "i_slt":
		return CmpLT, nil
	case "i_ule", "i_sle":
		return CmpLE, nil
	case "f_f", "f_oeq", "f_ogt", "f_oge", "f_olt", "f_ole", "f_one", "f_ord",
		"f_uno", "f_ueq", "f_ugt", "f_uge", "f_ult", "f_ule", "f_une", "f_t":
		return 0, ir.NotSupported(ir.FloatingPoint)
	default:
		return 0, ir.Assumptionf("unexpected compare predicate: %s", predicate)
	}
}

// Terminator is the validated internal representation of the single
// terminator of a block. All terminators have void type; an invoke result is
// carried through the Result slot instead.
type Terminator interface {
	isTerminator()
}

// Goto jumps unconditionally.
type Goto struct {
	Target BlockLabel
}

// Branch jumps to Then when Cond is non-zero, Else otherwise.
type Branch struct {
	Cond Value
	Then BlockLabel
	Else BlockLabel
}

// SwitchBranch is one (case value, target) pair of a Switch.
type SwitchBranch struct {
	Value  uint64
	Target BlockLabel
}

// Switch is a multi-way branch on an integer condition.
type Switch struct {
	Cond    Value
	Bits    int
	Cases   []SwitchBranch
	Default *BlockLabel // nil when the switch has no default target
}

// IndirectJump jumps to one of a computed set of possible targets.
type IndirectJump struct {
	Address Value
	Targets []BlockLabel
}

// Invoke calls a callee that may unwind: control continues at Normal on
// return and at Unwind on an exception.
type Invoke struct {
	Callee Value
	Args   []Value
	RetTy  Type
	Result RegisterSlot
	Normal BlockLabel
	Unwind BlockLabel
}

// Return leaves the function, with a value unless the return type is void.
type Return struct {
	Val Value // nil for a void return
}

// Resume continues unwinding with an exception payload.
type Resume struct {
	Val Value
}

// Unreachable marks a point the program can never reach.
type Unreachable struct{}

func (Goto) isTerminator()         {}
func (Branch) isTerminator()       {}
func (Switch) isTerminator()       {}
func (IndirectJump) isTerminator() {}
func (Invoke) isTerminator()       {}
func (Return) isTerminator()       {}
func (Resume) isTerminator()       {}
func (Unreachable) isTerminator()  {}

// Context carries the per-function translation state: the known block labels
// and instruction indices, the argument types, and the return type, so that
// register and argument references can be type-checked against their
// declaration. Expression constants use a Context with empty block, register,
// and argument sets.
type Context struct {
	Typing  *TypeRegistry
	Symbols *SymbolRegistry
	Blocks  map[BlockLabel]bool
	Insts   map[RegisterSlot]bool
	Args    map[ArgumentSlot]Type
	Ret     Type
}

// parseValue converts an adapter value and checks it against the expected
// type.
func (c *Context) parseValue(val adapter.Value, expected Type) (Value, error) {
	switch val.Kind {
	case adapter.ValueConstant:
		if val.Constant == nil {
			return nil, ir.Invariantf("constant value without constant payload")
		}
		constant, err := ConvertConstant(*val.Constant, expected, c.Typing, c.Symbols)
		if err != nil {
			return nil, err
		}
		return ConstantValue{Constant: constant}, nil

	case adapter.ValueArgument:
		index := ArgumentSlot(val.Index)
		declared, ok := c.Args[index]
		if !ok {
			return nil, ir.Invariantf("invalid argument index: %d", val.Index)
		}
		if !TypeEqual(expected, declared) {
			return nil, ir.Invariantf("param type mismatch: expect %s, found %s", expected, declared)
		}
		actual, err := c.convertValueType(val)
		if err != nil {
			return nil, err
		}
		if !TypeEqual(expected, actual) {
			return nil, ir.Invariantf("argument type mismatch: expect %s, found %s", expected, actual)
		}
		return Argument{Index: index, Ty: actual}, nil

	case adapter.ValueInstruction:
		index := RegisterSlot(val.Index)
		if !c.Insts[index] {
			return nil, ir.Invariantf("invalid instruction index: %d", val.Index)
		}
		actual, err := c.convertValueType(val)
		if err != nil {
			return nil, err
		}
		if !TypeEqual(expected, actual) {
			return nil, ir.Invariantf("instruction type mismatch: expect %s, found %s", expected, actual)
		}
		return Register{Index: index, Ty: actual}, nil

	default:
		return nil, ir.Invariantf("unknown value kind: %q", val.Kind)
	}
}

func (c *Context) convertValueType(val adapter.Value) (Type, error) {
	if val.Ty == nil {
		return nil, ir.Invariantf("value reference without declared type")
	}
	return c.Typing.Convert(*val.Ty)
}

// parseValueSelfTyped converts a value against its own declared type; used
// where the instruction imposes no type of its own (GEP indices, resume
// payloads).
func (c *Context) parseValueSelfTyped(val adapter.Value) (Value, error) {
	var declared adapter.Type
	switch val.Kind {
	case adapter.ValueConstant:
		if val.Constant == nil {
			return nil, ir.Invariantf("constant value without constant payload")
		}
		declared = val.Constant.Ty
	default:
		if val.Ty == nil {
			return nil, ir.Invariantf("value reference without declared type")
		}
		declared = *val.Ty
	}
	expected, err := c.Typing.Convert(declared)
	if err != nil {
		return nil, err
	}
	return c.parseValue(val, expected)
}

func (c *Context) requireLabel(label int) (BlockLabel, error) {
	l := BlockLabel(label)
	if !c.Blocks[l] {
		return 0, ir.Invariantf("reference to unknown block label: %d", label)
	}
	return l, nil
}

// ParseInstruction converts one non-terminator instruction record.
func (c *Context) ParseInstruction(inst adapter.Instruction) (Instruction, error) {
	return c.parseInstRepr(inst.Repr, inst.Ty, RegisterSlot(inst.Index))
}

//gocyclo:ignore
func (c *Context) parseInstRepr(repr adapter.Inst, ty adapter.Type, result RegisterSlot) (Instruction, error) {
	switch repr.Kind {
	case adapter.InstAlloca:
		instTy, err := c.Typing.Convert(ty)
		if err != nil {
			return nil, err
		}
		if _, ok := instTy.(PointerType); !ok {
			return nil, ir.Assumptionf("alloca should return a pointer type")
		}
		if repr.AllocatedType == nil {
			return nil, ir.Invariantf("alloca without allocated type")
		}
		baseType, err := c.Typing.Convert(*repr.AllocatedType)
		if err != nil {
			return nil, err
		}
		var size Value
		if repr.Size != nil {
			if size, err = c.parseValue(*repr.Size, IntType{Bits: 64}); err != nil {
				return nil, err
			}
		}
		return Alloca{BaseType: baseType, Size: size, Result: result}, nil

	case adapter.InstLoad:
		if repr.AddressSpace != 0 {
			return nil, ir.NotSupported(ir.PointerAddressSpace)
		}
		instTy, err := c.Typing.Convert(ty)
		if err != nil {
			return nil, err
		}
		if repr.PointeeType == nil || repr.Pointer == nil {
			return nil, ir.Invariantf("load without pointee type or pointer")
		}
		pointeeTy, err := c.Typing.Convert(*repr.PointeeType)
		if err != nil {
			return nil, err
		}
		if !TypeEqual(instTy, pointeeTy) {
			return nil, ir.Assumptionf("load mismatch between result type and pointee type")
		}
		pointer, err := c.parseValue(*repr.Pointer, PointerType{})
		if err != nil {
			return nil, err
		}
		return Load{PointeeType: pointeeTy, Pointer: pointer, Result: result}, nil

	case adapter.InstStore:
		if repr.AddressSpace != 0 {
			return nil, ir.NotSupported(ir.PointerAddressSpace)
		}
		if ty.Kind != adapter.TypeVoid {
			return nil, ir.Assumptionf("store should have void type")
		}
		if repr.PointeeType == nil || repr.Pointer == nil || repr.Value == nil {
			return nil, ir.Invariantf("store without pointee type, pointer, or value")
		}
		pointeeTy, err := c.Typing.Convert(*repr.PointeeType)
		if err != nil {
			return nil, err
		}
		pointer, err := c.parseValue(*repr.Pointer, PointerType{})
		if err != nil {
			return nil, err
		}
		stored, err := c.parseValue(*repr.Value, pointeeTy)
		if err != nil {
			return nil, err
		}
		return Store{PointeeType: pointeeTy, Pointer: pointer, Stored: stored}, nil

	case adapter.InstIntrinsic, adapter.InstCallDirect, adapter.InstCallIndirect:
		callee, args, retTy, err := c.parseCallSite(repr, &ty)
		if err != nil {
			return nil, err
		}
		if repr.Kind == adapter.InstIntrinsic {
			if err := filterIntrinsics(callee); err != nil {
				return nil, err
			}
		}
		callResult := NoRegister
		if retTy != nil {
			callResult = result
		}
		return Call{Callee: callee, Args: args, RetTy: retTy, Result: callResult}, nil

	case adapter.InstCallAsm:
		return nil, ir.NotSupported(ir.InlineAssembly)

	case adapter.InstVAArg:
		return nil, ir.NotSupported(ir.VariadicArguments)

	case adapter.InstUnary:
		if repr.Opcode == "fneg" {
			return nil, ir.NotSupported(ir.FloatingPoint)
		}
		return nil, ir.Assumptionf("unexpected unary opcode: %s", repr.Opcode)

	case adapter.InstBinary:
		instTy, err := c.Typing.Convert(ty)
		if err != nil {
			return nil, err
		}
		bits, ok := instTy.(IntType)
		if !ok {
			return nil, ir.Assumptionf("binary operator has non-bitvec instruction type")
		}
		opcode, err := parseBinaryOperator(repr.Opcode)
		if err != nil {
			return nil, err
		}
		if repr.LHS == nil || repr.RHS == nil {
			return nil, ir.Invariantf("binary operator without operands")
		}
		lhs, err := c.parseValue(*repr.LHS, instTy)
		if err != nil {
			return nil, err
		}
		rhs, err := c.parseValue(*repr.RHS, instTy)
		if err != nil {
			return nil, err
		}
		return BinaryOp{Bits: bits.Bits, Op: opcode, LHS: lhs, RHS: rhs, Result: result}, nil

	case adapter.InstCompare:
		instTy, err := c.Typing.Convert(ty)
		if err != nil {
			return nil, err
		}
		if boolTy, ok := instTy.(IntType); !ok || boolTy.Bits != 1 {
			return nil, ir.Assumptionf("compare has non-bool instruction type")
		}
		if repr.OperandType == nil || repr.LHS == nil || repr.RHS == nil {
			return nil, ir.Invariantf("compare without operand type or operands")
		}
		operandTy, err := c.Typing.Convert(*repr.OperandType)
		if err != nil {
			return nil, err
		}
		bits, ok := operandTy.(IntType)
		if !ok {
			return nil, ir.Assumptionf("compare has non-bitvec operand type")
		}
		predicate, err := parseComparePredicate(repr.Predicate)
		if err != nil {
			return nil, err
		}
		lhs, err := c.parseValue(*repr.LHS, operandTy)
		if err != nil {
			return nil, err
		}
		rhs, err := c.parseValue(*repr.RHS, operandTy)
		if err != nil {
			return nil, err
		}
		return CompareOp{Bits: bits.Bits, Pred: predicate, LHS: lhs, RHS: rhs, Result: result}, nil

	case adapter.InstCast:
		return c.parseCast(repr, ty, result)

	case adapter.InstFreeze:
		instTy, err := c.Typing.Convert(ty)
		if err != nil {
			return nil, err
		}
		if repr.Operand == nil {
			return nil, ir.Invariantf("freeze without operand")
		}
		operand, err := c.parseValue(*repr.Operand, instTy)
		if err != nil {
			return nil, err
		}
		return Freeze{Ty: instTy, Operand: operand, Result: result}, nil

	case adapter.InstGEP:
		return c.parseGEP(repr, ty, result)

	case adapter.InstITE:
		instTy, err := c.Typing.Convert(ty)
		if err != nil {
			return nil, err
		}
		if repr.Cond == nil || repr.ThenValue == nil || repr.ElseValue == nil {
			return nil, ir.Invariantf("ite without condition or branches")
		}
		cond, err := c.parseValue(*repr.Cond, IntType{Bits: 1})
		if err != nil {
			return nil, err
		}
		thenValue, err := c.parseValue(*repr.ThenValue, instTy)
		if err != nil {
			return nil, err
		}
		elseValue, err := c.parseValue(*repr.ElseValue, instTy)
		if err != nil {
			return nil, err
		}
		return Select{Ty: instTy, Cond: cond, ThenValue: thenValue, ElseValue: elseValue, Result: result}, nil

	case adapter.InstPhi:
		instTy, err := c.Typing.Convert(ty)
		if err != nil {
			return nil, err
		}
		options := make([]PhiIn, 0, len(repr.Options))
		seen := make(map[BlockLabel]bool, len(repr.Options))
		for _, option := range repr.Options {
			label, err := c.requireLabel(option.Block)
			if err != nil {
				return nil, err
			}
			if seen[label] {
				return nil, ir.Invariantf("duplicate phi option for block: %d", label)
			}
			seen[label] = true
			value, err := c.parseValue(option.Value, instTy)
			if err != nil {
				return nil, err
			}
			options = append(options, PhiIn{Block: label, Value: value})
		}
		return Phi{Ty: instTy, Options: options, Result: result}, nil

	case adapter.InstGetValue:
		instTy, err := c.Typing.Convert(ty)
		if err != nil {
			return nil, err
		}
		if repr.FromType == nil || repr.Aggregate == nil {
			return nil, ir.Invariantf("get_value without source type or aggregate")
		}
		srcTy, err := c.Typing.Convert(*repr.FromType)
		if err != nil {
			return nil, err
		}
		aggregate, err := c.parseValue(*repr.Aggregate, srcTy)
		if err != nil {
			return nil, err
		}
		slotTy, err := walkAggregate(srcTy, repr.SlotIndices)
		if err != nil {
			return nil, err
		}
		if !TypeEqual(instTy, slotTy) {
			return nil, ir.Assumptionf("get_value mismatch between result type and slot type")
		}
		return GetValue{SrcTy: srcTy, Aggregate: aggregate, Indices: repr.SlotIndices, DstTy: slotTy, Result: result}, nil

	case adapter.InstSetValue:
		instTy, err := c.Typing.Convert(ty)
		if err != nil {
			return nil, err
		}
		if repr.Aggregate == nil || repr.Value == nil {
			return nil, ir.Invariantf("set_value without aggregate or value")
		}
		aggregate, err := c.parseValue(*repr.Aggregate, instTy)
		if err != nil {
			return nil, err
		}
		slotTy, err := walkAggregate(instTy, repr.SlotIndices)
		if err != nil {
			return nil, err
		}
		stored, err := c.parseValue(*repr.Value, slotTy)
		if err != nil {
			return nil, err
		}
		return SetValue{Ty: instTy, Aggregate: aggregate, Stored: stored, Indices: repr.SlotIndices, Result: result}, nil

	case adapter.InstGetElement, adapter.InstSetElement, adapter.InstShuffleVector:
		return nil, ir.NotSupported(ir.Vectorization)

	case adapter.InstFence, adapter.InstAtomicCmpXchg, adapter.InstAtomicRMW:
		return nil, ir.NotSupported(ir.AtomicInstruction)

	case adapter.InstLandingPad:
		instTy, err := c.Typing.Convert(ty)
		if err != nil {
			return nil, err
		}
		return LandingPad{Ty: instTy, IsCleanup: repr.IsCleanup, Result: result}, nil

	case adapter.InstCatchPad, adapter.InstCleanupPad:
		return nil, ir.Assumptionf("unexpected windows-style exception handling: %s", repr.Kind)

	case adapter.InstReturn, adapter.InstBranch, adapter.InstSwitch, adapter.InstIndirectJump,
		adapter.InstInvokeDirect, adapter.InstInvokeIndirect, adapter.InstInvokeAsm,
		adapter.InstResume, adapter.InstCatchSwitch, adapter.InstCatchReturn,
		adapter.InstCleanupReturn, adapter.InstCallBranch, adapter.InstUnreachable:
		return nil, ir.Invariantf("malformed block with terminator instruction in the body")

	default:
		return nil, ir.Invariantf("unknown instruction kind: %q", repr.Kind)
	}
}

// parseCallSite checks a call-shaped payload: the target signature, the
// argument list against the parameter types, and the instruction type
// against the return type. A nil instruction type skips the return check;
// invoke records are void-typed regardless of the callee return type.
func (c *Context) parseCallSite(repr adapter.Inst, ty *adapter.Type) (Value, []Value, Type, error) {
	if repr.TargetType == nil || repr.Callee == nil {
		return nil, nil, nil, ir.Invariantf("call without target type or callee")
	}
	funcTy, err := c.Typing.Convert(*repr.TargetType)
	if err != nil {
		return nil, nil, nil, err
	}
	signature, ok := funcTy.(FuncType)
	if !ok {
		return nil, nil, nil, ir.Assumptionf("call refers to a non-function callee")
	}
	if len(signature.Params) != len(repr.Args) {
		return nil, nil, nil, ir.Assumptionf("call number of arguments mismatch")
	}
	args := make([]Value, len(repr.Args))
	for i, arg := range repr.Args {
		if args[i], err = c.parseValue(arg, signature.Params[i]); err != nil {
			return nil, nil, nil, err
		}
	}
	if ty != nil {
		if signature.Ret == nil {
			if ty.Kind != adapter.TypeVoid {
				return nil, nil, nil, ir.Assumptionf("call return type mismatch")
			}
		} else {
			instTy, err := c.Typing.Convert(*ty)
			if err != nil {
				return nil, nil, nil, err
			}
			if !TypeEqual(signature.Ret, instTy) {
				return nil, nil, nil, ir.Assumptionf("call return type mismatch")
			}
		}
	}
	callee, err := c.parseValue(*repr.Callee, PointerType{})
	if err != nil {
		return nil, nil, nil, err
	}
	return callee, args, signature.Ret, nil
}

func (c *Context) parseCast(repr adapter.Inst, ty adapter.Type, result RegisterSlot) (Instruction, error) {
	instTy, err := c.Typing.Convert(ty)
	if err != nil {
		return nil, err
	}
	if repr.SrcType == nil || repr.DstType == nil || repr.Operand == nil {
		return nil, ir.Invariantf("cast without source type, destination type, or operand")
	}
	srcTy, err := c.Typing.Convert(*repr.SrcType)
	if err != nil {
		return nil, err
	}
	dstTy, err := c.Typing.Convert(*repr.DstType)
	if err != nil {
		return nil, err
	}
	if !TypeEqual(dstTy, instTy) {
		return nil, ir.Invariantf("type mismatch between dst type and inst type for cast")
	}
	operand, err := c.parseValue(*repr.Operand, srcTy)
	if err != nil {
		return nil, err
	}

	switch repr.Opcode {
	case "trunc", "zext", "sext":
		from, okFrom := srcTy.(IntType)
		into, okInto := dstTy.(IntType)
		if !okFrom || !okInto {
			return nil, ir.Assumptionf("expect bitvec type for bitvec cast")
		}
		return CastBitvec{BitsFrom: from.Bits, BitsInto: into.Bits, Operand: operand, Result: result}, nil
	case "ptr_to_int":
		_, okFrom := srcTy.(PointerType)
		into, okInto := dstTy.(IntType)
		if !okFrom || !okInto {
			return nil, ir.Assumptionf("expect (ptr, bitvec) for ptr_to_int cast")
		}
		return CastPtrToBitvec{BitsInto: into.Bits, Operand: operand, Result: result}, nil
	case "int_to_ptr":
		from, okFrom := srcTy.(IntType)
		_, okInto := dstTy.(PointerType)
		if !okFrom || !okInto {
			return nil, ir.Assumptionf("expect (bitvec, ptr) for int_to_ptr cast")
		}
		return CastBitvecToPtr{BitsFrom: from.Bits, Operand: operand, Result: result}, nil
	case "bitcast":
		_, okFrom := srcTy.(PointerType)
		_, okInto := dstTy.(PointerType)
		if !okFrom || !okInto {
			return nil, ir.Assumptionf("expect ptr type for bitcast")
		}
		return CastPtr{Operand: operand, Result: result}, nil
	case "address_space_cast":
		return nil, ir.NotSupported(ir.PointerAddressSpace)
	default:
		return nil, ir.Assumptionf("unexpected cast opcode: %s", repr.Opcode)
	}
}

func (c *Context) parseGEP(repr adapter.Inst, ty adapter.Type, result RegisterSlot) (Instruction, error) {
	if repr.AddressSpace != 0 {
		return nil, ir.NotSupported(ir.PointerAddressSpace)
	}
	instTy, err := c.Typing.Convert(ty)
	if err != nil {
		return nil, err
	}
	if _, ok := instTy.(PointerType); !ok {
		return nil, ir.Assumptionf("gep should return a pointer type")
	}
	if repr.SrcPointeeType == nil || repr.DstPointeeType == nil || repr.Pointer == nil {
		return nil, ir.Invariantf("gep without pointee types or pointer")
	}
	srcPointeeTy, err := c.Typing.Convert(*repr.SrcPointeeType)
	if err != nil {
		return nil, err
	}
	dstPointeeTy, err := c.Typing.Convert(*repr.DstPointeeType)
	if err != nil {
		return nil, err
	}
	pointer, err := c.parseValue(*repr.Pointer, PointerType{})
	if err != nil {
		return nil, err
	}
	indices := make([]Value, len(repr.Indices))
	for i, index := range repr.Indices {
		value, err := c.parseValueSelfTyped(index)
		if err != nil {
			return nil, err
		}
		indices[i] = value
	}
	return GEP{
		SrcPointeeTy: srcPointeeTy,
		DstPointeeTy: dstPointeeTy,
		Pointer:      pointer,
		Indices:      indices,
		Result:       result,
	}, nil
}

// walkAggregate resolves an index path through nested struct and array types.
func walkAggregate(ty Type, indices []int) (Type, error) {
	current := ty
	for _, index := range indices {
		switch t := current.(type) {
		case StructType:
			if index < 0 || index >= len(t.Fields) {
				return nil, ir.Assumptionf("aggregate field index out of range: %d", index)
			}
			current = t.Fields[index]
		case ArrayType:
			if index < 0 || index >= t.Length {
				return nil, ir.Assumptionf("aggregate element index out of range: %d", index)
			}
			current = t.Element
		default:
			return nil, ir.Assumptionf("aggregate index into non-aggregate type: %s", current)
		}
	}
	return current, nil
}

// ParseTerminator converts the terminator record of a block. All terminator
// records carry void type; an invoke result type is recovered from the
// callee signature.
func (c *Context) ParseTerminator(inst adapter.Instruction) (Terminator, error) {
	if inst.Ty.Kind != adapter.TypeVoid {
		return nil, ir.Assumptionf("all terminator instructions must have void type")
	}

	repr := inst.Repr
	switch repr.Kind {
	case adapter.InstReturn:
		switch {
		case repr.ReturnValue == nil && c.Ret == nil:
			return Return{}, nil
		case repr.ReturnValue == nil || c.Ret == nil:
			return nil, ir.Invariantf("return type mismatch")
		default:
			value, err := c.parseValue(*repr.ReturnValue, c.Ret)
			if err != nil {
				return nil, err
			}
			return Return{Val: value}, nil
		}

	case adapter.InstBranch:
		if repr.Cond == nil {
			if len(repr.Targets) != 1 {
				return nil, ir.Invariantf("unconditional branch must have one target")
			}
			target, err := c.requireLabel(repr.Targets[0])
			if err != nil {
				return nil, err
			}
			return Goto{Target: target}, nil
		}
		if len(repr.Targets) != 2 {
			return nil, ir.Invariantf("conditional branch must have two targets")
		}
		cond, err := c.parseValue(*repr.Cond, IntType{Bits: 1})
		if err != nil {
			return nil, err
		}
		then, err := c.requireLabel(repr.Targets[0])
		if err != nil {
			return nil, err
		}
		els, err := c.requireLabel(repr.Targets[1])
		if err != nil {
			return nil, err
		}
		return Branch{Cond: cond, Then: then, Else: els}, nil

	case adapter.InstSwitch:
		if repr.Cond == nil || repr.CondTy == nil {
			return nil, ir.Invariantf("switch without condition")
		}
		condTy, err := c.Typing.Convert(*repr.CondTy)
		if err != nil {
			return nil, err
		}
		bits, ok := condTy.(IntType)
		if !ok {
			return nil, ir.Assumptionf("switch condition must be a bitvec")
		}
		cond, err := c.parseValue(*repr.Cond, condTy)
		if err != nil {
			return nil, err
		}
		cases := make([]SwitchBranch, 0, len(repr.Cases))
		for _, branch := range repr.Cases {
			target, err := c.requireLabel(branch.Block)
			if err != nil {
				return nil, err
			}
			caseValue, err := ConvertConstant(branch.Value, condTy, c.Typing, c.Symbols)
			if err != nil {
				return nil, err
			}
			literal, ok := caseValue.(Bitvec)
			if !ok {
				return nil, ir.Assumptionf("switch case must be an integer literal")
			}
			cases = append(cases, SwitchBranch{Value: literal.Value, Target: target})
		}
		var defaultTarget *BlockLabel
		if repr.Default != nil {
			target, err := c.requireLabel(*repr.Default)
			if err != nil {
				return nil, err
			}
			defaultTarget = &target
		}
		return Switch{Cond: cond, Bits: bits.Bits, Cases: cases, Default: defaultTarget}, nil

	case adapter.InstIndirectJump:
		if repr.Address == nil {
			return nil, ir.Invariantf("indirect jump without address")
		}
		address, err := c.parseValue(*repr.Address, PointerType{})
		if err != nil {
			return nil, err
		}
		targets := make([]BlockLabel, len(repr.Targets))
		for i, target := range repr.Targets {
			if targets[i], err = c.requireLabel(target); err != nil {
				return nil, err
			}
		}
		return IndirectJump{Address: address, Targets: targets}, nil

	case adapter.InstInvokeDirect, adapter.InstInvokeIndirect:
		callee, args, retTy, err := c.parseCallSite(repr, nil)
		if err != nil {
			return nil, err
		}
		normal, err := c.requireLabel(repr.Normal)
		if err != nil {
			return nil, err
		}
		unwind, err := c.requireLabel(repr.Unwind)
		if err != nil {
			return nil, err
		}
		invokeResult := NoRegister
		if retTy != nil {
			invokeResult = RegisterSlot(inst.Index)
		}
		return Invoke{
			Callee: callee,
			Args:   args,
			RetTy:  retTy,
			Result: invokeResult,
			Normal: normal,
			Unwind: unwind,
		}, nil

	case adapter.InstInvokeAsm:
		return nil, ir.NotSupported(ir.InlineAssembly)

	case adapter.InstResume:
		if repr.Value == nil {
			return nil, ir.Invariantf("resume without value")
		}
		value, err := c.parseValueSelfTyped(*repr.Value)
		if err != nil {
			return nil, err
		}
		return Resume{Val: value}, nil

	case adapter.InstCatchSwitch, adapter.InstCatchReturn, adapter.InstCleanupReturn,
		adapter.InstCallBranch:
		return nil, ir.Assumptionf("unexpected windows-style exception handling: %s", repr.Kind)

	case adapter.InstUnreachable:
		return Unreachable{}, nil

	default:
		return nil, ir.Invariantf("malformed block with non-terminator instruction")
	}
}
