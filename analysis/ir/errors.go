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

// Package ir holds the error taxonomy shared by the adapter loading layer and
// the bridge conversion layer. Every conversion failure is an *ir.Error; the
// Kind distinguishes malformed input from features the bridge knowingly does
// not handle.
package ir

import (
	"errors"
	"fmt"
)

// ErrorKind classifies bridge and loading errors.
type ErrorKind int

const (
	// CompilationError wraps failures of the external compiler/linker workflow.
	CompilationError ErrorKind = iota + 1

	// LoadingError wraps failures while deserializing or type-checking the
	// serialized module against its declared types.
	LoadingError

	// InvalidAssumption means the input violates a precondition that holds for
	// well-formed compiler output.
	InvalidAssumption

	// NotSupportedYet tags a known, enumerated IR feature the bridge rejects.
	NotSupportedYet

	// InvariantViolation means an internal consistency check failed; either the
	// adapter input is malformed or there is a bug in the bridge.
	InvariantViolation
)

func (k ErrorKind) String() string {
	switch k {
	case CompilationError:
		return "compilation"
	case LoadingError:
		return "loading"
	case InvalidAssumption:
		return "assumption"
	case NotSupportedYet:
		return "unsupported"
	case InvariantViolation:
		return "invariant"
	default:
		return "unknown"
	}
}

// Unsupported is the closed enumeration of IR features the bridge rejects
// with a NotSupportedYet error.
type Unsupported int

const (
	ModuleLevelAssembly Unsupported = iota + 1
	InlineAssembly
	GlobalAlias
	FloatingPoint
	Vectorization
	VariadicArguments
	ArchSpecificExtension
	OpaqueStructDefinition
	OpaquePointerType
	ThreadLocalStorage
	WeakGlobalVariable
	ExternInitializedGlobal
	AnonymousGlobalVariable
	PointerAddressSpace
	OutOfBoundConstantGEP
	InterfaceResolver
	ConstantAddressOfInstruction
	AtomicInstruction
	IntrinsicsPreAllocated
	IntrinsicsConvergence
	IntrinsicsGC
)

func (u Unsupported) String() string {
	switch u {
	case ModuleLevelAssembly:
		return "module-level assembly"
	case InlineAssembly:
		return "inline assembly"
	case GlobalAlias:
		return "global alias"
	case FloatingPoint:
		return "floating point"
	case Vectorization:
		return "SIMD vectorization"
	case VariadicArguments:
		return "variadic arguments"
	case ArchSpecificExtension:
		return "architecture-specific extension"
	case OpaqueStructDefinition:
		return "opaque struct definition"
	case OpaquePointerType:
		return "opaque pointer type"
	case ThreadLocalStorage:
		return "thread-local storage"
	case WeakGlobalVariable:
		return "weak definition for global variable"
	case ExternInitializedGlobal:
		return "externally initialized global variable"
	case AnonymousGlobalVariable:
		return "anonymous global variable"
	case PointerAddressSpace:
		return "address space of a pointer"
	case OutOfBoundConstantGEP:
		return "intentional out-of-bound GEP on constant"
	case InterfaceResolver:
		return "interface resolver"
	case ConstantAddressOfInstruction:
		return "constant address of instruction"
	case AtomicInstruction:
		return "atomic instruction"
	case IntrinsicsPreAllocated:
		return "intrinsics: pre-allocated call"
	case IntrinsicsConvergence:
		return "intrinsics: convergence control"
	case IntrinsicsGC:
		return "intrinsics: garbage collection"
	default:
		return "unknown feature"
	}
}

// Error is the error type surfaced by the adapter and bridge layers.
type Error struct {
	Kind    ErrorKind
	Feature Unsupported // set only when Kind is NotSupportedYet
	Msg     string
}

func (e *Error) Error() string {
	if e.Kind == NotSupportedYet {
		return fmt.Sprintf("[ir::%s] %s", e.Kind, e.Feature)
	}
	return fmt.Sprintf("[ir::%s] %s", e.Kind, e.Msg)
}

// NotSupported returns a NotSupportedYet error tagged with the feature.
func NotSupported(feature Unsupported) *Error {
	return &Error{Kind: NotSupportedYet, Feature: feature}
}

// Assumptionf returns an InvalidAssumption error with a formatted message.
func Assumptionf(format string, args ...any) *Error {
	return &Error{Kind: InvalidAssumption, Msg: fmt.Sprintf(format, args...)}
}

// Invariantf returns an InvariantViolation error with a formatted message.
func Invariantf(format string, args ...any) *Error {
	return &Error{Kind: InvariantViolation, Msg: fmt.Sprintf(format, args...)}
}

// Loadingf returns a LoadingError with a formatted message.
func Loadingf(format string, args ...any) *Error {
	return &Error{Kind: LoadingError, Msg: fmt.Sprintf(format, args...)}
}

// Compilationf returns a CompilationError with a formatted message.
func Compilationf(format string, args ...any) *Error {
	return &Error{Kind: CompilationError, Msg: fmt.Sprintf(format, args...)}
}

// IsUnsupported reports whether err is a NotSupportedYet error for the feature.
func IsUnsupported(err error, feature Unsupported) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == NotSupportedYet && e.Feature == feature
}

// KindOf returns the ErrorKind of err, or 0 if err is not an *ir.Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
