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
	"strings"

	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// Intrinsic families that change the execution model itself and cannot be
// treated as opaque calls.
var rejectedIntrinsicPrefixes = []struct {
	prefix  string
	feature ir.Unsupported
}{
	{"llvm.call.preallocated.", ir.IntrinsicsPreAllocated},
	{"llvm.experimental.convergence.", ir.IntrinsicsConvergence},
	{"llvm.experimental.gc.", ir.IntrinsicsGC},
}

// filterIntrinsics rejects calls to intrinsic families the bridge cannot
// model as opaque calls. The callee of an intrinsic call site is always a
// direct function reference.
func filterIntrinsics(callee Value) error {
	cv, ok := callee.(ConstantValue)
	if !ok {
		return ir.Assumptionf("intrinsic call with an indirect callee")
	}
	ref, ok := cv.Constant.(FunctionRef)
	if !ok {
		return ir.Assumptionf("intrinsic call with a non-function callee")
	}
	name := string(ref.Name)
	for _, family := range rejectedIntrinsicPrefixes {
		if strings.HasPrefix(name, family.prefix) {
			return ir.NotSupported(family.feature)
		}
	}
	return nil
}
