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

package fixpoint

import (
	"github.com/awslabs/ar-ir-tools/analysis/ir/bridge"
	"github.com/awslabs/ar-ir-tools/analysis/lattice"
)

// VariableStore maps every result register of a function to an abstract
// element. All registers of the function are present in every store;
// transfer functions update bindings but never add or remove keys.
type VariableStore[E any] map[bridge.RegisterSlot]E

// Get returns the element bound to a register.
func (s VariableStore[E]) Get(r bridge.RegisterSlot) E { return s[r] }

// Set rebinds a register.
func (s VariableStore[E]) Set(r bridge.RegisterSlot, v E) { s[r] = v }

// Copy returns an independent store with the same bindings.
func (s VariableStore[E]) Copy() VariableStore[E] {
	out := make(VariableStore[E], len(s))
	for r, v := range s {
		out[r] = v
	}
	return out
}

// bottomStore binds every result register of the graph to bottom. Invoke
// terminators produce registers too.
func bottomStore[E any](cfg *bridge.Cfg, domain lattice.Domain[E]) VariableStore[E] {
	store := make(VariableStore[E])
	for _, block := range cfg.Blocks() {
		for _, inst := range block.Body {
			if slot := inst.ResultSlot(); slot != bridge.NoRegister {
				store[slot] = domain.Bottom()
			}
		}
		if invoke, ok := block.Term.(bridge.Invoke); ok && invoke.Result != bridge.NoRegister {
			store[invoke.Result] = domain.Bottom()
		}
	}
	return store
}

// storeOps lifts the element domain pointwise over stores. Every store of a
// run has the same key set, so the map lift never consults the inner bottom.
type storeOps[E any] struct {
	lifted lattice.MapDomain[bridge.RegisterSlot, E]
}

func newStoreOps[E any](domain lattice.Domain[E]) storeOps[E] {
	return storeOps[E]{lifted: lattice.NewMapDomain[bridge.RegisterSlot](domain)}
}

func (o storeOps[E]) join(a, b VariableStore[E]) VariableStore[E] {
	return VariableStore[E](o.lifted.Join(map[bridge.RegisterSlot]E(a), map[bridge.RegisterSlot]E(b)))
}

func (o storeOps[E]) widen(next, prev VariableStore[E]) VariableStore[E] {
	return VariableStore[E](o.lifted.Widen(map[bridge.RegisterSlot]E(next), map[bridge.RegisterSlot]E(prev)))
}

func (o storeOps[E]) narrow(next, prev VariableStore[E]) VariableStore[E] {
	return VariableStore[E](o.lifted.Narrow(map[bridge.RegisterSlot]E(next), map[bridge.RegisterSlot]E(prev)))
}

func (o storeOps[E]) compare(a, b VariableStore[E]) lattice.Order {
	return o.lifted.Compare(map[bridge.RegisterSlot]E(a), map[bridge.RegisterSlot]E(b))
}
