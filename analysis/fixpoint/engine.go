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

// Package fixpoint runs abstract interpretations over one function's
// control-flow graph: a worklist iteration to a widened post-fixed point,
// followed by bounded narrowing sweeps.
package fixpoint

import (
	"github.com/awslabs/ar-ir-tools/analysis/ir/bridge"
	"github.com/awslabs/ar-ir-tools/analysis/lattice"
	"golang.org/x/tools/container/intsets"
)

// Direction selects which way facts propagate through the graph.
type Direction int

const (
	// Forward propagates facts from the entry along the edges.
	Forward Direction = iota + 1
	// Backward propagates facts from the exits against the edges.
	Backward
)

// A Transfer interprets instructions over an abstract store. Both methods
// update the store in place; the engine hands them a private copy.
type Transfer[E any] interface {
	// Instruction applies the effect of one non-terminator instruction.
	Instruction(inst bridge.Instruction, store VariableStore[E])

	// Terminator applies the effect of a block terminator.
	Terminator(term bridge.Terminator, store VariableStore[E])
}

// BlockState is the stabilized pair of stores at a block boundary: In holds
// before the first instruction, Out after the terminator, regardless of the
// analysis direction.
type BlockState[E any] struct {
	In  VariableStore[E]
	Out VariableStore[E]
}

// CfgState is the analysis result for a whole graph.
type CfgState[E any] map[bridge.BlockLabel]*BlockState[E]

// narrowingSweeps bounds the descending phase. Narrowing chains need not
// stabilize on their own, so the engine stops after this many full sweeps.
const narrowingSweeps = 2

// An Analysis ties a graph to a domain, a transfer function, and a
// direction.
type Analysis[E any] struct {
	Cfg       *bridge.Cfg
	Domain    lattice.Domain[E]
	Transfer  Transfer[E]
	Direction Direction
}

// Run iterates to a post-fixed point and returns the per-block states. The
// worklist always pops the lowest pending label, so runs are deterministic.
func (a *Analysis[E]) Run() CfgState[E] {
	ops := newStoreOps(a.Domain)
	bottom := bottomStore(a.Cfg, a.Domain)

	state := make(CfgState[E], len(a.Cfg.Labels()))
	for _, label := range a.Cfg.Labels() {
		state[label] = &BlockState[E]{In: bottom.Copy(), Out: bottom.Copy()}
	}

	var work intsets.Sparse
	for _, label := range a.Cfg.Labels() {
		work.Insert(int(label))
	}
	for !work.IsEmpty() {
		var popped int
		work.TakeMin(&popped)
		label := bridge.BlockLabel(popped)

		boundary, candidate := a.step(label, state, ops)
		extrapolated := ops.widen(candidate, a.exitStore(state[label]))
		if a.commit(label, state, boundary, extrapolated, ops) {
			for _, next := range a.dependents(label) {
				work.Insert(int(next))
			}
		}
	}

	for sweep := 0; sweep < narrowingSweeps; sweep++ {
		changed := false
		for _, label := range a.Cfg.Labels() {
			boundary, candidate := a.step(label, state, ops)
			refined := ops.narrow(candidate, a.exitStore(state[label]))
			if a.commit(label, state, boundary, refined, ops) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return state
}

// step recomputes one block: it joins the stores flowing in over the
// boundary, runs the transfer function across the block, and returns both
// the boundary store and the raw transfer result.
func (a *Analysis[E]) step(
	label bridge.BlockLabel,
	state CfgState[E],
	ops storeOps[E],
) (boundary, candidate VariableStore[E]) {
	block, _ := a.Cfg.Block(label)

	sources := a.sources(label)
	if len(sources) == 0 {
		boundary = a.entryStore(state[label]).Copy()
	} else {
		boundary = a.exitStore(state[sources[0]]).Copy()
		for _, src := range sources[1:] {
			boundary = ops.join(boundary, a.exitStore(state[src]))
		}
	}

	candidate = boundary.Copy()
	switch a.Direction {
	case Backward:
		a.Transfer.Terminator(block.Term, candidate)
		for i := len(block.Body) - 1; i >= 0; i-- {
			a.Transfer.Instruction(block.Body[i], candidate)
		}
	default:
		for _, inst := range block.Body {
			a.Transfer.Instruction(inst, candidate)
		}
		a.Transfer.Terminator(block.Term, candidate)
	}
	return boundary, candidate
}

// commit stores the recomputed boundary pair and reports whether the exit
// store moved.
func (a *Analysis[E]) commit(
	label bridge.BlockLabel,
	state CfgState[E],
	boundary, exit VariableStore[E],
	ops storeOps[E],
) bool {
	changed := ops.compare(exit, a.exitStore(state[label])) != lattice.Equal
	if a.Direction == Backward {
		state[label].Out = boundary
		state[label].In = exit
	} else {
		state[label].In = boundary
		state[label].Out = exit
	}
	return changed
}

// sources returns the blocks whose exit stores flow into this block's
// boundary.
func (a *Analysis[E]) sources(label bridge.BlockLabel) []bridge.BlockLabel {
	if a.Direction == Backward {
		return a.Cfg.Successors(label)
	}
	return a.Cfg.Predecessors(label)
}

// dependents returns the blocks to reconsider after this block's exit store
// moved.
func (a *Analysis[E]) dependents(label bridge.BlockLabel) []bridge.BlockLabel {
	if a.Direction == Backward {
		return a.Cfg.Predecessors(label)
	}
	return a.Cfg.Successors(label)
}

func (a *Analysis[E]) entryStore(s *BlockState[E]) VariableStore[E] {
	if a.Direction == Backward {
		return s.Out
	}
	return s.In
}

func (a *Analysis[E]) exitStore(s *BlockState[E]) VariableStore[E] {
	if a.Direction == Backward {
		return s.In
	}
	return s.Out
}
