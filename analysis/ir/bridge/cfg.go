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
	"reflect"
	"sort"

	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/analysis/ir/adapter"
	"github.com/awslabs/ar-ir-tools/internal/funcutil"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
)

// EdgeKind classifies why control may flow along an edge.
type EdgeKind int

const (
	// EdgeGoto is an unconditional jump, including a conditional branch
	// whose two targets coincide.
	EdgeGoto EdgeKind = iota + 1
	// EdgeBranchTrue is the taken side of a conditional branch.
	EdgeBranchTrue
	// EdgeBranchFalse is the fall-through side of a conditional branch.
	EdgeBranchFalse
	// EdgeSwitchCase covers one or more switch case values, possibly plus
	// the default.
	EdgeSwitchCase
	// EdgeIndirect is a possible target of an indirect jump.
	EdgeIndirect
	// EdgeInvokeNormal is the return path of an invoke.
	EdgeInvokeNormal
	// EdgeInvokeUnwind is the exceptional path of an invoke.
	EdgeInvokeUnwind
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeGoto:
		return "goto"
	case EdgeBranchTrue:
		return "branch-true"
	case EdgeBranchFalse:
		return "branch-false"
	case EdgeSwitchCase:
		return "switch-case"
	case EdgeIndirect:
		return "indirect"
	case EdgeInvokeNormal:
		return "invoke-normal"
	case EdgeInvokeUnwind:
		return "invoke-unwind"
	default:
		return "unknown"
	}
}

// BlockNode adapts a block label to the gonum node interface.
type BlockNode struct {
	Label BlockLabel
}

// ID implements graph.Node.
func (n BlockNode) ID() int64 { return int64(n.Label) }

// Edge is the single edge between an ordered pair of blocks. A switch
// terminator contributes at most one edge per target; its distinct case
// values accumulate in Cases.
type Edge struct {
	src  BlockNode
	dst  BlockNode
	line int64

	Kind EdgeKind
	// Cases holds the sorted case values routed along a switch-case edge.
	Cases []uint64
	// HasDefault marks a switch-case edge that is also the default target.
	HasDefault bool
}

// From implements graph.Line.
func (e *Edge) From() graph.Node { return e.src }

// To implements graph.Line.
func (e *Edge) To() graph.Node { return e.dst }

// ID implements graph.Line.
func (e *Edge) ID() int64 { return e.line }

// ReversedLine implements graph.Line.
func (e *Edge) ReversedLine() graph.Line {
	reversed := *e
	reversed.src, reversed.dst = e.dst, e.src
	return &reversed
}

// Src returns the source block label.
func (e *Edge) Src() BlockLabel { return e.src.Label }

// Dst returns the destination block label.
func (e *Edge) Dst() BlockLabel { return e.dst.Label }

// BasicBlock is a parsed block: its phi-then-body instruction sequence and
// its terminator.
type BasicBlock struct {
	Label BlockLabel
	Name  funcutil.Optional[string]
	Body  []Instruction
	Term  Terminator
}

type edgeKey struct {
	src BlockLabel
	dst BlockLabel
}

// Cfg is the control-flow graph of one defined function. Blocks keep their
// source order; there is at most one edge per ordered pair of blocks.
type Cfg struct {
	graph    *multi.DirectedGraph
	entry    BlockLabel
	blocks   map[BlockLabel]*BasicBlock
	order    []BlockLabel
	edges    map[edgeKey]*Edge
	nextLine int64
}

// NewCfg parses the blocks of a defined function under an already populated
// context and derives the edge structure from the terminators.
func NewCfg(blocks []adapter.Block, ctxt *Context) (*Cfg, error) {
	if len(blocks) == 0 {
		return nil, ir.Invariantf("defined function must have at least one block")
	}

	cfg := &Cfg{
		graph:  multi.NewDirectedGraph(),
		entry:  BlockLabel(blocks[0].Label),
		blocks: make(map[BlockLabel]*BasicBlock, len(blocks)),
		order:  make([]BlockLabel, 0, len(blocks)),
		edges:  make(map[edgeKey]*Edge),
	}

	for _, block := range blocks {
		label := BlockLabel(block.Label)
		if _, exists := cfg.blocks[label]; exists {
			return nil, ir.Invariantf("duplicate block label: %d", label)
		}
		parsed := &BasicBlock{
			Label: label,
			Name:  funcutil.FromPtr(block.Name),
			Body:  make([]Instruction, 0, len(block.Body)),
		}
		for _, inst := range block.Body {
			converted, err := ctxt.ParseInstruction(inst)
			if err != nil {
				return nil, err
			}
			parsed.Body = append(parsed.Body, converted)
		}
		term, err := ctxt.ParseTerminator(block.Terminator)
		if err != nil {
			return nil, err
		}
		parsed.Term = term

		cfg.blocks[label] = parsed
		cfg.order = append(cfg.order, label)
		cfg.graph.AddNode(BlockNode{Label: label})
	}

	for _, label := range cfg.order {
		if err := cfg.deriveEdges(label, cfg.blocks[label].Term); err != nil {
			return nil, err
		}
	}
	if err := cfg.checkLandingPads(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Cfg) deriveEdges(src BlockLabel, term Terminator) error {
	switch t := term.(type) {
	case Goto:
		return c.addEdge(src, t.Target, EdgeGoto, nil, false)
	case Branch:
		// a branch whose targets coincide degenerates to a goto
		if t.Then == t.Else {
			return c.addEdge(src, t.Then, EdgeGoto, nil, false)
		}
		if err := c.addEdge(src, t.Then, EdgeBranchTrue, nil, false); err != nil {
			return err
		}
		return c.addEdge(src, t.Else, EdgeBranchFalse, nil, false)
	case Switch:
		for _, branch := range t.Cases {
			if err := c.addEdge(src, branch.Target, EdgeSwitchCase, []uint64{branch.Value}, false); err != nil {
				return err
			}
		}
		if t.Default != nil {
			return c.addEdge(src, *t.Default, EdgeSwitchCase, nil, true)
		}
		return nil
	case IndirectJump:
		for _, target := range t.Targets {
			if err := c.addEdge(src, target, EdgeIndirect, nil, false); err != nil {
				return err
			}
		}
		return nil
	case Invoke:
		if err := c.addEdge(src, t.Normal, EdgeInvokeNormal, nil, false); err != nil {
			return err
		}
		return c.addEdge(src, t.Unwind, EdgeInvokeUnwind, nil, false)
	case Return, Resume, Unreachable:
		return nil
	default:
		return ir.Invariantf("unknown terminator kind: %T", term)
	}
}

// addEdge inserts or merges the single edge for an ordered block pair.
// Switch-case edges to the same target merge their distinct case values; an
// indirect jump listing a target twice is idempotent; any other repetition
// for a pair is a malformed terminator.
func (c *Cfg) addEdge(src, dst BlockLabel, kind EdgeKind, cases []uint64, hasDefault bool) error {
	key := edgeKey{src: src, dst: dst}
	existing, ok := c.edges[key]
	if !ok {
		edge := &Edge{
			src:        BlockNode{Label: src},
			dst:        BlockNode{Label: dst},
			line:       c.nextLine,
			Kind:       kind,
			Cases:      append([]uint64(nil), cases...),
			HasDefault: hasDefault,
		}
		sortCases(edge.Cases)
		c.nextLine++
		c.edges[key] = edge
		c.graph.SetLine(edge)
		return nil
	}

	switch {
	case existing.Kind == EdgeSwitchCase && kind == EdgeSwitchCase:
		for _, value := range cases {
			if containsCase(existing.Cases, value) {
				return ir.Invariantf(
					"duplicate switch case value %d for edge %d -> %d", value, src, dst)
			}
			existing.Cases = append(existing.Cases, value)
		}
		sortCases(existing.Cases)
		if hasDefault {
			if existing.HasDefault {
				return ir.Invariantf("duplicate switch default for edge %d -> %d", src, dst)
			}
			existing.HasDefault = true
		}
		return nil
	case existing.Kind == EdgeIndirect && kind == EdgeIndirect:
		return nil
	default:
		return ir.Invariantf(
			"incompatible duplicate edge %d -> %d: %s vs %s", src, dst, existing.Kind, kind)
	}
}

func sortCases(cases []uint64) {
	sort.Slice(cases, func(i, j int) bool { return cases[i] < cases[j] })
}

func containsCase(cases []uint64, value uint64) bool {
	return funcutil.Exists(cases, func(v uint64) bool { return v == value })
}

// checkLandingPads enforces the unwind-target discipline: a block entered
// along an invoke-unwind edge starts with exactly one landing pad, placed
// after any leading phis, and no other block contains one.
func (c *Cfg) checkLandingPads() error {
	unwindTargets := make(map[BlockLabel]bool)
	for key, edge := range c.edges {
		if edge.Kind == EdgeInvokeUnwind {
			unwindTargets[key.dst] = true
		}
	}
	for _, label := range c.order {
		block := c.blocks[label]
		pads := 0
		entryPad := false
		for i, inst := range block.Body {
			if _, ok := inst.(LandingPad); !ok {
				continue
			}
			pads++
			if i == leadingPhis(block.Body) {
				entryPad = true
			}
		}
		switch {
		case pads > 1:
			return ir.Invariantf("block %d has more than one landing pad", label)
		case pads == 1 && !entryPad:
			return ir.Invariantf("block %d has a landing pad after its entry", label)
		case pads == 1 && !unwindTargets[label]:
			return ir.Invariantf("block %d has a landing pad but no unwind predecessor", label)
		case pads == 0 && unwindTargets[label]:
			return ir.Invariantf("unwind target block %d has no landing pad", label)
		}
	}
	return nil
}

// leadingPhis returns the index of the first non-phi instruction.
func leadingPhis(body []Instruction) int {
	for i, inst := range body {
		if _, ok := inst.(Phi); !ok {
			return i
		}
	}
	return len(body)
}

// Entry returns the label of the entry block.
func (c *Cfg) Entry() BlockLabel { return c.entry }

// Block returns the block with the given label.
func (c *Cfg) Block(label BlockLabel) (*BasicBlock, bool) {
	block, ok := c.blocks[label]
	return block, ok
}

// Blocks returns the blocks in their source order.
func (c *Cfg) Blocks() []*BasicBlock {
	blocks := make([]*BasicBlock, len(c.order))
	for i, label := range c.order {
		blocks[i] = c.blocks[label]
	}
	return blocks
}

// Labels returns the block labels in their source order.
func (c *Cfg) Labels() []BlockLabel {
	return append([]BlockLabel(nil), c.order...)
}

// EdgeBetween returns the edge for an ordered block pair, if present.
func (c *Cfg) EdgeBetween(src, dst BlockLabel) (*Edge, bool) {
	edge, ok := c.edges[edgeKey{src: src, dst: dst}]
	return edge, ok
}

// Successors returns the successor labels of a block in ascending order.
func (c *Cfg) Successors(label BlockLabel) []BlockLabel {
	return c.neighbors(c.graph.From(int64(label)))
}

// Predecessors returns the predecessor labels of a block in ascending order.
func (c *Cfg) Predecessors(label BlockLabel) []BlockLabel {
	return c.neighbors(c.graph.To(int64(label)))
}

func (c *Cfg) neighbors(nodes graph.Nodes) []BlockLabel {
	var labels []BlockLabel
	for nodes.Next() {
		labels = append(labels, BlockLabel(nodes.Node().ID()))
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

// Equal reports whether two graphs have the same blocks under the same
// labels, with structurally equal bodies, terminators, and edges. Label
// identity matters; there is no renaming.
func (c *Cfg) Equal(other *Cfg) bool {
	if other == nil || c.entry != other.entry || len(c.order) != len(other.order) {
		return false
	}
	for i, label := range c.order {
		if other.order[i] != label {
			return false
		}
		mine, theirs := c.blocks[label], other.blocks[label]
		if !funcutil.EqualOption(mine.Name, theirs.Name, func(a, b string) bool { return a == b }) {
			return false
		}
		if !reflect.DeepEqual(mine.Body, theirs.Body) || !reflect.DeepEqual(mine.Term, theirs.Term) {
			return false
		}
	}
	if len(c.edges) != len(other.edges) {
		return false
	}
	for key, edge := range c.edges {
		counterpart, ok := other.edges[key]
		if !ok || edge.Kind != counterpart.Kind || edge.HasDefault != counterpart.HasDefault {
			return false
		}
		if !reflect.DeepEqual(edge.Cases, counterpart.Cases) {
			return false
		}
	}
	return true
}
