// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package conversion drives the lowering of a program.Function to the low-level representation (llir).
//
// Each op type is lowered by one Pattern, registered in a PatternSet during setup. Legalize then walks the
// function in definition order, converting the type of each value with typeconv and rewriting each op with
// its pattern. Patterns receive the already lowered operands and the Rewriter, which holds the
// llir.Builder, the type converter and the Options.
//
// Once Legalize (or Freeze) is called the PatternSet can no longer be changed.
package conversion

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gpulower/pkg/core/layouts"
	"github.com/gomlx/gpulower/pkg/core/program"
	"github.com/gomlx/gpulower/pkg/lowering/llir"
	"github.com/gomlx/gpulower/pkg/lowering/lltypes"
	"github.com/gomlx/gpulower/pkg/lowering/typeconv"
)

// Rewriter is passed to each pattern. It must not be changed by the patterns.
type Rewriter struct {
	Builder   *llir.Builder
	Converter *typeconv.Converter
	Options   Options
}

// ConvertType returns the lowered type of t.
func (r *Rewriter) ConvertType(t layouts.TensorType) (lltypes.Type, error) {
	return r.Converter.ConvertTensorType(t)
}

// Pattern lowers the nodes of one op type.
type Pattern interface {
	// Name of the pattern, used in logs and errors.
	Name() string

	// OpType lowered by the pattern.
	OpType() program.OpType

	// MatchAndRewrite emits the low-level values of node, given its lowered operands, and returns the value
	// that replaces it. It must have the type given by the Rewriter.ConvertType of the node type.
	MatchAndRewrite(r *Rewriter, node *program.Node, operands []*llir.Value) (*llir.Value, error)
}

// RewriteFn is the signature of the MatchAndRewrite method of a Pattern.
type RewriteFn func(r *Rewriter, node *program.Node, operands []*llir.Value) (*llir.Value, error)

type funcPattern struct {
	name    string
	opType  program.OpType
	rewrite RewriteFn
}

// NewPattern returns a Pattern for opType implemented by the function rewrite.
func NewPattern(name string, opType program.OpType, rewrite RewriteFn) Pattern {
	return &funcPattern{name: name, opType: opType, rewrite: rewrite}
}

// Name implements Pattern.
func (p *funcPattern) Name() string { return p.name }

// OpType implements Pattern.
func (p *funcPattern) OpType() program.OpType { return p.opType }

// MatchAndRewrite implements Pattern.
func (p *funcPattern) MatchAndRewrite(r *Rewriter, node *program.Node, operands []*llir.Value) (*llir.Value, error) {
	return p.rewrite(r, node, operands)
}

// PatternSet holds the pattern of each op type.
type PatternSet struct {
	patterns map[program.OpType]Pattern
	frozen   bool
}

// NewPatternSet returns an empty PatternSet.
func NewPatternSet() *PatternSet {
	return &PatternSet{patterns: make(map[program.OpType]Pattern)}
}

// Add patterns to the set. It returns the set itself, so calls can be chained.
//
// It panics if the set is frozen, or if a pattern for the same op type was already added.
func (ps *PatternSet) Add(patterns ...Pattern) *PatternSet {
	if ps.frozen {
		exceptions.Panicf("PatternSet.Add(): the set is frozen, patterns can only be added during setup")
	}
	for _, p := range patterns {
		if opType := p.OpType(); !opType.IsAOpType() || opType == program.OpTypeInvalid || opType == program.OpTypeParameter {
			exceptions.Panicf("PatternSet.Add(): pattern %q has an invalid op type %s", p.Name(), p.OpType())
		}
		if previous, found := ps.patterns[p.OpType()]; found {
			exceptions.Panicf("PatternSet.Add(): pattern %q for %s conflicts with pattern %q already added",
				p.Name(), p.OpType(), previous.Name())
		}
		ps.patterns[p.OpType()] = p
	}
	return ps
}

// Freeze the set: no more patterns can be added.
func (ps *PatternSet) Freeze() {
	ps.frozen = true
}

// Frozen returns whether the set was frozen.
func (ps *PatternSet) Frozen() bool {
	return ps.frozen
}

// Lookup returns the pattern for opType, if one was registered.
func (ps *PatternSet) Lookup(opType program.OpType) (Pattern, bool) {
	p, found := ps.patterns[opType]
	return p, found
}

// OpTypes returns the op types with a registered pattern, sorted.
func (ps *PatternSet) OpTypes() []program.OpType {
	opTypes := make([]program.OpType, 0, len(ps.patterns))
	for opType := range ps.patterns {
		opTypes = append(opTypes, opType)
	}
	slices.Sort(opTypes)
	return opTypes
}
