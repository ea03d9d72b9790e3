// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package program defines a minimal tensor-level kernel program: a Function holding Nodes in
// def-before-use order, each producing one tensor value with a TensorType (shape and layout).
//
// It only includes the operations that move elements around without computing on them (splat,
// concatenation, views, transposition), which is what the lowering in package viewops handles.
// The layout of each result is decided by the caller (a layout assignment pass), and given to
// the op constructors: the Function only checks the shapes are consistent.
package program

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/gpulower/pkg/core/layouts"
	"github.com/pkg/errors"
)

// Function is a sequence of tensor operations.
type Function struct {
	name string

	// nodes are only created when their inputs have already been created. So this is a natural
	// DAG ordering of the function, and the lowering relies on it.
	nodes []*Node

	// parameters of the function, in order.
	parameters []*Node

	// outputs set by Return.
	outputs  []*Node
	returned bool
}

// NewFunction creates an empty Function.
func NewFunction(name string) *Function {
	return &Function{name: name}
}

// Name of the function.
func (f *Function) Name() string {
	return f.name
}

// Nodes returns the nodes of the function in creation order: every node comes after its inputs.
func (f *Function) Nodes() []*Node {
	return slices.Clone(f.nodes)
}

// Parameters returns the parameter nodes, in order.
func (f *Function) Parameters() []*Node {
	return slices.Clone(f.parameters)
}

// Outputs returns the nodes set by Return.
func (f *Function) Outputs() []*Node {
	return slices.Clone(f.outputs)
}

// Return sets the outputs of the function. No more nodes can be added afterwards.
func (f *Function) Return(outputs ...*Node) error {
	nodes, err := f.verifyValues("Return", outputs...)
	if err != nil {
		return err
	}
	f.outputs = nodes
	f.returned = true
	return nil
}

// String prints the function, one node per line.
func (f *Function) String() string {
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "func @%s {\n", f.name)
	for _, node := range f.nodes {
		_, _ = fmt.Fprintf(&sb, "  %s\n", node)
	}
	if f.returned {
		outputs := make([]string, len(f.outputs))
		for ii, node := range f.outputs {
			outputs[ii] = node.Name()
		}
		_, _ = fmt.Fprintf(&sb, "  return %s\n", strings.Join(outputs, ", "))
	}
	sb.WriteString("}")
	return sb.String()
}

// Node is one operation of a Function, producing one tensor value.
type Node struct {
	// idx in Function.nodes
	idx      int
	opType   OpType
	typ      layouts.TensorType
	inputs   []*Node
	function *Function

	// data for the specific op type.
	data any
}

// nodeParameter is the data of an OpTypeParameter node.
type nodeParameter struct {
	name     string
	inputIdx int
}

// OpType of the node.
func (n *Node) OpType() OpType { return n.opType }

// Type of the value produced by the node.
func (n *Node) Type() layouts.TensorType { return n.typ }

// Inputs of the node. The returned slice must not be modified.
func (n *Node) Inputs() []*Node { return n.inputs }

// Index of the node in its function.
func (n *Node) Index() int { return n.idx }

// Function that owns the node.
func (n *Node) Function() *Function { return n.function }

// Name of the value produced by the node, e.g. "%3".
func (n *Node) Name() string { return fmt.Sprintf("%%%d", n.idx) }

// ParameterName returns the name of a parameter node, or "" for other nodes.
func (n *Node) ParameterName() string {
	if p, ok := n.data.(*nodeParameter); ok {
		return p.name
	}
	return ""
}

// ConstantValue returns the value of an OpTypeConstantSplat node: a float64, int64 or bool.
// It returns nil for other nodes.
func (n *Node) ConstantValue() any {
	if n.opType != OpTypeConstantSplat {
		return nil
	}
	return n.data
}

// Axis returns the inserted axis of an OpTypeExpandDims node, or -1 for other nodes.
func (n *Node) Axis() int {
	if n.opType != OpTypeExpandDims {
		return -1
	}
	return n.data.(int)
}

// String prints the node as "%idx = OpType(inputs) : type".
func (n *Node) String() string {
	args := make([]string, 0, len(n.inputs)+1)
	for _, input := range n.inputs {
		args = append(args, input.Name())
	}
	switch n.opType {
	case OpTypeParameter:
		args = append(args, fmt.Sprintf("%q", n.ParameterName()))
	case OpTypeConstantSplat:
		args = append(args, fmt.Sprint(n.data))
	case OpTypeExpandDims:
		args = append(args, fmt.Sprintf("axis=%d", n.data))
	default:
	}
	return fmt.Sprintf("%s = %s(%s) : %s", n.Name(), n.opType, strings.Join(args, ", "), n.typ)
}

// newNode adds a new node of the given opType and type to the function.
func (f *Function) newNode(opType OpType, typ layouts.TensorType, data any, inputs ...*Node) *Node {
	n := &Node{
		idx:      len(f.nodes),
		opType:   opType,
		typ:      typ,
		inputs:   slices.Clone(inputs),
		function: f,
		data:     data,
	}
	f.nodes = append(f.nodes, n)
	return n
}

// verifyValues checks that the function can still be changed, and that the values are valid
// and were created by this function.
func (f *Function) verifyValues(name string, values ...*Node) ([]*Node, error) {
	if f == nil {
		return nil, errors.Errorf("%s: function is nil", name)
	}
	if f.returned {
		return nil, errors.Errorf("%s: function %q already returned, no more ops can be added", name, f.name)
	}
	for idx, node := range values {
		if node == nil {
			return nil, errors.Errorf("%s: input #%d is nil", name, idx)
		}
		if node.function != f {
			return nil, errors.Errorf("%s: input #%d (%s) was created by a different function", name, idx, node.Name())
		}
	}
	return values, nil
}
