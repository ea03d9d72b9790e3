package conversion

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gpulower/pkg/core/layouts"
	"github.com/gomlx/gpulower/pkg/core/program"
	"github.com/gomlx/gpulower/pkg/lowering/llir"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Result of Legalize.
type Result struct {
	// Builder holds the emitted low-level values.
	Builder *llir.Builder

	// function is the lowered function, and values maps program.Node.Index of its nodes to the value
	// that replaces it.
	function *program.Function
	values   []*llir.Value

	// Outputs are the values replacing the outputs of the function.
	Outputs []*llir.Value

	// OpCounts is the number of nodes lowered per op type, including parameters.
	OpCounts map[program.OpType]int

	// NumRegisterSlots is the total number of per-thread slots of all lowered register groups.
	NumRegisterSlots int

	// NumSharedObjects is the number of values lowered to shared memory objects, and SharedBytes
	// the total size of the tensors they describe.
	NumSharedObjects int
	SharedBytes      uint64
}

// Lowered returns the value that replaces node, or nil if node doesn't belong to the lowered function.
func (r *Result) Lowered(node *program.Node) *llir.Value {
	if node == nil || node.Function() != r.function {
		return nil
	}
	return r.values[node.Index()]
}

// String returns a one-line summary of the lowering.
func (r *Result) String() string {
	var parts []string
	for _, opType := range program.OpTypeValues() {
		if count := r.OpCounts[opType]; count > 0 {
			parts = append(parts, fmt.Sprintf("%s=%s", opType, humanize.Comma(int64(count))))
		}
	}
	return fmt.Sprintf("lowered %s: %s values [%s], %s register slots, %s shared memory objects (%s)",
		r.Builder.Name(), humanize.Comma(int64(r.Builder.NumValues())), strings.Join(parts, ", "),
		humanize.Comma(int64(r.NumRegisterSlots)), humanize.Comma(int64(r.NumSharedObjects)),
		humanize.Bytes(r.SharedBytes))
}

// Legalize lowers fn with the patterns: every parameter becomes an llir parameter of its converted type,
// and each op is replaced by the value returned by the pattern registered for its op type.
//
// The patterns are frozen. The first op that fails to lower aborts the lowering, and the error names it.
// Panics raised by a pattern are converted to errors.
func Legalize(fn *program.Function, patterns *PatternSet, opts Options) (*Result, error) {
	patterns.Freeze()
	converter, err := opts.NewConverter()
	if err != nil {
		return nil, err
	}
	rewriter := &Rewriter{
		Builder:   llir.NewBuilder(fn.Name()),
		Converter: converter,
		Options:   opts,
	}
	nodes := fn.Nodes()
	result := &Result{
		Builder:  rewriter.Builder,
		function: fn,
		values:   make([]*llir.Value, len(nodes)),
		OpCounts: make(map[program.OpType]int),
	}
	for _, node := range nodes {
		lowered, err := legalizeNode(rewriter, patterns, node, result.values)
		if err != nil {
			return nil, errors.WithMessagef(err, "Legalize(%s): failed to lower %s", fn.Name(), node)
		}
		result.values[node.Index()] = lowered
		result.record(node, lowered)
		if klog.V(1).Enabled() {
			klog.Infof("Legalize(%s): %s -> %s", fn.Name(), node, lowered)
		}
	}
	for _, output := range fn.Outputs() {
		result.Outputs = append(result.Outputs, result.values[output.Index()])
	}
	klog.V(1).Infof("%s", result)
	return result, nil
}

// legalizeNode lowers one node, whose inputs are already lowered in values.
func legalizeNode(r *Rewriter, patterns *PatternSet, node *program.Node, values []*llir.Value) (*llir.Value, error) {
	wantType, err := r.ConvertType(node.Type())
	if err != nil {
		return nil, err
	}
	if node.OpType() == program.OpTypeParameter {
		return r.Builder.Parameter(node.ParameterName(), wantType), nil
	}

	pattern, found := patterns.Lookup(node.OpType())
	if !found {
		return nil, errors.Errorf("no pattern registered for op %s", node.OpType())
	}
	operands := make([]*llir.Value, len(node.Inputs()))
	for ii, input := range node.Inputs() {
		operands[ii] = values[input.Index()]
	}
	var lowered *llir.Value
	var rewriteErr error
	err = exceptions.TryCatch[error](func() {
		lowered, rewriteErr = pattern.MatchAndRewrite(r, node, operands)
	})
	if err == nil {
		err = rewriteErr
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "pattern %q", pattern.Name())
	}
	if lowered == nil {
		return nil, errors.Errorf("pattern %q returned no value", pattern.Name())
	}
	if !lowered.Type().Equal(wantType) {
		return nil, errors.Errorf("pattern %q returned a value of type %s, but %s lowers to %s",
			pattern.Name(), lowered.Type(), node.Type(), wantType)
	}
	return lowered, nil
}

// record updates the counters with the lowered node.
func (r *Result) record(node *program.Node, lowered *llir.Value) {
	r.OpCounts[node.OpType()]++
	encoding := node.Type().Encoding
	if encoding == nil {
		return
	}
	if _, isShared := encoding.(layouts.Shared); isShared {
		r.NumSharedObjects++
		r.SharedBytes += uint64(node.Type().Shape.Memory())
		return
	}
	r.NumRegisterSlots += lowered.Type().NumFields()
}
