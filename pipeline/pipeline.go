package pipeline

import (
	"fmt"
	"strings"

	"github.com/dataknots/knotql/knotql"
	"github.com/dataknots/knotql/shape"
	"github.com/dataknots/knotql/vector"
)

// ScalarFn is a vector-agnostic scalar kernel: it receives one row's worth
// of arguments (or one block, for block lifts) and produces a single value.
type ScalarFn func(args []knotql.Value) (knotql.Value, error)

type OpType int

const (
	OpPass OpType = iota
	OpChain
	OpLift
	OpTupleLift
	OpBlockLift
	OpFiller
	OpNullFiller
	OpBlockFiller
	OpAdaptMissing
	OpAdaptVector
	OpAdaptTuple
	OpWrap
	OpWithElements
	OpWithColumn
	OpFlatten
	OpTupleOf
	OpColumn
	OpDistribute
	OpBlockLength
	OpBlockAny
	OpSieve
	OpSlice
)

// Pipeline is a signature-annotated vectorized transform. It's a tagged
// variant: Op selects which of the payload fields is set; ops without static
// arguments carry none.
type Pipeline struct {
	Sig shape.Signature

	Op OpType
	// Only the payload matching Op may be non-null.
	Chain        *ChainOp
	Lift         *LiftOp
	TupleLift    *TupleLiftOp
	BlockLift    *BlockLiftOp
	Filler       *FillerOp
	BlockFiller  *BlockFillerOp
	AdaptTuple   *AdaptTupleOp
	WithElements *WithElementsOp
	WithColumn   *WithColumnOp
	TupleOf      *TupleOfOp
	Column       *ColumnOp
	Distribute   *DistributeOp
	Slice        *SliceOp
}

type ChainOp struct {
	Pipelines []Pipeline
}

type LiftOp struct {
	Fn ScalarFn
}

type TupleLiftOp struct {
	Fn ScalarFn
}

type BlockLiftOp struct {
	Fn         ScalarFn
	HasDefault bool
	Default    knotql.Value
}

type FillerOp struct {
	Value knotql.Value
}

type BlockFillerOp struct {
	Block vector.Vector
	Card  shape.Cardinality
}

type AdaptTupleOp struct {
	Labels []string
}

type WithElementsOp struct {
	Inner *Pipeline
}

type WithColumnOp struct {
	Index int
	Inner *Pipeline
}

type TupleOfOp struct {
	Labels    []string
	Pipelines []Pipeline
}

type ColumnOp struct {
	Index int
	Name  string
}

type DistributeOp struct {
	Index int
}

type SliceOp struct {
	N      int
	PerRow bool
	Rev    bool
}

func (p *Pipeline) Source() shape.Shape {
	return p.Sig.Source
}

func (p *Pipeline) Target() shape.Shape {
	return p.Sig.Target
}

// WithTarget returns a copy of p whose declared target shape is replaced.
// Decorator-only adjustments (labeling, flow and scope marking) go through
// here since they don't change the runtime layout.
func (p Pipeline) WithTarget(target shape.Shape) Pipeline {
	p.Sig.Target = target
	return p
}

func (p Pipeline) WithSource(source shape.Shape) Pipeline {
	p.Sig.Source = source
	return p
}

func (p *Pipeline) String() string {
	switch p.Op {
	case OpPass:
		return "pass()"
	case OpChain:
		parts := make([]string, len(p.Chain.Pipelines))
		for i := range p.Chain.Pipelines {
			parts[i] = p.Chain.Pipelines[i].String()
		}
		return fmt.Sprintf("chain_of(%s)", strings.Join(parts, ", "))
	case OpLift:
		return "lift(fn)"
	case OpTupleLift:
		return "tuple_lift(fn)"
	case OpBlockLift:
		if p.BlockLift.HasDefault {
			return fmt.Sprintf("block_lift(fn, %s)", p.BlockLift.Default)
		}
		return "block_lift(fn)"
	case OpFiller:
		return fmt.Sprintf("filler(%s)", p.Filler.Value)
	case OpNullFiller:
		return "null_filler()"
	case OpBlockFiller:
		return fmt.Sprintf("block_filler(%d, %s)", p.BlockFiller.Block.Len(), p.BlockFiller.Card)
	case OpAdaptMissing:
		return "adapt_missing()"
	case OpAdaptVector:
		return "adapt_vector()"
	case OpAdaptTuple:
		return "adapt_tuple()"
	case OpWrap:
		return "wrap()"
	case OpWithElements:
		return fmt.Sprintf("with_elements(%s)", p.WithElements.Inner)
	case OpWithColumn:
		return fmt.Sprintf("with_column(%d, %s)", p.WithColumn.Index, p.WithColumn.Inner)
	case OpFlatten:
		return "flatten()"
	case OpTupleOf:
		parts := make([]string, len(p.TupleOf.Pipelines))
		for i := range p.TupleOf.Pipelines {
			parts[i] = p.TupleOf.Pipelines[i].String()
		}
		return fmt.Sprintf("tuple_of(%s)", strings.Join(parts, ", "))
	case OpColumn:
		if p.Column.Name != "" {
			return fmt.Sprintf("column(%s)", p.Column.Name)
		}
		return fmt.Sprintf("column(%d)", p.Column.Index)
	case OpDistribute:
		return fmt.Sprintf("distribute(%d)", p.Distribute.Index)
	case OpBlockLength:
		return "block_length()"
	case OpBlockAny:
		return "block_any()"
	case OpSieve:
		return "sieve()"
	case OpSlice:
		if p.Slice.PerRow {
			return fmt.Sprintf("slice(rev=%v)", p.Slice.Rev)
		}
		return fmt.Sprintf("slice(%d, rev=%v)", p.Slice.N, p.Slice.Rev)
	}
	panic("unexhaustive op type match")
}
