package query

import (
	"github.com/dataknots/knotql/functions"
	"github.com/dataknots/knotql/knotql"
	"github.com/dataknots/knotql/pipeline"
	"github.com/dataknots/knotql/shape"
)

// aggregateFlow collapses a flow into one value per incoming row: Count via
// block_length, the others via block lifts of the matching kernel. An
// optional input picks the missing-aware variant, so an empty Min/Max comes
// out as an empty optional block rather than an error.
func aggregateFlow(p pipeline.Pipeline, fn AggregateKind) (pipeline.Pipeline, error) {
	if fn == AggregateCount {
		block := stripFlow(p)
		length := pipeline.BlockLength(block.Target())
		return flowed(pipeline.ChainOf(block, length, pipeline.Wrap(length.Target()))), nil
	}

	block := stripFlow(unscope(p))
	blockShape := block.Target().Storage().Block
	inner := blockShape.Inner.StripLabel()
	if inner.Kind != shape.KindValue {
		return pipeline.Pipeline{}, newError(ErrorKindShapeMismatch,
			"can't aggregate over non-scalar elements of shape %s", inner)
	}
	elementType := inner.Value.Type

	var kernel pipeline.ScalarFn
	var outputType knotql.Type
	switch fn {
	case AggregateSum:
		kernel = functions.Sum
		outputType = functions.SumOutputType(elementType)
	case AggregateMin:
		kernel = functions.Min
		outputType = elementType
	case AggregateMax:
		kernel = functions.Max
		outputType = elementType
	default:
		panic("unexhaustive aggregate kind match")
	}

	if fn == AggregateSum {
		// The sum of an empty block is zero, no default needed.
		lifted := pipeline.BlockLift(block.Target(), kernel, outputType)
		return flowed(pipeline.ChainOf(block, lifted, pipeline.Wrap(lifted.Target()))), nil
	}

	if blockShape.Card.IsOptional() {
		lifted := pipeline.BlockLiftDefault(block.Target(), kernel, outputType, knotql.NewNull())
		missing := pipeline.AdaptMissing(lifted.Target())
		return flowed(pipeline.ChainOf(block, lifted, missing)), nil
	}
	lifted := pipeline.BlockLift(block.Target(), kernel, outputType)
	return flowed(pipeline.ChainOf(block, lifted, pipeline.Wrap(lifted.Target()))), nil
}

// filterStep keeps the elements whose predicate block holds somewhere.
func filterStep(env *Environment, elem shape.Shape, predicate Query) (pipeline.Pipeline, error) {
	assembled, err := assemble(predicate, env, elemCover(elem))
	if err != nil {
		return pipeline.Pipeline{}, err
	}
	block := stripFlow(unscope(assembled))
	inner := block.Target().Storage().Block.Inner.StripLabel()
	if inner.Kind != shape.KindValue || inner.Value.Type.Is(knotql.Boolean) != knotql.TypeRelationIs {
		return pipeline.Pipeline{}, newError(ErrorKindShapeMismatch,
			"expected a predicate, got %s", inner)
	}
	any := pipeline.ChainOf(block, pipeline.BlockAny(block.Target()))
	tuple := pipeline.TupleOf(elem, nil, []pipeline.Pipeline{pipeline.Pass(elem), any})
	return flowed(pipeline.ChainOf(tuple, pipeline.Sieve(tuple.Target()))), nil
}

// takeStep slices the whole flow. A static count uses the one-argument
// slice; a query count is assembled against the run's source and feeds the
// per-row slice form.
func takeStep(env *Environment, p pipeline.Pipeline, op *TakeOp) (pipeline.Pipeline, error) {
	block := stripFlow(p)
	if op.Static {
		return flowed(pipeline.ChainOf(block, pipeline.Slice(block.Target(), op.N, op.Rev))), nil
	}

	// The count is assembled against the run's source, one count per input
	// row, not against the flow's elements.
	count, err := assemble(*op.Arg, env, elemCover(p.Source()))
	if err != nil {
		return pipeline.Pipeline{}, err
	}
	countBlock := stripFlow(unscope(count))
	countShape := countBlock.Target().Storage().Block
	inner := countShape.Inner.StripLabel()
	if inner.Kind != shape.KindValue || inner.Value.Type.Is(knotql.Int) != knotql.TypeRelationIs {
		return pipeline.Pipeline{}, newError(ErrorKindShapeMismatch,
			"expected an integer count, got %s", inner)
	}
	if !countShape.Card.Fits(shape.X0To1) {
		return pipeline.Pipeline{}, newError(ErrorKindShapeMismatch,
			"expected at most one count, got cardinality %s", countShape.Card)
	}
	tuple := pipeline.TupleOf(p.Source(), nil, []pipeline.Pipeline{block, countBlock})
	return flowed(pipeline.ChainOf(tuple, pipeline.SlicePerRow(tuple.Target(), op.Rev))), nil
}

// recordStep bundles field queries into a tuple of blocks, one element per
// incoming row. Fields are labeled by their output labels; unlabeled and
// duplicate fields fall back to ordinal names.
func recordStep(env *Environment, elem shape.Shape, fields []Query) (pipeline.Pipeline, error) {
	columns := make([]pipeline.Pipeline, len(fields))
	labels := make([]string, len(fields))
	seen := map[string]bool{}
	for i := range fields {
		assembled, err := assemble(fields[i], env, elemCover(elem))
		if err != nil {
			return pipeline.Pipeline{}, err
		}
		block := stripFlow(unscope(assembled))
		label := block.Target().Storage().Block.Inner.Label()
		if label == "" || seen[label] {
			label = shape.OrdinalLabel(i)
		}
		seen[label] = true
		labels[i] = label
		columns[i] = block
	}
	tuple := pipeline.TupleOf(elem, labels, columns)
	return flowed(pipeline.ChainOf(tuple, pipeline.Wrap(tuple.Target()))), nil
}
