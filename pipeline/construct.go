package pipeline

import (
	"github.com/dataknots/knotql/knotql"
	"github.com/dataknots/knotql/shape"
	"github.com/dataknots/knotql/vector"
)

// Constructors compute each primitive's signature from the source shape and
// its static arguments. They panic on structurally invalid sources: the
// assembler validates shapes and raises typed errors before reaching here,
// so a panic means an assembler bug, not bad user input.

func Pass(source shape.Shape) Pipeline {
	return Pipeline{Sig: shape.NewSignature(source, source), Op: OpPass}
}

// ChainOf composes pipelines sequentially. A single pipeline is returned
// as-is; nested chains are spliced flat.
func ChainOf(pipelines ...Pipeline) Pipeline {
	var flat []Pipeline
	for _, p := range pipelines {
		if p.Op == OpChain {
			flat = append(flat, p.Chain.Pipelines...)
		} else {
			flat = append(flat, p)
		}
	}
	if len(flat) == 0 {
		panic("chain_of needs at least one pipeline")
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return Pipeline{
		Sig:   shape.NewSignature(flat[0].Sig.Source, flat[len(flat)-1].Sig.Target),
		Op:    OpChain,
		Chain: &ChainOp{Pipelines: flat},
	}
}

func Lift(source shape.Shape, fn ScalarFn, out knotql.Type) Pipeline {
	return Pipeline{
		Sig:  shape.NewSignature(source, shape.ValueOf(out)),
		Op:   OpLift,
		Lift: &LiftOp{Fn: fn},
	}
}

func TupleLift(source shape.Shape, fn ScalarFn, out knotql.Type) Pipeline {
	if source.Storage().Kind != shape.KindTuple {
		panic("tuple_lift needs a tuple source")
	}
	return Pipeline{
		Sig:       shape.NewSignature(source, shape.ValueOf(out)),
		Op:        OpTupleLift,
		TupleLift: &TupleLiftOp{Fn: fn},
	}
}

func BlockLift(source shape.Shape, fn ScalarFn, out knotql.Type) Pipeline {
	if source.Storage().Kind != shape.KindBlock {
		panic("block_lift needs a block source")
	}
	return Pipeline{
		Sig:       shape.NewSignature(source, shape.ValueOf(out)),
		Op:        OpBlockLift,
		BlockLift: &BlockLiftOp{Fn: fn},
	}
}

func BlockLiftDefault(source shape.Shape, fn ScalarFn, out knotql.Type, def knotql.Value) Pipeline {
	p := BlockLift(source, fn, knotql.TypeSum(out, def.Type))
	p.BlockLift.HasDefault = true
	p.BlockLift.Default = def
	return p
}

func Filler(source shape.Shape, value knotql.Value) Pipeline {
	return Pipeline{
		Sig:    shape.NewSignature(source, shape.ValueOf(value.Type)),
		Op:     OpFiller,
		Filler: &FillerOp{Value: value},
	}
}

func NullFiller(source shape.Shape) Pipeline {
	return Pipeline{
		Sig: shape.NewSignature(source, shape.BlockOf(shape.ValueOf(knotql.Null), shape.X0To1)),
		Op:  OpNullFiller,
	}
}

func BlockFiller(source shape.Shape, block vector.Vector, inner shape.Shape, card shape.Cardinality) Pipeline {
	return Pipeline{
		Sig:         shape.NewSignature(source, shape.BlockOf(inner, card)),
		Op:          OpBlockFiller,
		BlockFiller: &BlockFillerOp{Block: block, Card: card},
	}
}

// typeWithoutNull drops the null alternative from a union type.
func typeWithoutNull(t knotql.Type) knotql.Type {
	if t.TypeID != knotql.TypeIDUnion {
		return t
	}
	var rest []knotql.Type
	for _, alternative := range t.Union.Alternatives {
		if alternative.TypeID != knotql.TypeIDNull {
			rest = append(rest, alternative)
		}
	}
	switch len(rest) {
	case 0:
		return knotql.Null
	case 1:
		return rest[0]
	}
	out := knotql.Type{TypeID: knotql.TypeIDUnion}
	out.Union.Alternatives = rest
	return out
}

func AdaptMissing(source shape.Shape) Pipeline {
	storage := source.Storage()
	if storage.Kind != shape.KindValue {
		panic("adapt_missing needs a value source")
	}
	inner := shape.ValueOf(typeWithoutNull(storage.Value.Type))
	return Pipeline{
		Sig: shape.NewSignature(source, shape.BlockOf(inner, shape.X0To1)),
		Op:  OpAdaptMissing,
	}
}

func AdaptVector(source shape.Shape) Pipeline {
	storage := source.Storage()
	if storage.Kind != shape.KindValue || storage.Value.Type.TypeID != knotql.TypeIDList {
		panic("adapt_vector needs a list-valued source")
	}
	inner := shape.ValueOf(*storage.Value.Type.List.Element)
	return Pipeline{
		Sig: shape.NewSignature(source, shape.BlockOf(inner, shape.X0ToN)),
		Op:  OpAdaptVector,
	}
}

func AdaptTuple(source shape.Shape) Pipeline {
	storage := source.Storage()
	if storage.Kind != shape.KindValue || storage.Value.Type.TypeID != knotql.TypeIDStruct {
		panic("adapt_tuple needs a struct-valued source")
	}
	fields := storage.Value.Type.Struct.Fields
	labels := make([]string, len(fields))
	columns := make([]shape.Shape, len(fields))
	for i, field := range fields {
		labels[i] = field.Name
		columns[i] = shape.ValueOf(field.Type)
	}
	return Pipeline{
		Sig:        shape.NewSignature(source, shape.TupleOf(labels, columns)),
		Op:         OpAdaptTuple,
		AdaptTuple: &AdaptTupleOp{Labels: labels},
	}
}

func Wrap(source shape.Shape) Pipeline {
	return Pipeline{
		Sig: shape.NewSignature(source, shape.BlockOf(source, shape.X1To1)),
		Op:  OpWrap,
	}
}

func WithElements(source shape.Shape, inner Pipeline) Pipeline {
	storage := source.Storage()
	if storage.Kind != shape.KindBlock {
		panic("with_elements needs a block source")
	}
	target := shape.BlockOf(inner.Sig.Target, storage.Block.Card)
	return Pipeline{
		Sig:          shape.NewSignature(source, target),
		Op:           OpWithElements,
		WithElements: &WithElementsOp{Inner: &inner},
	}
}

func WithColumn(source shape.Shape, index int, inner Pipeline) Pipeline {
	storage := source.Storage()
	if storage.Kind != shape.KindTuple {
		panic("with_column needs a tuple source")
	}
	columns := make([]shape.Shape, len(storage.Tuple.Columns))
	copy(columns, storage.Tuple.Columns)
	columns[index] = inner.Sig.Target
	return Pipeline{
		Sig:        shape.NewSignature(source, shape.TupleOf(storage.Tuple.Labels, columns)),
		Op:         OpWithColumn,
		WithColumn: &WithColumnOp{Index: index, Inner: &inner},
	}
}

func Flatten(source shape.Shape) Pipeline {
	storage := source.Storage()
	if storage.Kind != shape.KindBlock {
		panic("flatten needs a nested block source")
	}
	innerBlock := storage.Block.Inner.Storage()
	if innerBlock.Kind != shape.KindBlock {
		panic("flatten needs a nested block source")
	}
	target := shape.BlockOf(innerBlock.Block.Inner, storage.Block.Card.Widen(innerBlock.Block.Card))
	return Pipeline{
		Sig: shape.NewSignature(source, target),
		Op:  OpFlatten,
	}
}

func TupleOf(source shape.Shape, labels []string, pipelines []Pipeline) Pipeline {
	columns := make([]shape.Shape, len(pipelines))
	for i := range pipelines {
		columns[i] = pipelines[i].Sig.Target
	}
	return Pipeline{
		Sig:     shape.NewSignature(source, shape.TupleOf(labels, columns)),
		Op:      OpTupleOf,
		TupleOf: &TupleOfOp{Labels: labels, Pipelines: pipelines},
	}
}

func Column(source shape.Shape, index int, name string) Pipeline {
	storage := source.Storage()
	if storage.Kind != shape.KindTuple {
		panic("column needs a tuple source")
	}
	return Pipeline{
		Sig:    shape.NewSignature(source, storage.Tuple.Columns[index]),
		Op:     OpColumn,
		Column: &ColumnOp{Index: index, Name: name},
	}
}

func Distribute(source shape.Shape, index int) Pipeline {
	storage := source.Storage()
	if storage.Kind != shape.KindTuple {
		panic("distribute needs a tuple source")
	}
	distributed := storage.Tuple.Columns[index].Storage()
	if distributed.Kind != shape.KindBlock {
		panic("distribute needs a block column")
	}
	columns := make([]shape.Shape, len(storage.Tuple.Columns))
	copy(columns, storage.Tuple.Columns)
	columns[index] = distributed.Block.Inner
	elem := shape.TupleOf(storage.Tuple.Labels, columns)
	return Pipeline{
		Sig:        shape.NewSignature(source, shape.BlockOf(elem, distributed.Block.Card)),
		Op:         OpDistribute,
		Distribute: &DistributeOp{Index: index},
	}
}

func BlockLength(source shape.Shape) Pipeline {
	if source.Storage().Kind != shape.KindBlock {
		panic("block_length needs a block source")
	}
	return Pipeline{
		Sig: shape.NewSignature(source, shape.ValueOf(knotql.Int)),
		Op:  OpBlockLength,
	}
}

func BlockAny(source shape.Shape) Pipeline {
	if source.Storage().Kind != shape.KindBlock {
		panic("block_any needs a block source")
	}
	return Pipeline{
		Sig: shape.NewSignature(source, shape.ValueOf(knotql.Boolean)),
		Op:  OpBlockAny,
	}
}

func Sieve(source shape.Shape) Pipeline {
	storage := source.Storage()
	if storage.Kind != shape.KindTuple || len(storage.Tuple.Columns) != 2 {
		panic("sieve needs a two-column tuple source")
	}
	return Pipeline{
		Sig: shape.NewSignature(source, shape.BlockOf(storage.Tuple.Columns[0], shape.X0To1)),
		Op:  OpSieve,
	}
}

func Slice(source shape.Shape, n int, rev bool) Pipeline {
	storage := source.Storage()
	if storage.Kind != shape.KindBlock {
		panic("slice needs a block source")
	}
	target := shape.BlockOf(storage.Block.Inner, storage.Block.Card.Widen(shape.X0To1))
	return Pipeline{
		Sig:   shape.NewSignature(source, target),
		Op:    OpSlice,
		Slice: &SliceOp{N: n, Rev: rev},
	}
}

// SlicePerRow takes the per-row count from the second column of a two-column
// tuple; an empty count block leaves that row's block unchanged.
func SlicePerRow(source shape.Shape, rev bool) Pipeline {
	storage := source.Storage()
	if storage.Kind != shape.KindTuple || len(storage.Tuple.Columns) != 2 {
		panic("per-row slice needs a two-column tuple source")
	}
	data := storage.Tuple.Columns[0].Storage()
	if data.Kind != shape.KindBlock {
		panic("per-row slice needs a block data column")
	}
	target := shape.BlockOf(data.Block.Inner, data.Block.Card.Widen(shape.X0To1))
	return Pipeline{
		Sig:   shape.NewSignature(source, target),
		Op:    OpSlice,
		Slice: &SliceOp{PerRow: true, Rev: rev},
	}
}
