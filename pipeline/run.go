package pipeline

import (
	"github.com/pkg/errors"

	"github.com/dataknots/knotql/knotql"
	"github.com/dataknots/knotql/vector"
)

// Run executes the pipeline over the input vector. Pipelines are pure: the
// input is never mutated, though the output may share storage with it (pass,
// wrap, column selection, with_elements offsets, flatten's inner elements and
// dense distribute reuse input vectors). Errors originate only in
// user-supplied scalar kernels.
func (p *Pipeline) Run(in vector.Vector) (vector.Vector, error) {
	switch p.Op {
	case OpPass:
		return in, nil

	case OpChain:
		out := in
		for i := range p.Chain.Pipelines {
			var err error
			out, err = p.Chain.Pipelines[i].Run(out)
			if err != nil {
				return nil, errors.Wrapf(err, "couldn't run chained pipeline with index %d", i)
			}
		}
		return out, nil

	case OpLift:
		values := in.(vector.Values)
		out := make(vector.Values, len(values))
		args := make([]knotql.Value, 1)
		for i := range values {
			args[0] = values[i]
			v, err := p.Lift.Fn(args)
			if err != nil {
				return nil, errors.Wrapf(err, "couldn't apply lifted function to row %d", i)
			}
			out[i] = v
		}
		return out, nil

	case OpTupleLift:
		tuple := in.(vector.Tuple)
		columns := make([]vector.Values, len(tuple.Columns))
		for j := range tuple.Columns {
			columns[j] = tuple.Columns[j].(vector.Values)
		}
		out := make(vector.Values, tuple.Length)
		args := make([]knotql.Value, len(columns))
		for i := 0; i < tuple.Length; i++ {
			for j := range columns {
				args[j] = columns[j][i]
			}
			v, err := p.TupleLift.Fn(args)
			if err != nil {
				return nil, errors.Wrapf(err, "couldn't apply lifted function to row %d", i)
			}
			out[i] = v
		}
		return out, nil

	case OpBlockLift:
		block := in.(vector.Block)
		elements := block.Elements.(vector.Values)
		out := make(vector.Values, block.Len())
		for i := 0; i < block.Len(); i++ {
			lo, hi := block.Offsets.Bounds(i)
			if lo == hi && p.BlockLift.HasDefault {
				out[i] = p.BlockLift.Default
				continue
			}
			v, err := p.BlockLift.Fn(elements[lo:hi])
			if err != nil {
				return nil, errors.Wrapf(err, "couldn't apply block function to row %d", i)
			}
			out[i] = v
		}
		return out, nil

	case OpFiller:
		out := make(vector.Values, in.Len())
		for i := range out {
			out[i] = p.Filler.Value
		}
		return out, nil

	case OpNullFiller:
		index := make([]int, in.Len()+1)
		return vector.Block{
			Offsets:  vector.FromIndex(index),
			Elements: vector.Values{},
			Card:     p.Sig.Target.Storage().Block.Card,
		}, nil

	case OpBlockFiller:
		n := in.Len()
		blockLen := p.BlockFiller.Block.Len()
		index := make([]int, n+1)
		rows := make([]int, 0, n*blockLen)
		for i := 0; i < n; i++ {
			for k := 0; k < blockLen; k++ {
				rows = append(rows, k)
			}
			index[i+1] = len(rows)
		}
		return vector.Block{
			Offsets:  vector.FromIndex(index),
			Elements: vector.Gather(p.BlockFiller.Block, rows),
			Card:     p.BlockFiller.Card,
		}, nil

	case OpAdaptMissing:
		values := in.(vector.Values)
		index := make([]int, len(values)+1)
		elements := make(vector.Values, 0, len(values))
		for i := range values {
			if !values[i].IsNull() {
				elements = append(elements, values[i])
			}
			index[i+1] = len(elements)
		}
		return vector.Block{
			Offsets:  vector.FromIndex(index),
			Elements: elements,
			Card:     p.Sig.Target.Storage().Block.Card,
		}, nil

	case OpAdaptVector:
		values := in.(vector.Values)
		index := make([]int, len(values)+1)
		var elements vector.Values
		for i := range values {
			elements = append(elements, values[i].List...)
			index[i+1] = len(elements)
		}
		return vector.Block{
			Offsets:  vector.FromIndex(index),
			Elements: elements,
			Card:     p.Sig.Target.Storage().Block.Card,
		}, nil

	case OpAdaptTuple:
		values := in.(vector.Values)
		columns := make([]vector.Vector, len(p.AdaptTuple.Labels))
		for j := range columns {
			column := make(vector.Values, len(values))
			for i := range values {
				column[i] = values[i].FieldValues[j]
			}
			columns[j] = column
		}
		return vector.Tuple{
			Labels:  p.AdaptTuple.Labels,
			Length:  len(values),
			Columns: columns,
		}, nil

	case OpWrap:
		return vector.Block{
			Offsets:  vector.Dense(in.Len()),
			Elements: in,
			Card:     p.Sig.Target.Storage().Block.Card,
		}, nil

	case OpWithElements:
		block := in.(vector.Block)
		elements, err := p.WithElements.Inner.Run(block.Elements)
		if err != nil {
			return nil, err
		}
		return vector.Block{
			Offsets:  block.Offsets,
			Elements: elements,
			Card:     block.Card,
		}, nil

	case OpWithColumn:
		tuple := in.(vector.Tuple)
		column, err := p.WithColumn.Inner.Run(tuple.Columns[p.WithColumn.Index])
		if err != nil {
			return nil, err
		}
		// The outer column list is copied so the input tuple stays intact.
		columns := make([]vector.Vector, len(tuple.Columns))
		copy(columns, tuple.Columns)
		columns[p.WithColumn.Index] = column
		return vector.Tuple{Labels: tuple.Labels, Length: tuple.Length, Columns: columns}, nil

	case OpFlatten:
		outer := in.(vector.Block)
		inner := outer.Elements.(vector.Block)
		return vector.Block{
			Offsets:  outer.Offsets.Compose(inner.Offsets),
			Elements: inner.Elements,
			Card:     outer.Card.Widen(inner.Card),
		}, nil

	case OpTupleOf:
		columns := make([]vector.Vector, len(p.TupleOf.Pipelines))
		for j := range p.TupleOf.Pipelines {
			column, err := p.TupleOf.Pipelines[j].Run(in)
			if err != nil {
				return nil, errors.Wrapf(err, "couldn't run tuple column pipeline with index %d", j)
			}
			columns[j] = column
		}
		return vector.Tuple{
			Labels:  p.TupleOf.Labels,
			Length:  in.Len(),
			Columns: columns,
		}, nil

	case OpColumn:
		return in.(vector.Tuple).Columns[p.Column.Index], nil

	case OpDistribute:
		return p.runDistribute(in.(vector.Tuple))

	case OpBlockLength:
		block := in.(vector.Block)
		out := make(vector.Values, block.Len())
		for i := 0; i < block.Len(); i++ {
			lo, hi := block.Offsets.Bounds(i)
			out[i] = knotql.NewInt(hi - lo)
		}
		return out, nil

	case OpBlockAny:
		block := in.(vector.Block)
		elements := block.Elements.(vector.Values)
		out := make(vector.Values, block.Len())
		for i := 0; i < block.Len(); i++ {
			lo, hi := block.Offsets.Bounds(i)
			any := false
			for k := lo; k < hi; k++ {
				if elements[k].Boolean {
					any = true
					break
				}
			}
			out[i] = knotql.NewBoolean(any)
		}
		return out, nil

	case OpSieve:
		tuple := in.(vector.Tuple)
		predicate := tuple.Columns[1].(vector.Values)
		index := make([]int, tuple.Length+1)
		var rows []int
		for i := 0; i < tuple.Length; i++ {
			if predicate[i].Boolean {
				rows = append(rows, i)
			}
			index[i+1] = len(rows)
		}
		return vector.Block{
			Offsets:  vector.FromIndex(index),
			Elements: vector.Gather(tuple.Columns[0], rows),
			Card:     p.Sig.Target.Storage().Block.Card,
		}, nil

	case OpSlice:
		return p.runSlice(in)
	}
	panic("unexhaustive op type match")
}

func (p *Pipeline) runDistribute(tuple vector.Tuple) (vector.Vector, error) {
	j := p.Distribute.Index
	distributed := tuple.Columns[j].(vector.Block)

	columns := make([]vector.Vector, len(tuple.Columns))
	if distributed.Offsets.IsDense() {
		// One element per row: the element rows already line up with the
		// tuple rows, so no replication is needed.
		copy(columns, tuple.Columns)
		columns[j] = distributed.Elements
	} else {
		rows := make([]int, 0, distributed.Elements.Len())
		for i := 0; i < distributed.Len(); i++ {
			lo, hi := distributed.Offsets.Bounds(i)
			for k := lo; k < hi; k++ {
				rows = append(rows, i)
			}
		}
		for k := range tuple.Columns {
			if k == j {
				columns[k] = distributed.Elements
			} else {
				columns[k] = vector.Gather(tuple.Columns[k], rows)
			}
		}
	}
	return vector.Block{
		Offsets: distributed.Offsets,
		Elements: vector.Tuple{
			Labels:  tuple.Labels,
			Length:  distributed.Elements.Len(),
			Columns: columns,
		},
		Card: distributed.Card,
	}, nil
}

// sliceBounds resolves a take/drop count against a block of the given
// length: kept is [0, k) when taking and [k, length) when dropping, with
// a negative n counting from the end.
func sliceBounds(n int, rev bool, length int) (lo, hi int) {
	k := n
	if n < 0 {
		k = length + n
	}
	if k < 0 {
		k = 0
	}
	if k > length {
		k = length
	}
	if rev {
		return k, length
	}
	return 0, k
}

func (p *Pipeline) runSlice(in vector.Vector) (vector.Vector, error) {
	var data vector.Block
	var counts *vector.Block
	if p.Slice.PerRow {
		tuple := in.(vector.Tuple)
		data = tuple.Columns[0].(vector.Block)
		countBlock := tuple.Columns[1].(vector.Block)
		counts = &countBlock
	} else {
		data = in.(vector.Block)
	}

	index := make([]int, data.Len()+1)
	var rows []int
	for i := 0; i < data.Len(); i++ {
		lo, hi := data.Offsets.Bounds(i)
		keepLo, keepHi := lo, hi
		if counts != nil {
			nLo, nHi := counts.Offsets.Bounds(i)
			if nLo != nHi {
				// A present count slices the block; an empty count block
				// leaves it unchanged.
				n := counts.Elements.(vector.Values)[nLo].Int
				dLo, dHi := sliceBounds(n, p.Slice.Rev, hi-lo)
				keepLo, keepHi = lo+dLo, lo+dHi
			}
		} else {
			dLo, dHi := sliceBounds(p.Slice.N, p.Slice.Rev, hi-lo)
			keepLo, keepHi = lo+dLo, lo+dHi
		}
		for k := keepLo; k < keepHi; k++ {
			rows = append(rows, k)
		}
		index[i+1] = len(rows)
	}
	return vector.Block{
		Offsets:  vector.FromIndex(index),
		Elements: vector.Gather(data.Elements, rows),
		Card:     p.Sig.Target.Storage().Block.Card,
	}, nil
}
