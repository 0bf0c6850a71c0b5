package knots

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/dataknots/knotql/knotql"
	"github.com/dataknots/knotql/query"
	"github.com/dataknots/knotql/shape"
	"github.com/dataknots/knotql/vector"
)

// DataKnot is the outward-facing value wrapper: a one-row block vector (the
// cell) together with the block's shape. Knots are immutable.
type DataKnot struct {
	cell      vector.Block
	cellShape shape.Shape
}

// Unit is the no-argument knot: a single unit value.
func Unit() DataKnot {
	unit := knotql.NewStruct(nil, nil)
	return DataKnot{
		cell: vector.Block{
			Offsets:  vector.Dense(1),
			Elements: vector.Values{unit},
			Card:     shape.X1To1,
		},
		cellShape: shape.BlockOf(shape.ValueOf(unit.Type), shape.X1To1),
	}
}

// New builds a knot from a plain Go value: a scalar becomes a regular
// block, a slice a plural block, nil an empty optional block, and a
// map or struct a one-row tuple.
func New(native interface{}) (DataKnot, error) {
	if native == nil {
		return DataKnot{
			cell: vector.Block{
				Offsets:  vector.FromIndex([]int{0, 0}),
				Elements: vector.Values{},
				Card:     shape.X0To1,
			},
			cellShape: shape.BlockOf(shape.ValueOf(knotql.Null), shape.X0To1),
		}, nil
	}
	value, err := knotql.NewFromNative(native)
	if err != nil {
		return DataKnot{}, errors.Wrap(err, "couldn't build a knot")
	}
	switch value.Type.TypeID {
	case knotql.TypeIDList:
		return DataKnot{
			cell: vector.Block{
				Offsets:  vector.FromIndex([]int{0, len(value.List)}),
				Elements: vector.Values(value.List),
				Card:     shape.X0ToN,
			},
			cellShape: shape.BlockOf(shape.ValueOf(*value.Type.List.Element), shape.X0ToN),
		}, nil
	case knotql.TypeIDStruct:
		fields := value.Type.Struct.Fields
		labels := make([]string, len(fields))
		columns := make([]vector.Vector, len(fields))
		columnShapes := make([]shape.Shape, len(fields))
		for i, field := range fields {
			labels[i] = field.Name
			columns[i] = vector.Values{value.FieldValues[i]}
			columnShapes[i] = shape.ValueOf(field.Type)
		}
		return DataKnot{
			cell: vector.Block{
				Offsets:  vector.Dense(1),
				Elements: vector.Tuple{Labels: labels, Length: 1, Columns: columns},
				Card:     shape.X1To1,
			},
			cellShape: shape.BlockOf(shape.TupleOf(labels, columnShapes), shape.X1To1),
		}, nil
	default:
		return DataKnot{
			cell: vector.Block{
				Offsets:  vector.Dense(1),
				Elements: vector.Values{value},
				Card:     shape.X1To1,
			},
			cellShape: shape.BlockOf(shape.ValueOf(value.Type), shape.X1To1),
		}, nil
	}
}

// MustNew is New for statically-known values.
func MustNew(native interface{}) DataKnot {
	out, err := New(native)
	if err != nil {
		panic(err)
	}
	return out
}

// FromParts wraps an already-columnar cell; source adapters construct knots
// through here.
func FromParts(cell vector.Block, cellShape shape.Shape) (DataKnot, error) {
	if cell.Len() != 1 {
		return DataKnot{}, fmt.Errorf("a knot cell must hold exactly one block, got %d", cell.Len())
	}
	if cellShape.Storage().Kind != shape.KindBlock {
		return DataKnot{}, fmt.Errorf("a knot cell shape must be a block, got %s", cellShape)
	}
	return DataKnot{cell: cell, cellShape: cellShape}, nil
}

func (k DataKnot) Cell() vector.Block {
	return k.cell
}

func (k DataKnot) Shape() shape.Shape {
	return k.cellShape
}

// Get materializes the knot as a scalar value: a regular block yields its
// single value, an empty optional block null, a plural block a list, and
// nested containers recurse.
func (k DataKnot) Get() knotql.Value {
	block := k.cellShape.Storage().Block
	return materializeBlock(k.cell, *block, 0)
}

// Native is Get rendered as plain Go values.
func (k DataKnot) Native() interface{} {
	return k.Get().ToNative()
}

func materializeBlock(b vector.Block, s shape.BlockShape, row int) knotql.Value {
	lo, hi := b.Offsets.Bounds(row)
	if s.Card.IsPlural() {
		values := make([]knotql.Value, 0, hi-lo)
		for i := lo; i < hi; i++ {
			values = append(values, materializeElement(b.Elements, s.Inner, i))
		}
		return knotql.NewList(values)
	}
	if lo == hi {
		return knotql.NewNull()
	}
	return materializeElement(b.Elements, s.Inner, lo)
}

func materializeElement(v vector.Vector, s shape.Shape, row int) knotql.Value {
	switch typed := v.(type) {
	case vector.Values:
		return typed[row]
	case vector.Tuple:
		labels := typed.Labels
		if labels == nil {
			labels = make([]string, len(typed.Columns))
			for i := range labels {
				labels[i] = shape.OrdinalLabel(i)
			}
		}
		storage := s.Storage()
		values := make([]knotql.Value, len(typed.Columns))
		for i := range typed.Columns {
			values[i] = materializeElement(typed.Columns[i], storage.Tuple.Columns[i], row)
		}
		return knotql.NewStruct(labels, values)
	case vector.Block:
		storage := s.Storage()
		return materializeBlock(typed, *storage.Block, row)
	}
	panic("unexhaustive vector kind match")
}

// Const embeds the knot into a query as a constant: every input row gets a
// copy of the knot's block.
func Const(k DataKnot) query.Query {
	block := k.cellShape.Storage().Block
	return query.KnotConst(k.cell.Elements, block.Inner, block.Card)
}

func (k DataKnot) String() string {
	return fmt.Sprintf("DataKnot(%s :: %s)", k.Get(), k.cellShape)
}
