package vector

import (
	"github.com/dataknots/knotql/knotql"
	"github.com/dataknots/knotql/shape"
)

// Vector is a column of values. The concrete kinds are Values (plain
// scalars), Block (a ragged sequence of blocks) and Tuple (parallel columns).
type Vector interface {
	Len() int
}

// Values is a plain vector of scalars.
type Values []knotql.Value

func (v Values) Len() int {
	return len(v)
}

// Block is a ragged sequence of blocks: Offsets.Bounds(i) names the slice of
// Elements belonging to the ith row. Card bounds every block's length.
type Block struct {
	Offsets  Offsets
	Elements Vector
	Card     shape.Cardinality
}

func (b Block) Len() int {
	return b.Offsets.Rows()
}

// Tuple is a set of parallel, equal-length columns. Labels is either empty
// (positional) or has one label per column.
type Tuple struct {
	Labels  []string
	Length  int
	Columns []Vector
}

func (t Tuple) Len() int {
	return t.Length
}

// Column finds a column by label, falling back to ordinal labels for
// positional tuples.
func (t Tuple) Column(label string) (int, bool) {
	for i := range t.Labels {
		if t.Labels[i] == label {
			return i, true
		}
	}
	if len(t.Labels) == 0 {
		for i := range t.Columns {
			if shape.OrdinalLabel(i) == label {
				return i, true
			}
		}
	}
	return 0, false
}

// Gather builds a new vector holding rows[i]'th row of v at position i.
// Indices may repeat and come in any order. Selected storage is copied, so
// the result doesn't alias v's row structure.
func Gather(v Vector, rows []int) Vector {
	switch typed := v.(type) {
	case Values:
		out := make(Values, len(rows))
		for i, row := range rows {
			out[i] = typed[row]
		}
		return out
	case Tuple:
		columns := make([]Vector, len(typed.Columns))
		for j := range typed.Columns {
			columns[j] = Gather(typed.Columns[j], rows)
		}
		return Tuple{Labels: typed.Labels, Length: len(rows), Columns: columns}
	case Block:
		index := make([]int, len(rows)+1)
		var elementRows []int
		for i, row := range rows {
			lo, hi := typed.Offsets.Bounds(row)
			for k := lo; k < hi; k++ {
				elementRows = append(elementRows, k)
			}
			index[i+1] = len(elementRows)
		}
		return Block{
			Offsets:  FromIndex(index),
			Elements: Gather(typed.Elements, elementRows),
			Card:     typed.Card,
		}
	}
	panic("unexhaustive vector kind match")
}
