package vector

import "fmt"

// Offsets names, for each row, a half-open slice of the element vector. The
// dense form (one element per row) is encoded with a nil index so it costs
// nothing to carry around.
type Offsets struct {
	rows  int
	index []int
}

// Dense is the offsets sequence 0..rows, one element per row.
func Dense(rows int) Offsets {
	return Offsets{rows: rows}
}

// FromIndex wraps an explicit offsets slice. The slice must be non-decreasing
// and start at 0; it has one entry more than there are rows.
func FromIndex(index []int) Offsets {
	if len(index) == 0 || index[0] != 0 {
		panic("offsets index must start at 0")
	}
	return Offsets{rows: len(index) - 1, index: index}
}

func (o Offsets) Rows() int {
	return o.rows
}

func (o Offsets) IsDense() bool {
	return o.index == nil
}

// At returns the offset boundary before row i; At(Rows()) is the total
// element count.
func (o Offsets) At(i int) int {
	if o.index == nil {
		return i
	}
	return o.index[i]
}

// Bounds returns the half-open element range of row i.
func (o Offsets) Bounds(i int) (lo, hi int) {
	return o.At(i), o.At(i + 1)
}

// Compose collapses two levels of nesting: the result's row i covers all the
// elements that inner's rows within o's row i cover. Dense forms are
// special-cased so a dense level drops out without allocation.
func (o Offsets) Compose(inner Offsets) Offsets {
	if o.IsDense() {
		return inner
	}
	if inner.IsDense() {
		return o
	}
	index := make([]int, o.rows+1)
	for i := 0; i <= o.rows; i++ {
		index[i] = inner.index[o.index[i]]
	}
	return FromIndex(index)
}

// Validate checks well-formedness against the element vector's length.
func (o Offsets) Validate(elements int) error {
	if o.index == nil {
		if o.rows != elements {
			return fmt.Errorf("dense offsets over %d rows don't match %d elements", o.rows, elements)
		}
		return nil
	}
	for i := 0; i < o.rows; i++ {
		if o.index[i+1] < o.index[i] {
			return fmt.Errorf("offsets decrease at row %d", i)
		}
	}
	if o.index[o.rows] != elements {
		return fmt.Errorf("offsets end at %d, expected %d elements", o.index[o.rows], elements)
	}
	return nil
}
