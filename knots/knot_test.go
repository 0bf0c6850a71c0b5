package knots

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataknots/knotql/knotql"
	"github.com/dataknots/knotql/shape"
	"github.com/dataknots/knotql/vector"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		native interface{}
		card   shape.Cardinality
	}{
		{42, shape.X1To1},
		{"hello", shape.X1To1},
		{3.5, shape.X1To1},
		{true, shape.X1To1},
		{nil, shape.X0To1},
		{[]interface{}{1, 2, 3}, shape.X0ToN},
		{[]interface{}{[]interface{}{1, 2}, []interface{}{3}}, shape.X0ToN},
		{map[string]interface{}{"x": 1, "y": "two"}, shape.X1To1},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			knot, err := New(tt.native)
			require.NoError(t, err)
			assert.Equal(t, tt.card, knot.Shape().Storage().Block.Card)
			assert.Equal(t, tt.native, knot.Native())
		})
	}
}

func TestUnit(t *testing.T) {
	knot := Unit()
	assert.Equal(t, 1, knot.Cell().Len())
	assert.Equal(t, shape.X1To1, knot.Shape().Storage().Block.Card)
	assert.Equal(t, map[string]interface{}{}, knot.Native())
}

func TestFromPartsValidation(t *testing.T) {
	cell := vector.Block{
		Offsets:  vector.FromIndex([]int{0, 1, 1}),
		Elements: vector.Values{},
		Card:     shape.X0To1,
	}
	_, err := FromParts(cell, shape.BlockOf(shape.ValueOf(knotql.Int), shape.X0To1))
	require.Error(t, err)
}
