package pipeline

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dataknots/knotql/knotql"
	"github.com/dataknots/knotql/shape"
	"github.com/dataknots/knotql/vector"
)

func genBlock() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, 4)).Map(func(lengths []int) vector.Block {
		index := make([]int, len(lengths)+1)
		total := 0
		for i, length := range lengths {
			total += length
			index[i+1] = total
		}
		elements := make(vector.Values, total)
		for i := range elements {
			elements[i] = knotql.NewInt(i)
		}
		return vector.Block{
			Offsets:  vector.FromIndex(index),
			Elements: elements,
			Card:     shape.X0ToN,
		}
	})
}

func wellFormed(v vector.Vector) bool {
	block, ok := v.(vector.Block)
	if !ok {
		return false
	}
	return block.Offsets.Validate(block.Elements.Len()) == nil
}

func TestSliceProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	source := shape.BlockOf(intShape, shape.X0ToN)

	properties.Property("slice output is well-formed and row-conserving", prop.ForAll(
		func(block vector.Block, n int, rev bool) bool {
			p := Slice(source, n, rev)
			out, err := p.Run(block)
			if err != nil {
				return false
			}
			return wellFormed(out) && out.Len() == block.Len()
		},
		genBlock(), gen.IntRange(-6, 6), gen.Bool(),
	))

	properties.Property("take n bounds every block by n", prop.ForAll(
		func(block vector.Block, n int) bool {
			p := Slice(source, n, false)
			out, err := p.Run(block)
			if err != nil {
				return false
			}
			result := out.(vector.Block)
			for i := 0; i < result.Len(); i++ {
				lo, hi := result.Offsets.Bounds(i)
				if hi-lo > n {
					return false
				}
			}
			return true
		},
		genBlock(), gen.IntRange(0, 6),
	))

	properties.Property("drop then take reconstructs the block", prop.ForAll(
		func(block vector.Block, n int) bool {
			takeOp := Slice(source, n, false)
			take, err := takeOp.Run(block)
			if err != nil {
				return false
			}
			dropOp := Slice(source, n, true)
			drop, err := dropOp.Run(block)
			if err != nil {
				return false
			}
			takeBlock, dropBlock := take.(vector.Block), drop.(vector.Block)
			for i := 0; i < block.Len(); i++ {
				lo, hi := block.Offsets.Bounds(i)
				tLo, tHi := takeBlock.Offsets.Bounds(i)
				dLo, dHi := dropBlock.Offsets.Bounds(i)
				if (tHi-tLo)+(dHi-dLo) != hi-lo {
					return false
				}
			}
			return true
		},
		genBlock(), gen.IntRange(0, 6),
	))

	properties.TestingRun(t)
}

func TestFlattenProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	source := shape.BlockOf(shape.BlockOf(intShape, shape.X0ToN), shape.X0ToN)

	properties.Property("flatten output is well-formed", prop.ForAll(
		func(inner vector.Block, lengths []int) bool {
			// Build outer offsets over the inner block's rows.
			index := []int{0}
			row := 0
			for _, length := range lengths {
				row += length
				if row > inner.Len() {
					row = inner.Len()
				}
				index = append(index, row)
			}
			// The outer level has to cover every inner row, or the
			// flattened offsets wouldn't reach the end of the elements.
			if index[len(index)-1] != inner.Len() {
				index = append(index, inner.Len())
			}
			outer := vector.Block{
				Offsets:  vector.FromIndex(index),
				Elements: inner,
				Card:     shape.X0ToN,
			}
			flattenOp := Flatten(source)
			out, err := flattenOp.Run(outer)
			if err != nil {
				return false
			}
			return wellFormed(out) && out.Len() == outer.Len()
		},
		genBlock(), gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}
