package vector

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/dataknots/knotql/knotql"
	"github.com/dataknots/knotql/shape"
)

func ints(values ...int) Values {
	out := make(Values, len(values))
	for i := range values {
		out[i] = knotql.NewInt(values[i])
	}
	return out
}

func TestOffsets(t *testing.T) {
	dense := Dense(3)
	if dense.Rows() != 3 || !dense.IsDense() {
		t.Fatal("dense offsets misreport themselves")
	}
	if lo, hi := dense.Bounds(1); lo != 1 || hi != 2 {
		t.Errorf("dense bounds = %d, %d", lo, hi)
	}

	explicit := FromIndex([]int{0, 2, 2, 5})
	if explicit.Rows() != 3 || explicit.IsDense() {
		t.Fatal("explicit offsets misreport themselves")
	}
	if lo, hi := explicit.Bounds(2); lo != 2 || hi != 5 {
		t.Errorf("explicit bounds = %d, %d", lo, hi)
	}

	if err := explicit.Validate(5); err != nil {
		t.Errorf("valid offsets rejected: %s", err)
	}
	if err := explicit.Validate(4); err == nil {
		t.Error("offsets ending past the elements accepted")
	}
	if err := FromIndex([]int{0, 3, 1}).Validate(1); err == nil {
		t.Error("decreasing offsets accepted")
	}
}

func TestOffsetsCompose(t *testing.T) {
	outer := FromIndex([]int{0, 1, 3})
	inner := FromIndex([]int{0, 2, 2, 7})

	composed := outer.Compose(inner)
	want := []int{0, 2, 7}
	for i := 0; i <= composed.Rows(); i++ {
		if composed.At(i) != want[i] {
			t.Fatalf("composed offsets at %d = %d, want %d", i, composed.At(i), want[i])
		}
	}

	if got := Dense(3).Compose(inner); !reflect.DeepEqual(got, inner) {
		t.Error("dense outer should collapse to inner")
	}
	if got := outer.Compose(Dense(3)); !reflect.DeepEqual(got, outer) {
		t.Error("dense inner should collapse to outer")
	}
}

func TestGather(t *testing.T) {
	t.Run("values", func(t *testing.T) {
		got := Gather(ints(10, 20, 30), []int{2, 0, 2})
		if !reflect.DeepEqual(got, ints(30, 10, 30)) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("tuple", func(t *testing.T) {
		tuple := Tuple{
			Labels:  []string{"x"},
			Length:  3,
			Columns: []Vector{ints(1, 2, 3)},
		}
		got := Gather(tuple, []int{1, 1}).(Tuple)
		if got.Length != 2 || !reflect.DeepEqual(got.Columns[0], ints(2, 2)) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("block", func(t *testing.T) {
		block := Block{
			Offsets:  FromIndex([]int{0, 2, 2, 3}),
			Elements: ints(1, 2, 3),
			Card:     shape.X0ToN,
		}
		got := Gather(block, []int{2, 0}).(Block)
		if got.Len() != 2 {
			t.Fatalf("got %d rows", got.Len())
		}
		if lo, hi := got.Offsets.Bounds(0); hi-lo != 1 {
			t.Errorf("first gathered block has %d elements", hi-lo)
		}
		if !reflect.DeepEqual(got.Elements, ints(3, 1, 2)) {
			t.Errorf("gathered elements = %v", got.Elements)
		}
	})
}

func TestBlockLen(t *testing.T) {
	tests := []struct {
		block Block
		want  int
	}{
		{Block{Offsets: Dense(4), Elements: ints(1, 2, 3, 4), Card: shape.X1To1}, 4},
		{Block{Offsets: FromIndex([]int{0, 0}), Elements: Values{}, Card: shape.X0To1}, 1},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			if got := tt.block.Len(); got != tt.want {
				t.Errorf("Len() = %d, want %d", got, tt.want)
			}
		})
	}
}
