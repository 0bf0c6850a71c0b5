package pipeline

import (
	"reflect"
	"testing"

	"github.com/dataknots/knotql/knotql"
	"github.com/dataknots/knotql/shape"
	"github.com/dataknots/knotql/vector"
)

func double() (ScalarFn, knotql.Type) {
	return func(values []knotql.Value) (knotql.Value, error) {
		return knotql.NewInt(values[0].Int * 2), nil
	}, knotql.Int
}

func TestOptimizeDropsNoops(t *testing.T) {
	source := shape.BlockOf(intShape, shape.X0ToN)
	p := ChainOf(
		Pass(source),
		WithElements(source, Pass(intShape)),
		Pass(source),
	)
	got := Optimize(p)
	if got.Op != OpPass {
		t.Errorf("optimized to %s, want pass()", got.String())
	}
	if got.Sig.String() != p.Sig.String() {
		t.Errorf("signature changed: %s", got.Sig)
	}
}

func TestOptimizeWrapFlattenCancellation(t *testing.T) {
	source := shape.BlockOf(intShape, shape.X0ToN)
	we := WithElements(source, Wrap(intShape))
	p := ChainOf(we, Flatten(we.Target()))
	if got := Optimize(p); got.Op != OpPass {
		t.Errorf("with_elements(wrap()) . flatten() optimized to %s", got.String())
	}
}

func TestOptimizeWrapWithElementsFlatten(t *testing.T) {
	fn, out := double()
	lifted := Lift(intShape, fn, out)
	step := ChainOf(lifted, Wrap(lifted.Target()))

	wrap := Wrap(intShape)
	we := WithElements(wrap.Target(), step)
	p := ChainOf(wrap, we, Flatten(we.Target()))

	got := Optimize(p)
	want := Optimize(step)
	if got.String() != want.String() {
		t.Errorf("optimized to %s, want %s", got.String(), want.String())
	}
}

func TestOptimizeMergesWithElements(t *testing.T) {
	fn, out := double()
	source := shape.BlockOf(intShape, shape.X0ToN)
	p := ChainOf(
		WithElements(source, Lift(intShape, fn, out)),
		WithElements(source, Lift(intShape, fn, out)),
	)
	got := Optimize(p)
	if got.Op != OpWithElements {
		t.Fatalf("optimized to %s, want a single with_elements", got.String())
	}
	if got.WithElements.Inner.Op != OpChain {
		t.Errorf("inner pipeline = %s, want a chain", got.WithElements.Inner.String())
	}
}

func TestOptimizeTupleOfColumn(t *testing.T) {
	fn, out := double()
	lifted := Lift(intShape, fn, out)
	tuple := TupleOf(intShape, []string{"a", "b"}, []Pipeline{Pass(intShape), lifted})
	p := ChainOf(tuple, Column(tuple.Target(), 1, "b"))

	got := Optimize(p)
	if got.Op != OpLift {
		t.Errorf("optimized to %s, want the inlined column pipeline", got.String())
	}
}

func TestOptimizePreservesSemantics(t *testing.T) {
	fn, out := double()
	lifted := Lift(intShape, fn, out)
	step := ChainOf(lifted, Wrap(lifted.Target()))

	wrap := Wrap(intShape)
	we := WithElements(wrap.Target(), step)
	flatten := Flatten(we.Target())
	inner := ChainOf(wrap, we, flatten)

	source := shape.BlockOf(intShape, shape.X0ToN)
	withElems := WithElements(source, inner)
	p := ChainOf(
		withElems,
		Flatten(withElems.Target()),
	)
	optimized := Optimize(p)

	in := vector.Block{
		Offsets:  vector.FromIndex([]int{0, 2, 2, 4}),
		Elements: ints(1, 2, 3, 4),
		Card:     shape.X0ToN,
	}
	want := mustRun(t, p, in)
	got := mustRun(t, optimized, in)
	if !reflect.DeepEqual(normalize(got), normalize(want)) {
		t.Errorf("optimize changed semantics: %v != %v", got, want)
	}
}

// normalize renders block vectors into comparable form: dense and explicit
// offsets encoding the same boundaries compare equal.
func normalize(v vector.Vector) interface{} {
	switch typed := v.(type) {
	case vector.Values:
		return typed
	case vector.Block:
		offsets := make([]int, typed.Len()+1)
		for i := range offsets {
			offsets[i] = typed.Offsets.At(i)
		}
		return []interface{}{offsets, normalize(typed.Elements), typed.Card}
	case vector.Tuple:
		columns := make([]interface{}, len(typed.Columns))
		for i := range typed.Columns {
			columns[i] = normalize(typed.Columns[i])
		}
		return []interface{}{typed.Labels, columns}
	}
	panic("unexhaustive vector kind match")
}
