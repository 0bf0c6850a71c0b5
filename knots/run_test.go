package knots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataknots/knotql/query"
	"github.com/dataknots/knotql/shape"
)

func mustRun(t *testing.T, input DataKnot, q query.Query, params ...Param) DataKnot {
	t.Helper()
	out, err := Run(input, q, params...)
	require.NoError(t, err)
	return out
}

func TestRunIdentity(t *testing.T) {
	names := []interface{}{"GARRY M", "ANTHONY R", "DANA A"}
	out := mustRun(t, MustNew(names), query.It)
	assert.Equal(t, names, out.Native())
	assert.Equal(t, shape.X0ToN, out.Shape().Storage().Block.Card)
}

func TestRunFieldArithmetic(t *testing.T) {
	input := MustNew(map[string]interface{}{"x": 1, "y": 2})
	out := mustRun(t, input, query.Apply("+", query.It.Get("x"), query.It.Get("y")))
	assert.Equal(t, 3, out.Native())
	assert.Equal(t, shape.X1To1, out.Shape().Storage().Block.Card)
}

func TestRunEachCount(t *testing.T) {
	q := query.Lift([]interface{}{1, 2, 3}).Then(
		query.Each(query.Lift([]interface{}{"a", "b", "c"}).Then(query.Count())),
	)
	out := mustRun(t, Unit(), q)
	assert.Equal(t, []interface{}{3, 3, 3}, out.Native())
}

func TestRunCountAggregatesWholeFlow(t *testing.T) {
	q := query.Lift([]interface{}{1, 2, 3}).Then(query.Count())
	out := mustRun(t, Unit(), q)
	assert.Equal(t, 3, out.Native())
}

func TestRunRecord(t *testing.T) {
	q := query.Lift([]interface{}{1, 2, 3}).Then(query.Record(
		query.It.As("x"),
		query.Apply("*", query.It, query.It).As("x2"),
	))
	out := mustRun(t, Unit(), q)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"x": 1, "x2": 1},
		map[string]interface{}{"x": 2, "x2": 4},
		map[string]interface{}{"x": 3, "x2": 9},
	}, out.Native())
}

func TestRunFilter(t *testing.T) {
	input := MustNew([]interface{}{1, 2, 3, 4, 5})
	out := mustRun(t, input, query.Filter(query.Apply("isodd", query.It)))
	assert.Equal(t, []interface{}{1, 3, 5}, out.Native())
}

func TestRunKeep(t *testing.T) {
	out := mustRun(t, Unit(), query.Keep(query.Bind("x", query.Lift(2))).Then(query.It.Get("x")))
	assert.Equal(t, 2, out.Native())

	out = mustRun(t, MustNew(1),
		query.Keep(query.Bind("x", query.Lift(2))).Then(
			query.Apply("+", query.It, query.It.Get("x")),
		))
	assert.Equal(t, 3, out.Native())
}

func TestRunKeepSurvivesComposition(t *testing.T) {
	q := query.Keep(query.Bind("x", query.Lift(2))).
		Then(query.Lift(1)).
		Then(query.It.Get("x"))
	out := mustRun(t, Unit(), q)
	assert.Equal(t, 2, out.Native())
}

func TestRunGiven(t *testing.T) {
	q := query.Given(
		query.Apply("+", query.It, query.It.Get("x")),
		query.Bind("x", query.Lift(2)),
	)
	out := mustRun(t, MustNew(1), q)
	assert.Equal(t, 3, out.Native())
}

func TestRunTakeDrop(t *testing.T) {
	letters := MustNew([]interface{}{"a", "b", "c"})

	out := mustRun(t, letters, query.Take(-2))
	assert.Equal(t, []interface{}{"a"}, out.Native())

	out = mustRun(t, letters, query.Drop(-2))
	assert.Equal(t, []interface{}{"b", "c"}, out.Native())

	out = mustRun(t, letters, query.Take(2))
	assert.Equal(t, []interface{}{"a", "b"}, out.Native())

	out = mustRun(t, letters, query.Take(5))
	assert.Equal(t, []interface{}{"a", "b", "c"}, out.Native())

	out = mustRun(t, letters, query.Drop(1))
	assert.Equal(t, []interface{}{"b", "c"}, out.Native())
}

func TestRunTakeQueryArgument(t *testing.T) {
	input := MustNew([]interface{}{1, 2, 3, 4})

	out := mustRun(t, input, query.TakeQuery(query.Lift(2)))
	assert.Equal(t, []interface{}{1, 2}, out.Native())

	out = mustRun(t, input, query.TakeQuery(query.It.Get("n")), P("n", 3))
	assert.Equal(t, []interface{}{1, 2, 3}, out.Native())
}

func TestRunAggregates(t *testing.T) {
	input := MustNew([]interface{}{3, 1, 2})

	assert.Equal(t, 6, mustRun(t, input, query.It.Then(query.Sum())).Native())
	assert.Equal(t, 1, mustRun(t, input, query.It.Then(query.Min())).Native())
	assert.Equal(t, 3, mustRun(t, input, query.It.Then(query.Max())).Native())
}

func TestRunAggregatesOverEmpty(t *testing.T) {
	out := mustRun(t, Unit(), query.Max(query.Lift([]interface{}{})))
	assert.Nil(t, out.Native())
	assert.Equal(t, shape.X0To1, out.Shape().Storage().Block.Card)

	out = mustRun(t, Unit(), query.Sum(query.Lift([]interface{}{})))
	assert.Equal(t, 0, out.Native())
}

func TestRunParameters(t *testing.T) {
	out := mustRun(t, Unit(), query.It.Get("p"), P("p", 5))
	assert.Equal(t, 5, out.Native())

	_, err := Run(Unit(), query.It.Get("q"), P("p", 5))
	require.Error(t, err)
	typed, ok := err.(*query.Error)
	require.True(t, ok)
	assert.Equal(t, query.ErrorKindMissingParameter, typed.Kind)
}

func TestQueryIndexSyntax(t *testing.T) {
	input := MustNew([]interface{}{"ab", "cd"})
	out, err := input.Query(query.Apply("upper", query.It))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"AB", "CD"}, out.Native())
}

func TestRunKnotConstant(t *testing.T) {
	out := mustRun(t, Unit(), Const(MustNew([]interface{}{1, 2})))
	assert.Equal(t, []interface{}{1, 2}, out.Native())
}

func TestRunLiftNil(t *testing.T) {
	out := mustRun(t, Unit(), query.Lift(nil))
	assert.Nil(t, out.Native())
	assert.Equal(t, shape.X0To1, out.Shape().Storage().Block.Card)
}

func TestRunNestedNavigation(t *testing.T) {
	input := MustNew(map[string]interface{}{
		"department": map[string]interface{}{"name": "POLICE"},
	})
	out := mustRun(t, input, query.Nav("department", "name"))
	assert.Equal(t, "POLICE", out.Native())
}

func TestRunFilterLiterals(t *testing.T) {
	input := MustNew([]interface{}{1, 2})

	out := mustRun(t, input, query.Filter(query.Lift(true)))
	assert.Equal(t, []interface{}{1, 2}, out.Native())

	out = mustRun(t, input, query.Filter(query.Lift(false)))
	assert.Equal(t, []interface{}{}, out.Native())
}
