package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataknots/knotql/knotql"
	"github.com/dataknots/knotql/shape"
)

func personShape() shape.Shape {
	return shape.BlockOf(
		shape.TupleOf([]string{"name", "salary"}, []shape.Shape{
			shape.ValueOf(knotql.String),
			shape.ValueOf(knotql.Int),
		}),
		shape.X0ToN,
	)
}

func scopedShape(inner shape.Shape, params map[string]shape.Shape) shape.Shape {
	var labels []string
	var columns []shape.Shape
	for name, s := range params {
		labels = append(labels, name)
		columns = append(columns, s)
	}
	return shape.ScopeOf(shape.TupleOf(nil, []shape.Shape{
		inner,
		shape.TupleOf(labels, columns),
	}))
}

func TestAssembleNavigation(t *testing.T) {
	env := NewEnvironment()
	p, err := Assemble(It.Get("name"), env, personShape())
	require.NoError(t, err)

	block := p.Target().Storage().Block
	assert.Equal(t, shape.X0ToN, block.Card)
	assert.Equal(t, "name", block.Inner.Label())
	assert.Equal(t, knotql.TypeIDString, block.Inner.Storage().Value.Type.TypeID)
}

func TestAssembleUnknownName(t *testing.T) {
	env := NewEnvironment()
	_, err := Assemble(It.Get("address"), env, personShape())
	require.Error(t, err)
	typed, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrorKindUnknownName, typed.Kind)
	assert.Contains(t, typed.Message, "address")
	assert.Contains(t, typed.Message, "name")
}

func TestAssembleMissingParameter(t *testing.T) {
	env := NewEnvironment()
	root := scopedShape(personShape(), map[string]shape.Shape{
		"limit": shape.BlockOf(shape.ValueOf(knotql.Int), shape.X1To1),
	})
	_, err := Assemble(It.Get("address"), env, root)
	require.Error(t, err)
	typed, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrorKindMissingParameter, typed.Kind)
}

func TestAssembleParameterLookup(t *testing.T) {
	env := NewEnvironment()
	root := scopedShape(personShape(), map[string]shape.Shape{
		"limit": shape.BlockOf(shape.ValueOf(knotql.Int), shape.X1To1),
	})
	p, err := Assemble(It.Get("limit"), env, root)
	require.NoError(t, err)
	subject, _, scoped := p.Target().FlowElem().ScopeParts()
	require.True(t, scoped, "parameters should stay in scope across the composition")
	assert.Equal(t, knotql.TypeIDInt, subject.Storage().Value.Type.TypeID)
}

func TestAssembleFilterRequiresPredicate(t *testing.T) {
	env := NewEnvironment()
	_, err := Assemble(Filter(It.Get("name")), env, personShape())
	require.Error(t, err)
	typed, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrorKindShapeMismatch, typed.Kind)
}

func TestAssembleTakeRequiresInteger(t *testing.T) {
	env := NewEnvironment()
	_, err := Assemble(TakeQuery(Lift("three")), env, personShape())
	require.Error(t, err)
	typed, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrorKindShapeMismatch, typed.Kind)
}

func TestAssembleUnknownFunction(t *testing.T) {
	env := NewEnvironment()
	_, err := Assemble(Apply("frobnicate", It.Get("salary")), env, personShape())
	require.Error(t, err)
	typed, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrorKindFunctionResolution, typed.Kind)
}

func TestAssembleFunctionTypeMismatch(t *testing.T) {
	env := NewEnvironment()
	_, err := Assemble(Apply("+", It.Get("name"), It.Get("salary")), env, personShape())
	require.Error(t, err)
	typed, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrorKindFunctionResolution, typed.Kind)
}

func TestComposeWithItIsIdentity(t *testing.T) {
	env := NewEnvironment()
	direct, err := Assemble(It.Get("name"), env, personShape())
	require.NoError(t, err)
	leftIdentity, err := Assemble(It.Then(It.Get("name")), env, personShape())
	require.NoError(t, err)
	rightIdentity, err := Assemble(It.Get("name").Then(It), env, personShape())
	require.NoError(t, err)

	assert.Equal(t, direct.String(), leftIdentity.String())
	assert.Equal(t, direct.String(), rightIdentity.String())
}

func TestRecordLabels(t *testing.T) {
	env := NewEnvironment()
	p, err := Assemble(Record(
		It.Get("name"),
		It.Get("salary").As("pay"),
		It.Get("salary"),
	), env, personShape())
	require.NoError(t, err)

	tuple := p.Target().FlowElem().Storage().Tuple
	assert.Equal(t, []string{"name", "pay", "salary"}, tuple.Labels)
}

func TestRecordDuplicateLabelsDemoted(t *testing.T) {
	env := NewEnvironment()
	p, err := Assemble(Record(
		It.Get("name"),
		It.Get("salary").As("name"),
	), env, personShape())
	require.NoError(t, err)

	tuple := p.Target().FlowElem().Storage().Tuple
	assert.Equal(t, []string{"name", shape.OrdinalLabel(1)}, tuple.Labels)
}

func TestLabelStripped(t *testing.T) {
	env := NewEnvironment()
	p, err := Assemble(It.Get("name").As(""), env, personShape())
	require.NoError(t, err)
	assert.Equal(t, "", p.Target().FlowElem().Label())
}

func TestCacheable(t *testing.T) {
	assert.True(t, Cacheable(It.Get("name").Then(Take(3))))
	assert.True(t, Cacheable(Apply("+", It, Lift(1))))
	assert.False(t, Cacheable(LiftFn(NewEnvironment().Functions["+"].Descriptors[0], It)))
}
