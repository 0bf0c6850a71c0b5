package csv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataknots/knotql/knots"
	"github.com/dataknots/knotql/query"
	"github.com/dataknots/knotql/shape"
)

const employees = `name,department,salary
JEFFERY A,AQUATICS,50000
NANCY B,POLICE,80016
JAMES C,FIRE,`

func TestRead(t *testing.T) {
	knot, err := Read(strings.NewReader(employees))
	require.NoError(t, err)

	assert.Equal(t, shape.X0ToN, knot.Shape().Storage().Block.Card)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"name": "JEFFERY A", "department": "AQUATICS", "salary": 50000},
		map[string]interface{}{"name": "NANCY B", "department": "POLICE", "salary": 80016},
		map[string]interface{}{"name": "JAMES C", "department": "FIRE", "salary": nil},
	}, knot.Native())
}

func TestReadThenQuery(t *testing.T) {
	knot, err := Read(strings.NewReader(employees))
	require.NoError(t, err)

	out, err := knots.Run(knot, query.It.Get("name"))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"JEFFERY A", "NANCY B", "JAMES C"}, out.Native())

	count, err := knots.Run(knot, query.It.Get("salary").Then(query.Count()))
	require.NoError(t, err)
	assert.Equal(t, 2, count.Native())
}

func TestReadSniffsTypes(t *testing.T) {
	knot, err := Read(strings.NewReader("a,b,c\n1,2.5,true"))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"a": 1, "b": 2.5, "c": true},
	}, knot.Native())
}
