package knots

import (
	"github.com/pkg/errors"

	"github.com/dataknots/knotql/pipeline"
	"github.com/dataknots/knotql/query"
	"github.com/dataknots/knotql/shape"
	"github.com/dataknots/knotql/vector"
)

// Param is a named query parameter, addressable inside the query as
// It.Get(name).
type Param struct {
	Name  string
	Value interface{}
}

func P(name string, value interface{}) Param {
	return Param{Name: name, Value: value}
}

// Run assembles the query against the input's shape, optimizes the
// resulting pipeline, executes it over the input's cell and wraps the
// output as a new knot. Parameters are packed into a scope around the
// input first.
func Run(input DataKnot, q query.Query, params ...Param) (DataKnot, error) {
	rootShape := input.cellShape
	var rootVector vector.Vector = input.cell

	if len(params) > 0 {
		packedVector, packedShape, err := pack(input, params)
		if err != nil {
			return DataKnot{}, err
		}
		rootVector, rootShape = packedVector, packedShape
	}

	env := query.NewEnvironment()
	assembled, err := assembleCached(q, env, rootShape)
	if err != nil {
		return DataKnot{}, err
	}

	out, err := assembled.Run(rootVector)
	if err != nil {
		return DataKnot{}, errors.Wrap(err, "couldn't execute query")
	}

	block := assembled.Target().Storage().Block
	return DataKnot{
		cell:      out.(vector.Block),
		cellShape: shape.BlockOf(block.Inner, block.Card),
	}, nil
}

// Query runs a query over the knot with the index-syntax semantics:
// knot[q] is Run(knot, Each(q)).
func (k DataKnot) Query(q query.Query, params ...Param) (DataKnot, error) {
	return Run(k, query.Each(q), params...)
}

func assembleCached(q query.Query, env *query.Environment, root shape.Shape) (*pipeline.Pipeline, error) {
	key := ""
	if query.Cacheable(q) {
		key = q.String() + " | " + root.String()
		if cached, ok := cacheGet(key); ok {
			return cached, nil
		}
	}
	assembled, err := query.Assemble(q, env, root)
	if err != nil {
		return nil, err
	}
	optimized := pipeline.Optimize(query.Unscope(assembled))
	if key != "" {
		cacheSet(key, &optimized)
	}
	return &optimized, nil
}

// pack wraps the input cell and the parameter cells into the scope tuple
// the assembler's lookup expects: the subject in the first column, the
// parameter record in the second.
func pack(input DataKnot, params []Param) (vector.Vector, shape.Shape, error) {
	labels := make([]string, len(params))
	columns := make([]vector.Vector, len(params))
	columnShapes := make([]shape.Shape, len(params))
	for i, param := range params {
		knot, err := New(param.Value)
		if err != nil {
			return nil, shape.Shape{}, errors.Wrapf(err, "couldn't pack parameter %s", param.Name)
		}
		labels[i] = param.Name
		columns[i] = knot.cell
		columnShapes[i] = knot.cellShape
	}
	contextShape := shape.TupleOf(labels, columnShapes)
	packed := vector.Tuple{
		Length: 1,
		Columns: []vector.Vector{
			input.cell,
			vector.Tuple{Labels: labels, Length: 1, Columns: columns},
		},
	}
	packedShape := shape.ScopeOf(shape.TupleOf(nil, []shape.Shape{input.cellShape, contextShape}))
	return packed, packedShape, nil
}
