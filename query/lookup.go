package query

import (
	"strings"

	"github.com/dataknots/knotql/knotql"
	"github.com/dataknots/knotql/pipeline"
	"github.com/dataknots/knotql/shape"
)

// getStep resolves a name against the current element shape. The context
// side of a scope is searched first, then the subject; tuples are searched
// by label with ordinal fallbacks; struct-valued scalars are adapted into
// tuples on the fly.
func getStep(elem shape.Shape, name string) (pipeline.Pipeline, error) {
	stripped := elem.StripLabel()

	switch stripped.Kind {
	case shape.KindScope:
		subject, context, _ := elem.ScopeParts()
		contextTuple := context.Storage().Tuple
		if j, ok := contextTuple.ColumnIndex(name); ok {
			p := pipeline.ChainOf(
				pipeline.Column(elem, 1, ""),
				pipeline.Column(context, j, name),
			)
			return coverStep(p.WithTarget(p.Target().Relabel(name)))
		}
		step, err := getStep(subject, name)
		if err != nil {
			if typed, ok := err.(*Error); ok && typed.Kind == ErrorKindUnknownName {
				return pipeline.Pipeline{}, newError(ErrorKindMissingParameter,
					"name %s is neither a field nor a supplied parameter", name)
			}
			return pipeline.Pipeline{}, err
		}
		// The step addresses the subject; composition threads the scope.
		return step, nil

	case shape.KindTuple:
		j, ok := stripped.Tuple.ColumnIndex(name)
		if !ok {
			return pipeline.Pipeline{}, newError(ErrorKindUnknownName,
				"unknown name %s, available names: %s", name, availableNames(stripped.Tuple))
		}
		p := pipeline.Column(elem, j, name)
		return coverStep(p.WithTarget(p.Target().Relabel(name)))

	case shape.KindValue:
		if stripped.Value.Type.TypeID == knotql.TypeIDStruct {
			adapted := pipeline.AdaptTuple(elem)
			tuple := adapted.Target().Storage().Tuple
			j, ok := tuple.ColumnIndex(name)
			if !ok {
				return pipeline.Pipeline{}, newError(ErrorKindUnknownName,
					"unknown name %s, available names: %s", name, availableNames(tuple))
			}
			column := pipeline.Column(adapted.Target(), j, name)
			p := pipeline.ChainOf(adapted, column)
			return coverStep(p.WithTarget(p.Target().Relabel(name)))
		}
		return pipeline.Pipeline{}, newError(ErrorKindUnknownName,
			"unknown name %s: %s has no fields", name, stripped)

	default:
		return pipeline.Pipeline{}, newError(ErrorKindUnknownName,
			"unknown name %s: %s has no fields", name, stripped)
	}
}

func availableNames(tuple *shape.TupleShape) string {
	var names []string
	for i := range tuple.Columns {
		if i < len(tuple.Labels) && tuple.Labels[i] != "" {
			names = append(names, tuple.Labels[i])
		} else if label := tuple.Columns[i].Label(); label != "" {
			names = append(names, label)
		} else {
			names = append(names, shape.OrdinalLabel(i))
		}
	}
	return strings.Join(names, ", ")
}
