package query

import (
	"github.com/dataknots/knotql/pipeline"
	"github.com/dataknots/knotql/shape"
)

// unscope projects the subject out of a scoped flow, leaving plain
// elements. Pipelines consuming raw values (lifted functions, predicates,
// aggregates, the final result extraction) go through here.
func unscope(p pipeline.Pipeline) pipeline.Pipeline {
	elem := flowElem(p)
	subject, _, ok := elem.ScopeParts()
	if !ok {
		return p
	}
	base := stripFlow(p)
	project := pipeline.Column(elem, 0, "").WithTarget(subject)
	we := pipeline.WithElements(base.Target(), project)
	return flowed(pipeline.ChainOf(base, we))
}

// threadScope realigns a step built against the subject of a scoped element
// so the context travels along: the step runs inside the subject column and
// the result block is distributed back over the context.
func threadScope(step pipeline.Pipeline, elem shape.Shape) pipeline.Pipeline {
	_, context, ok := elem.ScopeParts()
	if !ok {
		panic("threading scope through an unscoped element")
	}
	inner := stripFlow(step)
	withSubject := pipeline.WithColumn(elem, 0, inner)
	distributed := pipeline.Distribute(withSubject.Target(), 0)

	stepBlock := inner.Target().Storage().Block
	newElem := shape.ScopeOf(shape.TupleOf(nil, []shape.Shape{stepBlock.Inner, context}))
	target := shape.FlowOf(shape.BlockOf(newElem, stepBlock.Card))
	return pipeline.ChainOf(withSubject, distributed).WithTarget(target).WithSource(elem)
}

// keepStep extends the scope with one binding after another. Each binding's
// block joins the context record, replacing any prior binding of the same
// name, and the output is a one-to-one flow of scoped elements.
func keepStep(env *Environment, p pipeline.Pipeline, bindings []Binding) (pipeline.Pipeline, error) {
	for _, binding := range bindings {
		elem := flowElem(p)
		assembled, err := assemble(binding.Value, env, elemCover(elem))
		if err != nil {
			return pipeline.Pipeline{}, err
		}
		bound := stripFlow(unscope(assembled))

		var columnPipes []pipeline.Pipeline
		var labels []string
		subjectPipe := pipeline.Pass(elem)
		subjectShape := elem
		if subject, context, ok := elem.ScopeParts(); ok {
			subjectShape = subject
			subjectPipe = pipeline.Column(elem, 0, "").WithTarget(subject)
			contextTuple := context.Storage().Tuple
			for j := range contextTuple.Columns {
				if contextTuple.Labels[j] == binding.Name {
					continue
				}
				labels = append(labels, contextTuple.Labels[j])
				columnPipes = append(columnPipes, pipeline.ChainOf(
					pipeline.Column(elem, 1, ""),
					pipeline.Column(context, j, contextTuple.Labels[j]),
				))
			}
		}
		labels = append(labels, binding.Name)
		columnPipes = append(columnPipes, bound)

		contextPipe := pipeline.TupleOf(elem, labels, columnPipes)
		pair := pipeline.TupleOf(elem, nil, []pipeline.Pipeline{subjectPipe, contextPipe})
		wrapped := pipeline.ChainOf(pair, pipeline.Wrap(pair.Target()))

		newElem := shape.ScopeOf(shape.TupleOf(nil, []shape.Shape{subjectShape, contextPipe.Target()}))
		step := wrapped.WithTarget(shape.FlowOf(shape.BlockOf(newElem, shape.X1To1)))

		p, err = composeFlow(p, step)
		if err != nil {
			return pipeline.Pipeline{}, err
		}
	}
	return p, nil
}

// rescope re-pairs a step's output with the context of the scoped element
// it ran over, so parameters survive the composition.
func rescope(step pipeline.Pipeline, elem shape.Shape) pipeline.Pipeline {
	_, context, ok := elem.ScopeParts()
	if !ok {
		panic("rescoping over an unscoped element")
	}
	inner := stripFlow(step)
	contextColumn := pipeline.Column(elem, 1, "").WithTarget(context)
	tuple := pipeline.TupleOf(elem, nil, []pipeline.Pipeline{inner, contextColumn})
	distributed := pipeline.Distribute(tuple.Target(), 0)

	stepBlock := inner.Target().Storage().Block
	newElem := shape.ScopeOf(shape.TupleOf(nil, []shape.Shape{stepBlock.Inner, context}))
	target := shape.FlowOf(shape.BlockOf(newElem, stepBlock.Card))
	return pipeline.ChainOf(tuple, distributed).WithTarget(target).WithSource(elem)
}

// givenStep runs the bindings and the body as one step over the incoming
// elements, then drops the extended scope, so the surrounding context (if
// any) is restored by the enclosing composition.
func givenStep(env *Environment, p pipeline.Pipeline, op *GivenOp) (pipeline.Pipeline, error) {
	base := elemCover(flowElem(p))
	kept, err := keepStep(env, base, op.Bindings)
	if err != nil {
		return pipeline.Pipeline{}, err
	}
	body, err := assemble(op.Body, env, elemCover(flowElem(kept)))
	if err != nil {
		return pipeline.Pipeline{}, err
	}
	inner, err := composeFlow(kept, body)
	if err != nil {
		return pipeline.Pipeline{}, err
	}
	return composeFlow(p, unscope(inner))
}
