package query

import (
	"github.com/dataknots/knotql/functions"
	"github.com/dataknots/knotql/pipeline"
	"github.com/dataknots/knotql/shape"
)

// Environment carries the per-run assembly context. It's created fresh for
// every run and discarded afterwards.
type Environment struct {
	Functions map[string]functions.Details
}

func NewEnvironment() *Environment {
	return &Environment{Functions: functions.FunctionMap()}
}

// Assemble compiles a query against the root shape into a pipeline whose
// source is the root and whose target is the flow of the result elements.
// All type errors surface here, before any data is touched.
func Assemble(q Query, env *Environment, root shape.Shape) (pipeline.Pipeline, error) {
	p, err := cover(root)
	if err != nil {
		return pipeline.Pipeline{}, err
	}
	return assemble(q, env, p)
}

// Unscope drops a result flow's parameter scope, exposing plain subject
// elements. Hosts call it before extracting the result vector.
func Unscope(p pipeline.Pipeline) pipeline.Pipeline {
	return unscope(p)
}

// Cacheable reports whether the query's rendered form identifies it
// uniquely, making it safe to key an assembly cache on. Queries lifting
// opaque Go functions aren't, nor are constants other than nil, int and bool,
// whose %v rendering can coincide across types ("1", 1 and 1.0).
func Cacheable(q Query) bool {
	switch q.Kind {
	case KindLiftFn, KindKnotConst:
		return false
	case KindConst:
		switch q.Const.Native.(type) {
		case nil, int, bool:
			return true
		}
		return false
	case KindCompose:
		return Cacheable(q.Compose.Left) && Cacheable(q.Compose.Right)
	case KindApply:
		for _, arg := range q.Apply.Args {
			if !Cacheable(arg) {
				return false
			}
		}
		return true
	case KindRecord:
		for _, field := range q.Record.Fields {
			if !Cacheable(field) {
				return false
			}
		}
		return true
	case KindTag:
		return Cacheable(q.Tag.Inner)
	case KindEach:
		return Cacheable(q.Each.Inner)
	case KindFilter:
		return Cacheable(q.Filter.Predicate)
	case KindTake:
		return q.Take.Static || Cacheable(*q.Take.Arg)
	case KindAggregate:
		return q.Aggregate.Arg == nil || Cacheable(*q.Aggregate.Arg)
	case KindKeep:
		for _, binding := range q.Keep.Bindings {
			if !Cacheable(binding.Value) {
				return false
			}
		}
		return true
	case KindGiven:
		for _, binding := range q.Given.Bindings {
			if !Cacheable(binding.Value) {
				return false
			}
		}
		return Cacheable(q.Given.Body)
	}
	return true
}

// cover adapts the root shape into the initial flow: blocks are marked as
// the flow, a packed scope is distributed over the subject's elements, and
// plain values are wrapped.
func cover(root shape.Shape) (pipeline.Pipeline, error) {
	switch root.Storage().Kind {
	case shape.KindBlock:
		if root.StripLabel().Kind == shape.KindScope {
			panic("scope can't decorate a block root")
		}
		return flowed(pipeline.Pass(root).WithTarget(root.StripLabel())), nil

	case shape.KindTuple:
		if subject, context, ok := root.ScopeParts(); ok {
			subjectBlock := subject.Storage()
			if subjectBlock.Kind != shape.KindBlock {
				panic("packed scope subject must be a block")
			}
			d := pipeline.Distribute(root, 0)
			elem := shape.ScopeOf(shape.TupleOf(nil, []shape.Shape{subjectBlock.Block.Inner, context}))
			target := shape.FlowOf(shape.BlockOf(elem, subjectBlock.Block.Card))
			return d.WithTarget(target), nil
		}
		return coverStep(pipeline.Pass(root))

	default:
		return coverStep(pipeline.Pass(root))
	}
}

// elemCover is the identity flow over a single element shape: the root of
// every sub-assembly (record fields, lifted arguments, Each bodies).
func elemCover(elem shape.Shape) pipeline.Pipeline {
	return flowed(pipeline.Wrap(elem))
}

// coverStep turns a pipeline producing plain values into a flow-valued one:
// list values spread into plural blocks, null-admitting values into
// optional blocks, everything else wraps one-to-one. An outer label moves
// onto the element shape.
func coverStep(p pipeline.Pipeline) (pipeline.Pipeline, error) {
	target := p.Target()
	label := target.Label()
	inner := target.StripLabel()

	relabeledFlow := func(out pipeline.Pipeline) pipeline.Pipeline {
		block := out.Target().Storage().Block
		elem := block.Inner
		if label != "" {
			elem = elem.Relabel(label)
		}
		return out.WithTarget(shape.FlowOf(shape.BlockOf(elem, block.Card)))
	}

	switch inner.Kind {
	case shape.KindBlock:
		return relabeledFlow(p.WithTarget(inner)), nil
	case shape.KindValue:
		t := inner.Value.Type
		if t.TypeID == knotqlListID {
			return relabeledFlow(pipeline.ChainOf(p, pipeline.AdaptVector(target))), nil
		}
		if admitsNull(t) {
			return relabeledFlow(pipeline.ChainOf(p, pipeline.AdaptMissing(target))), nil
		}
		return relabeledFlow(pipeline.ChainOf(p, pipeline.Wrap(target))), nil
	default:
		return relabeledFlow(pipeline.ChainOf(p, pipeline.Wrap(target))), nil
	}
}

// stripFlow removes the flow decorator from a pipeline's target; the
// runtime layout is unchanged.
func stripFlow(p pipeline.Pipeline) pipeline.Pipeline {
	if p.Target().Kind == shape.KindFlow {
		return p.WithTarget(p.Target().Flow.Inner)
	}
	return p
}

// flowed marks a block-targeted pipeline as the current flow.
func flowed(p pipeline.Pipeline) pipeline.Pipeline {
	if p.Target().Kind == shape.KindFlow {
		return p
	}
	return p.WithTarget(shape.FlowOf(p.Target()))
}

func flowElem(p pipeline.Pipeline) shape.Shape {
	return p.Target().FlowElem()
}

// composeFlow appends a per-element step to the current flow: the step runs
// over the flow's elements and its output blocks are flattened in, widening
// the cardinality. A step built against the subject of a scoped element is
// realigned by threading the scope through it first.
func composeFlow(p, step pipeline.Pipeline) (pipeline.Pipeline, error) {
	elem := flowElem(p)
	if !shape.Fits(elem, step.Source()) {
		if subject, _, ok := elem.ScopeParts(); ok && shape.Fits(subject, step.Source()) {
			step = threadScope(step, elem)
		} else {
			return pipeline.Pipeline{}, newError(ErrorKindShapeMismatch,
				"couldn't compose: %s doesn't fit %s", elem, step.Source())
		}
	}
	if _, _, scoped := elem.ScopeParts(); scoped {
		if _, _, stepScoped := flowElem(step).ScopeParts(); !stepScoped {
			// Parameters stay in scope across the composition: the step's
			// output is re-paired with the context it came from.
			step = rescope(step, elem)
		}
	}
	base := stripFlow(p)
	inner := stripFlow(step)
	we := pipeline.WithElements(base.Target(), inner)
	fl := pipeline.Flatten(we.Target())
	return flowed(pipeline.ChainOf(base, we, fl)), nil
}

func assemble(q Query, env *Environment, p pipeline.Pipeline) (pipeline.Pipeline, error) {
	switch q.Kind {
	case KindIt:
		return p, nil

	case KindCompose:
		left, err := assemble(q.Compose.Left, env, p)
		if err != nil {
			return pipeline.Pipeline{}, err
		}
		return assemble(q.Compose.Right, env, left)

	case KindGet:
		step, err := getStep(flowElem(p), q.GetOp.Name)
		if err != nil {
			return pipeline.Pipeline{}, err
		}
		return composeFlow(p, step)

	case KindConst:
		step, err := constStep(flowElem(p), q.Const.Native)
		if err != nil {
			return pipeline.Pipeline{}, err
		}
		return composeFlow(p, step)

	case KindApply:
		step, err := applyStep(env, flowElem(p), q.Apply.Name, q.Apply.Args)
		if err != nil {
			return pipeline.Pipeline{}, err
		}
		return composeFlow(p, step)

	case KindLiftFn:
		step, err := liftFnStep(env, flowElem(p), q.LiftFn.Descriptor, q.LiftFn.Args)
		if err != nil {
			return pipeline.Pipeline{}, err
		}
		return composeFlow(p, step)

	case KindRecord:
		step, err := recordStep(env, flowElem(p), q.Record.Fields)
		if err != nil {
			return pipeline.Pipeline{}, err
		}
		return composeFlow(p, step)

	case KindLabel:
		block := p.Target().FlowBlock()
		elem := block.Inner.Relabel(q.Label.Name)
		return p.WithTarget(shape.FlowOf(shape.BlockOf(elem, block.Card))), nil

	case KindTag:
		return assemble(q.Tag.Inner, env, p)

	case KindEach:
		step, err := assemble(q.Each.Inner, env, elemCover(flowElem(p)))
		if err != nil {
			return pipeline.Pipeline{}, err
		}
		return composeFlow(p, step)

	case KindFilter:
		step, err := filterStep(env, flowElem(p), q.Filter.Predicate)
		if err != nil {
			return pipeline.Pipeline{}, err
		}
		return composeFlow(p, step)

	case KindTake:
		return takeStep(env, p, q.Take)

	case KindAggregate:
		if q.Aggregate.Arg == nil {
			// Suffix form: aggregate the incoming flow itself.
			return aggregateFlow(p, q.Aggregate.Fn)
		}
		elem := flowElem(p)
		sub, err := assemble(*q.Aggregate.Arg, env, elemCover(elem))
		if err != nil {
			return pipeline.Pipeline{}, err
		}
		step, err := aggregateFlow(sub, q.Aggregate.Fn)
		if err != nil {
			return pipeline.Pipeline{}, err
		}
		return composeFlow(p, step)

	case KindKeep:
		return keepStep(env, p, q.Keep.Bindings)

	case KindGiven:
		return givenStep(env, p, q.Given)

	case KindKnotConst:
		elem := flowElem(p)
		step := flowed(pipeline.BlockFiller(elem, q.KnotConst.Elements, q.KnotConst.Inner, q.KnotConst.Card))
		return composeFlow(p, step)
	}
	panic("unexhaustive query kind match")
}
