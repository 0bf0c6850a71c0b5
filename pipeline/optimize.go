package pipeline

// Optimize runs a fixed-point peephole pass over a pipeline chain. Every
// rewrite strictly shrinks the chain length or the nesting depth, so the
// loop terminates. Rewrites preserve the pipeline's observable semantics
// and its outer signature.
func Optimize(p Pipeline) Pipeline {
	sig := p.Sig
	steps := chainSteps(p)
	for {
		changed := false
		for i := range steps {
			if optimizeArgs(&steps[i]) {
				changed = true
			}
		}
		steps, changed = rewrite(steps, changed)
		if !changed {
			break
		}
	}
	out := rebuild(steps)
	out.Sig = sig
	return out
}

func chainSteps(p Pipeline) []Pipeline {
	if p.Op != OpChain {
		return []Pipeline{p}
	}
	var out []Pipeline
	for _, step := range p.Chain.Pipelines {
		out = append(out, chainSteps(step)...)
	}
	return out
}

func rebuild(steps []Pipeline) Pipeline {
	if len(steps) == 0 {
		return Pipeline{Op: OpPass}
	}
	return ChainOf(steps...)
}

// optimizeArgs recurses into a step's nested pipelines.
func optimizeArgs(p *Pipeline) bool {
	changed := false
	recurse := func(inner *Pipeline) *Pipeline {
		out := Optimize(*inner)
		if out.String() != inner.String() {
			changed = true
		}
		return &out
	}
	switch p.Op {
	case OpWithElements:
		p.WithElements.Inner = recurse(p.WithElements.Inner)
	case OpWithColumn:
		p.WithColumn.Inner = recurse(p.WithColumn.Inner)
	case OpTupleOf:
		for i := range p.TupleOf.Pipelines {
			p.TupleOf.Pipelines[i] = *recurse(&p.TupleOf.Pipelines[i])
		}
	}
	return changed
}

func isNoop(p Pipeline) bool {
	switch p.Op {
	case OpPass:
		return true
	case OpWithElements:
		return p.WithElements.Inner.Op == OpPass
	case OpWithColumn:
		return p.WithColumn.Inner.Op == OpPass
	}
	return false
}

func rewrite(steps []Pipeline, changed bool) ([]Pipeline, bool) {
	for k := 0; k < len(steps); k++ {
		// pass(), with_elements(pass()), with_column(_, pass())
		if isNoop(steps[k]) {
			steps = append(steps[:k], steps[k+1:]...)
			return steps, true
		}

		// with_elements(wrap()) . flatten()
		if k+1 < len(steps) &&
			steps[k].Op == OpWithElements && steps[k].WithElements.Inner.Op == OpWrap &&
			steps[k+1].Op == OpFlatten {
			steps = append(steps[:k], steps[k+2:]...)
			return steps, true
		}

		// wrap() . with_elements(p) . flatten()  =>  p
		if k+2 < len(steps) &&
			steps[k].Op == OpWrap &&
			steps[k+1].Op == OpWithElements &&
			steps[k+2].Op == OpFlatten {
			inner := *steps[k+1].WithElements.Inner
			spliced := append([]Pipeline{}, steps[:k]...)
			spliced = append(spliced, chainSteps(inner)...)
			spliced = append(spliced, steps[k+3:]...)
			return spliced, true
		}

		// with_elements(p) . flatten() . with_elements(q)
		//   =>  with_elements(chain_of(p, with_elements(q))) . flatten()
		if k+2 < len(steps) &&
			steps[k].Op == OpWithElements &&
			steps[k+1].Op == OpFlatten &&
			steps[k+2].Op == OpWithElements {
			p := *steps[k].WithElements.Inner
			q := *steps[k+2].WithElements.Inner
			inner := ChainOf(p, WithElements(p.Sig.Target, q))
			merged := WithElements(steps[k].Sig.Source, inner)
			flatten := Flatten(merged.Sig.Target)
			spliced := append([]Pipeline{}, steps[:k]...)
			spliced = append(spliced, merged, flatten)
			spliced = append(spliced, steps[k+3:]...)
			return spliced, true
		}

		// tuple_of(_, ps) . column(i)  =>  ps[i]
		if k+1 < len(steps) &&
			steps[k].Op == OpTupleOf &&
			steps[k+1].Op == OpColumn {
			inner := steps[k].TupleOf.Pipelines[steps[k+1].Column.Index]
			spliced := append([]Pipeline{}, steps[:k]...)
			spliced = append(spliced, chainSteps(inner)...)
			spliced = append(spliced, steps[k+2:]...)
			return spliced, true
		}

		// with_elements(p) . with_elements(q)  =>  with_elements(chain_of(p, q))
		if k+1 < len(steps) &&
			steps[k].Op == OpWithElements &&
			steps[k+1].Op == OpWithElements {
			inner := ChainOf(*steps[k].WithElements.Inner, *steps[k+1].WithElements.Inner)
			merged := WithElements(steps[k].Sig.Source, inner)
			spliced := append([]Pipeline{}, steps[:k]...)
			spliced = append(spliced, merged)
			spliced = append(spliced, steps[k+2:]...)
			return spliced, true
		}
	}
	return steps, changed
}
