package query

import (
	"github.com/pkg/errors"

	"github.com/dataknots/knotql/functions"
	"github.com/dataknots/knotql/knotql"
	"github.com/dataknots/knotql/pipeline"
	"github.com/dataknots/knotql/shape"
)

const knotqlListID = knotql.TypeIDList

func admitsNull(t knotql.Type) bool {
	if t.TypeID == knotql.TypeIDNull {
		return true
	}
	if t.TypeID == knotql.TypeIDUnion {
		for _, alternative := range t.Union.Alternatives {
			if alternative.TypeID == knotql.TypeIDNull {
				return true
			}
		}
	}
	return false
}

// constStep lifts a plain Go value into a constant step over the current
// element: scalars become regular blocks, slices plural blocks, nil an
// empty optional block.
func constStep(elem shape.Shape, native interface{}) (pipeline.Pipeline, error) {
	value, err := knotql.NewFromNative(native)
	if err != nil {
		return pipeline.Pipeline{}, errors.Wrap(err, "couldn't lift constant")
	}
	if value.IsNull() {
		return flowed(pipeline.NullFiller(elem)), nil
	}
	return coverStep(pipeline.Filler(elem, value))
}

// scalarArg assembles one lifted-function argument against the current
// element, drops any scope it carries and exposes the raw block.
func scalarArg(env *Environment, elem shape.Shape, arg Query) (pipeline.Pipeline, error) {
	p, err := assemble(arg, env, elemCover(elem))
	if err != nil {
		return pipeline.Pipeline{}, err
	}
	return stripFlow(unscope(p)), nil
}

// argValueType extracts the scalar type of an argument block's elements.
func argValueType(block pipeline.Pipeline) (knotql.Type, error) {
	inner := block.Target().Storage().Block.Inner.StripLabel()
	if inner.Kind != shape.KindValue {
		return knotql.Type{}, newError(ErrorKindShapeMismatch,
			"can't apply a function to a non-scalar argument of shape %s", inner)
	}
	return inner.Value.Type, nil
}

// firstOfBlock exposes the single element of a one-to-one block.
func firstOfBlock(block pipeline.Pipeline, elementType knotql.Type) pipeline.Pipeline {
	first := func(values []knotql.Value) (knotql.Value, error) {
		return values[0], nil
	}
	return pipeline.ChainOf(block, pipeline.BlockLift(block.Target(), first, elementType))
}

func applyStep(env *Environment, elem shape.Shape, name string, args []Query) (pipeline.Pipeline, error) {
	details, ok := env.Functions[name]
	if !ok {
		return pipeline.Pipeline{}, newError(ErrorKindFunctionResolution,
			"unknown function %s", name)
	}
	return liftStep(env, elem, func(argTypes []knotql.Type) (functions.Descriptor, bool) {
		return details.Resolve(argTypes)
	}, name, args)
}

func liftFnStep(env *Environment, elem shape.Shape, descriptor functions.Descriptor, args []Query) (pipeline.Pipeline, error) {
	details := functions.Details{Descriptors: []functions.Descriptor{descriptor}}
	return liftStep(env, elem, func(argTypes []knotql.Type) (functions.Descriptor, bool) {
		return details.Resolve(argTypes)
	}, "lifted function", args)
}

// liftStep builds the vectorized application of a scalar function over
// assembled argument queries. A single plural argument resolves against a
// list overload and block-lifts; otherwise arguments apply elementwise,
// preserving each block's structure.
func liftStep(env *Environment, elem shape.Shape, resolve func([]knotql.Type) (functions.Descriptor, bool), name string, args []Query) (pipeline.Pipeline, error) {
	if len(args) == 0 {
		return pipeline.Pipeline{}, newError(ErrorKindFunctionResolution,
			"%s needs at least one argument", name)
	}

	blocks := make([]pipeline.Pipeline, len(args))
	argTypes := make([]knotql.Type, len(args))
	for i := range args {
		block, err := scalarArg(env, elem, args[i])
		if err != nil {
			return pipeline.Pipeline{}, err
		}
		t, err := argValueType(block)
		if err != nil {
			return pipeline.Pipeline{}, err
		}
		blocks[i] = block
		argTypes[i] = t
	}

	if len(args) == 1 {
		block := blocks[0]
		card := block.Target().Storage().Block.Card
		if card.IsPlural() {
			// A plural argument feeds the whole block to a list overload
			// when one exists.
			if descriptor, ok := resolve([]knotql.Type{knotql.ListOf(argTypes[0])}); ok {
				fn := descriptor.Function
				blockFn := func(values []knotql.Value) (knotql.Value, error) {
					return fn([]knotql.Value{knotql.NewList(append([]knotql.Value{}, values...))})
				}
				lifted := pipeline.BlockLift(block.Target(), blockFn, descriptor.OutputType)
				return coverStep(pipeline.ChainOf(block, lifted))
			}
		}
		descriptor, ok := resolve(argTypes)
		if !ok {
			return pipeline.Pipeline{}, newError(ErrorKindFunctionResolution,
				"%s doesn't accept an argument of type %s", name, argTypes[0])
		}
		lifted := pipeline.Lift(block.Target().Storage().Block.Inner, descriptor.Function, descriptor.OutputType)
		out := pipeline.ChainOf(block, pipeline.WithElements(block.Target(), lifted))
		return flowed(out), nil
	}

	descriptor, ok := resolve(argTypes)
	if !ok {
		return pipeline.Pipeline{}, newError(ErrorKindFunctionResolution,
			"%s doesn't accept arguments of types %s", name, typeList(argTypes))
	}
	columns := make([]pipeline.Pipeline, len(args))
	for i := range blocks {
		card := blocks[i].Target().Storage().Block.Card
		if !card.Fits(shape.X1To1) {
			return pipeline.Pipeline{}, newError(ErrorKindShapeMismatch,
				"expected a singular mandatory argument, got one with cardinality %s", card)
		}
		columns[i] = firstOfBlock(blocks[i], argTypes[i])
	}
	tuple := pipeline.TupleOf(elem, nil, columns)
	lifted := pipeline.TupleLift(tuple.Target(), descriptor.Function, descriptor.OutputType)
	return coverStep(pipeline.ChainOf(tuple, lifted))
}

func typeList(types []knotql.Type) string {
	out := ""
	for i, t := range types {
		if i != 0 {
			out += ", "
		}
		out += t.String()
	}
	return out
}
