package functions

import (
	"fmt"
	"strings"

	"github.com/dataknots/knotql/knotql"
)

// Descriptor is one typed overload of a scalar function.
type Descriptor struct {
	ArgumentTypes []knotql.Type
	OutputType    knotql.Type
	// Strict overloads reject null arguments during resolution.
	Strict   bool
	Function func(values []knotql.Value) (knotql.Value, error)
}

type Details struct {
	Description string
	Descriptors []Descriptor
}

// Resolve picks the first overload accepting the given argument types.
func (d Details) Resolve(argTypes []knotql.Type) (Descriptor, bool) {
descriptors:
	for _, descriptor := range d.Descriptors {
		if len(descriptor.ArgumentTypes) != len(argTypes) {
			continue
		}
		for i := range argTypes {
			if descriptor.Strict && argTypes[i].TypeID == knotql.TypeIDNull {
				continue descriptors
			}
			if argTypes[i].Is(descriptor.ArgumentTypes[i]) != knotql.TypeRelationIs {
				continue descriptors
			}
		}
		return descriptor, true
	}
	return Descriptor{}, false
}

func comparison(name string, accept func(int) bool) Details {
	return Details{
		Description: fmt.Sprintf("comparison %s", name),
		Descriptors: []Descriptor{
			{
				ArgumentTypes: []knotql.Type{knotql.Any, knotql.Any},
				OutputType:    knotql.Boolean,
				Strict:        true,
				Function: func(values []knotql.Value) (knotql.Value, error) {
					return knotql.NewBoolean(accept(values[0].Compare(values[1]))), nil
				},
			},
		},
	}
}

func arithmetic(name string, intFn func(a, b int) (int, error), floatFn func(a, b float64) (float64, error)) Details {
	return Details{
		Description: fmt.Sprintf("arithmetic %s", name),
		Descriptors: []Descriptor{
			{
				ArgumentTypes: []knotql.Type{knotql.Int, knotql.Int},
				OutputType:    knotql.Int,
				Strict:        true,
				Function: func(values []knotql.Value) (knotql.Value, error) {
					out, err := intFn(values[0].Int, values[1].Int)
					if err != nil {
						return knotql.ZeroValue, err
					}
					return knotql.NewInt(out), nil
				},
			},
			{
				ArgumentTypes: []knotql.Type{knotql.Float, knotql.Float},
				OutputType:    knotql.Float,
				Strict:        true,
				Function: func(values []knotql.Value) (knotql.Value, error) {
					out, err := floatFn(values[0].Float, values[1].Float)
					if err != nil {
						return knotql.ZeroValue, err
					}
					return knotql.NewFloat(out), nil
				},
			},
		},
	}
}

// FunctionMap is the built-in scalar function registry.
func FunctionMap() map[string]Details {
	return map[string]Details{
		"=":  comparison("=", func(c int) bool { return c == 0 }),
		"!=": comparison("!=", func(c int) bool { return c != 0 }),
		"<":  comparison("<", func(c int) bool { return c < 0 }),
		"<=": comparison("<=", func(c int) bool { return c <= 0 }),
		">":  comparison(">", func(c int) bool { return c > 0 }),
		">=": comparison(">=", func(c int) bool { return c >= 0 }),

		"+": {
			Description: "addition",
			Descriptors: append(
				arithmetic("+",
					func(a, b int) (int, error) { return a + b, nil },
					func(a, b float64) (float64, error) { return a + b, nil },
				).Descriptors,
				Descriptor{
					ArgumentTypes: []knotql.Type{knotql.String, knotql.String},
					OutputType:    knotql.String,
					Strict:        true,
					Function: func(values []knotql.Value) (knotql.Value, error) {
						return knotql.NewString(values[0].Str + values[1].Str), nil
					},
				},
			),
		},
		"-": arithmetic("-",
			func(a, b int) (int, error) { return a - b, nil },
			func(a, b float64) (float64, error) { return a - b, nil },
		),
		"*": arithmetic("*",
			func(a, b int) (int, error) { return a * b, nil },
			func(a, b float64) (float64, error) { return a * b, nil },
		),
		"/": arithmetic("/",
			func(a, b int) (int, error) {
				if b == 0 {
					return 0, fmt.Errorf("division by zero")
				}
				return a / b, nil
			},
			func(a, b float64) (float64, error) { return a / b, nil },
		),
		"mod": arithmetic("mod",
			func(a, b int) (int, error) {
				if b == 0 {
					return 0, fmt.Errorf("modulo by zero")
				}
				return a % b, nil
			},
			func(a, b float64) (float64, error) {
				return 0, fmt.Errorf("mod is integer-only")
			},
		),

		"and": {
			Description: "boolean conjunction",
			Descriptors: []Descriptor{
				{
					ArgumentTypes: []knotql.Type{knotql.Boolean, knotql.Boolean},
					OutputType:    knotql.Boolean,
					Strict:        true,
					Function: func(values []knotql.Value) (knotql.Value, error) {
						return knotql.NewBoolean(values[0].Boolean && values[1].Boolean), nil
					},
				},
			},
		},
		"or": {
			Description: "boolean disjunction",
			Descriptors: []Descriptor{
				{
					ArgumentTypes: []knotql.Type{knotql.Boolean, knotql.Boolean},
					OutputType:    knotql.Boolean,
					Strict:        true,
					Function: func(values []knotql.Value) (knotql.Value, error) {
						return knotql.NewBoolean(values[0].Boolean || values[1].Boolean), nil
					},
				},
			},
		},
		"not": {
			Description: "boolean negation",
			Descriptors: []Descriptor{
				{
					ArgumentTypes: []knotql.Type{knotql.Boolean},
					OutputType:    knotql.Boolean,
					Strict:        true,
					Function: func(values []knotql.Value) (knotql.Value, error) {
						return knotql.NewBoolean(!values[0].Boolean), nil
					},
				},
			},
		},

		"abs": {
			Description: "absolute value",
			Descriptors: []Descriptor{
				{
					ArgumentTypes: []knotql.Type{knotql.Int},
					OutputType:    knotql.Int,
					Strict:        true,
					Function: func(values []knotql.Value) (knotql.Value, error) {
						if values[0].Int < 0 {
							return knotql.NewInt(-values[0].Int), nil
						}
						return values[0], nil
					},
				},
			},
		},
		"isodd": {
			Description: "integer parity",
			Descriptors: []Descriptor{
				{
					ArgumentTypes: []knotql.Type{knotql.Int},
					OutputType:    knotql.Boolean,
					Strict:        true,
					Function: func(values []knotql.Value) (knotql.Value, error) {
						return knotql.NewBoolean(values[0].Int%2 != 0), nil
					},
				},
			},
		},
		"iseven": {
			Description: "integer parity",
			Descriptors: []Descriptor{
				{
					ArgumentTypes: []knotql.Type{knotql.Int},
					OutputType:    knotql.Boolean,
					Strict:        true,
					Function: func(values []knotql.Value) (knotql.Value, error) {
						return knotql.NewBoolean(values[0].Int%2 == 0), nil
					},
				},
			},
		},

		"upper": {
			Description: "uppercase a string",
			Descriptors: []Descriptor{
				{
					ArgumentTypes: []knotql.Type{knotql.String},
					OutputType:    knotql.String,
					Strict:        true,
					Function: func(values []knotql.Value) (knotql.Value, error) {
						return knotql.NewString(strings.ToUpper(values[0].Str)), nil
					},
				},
			},
		},
		"lower": {
			Description: "lowercase a string",
			Descriptors: []Descriptor{
				{
					ArgumentTypes: []knotql.Type{knotql.String},
					OutputType:    knotql.String,
					Strict:        true,
					Function: func(values []knotql.Value) (knotql.Value, error) {
						return knotql.NewString(strings.ToLower(values[0].Str)), nil
					},
				},
			},
		},
		"length": {
			Description: "string length",
			Descriptors: []Descriptor{
				{
					ArgumentTypes: []knotql.Type{knotql.String},
					OutputType:    knotql.Int,
					Strict:        true,
					Function: func(values []knotql.Value) (knotql.Value, error) {
						return knotql.NewInt(len([]rune(values[0].Str))), nil
					},
				},
			},
		},
	}
}
