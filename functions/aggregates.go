package functions

import (
	"fmt"

	"github.com/dataknots/knotql/knotql"
)

// Aggregate kernels consume a whole block's values and produce one scalar.
// They back the block-lifted forms of Sum, Min and Max.

func Sum(values []knotql.Value) (knotql.Value, error) {
	intSum := 0
	floatSum := 0.0
	isFloat := false
	for i := range values {
		switch values[i].Type.TypeID {
		case knotql.TypeIDInt:
			intSum += values[i].Int
		case knotql.TypeIDFloat:
			isFloat = true
			floatSum += values[i].Float
		default:
			return knotql.ZeroValue, fmt.Errorf("can't sum value of type %s", values[i].Type)
		}
	}
	if isFloat {
		return knotql.NewFloat(floatSum + float64(intSum)), nil
	}
	return knotql.NewInt(intSum), nil
}

func Min(values []knotql.Value) (knotql.Value, error) {
	if len(values) == 0 {
		return knotql.ZeroValue, fmt.Errorf("min of an empty block")
	}
	out := values[0]
	for _, v := range values[1:] {
		if v.Compare(out) < 0 {
			out = v
		}
	}
	return out, nil
}

func Max(values []knotql.Value) (knotql.Value, error) {
	if len(values) == 0 {
		return knotql.ZeroValue, fmt.Errorf("max of an empty block")
	}
	out := values[0]
	for _, v := range values[1:] {
		if v.Compare(out) > 0 {
			out = v
		}
	}
	return out, nil
}

// SumOutputType infers the output type of Sum for a given element type.
func SumOutputType(element knotql.Type) knotql.Type {
	if element.TypeID == knotql.TypeIDFloat {
		return knotql.Float
	}
	if element.TypeID == knotql.TypeIDInt {
		return knotql.Int
	}
	return knotql.TypeSum(knotql.Int, knotql.Float)
}
