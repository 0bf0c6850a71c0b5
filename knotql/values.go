package knotql

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var ZeroValue = Value{}

// Value is a concrete scalar instance. The Type always describes the actual
// runtime variant, never a union.
type Value struct {
	Type        Type
	Int         int
	Float       float64
	Boolean     bool
	Str         string
	Time        time.Time
	List        []Value
	FieldValues []Value
}

func NewNull() Value {
	return Value{Type: Null}
}

func NewInt(value int) Value {
	return Value{Type: Int, Int: value}
}

func NewFloat(value float64) Value {
	return Value{Type: Float, Float: value}
}

func NewBoolean(value bool) Value {
	return Value{Type: Boolean, Boolean: value}
}

func NewString(value string) Value {
	return Value{Type: String, Str: value}
}

func NewTime(value time.Time) Value {
	return Value{Type: Time, Time: value}
}

func NewList(values []Value) Value {
	elementType := Null
	if len(values) > 0 {
		elementType = values[0].Type
		for _, v := range values[1:] {
			elementType = TypeSum(elementType, v.Type)
		}
	}
	return Value{Type: ListOf(elementType), List: values}
}

func NewStruct(names []string, values []Value) Value {
	fields := make([]StructField, len(values))
	for i := range values {
		fields[i] = StructField{Name: names[i], Type: values[i].Type}
	}
	return Value{Type: StructOf(fields), FieldValues: values}
}

func (value Value) IsNull() bool {
	return value.Type.TypeID == TypeIDNull
}

// Compare orders values totally: values of different runtime kinds order by
// type id, so sorting stays well-defined across union-typed columns.
func (value Value) Compare(other Value) int {
	if value.Type.TypeID != other.Type.TypeID {
		return compareOrdered(int(value.Type.TypeID), int(other.Type.TypeID))
	}

	switch value.Type.TypeID {
	case TypeIDNull:
		return 0
	case TypeIDInt:
		return compareOrdered(value.Int, other.Int)
	case TypeIDFloat:
		return compareOrdered(value.Float, other.Float)
	case TypeIDBoolean:
		return compareOrdered(boolRank(value.Boolean), boolRank(other.Boolean))
	case TypeIDString:
		return strings.Compare(value.Str, other.Str)
	case TypeIDTime:
		switch {
		case value.Time.Before(other.Time):
			return -1
		case value.Time.After(other.Time):
			return 1
		}
		return 0
	case TypeIDList:
		return compareValueSlices(value.List, other.List)
	case TypeIDStruct:
		return compareValueSlices(value.FieldValues, other.FieldValues)
	case TypeIDUnion:
		panic("can't have union type as concrete value instance")
	default:
		panic("unexhaustive type id match")
	}
}

func compareOrdered[T int | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// compareValueSlices orders lexicographically, shorter prefix first.
func compareValueSlices(a, b []Value) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if comp := a[i].Compare(b[i]); comp != 0 {
			return comp
		}
	}
	return compareOrdered(len(a), len(b))
}

func (value Value) String() string {
	switch value.Type.TypeID {
	case TypeIDNull:
		return "null"
	case TypeIDInt:
		return strconv.Itoa(value.Int)
	case TypeIDFloat:
		return strconv.FormatFloat(value.Float, 'g', -1, 64)
	case TypeIDBoolean:
		return strconv.FormatBool(value.Boolean)
	case TypeIDString:
		return "'" + value.Str + "'"
	case TypeIDTime:
		return value.Time.Format(time.RFC3339)
	case TypeIDList:
		parts := make([]string, len(value.List))
		for i := range value.List {
			parts[i] = value.List[i].String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TypeIDStruct:
		parts := make([]string, len(value.FieldValues))
		for i := range value.FieldValues {
			parts[i] = value.Type.Struct.Fields[i].Name + ": " + value.FieldValues[i].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case TypeIDUnion:
		panic("can't have union type as concrete value instance")
	default:
		panic("unexhaustive type id match")
	}
}

func (value Value) ToNative() interface{} {
	switch value.Type.TypeID {
	case TypeIDNull:
		return nil
	case TypeIDInt:
		return value.Int
	case TypeIDFloat:
		return value.Float
	case TypeIDBoolean:
		return value.Boolean
	case TypeIDString:
		return value.Str
	case TypeIDTime:
		return value.Time
	case TypeIDList:
		out := make([]interface{}, len(value.List))
		for i := range value.List {
			out[i] = value.List[i].ToNative()
		}
		return out
	case TypeIDStruct:
		out := make(map[string]interface{}, len(value.FieldValues))
		for i := range value.FieldValues {
			out[value.Type.Struct.Fields[i].Name] = value.FieldValues[i].ToNative()
		}
		return out
	default:
		panic("unexhaustive type id match")
	}
}

// NewFromNative converts a plain Go value into a Value. Maps come out as
// structs with their keys sorted, so the result is deterministic.
func NewFromNative(native interface{}) (Value, error) {
	switch typed := native.(type) {
	case nil:
		return NewNull(), nil
	case int:
		return NewInt(typed), nil
	case int64:
		return NewInt(int(typed)), nil
	case float64:
		return NewFloat(typed), nil
	case bool:
		return NewBoolean(typed), nil
	case string:
		return NewString(typed), nil
	case time.Time:
		return NewTime(typed), nil
	case Value:
		return typed, nil
	case []interface{}:
		values := make([]Value, len(typed))
		for i := range typed {
			v, err := NewFromNative(typed[i])
			if err != nil {
				return ZeroValue, fmt.Errorf("couldn't convert list element with index %d: %w", i, err)
			}
			values[i] = v
		}
		return NewList(values), nil
	case []int:
		values := make([]Value, len(typed))
		for i := range typed {
			values[i] = NewInt(typed[i])
		}
		return NewList(values), nil
	case []string:
		values := make([]Value, len(typed))
		for i := range typed {
			values[i] = NewString(typed[i])
		}
		return NewList(values), nil
	case []float64:
		values := make([]Value, len(typed))
		for i := range typed {
			values[i] = NewFloat(typed[i])
		}
		return NewList(values), nil
	case map[string]interface{}:
		names := make([]string, 0, len(typed))
		for name := range typed {
			names = append(names, name)
		}
		sort.Strings(names)
		values := make([]Value, len(names))
		for i, name := range names {
			v, err := NewFromNative(typed[name])
			if err != nil {
				return ZeroValue, fmt.Errorf("couldn't convert field %s: %w", name, err)
			}
			values[i] = v
		}
		return NewStruct(names, values), nil
	default:
		return ZeroValue, fmt.Errorf("unsupported native value of type %T", native)
	}
}
