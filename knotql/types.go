package knotql

import (
	"fmt"
	"strings"
)

type TypeID int

const (
	TypeIDNull TypeID = iota
	TypeIDInt
	TypeIDFloat
	TypeIDBoolean
	TypeIDString
	TypeIDTime
	TypeIDList
	TypeIDStruct
	TypeIDUnion
	TypeIDAny
)

type Type struct {
	TypeID TypeID
	List   struct {
		Element *Type
	}
	Struct struct {
		Fields []StructField
	}
	Union struct {
		Alternatives []Type
	}
}

type StructField struct {
	Name string
	Type Type
}

var (
	Null    = Type{TypeID: TypeIDNull}
	Int     = Type{TypeID: TypeIDInt}
	Float   = Type{TypeID: TypeIDFloat}
	Boolean = Type{TypeID: TypeIDBoolean}
	String  = Type{TypeID: TypeIDString}
	Time    = Type{TypeID: TypeIDTime}
	Any     = Type{TypeID: TypeIDAny}
)

func ListOf(element Type) Type {
	out := Type{TypeID: TypeIDList}
	out.List.Element = &element
	return out
}

func StructOf(fields []StructField) Type {
	out := Type{TypeID: TypeIDStruct}
	out.Struct.Fields = fields
	return out
}

type TypeRelation int

const (
	TypeRelationIsnt TypeRelation = iota
	TypeRelationMaybe
	TypeRelationIs
)

// Is describes whether a value of type t can be used where a value of type
// other is expected. Union sources fit as well as their worst alternative
// (and maybe-fit when at least one alternative does); union targets accept
// a type as well as their best alternative.
func (t Type) Is(other Type) TypeRelation {
	if t.TypeID == TypeIDUnion {
		worst := TypeRelationIs
		best := TypeRelationIsnt
		for _, alternative := range t.Union.Alternatives {
			rel := alternative.Is(other)
			if rel < worst {
				worst = rel
			}
			if rel > best {
				best = rel
			}
		}
		if worst == TypeRelationIsnt && best > TypeRelationIsnt {
			return TypeRelationMaybe
		}
		return worst
	}

	switch other.TypeID {
	case TypeIDAny:
		return TypeRelationIs
	case TypeIDUnion:
		best := TypeRelationIsnt
		for _, alternative := range other.Union.Alternatives {
			if rel := t.Is(alternative); rel > best {
				best = rel
			}
		}
		return best
	}

	if t.TypeID != other.TypeID {
		return TypeRelationIsnt
	}
	switch t.TypeID {
	case TypeIDList:
		// Element relations don't soften to maybe: list storage is reused
		// as-is, so the element type has to fit outright.
		if t.List.Element.Is(*other.List.Element) != TypeRelationIs {
			return TypeRelationIsnt
		}
	case TypeIDStruct:
		if len(t.Struct.Fields) != len(other.Struct.Fields) {
			return TypeRelationIsnt
		}
		for i, field := range t.Struct.Fields {
			target := other.Struct.Fields[i]
			if field.Name != target.Name || field.Type.Is(target.Type) != TypeRelationIs {
				return TypeRelationIsnt
			}
		}
	}
	return TypeRelationIs
}

func (t Type) Equals(other Type) bool {
	return t.Is(other) == TypeRelationIs && other.Is(t) == TypeRelationIs
}

// TypeSum is the least upper bound of two types: the wider side when one
// subsumes the other, otherwise a flattened union whose alternatives are
// filtered so none is subsumed by the ones kept before it.
func TypeSum(t1, t2 Type) Type {
	switch {
	case t1.Is(t2) == TypeRelationIs:
		return t2
	case t2.Is(t1) == TypeRelationIs:
		return t1
	}

	candidates := make([]Type, 0, len(alternativesOf(t1))+len(alternativesOf(t2)))
	candidates = append(candidates, alternativesOf(t1)...)
	candidates = append(candidates, alternativesOf(t2)...)

	var kept []Type
	for _, candidate := range candidates {
		if candidate.Is(unionOf(kept)) != TypeRelationIs {
			kept = append(kept, candidate)
		}
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return unionOf(kept)
}

// alternativesOf flattens a union into its alternatives; any other type is
// its own single alternative.
func alternativesOf(t Type) []Type {
	if t.TypeID == TypeIDUnion {
		return t.Union.Alternatives
	}
	return []Type{t}
}

func unionOf(alternatives []Type) Type {
	out := Type{TypeID: TypeIDUnion}
	out.Union.Alternatives = alternatives
	return out
}

// TypeIntersection is the greatest lower bound of two types. It returns nil
// when the types don't overlap at all.
func TypeIntersection(t1, t2 Type) *Type {
	if t1.Is(t2) == TypeRelationIs {
		return &t1
	}
	if t2.Is(t1) == TypeRelationIs {
		return &t2
	}
	if t1.TypeID == TypeIDUnion {
		var alternatives []Type
		for _, alternative := range t1.Union.Alternatives {
			if part := TypeIntersection(alternative, t2); part != nil {
				alternatives = append(alternatives, *part)
			}
		}
		switch len(alternatives) {
		case 0:
			return nil
		case 1:
			return &alternatives[0]
		default:
			out := unionOf(alternatives)
			return &out
		}
	}
	if t2.TypeID == TypeIDUnion {
		return TypeIntersection(t2, t1)
	}
	return nil
}

func (t Type) String() string {
	switch t.TypeID {
	case TypeIDNull:
		return "NULL"
	case TypeIDInt:
		return "Int"
	case TypeIDFloat:
		return "Float"
	case TypeIDBoolean:
		return "Boolean"
	case TypeIDString:
		return "String"
	case TypeIDTime:
		return "Time"
	case TypeIDList:
		return fmt.Sprintf("[%s]", *t.List.Element)
	case TypeIDStruct:
		fieldStrings := make([]string, len(t.Struct.Fields))
		for i, field := range t.Struct.Fields {
			fieldStrings[i] = fmt.Sprintf("%s: %s", field.Name, field.Type)
		}
		return fmt.Sprintf("{%s}", strings.Join(fieldStrings, "; "))
	case TypeIDUnion:
		typeStrings := make([]string, len(t.Union.Alternatives))
		for i, alternative := range t.Union.Alternatives {
			typeStrings[i] = alternative.String()
		}
		return strings.Join(typeStrings, " | ")
	case TypeIDAny:
		return "Any"
	}
	panic("unexhaustive type id match")
}
