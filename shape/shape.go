package shape

import (
	"fmt"
	"strings"

	"github.com/dataknots/knotql/knotql"
)

type Kind int

const (
	KindValue Kind = iota
	KindBlock
	KindTuple
	KindLabeled
	KindFlow
	KindScope
)

// Shape is a structural description of a vector's contents. Value, block and
// tuple are the storage-bearing variants; labeled, flow and scope are
// decorators that wrap an inner shape without changing its runtime layout.
type Shape struct {
	Kind Kind
	// Only the variant matching Kind may be non-null.
	Value   *ValueShape
	Block   *BlockShape
	Tuple   *TupleShape
	Labeled *LabeledShape
	Flow    *FlowShape
	Scope   *ScopeShape
}

type ValueShape struct {
	Type knotql.Type
}

type BlockShape struct {
	Inner Shape
	Card  Cardinality
}

type TupleShape struct {
	// Labels is either empty (positional columns) or one label per column.
	Labels  []string
	Columns []Shape
}

type LabeledShape struct {
	Label string
	Inner Shape
}

type FlowShape struct {
	// Inner is always a block shape.
	Inner Shape
}

type ScopeShape struct {
	// Inner is always a two-column tuple: subject, then the parameter
	// record.
	Inner Shape
}

func ValueOf(t knotql.Type) Shape {
	return Shape{Kind: KindValue, Value: &ValueShape{Type: t}}
}

func BlockOf(inner Shape, card Cardinality) Shape {
	return Shape{Kind: KindBlock, Block: &BlockShape{Inner: inner, Card: card}}
}

func TupleOf(labels []string, columns []Shape) Shape {
	return Shape{Kind: KindTuple, Tuple: &TupleShape{Labels: labels, Columns: columns}}
}

func LabeledAs(label string, inner Shape) Shape {
	return Shape{Kind: KindLabeled, Labeled: &LabeledShape{Label: label, Inner: inner}}
}

func FlowOf(block Shape) Shape {
	if block.Kind != KindBlock {
		panic("flow must decorate a block shape")
	}
	return Shape{Kind: KindFlow, Flow: &FlowShape{Inner: block}}
}

func ScopeOf(tuple Shape) Shape {
	if tuple.Kind != KindTuple || len(tuple.Tuple.Columns) != 2 {
		panic("scope must decorate a two-column tuple shape")
	}
	return Shape{Kind: KindScope, Scope: &ScopeShape{Inner: tuple}}
}

// Label returns the label carried by an outer labeled decorator, or "".
func (s Shape) Label() string {
	if s.Kind == KindLabeled {
		return s.Labeled.Label
	}
	return ""
}

// StripLabel removes an outer labeled decorator, if any.
func (s Shape) StripLabel() Shape {
	if s.Kind == KindLabeled {
		return s.Labeled.Inner
	}
	return s
}

// Relabel replaces the outer label. An empty label strips it.
func (s Shape) Relabel(label string) Shape {
	inner := s.StripLabel()
	if label == "" {
		return inner
	}
	return LabeledAs(label, inner)
}

// FlowBlock returns the block shape under a flow decorator.
func (s Shape) FlowBlock() *BlockShape {
	if s.Kind != KindFlow {
		panic("shape is not a flow")
	}
	return s.Flow.Inner.Block
}

// FlowElem returns the element shape of a flow's block.
func (s Shape) FlowElem() Shape {
	return s.FlowBlock().Inner
}

// ScopeParts splits a scoped element (ignoring an outer label) into its
// subject and context shapes.
func (s Shape) ScopeParts() (subject Shape, context Shape, ok bool) {
	inner := s.StripLabel()
	if inner.Kind != KindScope {
		return Shape{}, Shape{}, false
	}
	columns := inner.Scope.Inner.Tuple.Columns
	return columns[0], columns[1], true
}

// Storage strips decorator layers (label, flow, scope) until a
// storage-bearing variant is reached. Decorators never change runtime
// layout, so this is the shape of the backing vector.
func (s Shape) Storage() Shape {
	for {
		switch s.Kind {
		case KindLabeled:
			s = s.Labeled.Inner
		case KindFlow:
			s = s.Flow.Inner
		case KindScope:
			s = s.Scope.Inner
		default:
			return s
		}
	}
}

// ColumnIndex finds a tuple column by label, falling back to the ordinal
// labels #A..#Z for positional columns.
func (t *TupleShape) ColumnIndex(label string) (int, bool) {
	for i := range t.Labels {
		if t.Labels[i] == label {
			return i, true
		}
	}
	if len(t.Labels) == 0 {
		for i := range t.Columns {
			if OrdinalLabel(i) == label {
				return i, true
			}
		}
	}
	for i := range t.Columns {
		if t.Columns[i].Label() == label {
			return i, true
		}
	}
	return 0, false
}

// OrdinalLabel names the ith positional column: #A, #B, ...
func OrdinalLabel(i int) string {
	out := ""
	for {
		out = string(rune('A'+i%26)) + out
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	return "#" + out
}

// Fits reports whether a vector of shape s can be substituted where a vector
// of shape other is expected. Labels are display-only and ignored.
func Fits(s, other Shape) bool {
	s, other = s.StripLabel(), other.StripLabel()
	if other.Kind == KindValue && other.Value.Type.TypeID == knotql.TypeIDAny {
		return true
	}
	if s.Kind != other.Kind {
		return false
	}
	switch s.Kind {
	case KindValue:
		return s.Value.Type.Is(other.Value.Type) == knotql.TypeRelationIs
	case KindBlock:
		return s.Block.Card.Fits(other.Block.Card) && Fits(s.Block.Inner, other.Block.Inner)
	case KindTuple:
		if len(s.Tuple.Columns) != len(other.Tuple.Columns) {
			return false
		}
		for i := range s.Tuple.Columns {
			if !Fits(s.Tuple.Columns[i], other.Tuple.Columns[i]) {
				return false
			}
		}
		return true
	case KindFlow:
		return Fits(s.Flow.Inner, other.Flow.Inner)
	case KindScope:
		return Fits(s.Scope.Inner, other.Scope.Inner)
	}
	panic("unexhaustive shape kind match")
}

// Bound is the least upper bound of two shapes. Incompatible shapes widen to
// ValueOf(Any).
func Bound(s, other Shape) Shape {
	label := ""
	if s.Label() != "" && s.Label() == other.Label() {
		label = s.Label()
	}
	s, other = s.StripLabel(), other.StripLabel()

	out := boundStripped(s, other)
	if label != "" {
		out = LabeledAs(label, out)
	}
	return out
}

func boundStripped(s, other Shape) Shape {
	if s.Kind == KindBlock && other.Kind != KindBlock {
		return boundStripped(s, BlockOf(other, X1To1))
	}
	if other.Kind == KindBlock && s.Kind != KindBlock {
		return boundStripped(BlockOf(s, X1To1), other)
	}
	if s.Kind != other.Kind {
		return ValueOf(knotql.Any)
	}
	switch s.Kind {
	case KindValue:
		return ValueOf(knotql.TypeSum(s.Value.Type, other.Value.Type))
	case KindBlock:
		return BlockOf(Bound(s.Block.Inner, other.Block.Inner), s.Block.Card.Widen(other.Block.Card))
	case KindTuple:
		if len(s.Tuple.Columns) != len(other.Tuple.Columns) {
			return ValueOf(knotql.Any)
		}
		columns := make([]Shape, len(s.Tuple.Columns))
		for i := range columns {
			columns[i] = Bound(s.Tuple.Columns[i], other.Tuple.Columns[i])
		}
		labels := s.Tuple.Labels
		if !labelsEqual(s.Tuple.Labels, other.Tuple.Labels) {
			labels = nil
		}
		return TupleOf(labels, columns)
	case KindFlow:
		return FlowOf(boundStripped(s.Flow.Inner, other.Flow.Inner))
	case KindScope:
		return ScopeOf(boundStripped(s.Scope.Inner, other.Scope.Inner))
	}
	panic("unexhaustive shape kind match")
}

// IBound is the greatest lower bound of two shapes. The second return value
// is false when the shapes don't overlap.
func IBound(s, other Shape) (Shape, bool) {
	s, other = s.StripLabel(), other.StripLabel()
	if s.Kind == KindValue && s.Value.Type.TypeID == knotql.TypeIDAny {
		return other, true
	}
	if other.Kind == KindValue && other.Value.Type.TypeID == knotql.TypeIDAny {
		return s, true
	}
	if s.Kind != other.Kind {
		return Shape{}, false
	}
	switch s.Kind {
	case KindValue:
		t := knotql.TypeIntersection(s.Value.Type, other.Value.Type)
		if t == nil {
			return Shape{}, false
		}
		return ValueOf(*t), true
	case KindBlock:
		inner, ok := IBound(s.Block.Inner, other.Block.Inner)
		if !ok {
			return Shape{}, false
		}
		return BlockOf(inner, s.Block.Card.Tighten(other.Block.Card)), true
	case KindTuple:
		if len(s.Tuple.Columns) != len(other.Tuple.Columns) {
			return Shape{}, false
		}
		columns := make([]Shape, len(s.Tuple.Columns))
		for i := range columns {
			inner, ok := IBound(s.Tuple.Columns[i], other.Tuple.Columns[i])
			if !ok {
				return Shape{}, false
			}
			columns[i] = inner
		}
		labels := s.Tuple.Labels
		if !labelsEqual(s.Tuple.Labels, other.Tuple.Labels) {
			labels = nil
		}
		return TupleOf(labels, columns), true
	case KindFlow:
		inner, ok := IBound(s.Flow.Inner, other.Flow.Inner)
		if !ok {
			return Shape{}, false
		}
		return FlowOf(inner), true
	case KindScope:
		inner, ok := IBound(s.Scope.Inner, other.Scope.Inner)
		if !ok {
			return Shape{}, false
		}
		return ScopeOf(inner), true
	}
	panic("unexhaustive shape kind match")
}

func labelsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	switch s.Kind {
	case KindValue:
		return s.Value.Type.String()
	case KindBlock:
		return fmt.Sprintf("BlockOf(%s, %s)", s.Block.Inner, s.Block.Card)
	case KindTuple:
		parts := make([]string, len(s.Tuple.Columns))
		for i, column := range s.Tuple.Columns {
			if i < len(s.Tuple.Labels) {
				parts[i] = fmt.Sprintf("%s: %s", s.Tuple.Labels[i], column)
			} else {
				parts[i] = column.String()
			}
		}
		return fmt.Sprintf("TupleOf(%s)", strings.Join(parts, ", "))
	case KindLabeled:
		return fmt.Sprintf("%s => %s", s.Labeled.Label, s.Labeled.Inner)
	case KindFlow:
		return fmt.Sprintf("Flow(%s)", s.Flow.Inner)
	case KindScope:
		return fmt.Sprintf("Scope(%s)", s.Scope.Inner)
	}
	panic("unexhaustive shape kind match")
}
