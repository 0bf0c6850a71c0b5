package query

import (
	"fmt"
	"strings"

	"github.com/dataknots/knotql/functions"
	"github.com/dataknots/knotql/shape"
	"github.com/dataknots/knotql/vector"
)

type Kind int

const (
	KindIt Kind = iota
	KindGet
	KindCompose
	KindConst
	KindApply
	KindLiftFn
	KindRecord
	KindLabel
	KindTag
	KindEach
	KindFilter
	KindTake
	KindAggregate
	KindKeep
	KindGiven
	KindKnotConst
)

type AggregateKind int

const (
	AggregateCount AggregateKind = iota
	AggregateSum
	AggregateMin
	AggregateMax
)

// Query is a user-level combinator expression. Queries are immutable values
// assembled into pipelines by Assemble.
type Query struct {
	Kind Kind
	// Only the payload matching Kind may be non-null.
	GetOp     *GetOp
	Compose   *ComposeOp
	Const     *ConstOp
	Apply     *ApplyOp
	LiftFn    *LiftFnOp
	Record    *RecordOp
	Label     *LabelOp
	Tag       *TagOp
	Each      *EachOp
	Filter    *FilterOp
	Take      *TakeOp
	Aggregate *AggregateOp
	Keep      *KeepOp
	Given     *GivenOp
	KnotConst *KnotConstOp
}

type GetOp struct {
	Name string
}

type ComposeOp struct {
	Left  Query
	Right Query
}

type ConstOp struct {
	Native interface{}
}

type ApplyOp struct {
	Name string
	Args []Query
}

type LiftFnOp struct {
	Descriptor functions.Descriptor
	Args       []Query
}

type RecordOp struct {
	Fields []Query
}

type LabelOp struct {
	Name string
}

type TagOp struct {
	Name  string
	Inner Query
}

type EachOp struct {
	Inner Query
}

type FilterOp struct {
	Predicate Query
}

type TakeOp struct {
	N      int
	Static bool
	Arg    *Query
	Rev    bool
}

type AggregateOp struct {
	Fn AggregateKind
	// Arg is nil for the suffix form (X >> Count), which aggregates the
	// incoming flow itself.
	Arg *Query
}

type Binding struct {
	Name  string
	Value Query
}

type KeepOp struct {
	Bindings []Binding
}

type GivenOp struct {
	Bindings []Binding
	Body     Query
}

// KnotConstOp embeds an already-columnar block as a constant: every input
// row gets a copy of the block.
type KnotConstOp struct {
	Elements vector.Vector
	Inner    shape.Shape
	Card     shape.Cardinality
}

// KnotConst lifts a columnar block (the content of a knot's cell) into a
// constant query.
func KnotConst(elements vector.Vector, inner shape.Shape, card shape.Cardinality) Query {
	return Query{Kind: KindKnotConst, KnotConst: &KnotConstOp{Elements: elements, Inner: inner, Card: card}}
}

// It is the identity query: the current flow, unchanged.
var It = Query{Kind: KindIt}

// Get navigates to a named field or parameter.
func Get(name string) Query {
	return Query{Kind: KindGet, GetOp: &GetOp{Name: name}}
}

// Get chains navigation: It.Get("a").Get("b") addresses a nested field.
func (q Query) Get(name string) Query {
	return q.Then(Get(name))
}

// Then is query composition, written X >> Y in the combinator algebra.
func (q Query) Then(next Query) Query {
	return Query{Kind: KindCompose, Compose: &ComposeOp{Left: q, Right: next}}
}

// Lift turns a plain Go value into a constant query: scalars become regular
// blocks, slices plural blocks, nil an empty optional block.
func Lift(native interface{}) Query {
	return Query{Kind: KindConst, Const: &ConstOp{Native: native}}
}

// Apply lifts a registry function over argument queries; Apply("+", X, Y) is
// the broadcast form f.(X, Y).
func Apply(name string, args ...Query) Query {
	return Query{Kind: KindApply, Apply: &ApplyOp{Name: name, Args: args}}
}

// LiftFn lifts a caller-supplied scalar function described by a typed
// descriptor.
func LiftFn(descriptor functions.Descriptor, args ...Query) Query {
	return Query{Kind: KindLiftFn, LiftFn: &LiftFnOp{Descriptor: descriptor, Args: args}}
}

// Record bundles field queries into a tuple; fields are labeled by their
// output labels, ordinally when absent.
func Record(fields ...Query) Query {
	return Query{Kind: KindRecord, Record: &RecordOp{Fields: fields}}
}

// As binds the output label, the pair form :name => X. An empty name strips
// the label.
func (q Query) As(name string) Query {
	return q.Then(Query{Kind: KindLabel, Label: &LabelOp{Name: name}})
}

// Tag is a display-only alias; semantically the inner query.
func Tag(name string, inner Query) Query {
	return Query{Kind: KindTag, Tag: &TagOp{Name: name, Inner: inner}}
}

// Each assembles the inner query against the flow's elements, keeping inner
// aggregations per-element instead of letting them absorb the outer flow.
func Each(inner Query) Query {
	return Query{Kind: KindEach, Each: &EachOp{Inner: inner}}
}

// Filter keeps the flow elements for which the predicate holds.
func Filter(predicate Query) Query {
	return Query{Kind: KindFilter, Filter: &FilterOp{Predicate: predicate}}
}

// Take keeps the first n elements of the flow; a negative n drops the last
// -n instead.
func Take(n int) Query {
	return Query{Kind: KindTake, Take: &TakeOp{N: n, Static: true}}
}

// Drop removes the first n elements of the flow; a negative n keeps the
// last -n.
func Drop(n int) Query {
	return Query{Kind: KindTake, Take: &TakeOp{N: n, Static: true, Rev: true}}
}

// TakeQuery takes a per-run element count computed by a query over the
// input; an empty count leaves the flow unchanged.
func TakeQuery(n Query) Query {
	return Query{Kind: KindTake, Take: &TakeOp{Arg: &n}}
}

func DropQuery(n Query) Query {
	return Query{Kind: KindTake, Take: &TakeOp{Arg: &n, Rev: true}}
}

func aggregate(fn AggregateKind, args []Query) Query {
	switch len(args) {
	case 0:
		return Query{Kind: KindAggregate, Aggregate: &AggregateOp{Fn: fn}}
	case 1:
		return Query{Kind: KindAggregate, Aggregate: &AggregateOp{Fn: fn, Arg: &args[0]}}
	}
	panic("aggregate combinators take at most one argument")
}

// Count counts elements: Count(X) per flow element, or X.Then(Count()) over
// the incoming flow itself.
func Count(args ...Query) Query {
	return aggregate(AggregateCount, args)
}

func Sum(args ...Query) Query {
	return aggregate(AggregateSum, args)
}

func Min(args ...Query) Query {
	return aggregate(AggregateMin, args)
}

func Max(args ...Query) Query {
	return aggregate(AggregateMax, args)
}

// Bind names a value inside Keep and Given.
func Bind(name string, value Query) Binding {
	return Binding{Name: name, Value: value}
}

// Keep extends the parameter scope with the given bindings.
func Keep(bindings ...Binding) Query {
	return Query{Kind: KindKeep, Keep: &KeepOp{Bindings: bindings}}
}

// Given evaluates the body with the bindings in scope, then leaves the
// scope behind.
func Given(body Query, bindings ...Binding) Query {
	return Query{Kind: KindGiven, Given: &GivenOp{Bindings: bindings, Body: body}}
}

// Nav addresses a nested field: Nav("a", "b") is It.a.b.
func Nav(path ...string) Query {
	out := It
	for _, name := range path {
		out = out.Get(name)
	}
	return out
}

func (q Query) String() string {
	switch q.Kind {
	case KindIt:
		return "It"
	case KindGet:
		return fmt.Sprintf("Get(%s)", q.GetOp.Name)
	case KindCompose:
		return fmt.Sprintf("%s >> %s", q.Compose.Left, q.Compose.Right)
	case KindConst:
		return fmt.Sprintf("Lift(%v)", q.Const.Native)
	case KindApply:
		return fmt.Sprintf("%s.(%s)", q.Apply.Name, joinQueries(q.Apply.Args))
	case KindLiftFn:
		return fmt.Sprintf("Lift(fn, (%s))", joinQueries(q.LiftFn.Args))
	case KindRecord:
		return fmt.Sprintf("Record(%s)", joinQueries(q.Record.Fields))
	case KindLabel:
		return fmt.Sprintf("Label(%s)", q.Label.Name)
	case KindTag:
		return q.Tag.Name
	case KindEach:
		return fmt.Sprintf("Each(%s)", q.Each.Inner)
	case KindFilter:
		return fmt.Sprintf("Filter(%s)", q.Filter.Predicate)
	case KindTake:
		name := "Take"
		if q.Take.Rev {
			name = "Drop"
		}
		if q.Take.Static {
			return fmt.Sprintf("%s(%d)", name, q.Take.N)
		}
		return fmt.Sprintf("%s(%s)", name, q.Take.Arg)
	case KindAggregate:
		names := map[AggregateKind]string{
			AggregateCount: "Count",
			AggregateSum:   "Sum",
			AggregateMin:   "Min",
			AggregateMax:   "Max",
		}
		if q.Aggregate.Arg == nil {
			return names[q.Aggregate.Fn]
		}
		return fmt.Sprintf("%s(%s)", names[q.Aggregate.Fn], q.Aggregate.Arg)
	case KindKeep:
		return fmt.Sprintf("Keep(%s)", joinBindings(q.Keep.Bindings))
	case KindGiven:
		return fmt.Sprintf("Given(%s, %s)", joinBindings(q.Given.Bindings), q.Given.Body)
	case KindKnotConst:
		return fmt.Sprintf("Lift(knot of %s)", shape.BlockOf(q.KnotConst.Inner, q.KnotConst.Card))
	}
	panic("unexhaustive query kind match")
}

func joinQueries(queries []Query) string {
	parts := make([]string, len(queries))
	for i := range queries {
		parts[i] = queries[i].String()
	}
	return strings.Join(parts, ", ")
}

func joinBindings(bindings []Binding) string {
	parts := make([]string, len(bindings))
	for i := range bindings {
		parts[i] = fmt.Sprintf(":%s => %s", bindings[i].Name, bindings[i].Value)
	}
	return strings.Join(parts, ", ")
}
