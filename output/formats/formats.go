package formats

import (
	"io"

	"github.com/pkg/errors"

	"github.com/dataknots/knotql/knots"
	"github.com/dataknots/knotql/knotql"
	"github.com/dataknots/knotql/shape"
)

// Formatter renders query results row by row.
type Formatter interface {
	SetHeader(fields []string)
	Write(values []knotql.Value) error
	Close() error
}

// Headers derives the output columns from a result knot's element shape: a
// tuple's labels, or a single It column otherwise.
func Headers(k knots.DataKnot) []string {
	elem := k.Shape().Storage().Block.Inner
	storage := elem.Storage()
	if storage.Kind == shape.KindTuple {
		out := make([]string, len(storage.Tuple.Columns))
		for i := range storage.Tuple.Columns {
			switch {
			case i < len(storage.Tuple.Labels) && storage.Tuple.Labels[i] != "":
				out[i] = storage.Tuple.Labels[i]
			case storage.Tuple.Columns[i].Label() != "":
				out[i] = storage.Tuple.Columns[i].Label()
			default:
				out[i] = shape.OrdinalLabel(i)
			}
		}
		return out
	}
	if label := elem.Label(); label != "" {
		return []string{label}
	}
	return []string{"It"}
}

// Rows materializes a result knot into one value row per element.
func Rows(k knots.DataKnot) [][]knotql.Value {
	value := k.Get()
	card := k.Shape().Storage().Block.Card

	var elements []knotql.Value
	if card.IsPlural() {
		elements = value.List
	} else if !value.IsNull() {
		elements = []knotql.Value{value}
	}

	rows := make([][]knotql.Value, len(elements))
	for i, element := range elements {
		if element.Type.TypeID == knotql.TypeIDStruct {
			rows[i] = element.FieldValues
		} else {
			rows[i] = []knotql.Value{element}
		}
	}
	return rows
}

// Render writes a whole knot through a formatter.
func Render(formatter Formatter, k knots.DataKnot) error {
	formatter.SetHeader(Headers(k))
	for i, row := range Rows(k) {
		if err := formatter.Write(row); err != nil {
			return errors.Wrapf(err, "couldn't write row %d", i)
		}
	}
	return formatter.Close()
}

// New picks a formatter by name.
func New(name string, w io.Writer) (Formatter, error) {
	switch name {
	case "table":
		return NewTableFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "json":
		return NewJSONFormatter(w), nil
	}
	return nil, errors.Errorf("unknown output format %s", name)
}
