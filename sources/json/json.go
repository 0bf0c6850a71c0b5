package json

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/dataknots/knotql/knots"
	"github.com/dataknots/knotql/knotql"
	"github.com/dataknots/knotql/shape"
	"github.com/dataknots/knotql/vector"
)

// Load reads a file of newline-delimited JSON objects into a knot: a
// plural block of tuples. Fields are collected across all rows in first
// appearance order; a field absent from a row comes out null. Nested
// objects become struct values, arrays list values.
func Load(path string) (knots.DataKnot, error) {
	f, err := os.Open(path)
	if err != nil {
		return knots.DataKnot{}, errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()
	return Read(bufio.NewReaderSize(f, 4096*1024))
}

func Read(r io.Reader) (knots.DataKnot, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 1024*1024)

	var labels []string
	index := map[string]int{}
	var columns []vector.Values
	length := 0

	var p fastjson.Parser
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		v, err := p.ParseBytes(sc.Bytes())
		if err != nil {
			return knots.DataKnot{}, errors.Wrap(err, "couldn't parse json")
		}
		o, err := v.Object()
		if err != nil {
			return knots.DataKnot{}, errors.Errorf("expected JSON object, got '%s'", sc.Text())
		}

		o.Visit(func(key []byte, value *fastjson.Value) {
			name := string(key)
			j, ok := index[name]
			if !ok {
				j = len(labels)
				index[name] = j
				labels = append(labels, name)
				// Backfill the rows this field was absent from.
				column := make(vector.Values, length)
				for i := range column {
					column[i] = knotql.NewNull()
				}
				columns = append(columns, column)
			}
			columns[j] = append(columns[j], convert(value))
		})
		length++
		for j := range columns {
			if len(columns[j]) < length {
				columns[j] = append(columns[j], knotql.NewNull())
			}
		}
	}
	if err := sc.Err(); err != nil {
		return knots.DataKnot{}, errors.Wrap(err, "couldn't read input")
	}

	columnVectors := make([]vector.Vector, len(labels))
	columnShapes := make([]shape.Shape, len(labels))
	for j := range labels {
		columnVectors[j] = columns[j]
		columnShapes[j] = shape.ValueOf(columnType(columns[j]))
	}
	cell := vector.Block{
		Offsets:  vector.FromIndex([]int{0, length}),
		Elements: vector.Tuple{Labels: labels, Length: length, Columns: columnVectors},
		Card:     shape.X0ToN,
	}
	return knots.FromParts(cell, shape.BlockOf(shape.TupleOf(labels, columnShapes), shape.X0ToN))
}

func convert(v *fastjson.Value) knotql.Value {
	switch v.Type() {
	case fastjson.TypeNull:
		return knotql.NewNull()
	case fastjson.TypeTrue:
		return knotql.NewBoolean(true)
	case fastjson.TypeFalse:
		return knotql.NewBoolean(false)
	case fastjson.TypeNumber:
		if integer, err := v.Int(); err == nil {
			return knotql.NewInt(integer)
		}
		f, _ := v.Float64()
		return knotql.NewFloat(f)
	case fastjson.TypeString:
		b, _ := v.StringBytes()
		return knotql.NewString(string(b))
	case fastjson.TypeArray:
		items, _ := v.Array()
		values := make([]knotql.Value, len(items))
		for i := range items {
			values[i] = convert(items[i])
		}
		return knotql.NewList(values)
	case fastjson.TypeObject:
		o, _ := v.Object()
		var names []string
		var values []knotql.Value
		o.Visit(func(key []byte, value *fastjson.Value) {
			names = append(names, string(key))
			values = append(values, convert(value))
		})
		return knotql.NewStruct(names, values)
	}
	panic("unexhaustive json type match")
}

func columnType(values vector.Values) knotql.Type {
	out := knotql.Null
	first := true
	for i := range values {
		if first {
			out = values[i].Type
			first = false
			continue
		}
		out = knotql.TypeSum(out, values[i].Type)
	}
	return out
}
