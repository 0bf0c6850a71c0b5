package csv

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/dataknots/knotql/knots"
	"github.com/dataknots/knotql/knotql"
	"github.com/dataknots/knotql/shape"
	"github.com/dataknots/knotql/vector"
)

// Load reads a whole CSV file into a knot: a plural block of tuples, one
// column per header field. Field values are sniffed as ints, floats,
// booleans and timestamps before falling back to strings.
func Load(path string) (knots.DataKnot, error) {
	f, err := os.Open(path)
	if err != nil {
		return knots.DataKnot{}, errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()
	return Read(bufio.NewReaderSize(f, 4096*1024))
}

func Read(r io.Reader) (knots.DataKnot, error) {
	decoder := csv.NewReader(r)
	decoder.Comma = ','

	header, err := decoder.Read()
	if err != nil {
		return knots.DataKnot{}, errors.Wrap(err, "couldn't decode csv header row")
	}
	labels := make([]string, len(header))
	copy(labels, header)

	columns := make([]vector.Values, len(labels))
	length := 0
	for {
		row, err := decoder.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return knots.DataKnot{}, errors.Wrap(err, "couldn't decode csv row")
		}
		for i := range labels {
			value := knotql.NewNull()
			if i < len(row) && row[i] != "" {
				value = sniff(row[i])
			}
			columns[i] = append(columns[i], value)
		}
		length++
	}

	columnVectors := make([]vector.Vector, len(labels))
	columnShapes := make([]shape.Shape, len(labels))
	for i := range labels {
		columnVectors[i] = columns[i]
		columnShapes[i] = shape.ValueOf(columnType(columns[i]))
	}

	cell := vector.Block{
		Offsets:  vector.FromIndex([]int{0, length}),
		Elements: vector.Tuple{Labels: labels, Length: length, Columns: columnVectors},
		Card:     shape.X0ToN,
	}
	return knots.FromParts(cell, shape.BlockOf(shape.TupleOf(labels, columnShapes), shape.X0ToN))
}

func sniff(str string) knotql.Value {
	if integer, err := strconv.ParseInt(str, 10, 64); err == nil {
		return knotql.NewInt(int(integer))
	}
	if float, err := strconv.ParseFloat(str, 64); err == nil {
		return knotql.NewFloat(float)
	}
	if b, err := strconv.ParseBool(str); err == nil {
		return knotql.NewBoolean(b)
	}
	if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
		return knotql.NewTime(t)
	}
	return knotql.NewString(str)
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
