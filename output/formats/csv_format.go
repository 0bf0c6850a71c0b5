package formats

import (
	"encoding/csv"
	"io"

	"github.com/dataknots/knotql/knotql"
)

type CSVFormatter struct {
	writer *csv.Writer
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: csv.NewWriter(w)}
}

func (c *CSVFormatter) SetHeader(fields []string) {
	c.writer.Write(fields)
}

func (c *CSVFormatter) Write(values []knotql.Value) error {
	row := make([]string, len(values))
	for i := range values {
		row[i] = plainString(values[i])
	}
	return c.writer.Write(row)
}

func (c *CSVFormatter) Close() error {
	c.writer.Flush()
	return c.writer.Error()
}

// plainString renders a value without the quoting the debug form adds.
func plainString(v knotql.Value) string {
	switch v.Type.TypeID {
	case knotql.TypeIDNull:
		return ""
	case knotql.TypeIDString:
		return v.Str
	default:
		return v.String()
	}
}
