package formats

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/dataknots/knotql/knotql"
)

type TableFormatter struct {
	table *tablewriter.Table
}

func NewTableFormatter(w io.Writer) *TableFormatter {
	table := tablewriter.NewWriter(w)
	table.SetColWidth(24)
	table.SetRowLine(false)

	return &TableFormatter{
		table: table,
	}
}

func (t *TableFormatter) SetHeader(fields []string) {
	t.table.SetHeader(fields)
	t.table.SetAutoFormatHeaders(false)
}

func (t *TableFormatter) Write(values []knotql.Value) error {
	row := make([]string, len(values))
	for i := range values {
		row[i] = values[i].String()
	}
	t.table.Append(row)
	return nil
}

func (t *TableFormatter) Close() error {
	t.table.Render()
	return nil
}
