package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableFormatter outputs rows as an aligned ASCII table for terminals
type TableFormatter struct {
	writer  io.Writer
	columns []string
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// SetColumns fixes the column order
func (t *TableFormatter) SetColumns(columns []string) {
	t.columns = append([]string(nil), columns...)
}

// Format renders rows as one table. Cells use the CSV value rendering
// without formula escaping; missing attributes are left blank.
func (t *TableFormatter) Format(rows []map[string]interface{}) error {
	columns := columnOrder(rows, t.columns)

	table := tablewriter.NewWriter(t.writer)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = formatValue(row[col])
		}
		table.Append(record)
	}
	table.Render()
	return nil
}
