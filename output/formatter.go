package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Formatter defines the interface for output formatters.
//
// Implementers must provide Format to convert rows to the target format
// and SetOutput to change the output destination.
type Formatter interface {
	// Format writes rows in the formatter's specific format
	Format(rows []map[string]interface{}) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)

	// SetColumns fixes the column order. Columns missing from the list
	// follow in sorted order; nil restores fully sorted output.
	SetColumns(columns []string)
}

// Supported format names
const (
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatTable = "table"
)

// Formats lists the names accepted by New
var Formats = []string{FormatJSON, FormatCSV, FormatTable}

// New returns the formatter registered under name
func New(name string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(name) {
	case FormatJSON, "jsonl":
		return NewJSONFormatter(w), nil
	case FormatCSV:
		return NewCSVFormatter(w), nil
	case FormatTable:
		return NewTableFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (supported: %s)", name, strings.Join(Formats, ", "))
	}
}

// columnOrder returns preferred columns first, then every other column found
// in rows in sorted order. Heterogeneous rows are common when entities carry
// different attributes.
func columnOrder(rows []map[string]interface{}, preferred []string) []string {
	seen := make(map[string]bool)
	columns := make([]string, 0, len(preferred))
	for _, col := range preferred {
		if !seen[col] {
			seen[col] = true
			columns = append(columns, col)
		}
	}

	var rest []string
	for _, row := range rows {
		for col := range row {
			if !seen[col] {
				seen[col] = true
				rest = append(rest, col)
			}
		}
	}
	sort.Strings(rest)
	return append(columns, rest...)
}
