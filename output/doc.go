// Package output provides formatters for query results.
//
// Supported formats:
//   - JSON Lines: One JSON object per line
//   - CSV: Comma-separated values with header row
//   - Table: Aligned ASCII table for interactive use
//
// Example usage:
//
//	formatter, err := output.New("table", os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	formatter.SetColumns(q.Columns())
//	if err := formatter.Format(entities); err != nil {
//	    log.Fatal(err)
//	}
package output
