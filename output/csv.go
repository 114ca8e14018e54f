package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CSVFormatter writes a header row followed by one record per entity
type CSVFormatter struct {
	writer  io.Writer
	columns []string
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// SetColumns fixes the header order
func (c *CSVFormatter) SetColumns(columns []string) {
	c.columns = append([]string(nil), columns...)
}

// Format writes rows as CSV. No rows writes nothing, not even a header.
func (c *CSVFormatter) Format(rows []map[string]interface{}) error {
	w := csv.NewWriter(c.writer)
	if len(rows) > 0 {
		columns := columnOrder(rows, c.columns)
		if err := w.Write(columns); err != nil {
			return err
		}
		record := make([]string, len(columns))
		for _, row := range rows {
			for i, col := range columns {
				record[i] = csvCell(row[col])
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// csvCell renders v, quoting text a spreadsheet would evaluate as a formula
func csvCell(v interface{}) string {
	s, ok := v.(string)
	if !ok || s == "" {
		return formatValue(v)
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '\n', '|':
		return "'" + strings.ReplaceAll(s, "'", "''")
	}
	return s
}

// formatValue renders an attribute value as text. Nested maps and lists
// keep their JSON form; fixed 16 byte arrays are parquet UUIDs.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case [16]byte:
		return uuid.UUID(val).String()
	case bool:
		return strconv.FormatBool(val)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", val)
	}
}
