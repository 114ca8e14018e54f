package output

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"
)

// JSONFormatter writes one JSON object per entity (JSON Lines). Keys follow
// the projection, then the remaining attributes in sorted order.
type JSONFormatter struct {
	writer  io.Writer
	columns []string
}

// NewJSONFormatter creates a JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// SetColumns fixes the leading keys of each object
func (j *JSONFormatter) SetColumns(columns []string) {
	j.columns = append([]string(nil), columns...)
}

// Format writes rows as JSON Lines. Attributes absent from a row are
// omitted rather than written as null.
func (j *JSONFormatter) Format(rows []map[string]interface{}) error {
	var buf bytes.Buffer
	for _, row := range rows {
		buf.Reset()
		if err := j.writeObject(&buf, row); err != nil {
			return err
		}
		buf.WriteByte('\n')
		if _, err := j.writer.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func (j *JSONFormatter) writeObject(buf *bytes.Buffer, row map[string]interface{}) error {
	keys := make([]string, 0, len(row))
	seen := make(map[string]bool, len(row))
	for _, col := range j.columns {
		if _, ok := row[col]; ok && !seen[col] {
			seen[col] = true
			keys = append(keys, col)
		}
	}
	rest := make([]string, 0, len(row))
	for col := range row {
		if !seen[col] {
			rest = append(rest, col)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return err
		}
		value, err := json.Marshal(jsonValue(row[key]))
		if err != nil {
			return err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return nil
}

// jsonValue rewrites parquet byte arrays, which encoding/json would emit as
// base64 or number arrays
func jsonValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case [16]byte:
		return formatValue(val)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = jsonValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = jsonValue(item)
		}
		return out
	default:
		return v
	}
}
