package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		want    interface{}
		wantErr bool
	}{
		{name: "json", format: "json", want: &JSONFormatter{}},
		{name: "jsonl alias", format: "jsonl", want: &JSONFormatter{}},
		{name: "csv upper case", format: "CSV", want: &CSVFormatter{}},
		{name: "table", format: "table", want: &TableFormatter{}},
		{name: "unknown", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.format, &bytes.Buffer{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			switch tt.want.(type) {
			case *JSONFormatter:
				if _, ok := f.(*JSONFormatter); !ok {
					t.Errorf("New(%q) = %T, want *JSONFormatter", tt.format, f)
				}
			case *CSVFormatter:
				if _, ok := f.(*CSVFormatter); !ok {
					t.Errorf("New(%q) = %T, want *CSVFormatter", tt.format, f)
				}
			case *TableFormatter:
				if _, ok := f.(*TableFormatter); !ok {
					t.Errorf("New(%q) = %T, want *TableFormatter", tt.format, f)
				}
			}
		})
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	tests := []struct {
		name string
		rows []map[string]interface{}
	}{
		{
			name: "empty rows",
			rows: []map[string]interface{}{},
		},
		{
			name: "multiple entities",
			rows: []map[string]interface{}{
				{"name": "Diana", "age": int64(10)},
				{"name": "Apollo", "age": int64(30)},
			},
		},
		{
			name: "nested and nil attributes",
			rows: []map[string]interface{}{
				{"name": nil, "address": map[string]interface{}{"city": "Athens"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewJSONFormatter(&buf).Format(tt.rows); err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			output := buf.String()
			if len(tt.rows) == 0 {
				if output != "" {
					t.Errorf("Format() output should be empty for empty rows, got %q", output)
				}
				return
			}

			lines := strings.Split(strings.TrimSpace(output), "\n")
			if len(lines) != len(tt.rows) {
				t.Errorf("Format() produced %d lines, want %d", len(lines), len(tt.rows))
			}
			for i, line := range lines {
				var decoded map[string]interface{}
				if err := json.Unmarshal([]byte(line), &decoded); err != nil {
					t.Errorf("Format() line %d is not valid JSON: %v", i, err)
				}
			}
		})
	}
}

func TestJSONFormatter_KeyOrder(t *testing.T) {
	id := [16]byte{0x6b, 0xa7, 0xb8, 0x10, 0x9d, 0xad, 0x11, 0xd1, 0x80, 0xb4, 0x00, 0xc0, 0x4f, 0xd4, 0x30, 0xc8}
	rows := []map[string]interface{}{
		{"name": "Diana", "age": int64(10), "id": id, "raw": []byte("bow")},
		{"age": int64(30)},
	}

	var buf bytes.Buffer
	formatter := NewJSONFormatter(&buf)
	formatter.SetColumns([]string{"name", "age"})
	if err := formatter.Format(rows); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := `{"name":"Diana","age":10,"id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","raw":"bow"}` + "\n" +
		`{"age":30}` + "\n"
	if buf.String() != want {
		t.Errorf("Format() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestTableFormatter_Format(t *testing.T) {
	rows := []map[string]interface{}{
		{"name": "Diana", "age": int64(10)},
		{"name": "=Apollo", "power": "sun"},
	}

	var buf bytes.Buffer
	formatter := NewTableFormatter(&buf)
	formatter.SetColumns([]string{"name"})
	if err := formatter.Format(rows); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"name", "age", "power", "Diana", "10", "sun"} {
		if !strings.Contains(output, want) {
			t.Errorf("table output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "'=Apollo") {
		t.Errorf("table cells should not carry CSV formula escaping:\n%s", output)
	}
	if strings.Index(output, "name") > strings.Index(output, "age") {
		t.Errorf("projected column should come first:\n%s", output)
	}
}
