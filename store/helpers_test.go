package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/columnql/query"
)

type godRow struct {
	Name    string    `parquet:"name"`
	Age     int64     `parquet:"age"`
	Power   string    `parquet:"power"`
	Weight  float64   `parquet:"weight"`
	Active  bool      `parquet:"active"`
	Created time.Time `parquet:"created,timestamp"`
}

type templeRow struct {
	ID    uuid.UUID `parquet:"id,uuid"`
	God   string    `parquet:"god"`
	City  string    `parquet:"city"`
	Built int32     `parquet:"built"`
}

var godRows = []godRow{
	{Name: "Zeus", Age: 3000, Power: "thunder", Weight: 95.5, Active: true, Created: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	{Name: "Hera", Age: 2900, Power: "marriage", Weight: 60, Active: true, Created: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)},
	{Name: "Ares", Age: 1500, Power: "war", Weight: 110, Active: false, Created: time.Date(2022, 3, 15, 0, 0, 0, 0, time.UTC)},
}

// writeParquet writes rows to name inside dir and returns the file path
func writeParquet[T any](t *testing.T, dir, name string, rows []T) string {
	t.Helper()
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	writer := parquet.NewGenericWriter[T](f)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("failed to write rows: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return path
}

// gods returns in-memory rows covering nested, missing and nil attributes
func gods() []query.Entity {
	return []query.Entity{
		{
			"name": "Zeus", "age": int64(3000), "power": "thunder", "weight": 95.5, "active": true,
			"home": map[string]interface{}{
				"city":   "Olympus",
				"temple": map[string]interface{}{"size": int64(10)},
			},
		},
		{"name": "Hera", "age": int64(2900), "power": "marriage", "weight": 60.0, "active": true},
		{"name": "Ares", "age": int64(1500), "power": "war", "weight": 110.0, "active": false},
		{"name": "Hermes", "age": int64(1200), "power": "speed", "weight": 70.0},
		{"name": "Diana", "age": nil, "power": "hunt"},
	}
}

func newGodStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	s.Insert("God", gods()...)
	return s
}

func mustSelectQuery(t *testing.T, text string) *query.SelectQuery {
	t.Helper()
	stmt, _, err := query.Parse(text, nil)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", text, err)
	}
	q, ok := stmt.(*query.SelectQuery)
	if !ok {
		t.Fatalf("Parse(%q) = %T, want *query.SelectQuery", text, stmt)
	}
	return q
}

func mustDeleteQuery(t *testing.T, text string) *query.DeleteQuery {
	t.Helper()
	stmt, _, err := query.Parse(text, nil)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", text, err)
	}
	q, ok := stmt.(*query.DeleteQuery)
	if !ok {
		t.Fatalf("Parse(%q) = %T, want *query.DeleteQuery", text, stmt)
	}
	return q
}

func names(entities []query.Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		name, _ := e["name"].(string)
		out = append(out, name)
	}
	return out
}
