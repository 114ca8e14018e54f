package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestReader(t *testing.T) {
	path := writeParquet(t, t.TempDir(), "God.parquet", godRows)

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer r.Close()

	if r.NumRows() != int64(len(godRows)) {
		t.Errorf("NumRows() = %d, want %d", r.NumRows(), len(godRows))
	}

	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != len(godRows) {
		t.Fatalf("ReadAll() returned %d rows, want %d", len(rows), len(godRows))
	}
	if rows[0]["name"] != "Zeus" {
		t.Errorf("rows[0][name] = %v, want Zeus", rows[0]["name"])
	}
	if rows[2]["age"] != int64(1500) {
		t.Errorf("rows[2][age] = %v (%T), want int64 1500", rows[2]["age"], rows[2]["age"])
	}

	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeParquet(t, dir, "gods_1.parquet", godRows[:2])
	second := writeParquet(t, dir, "gods_2.parquet", godRows[2:])

	t.Run("single file has no source column", func(t *testing.T) {
		rows, err := ReadFiles(first)
		if err != nil {
			t.Fatalf("ReadFiles() error = %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("ReadFiles() returned %d rows, want 2", len(rows))
		}
		if _, ok := rows[0][FileColumn]; ok {
			t.Errorf("single file rows should not carry %s", FileColumn)
		}
	})

	t.Run("glob tags source file", func(t *testing.T) {
		rows, err := ReadFiles(filepath.Join(dir, "gods_*.parquet"))
		if err != nil {
			t.Fatalf("ReadFiles() error = %v", err)
		}
		if len(rows) != len(godRows) {
			t.Fatalf("ReadFiles() returned %d rows, want %d", len(rows), len(godRows))
		}
		if rows[0][FileColumn] != first || rows[2][FileColumn] != second {
			t.Errorf("%s = %v, %v", FileColumn, rows[0][FileColumn], rows[2][FileColumn])
		}
	})

	t.Run("errors", func(t *testing.T) {
		bogus := filepath.Join(dir, "bogus.parquet")
		if err := os.WriteFile(bogus, []byte("not parquet"), 0o600); err != nil {
			t.Fatal(err)
		}

		tests := []struct {
			name    string
			pattern string
			wantErr string
		}{
			{name: "missing file", pattern: filepath.Join(dir, "missing.parquet"), wantErr: "failed to open file"},
			{name: "no glob match", pattern: filepath.Join(dir, "titans_*.parquet"), wantErr: "no files match"},
			{name: "bad glob", pattern: filepath.Join(dir, "[.parquet"), wantErr: "invalid glob"},
			{name: "not parquet", pattern: bogus, wantErr: "failed to open parquet file"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ReadFiles(tt.pattern)
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("ReadFiles() error = %v, want %q", err, tt.wantErr)
				}
			})
		}
	})
}

func TestStore_LoadParquet(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, dir, "God.parquet", godRows)
	writeParquet(t, dir, "Temple.parquet", []templeRow{
		{ID: uuid.New(), God: "Zeus", City: "Olympia", Built: -470},
		{ID: uuid.New(), God: "Hera", City: "Samos", Built: -570},
	})

	s := New()
	n, err := s.LoadParquet("God", filepath.Join(dir, "God.parquet"))
	if err != nil {
		t.Fatalf("LoadParquet() error = %v", err)
	}
	if n != len(godRows) || s.Count("God") != len(godRows) {
		t.Errorf("LoadParquet() = %d, Count() = %d, want %d", n, s.Count("God"), len(godRows))
	}

	// loading again appends
	if _, err := s.LoadParquet("God", filepath.Join(dir, "God.parquet")); err != nil {
		t.Fatal(err)
	}
	if s.Count("God") != 2*len(godRows) {
		t.Errorf("Count() = %d after second load", s.Count("God"))
	}

	if _, err := s.LoadParquet("Temple", filepath.Join(dir, "Temple.parquet")); err != nil {
		t.Fatal(err)
	}
	if got := s.Families(); len(got) != 2 || got[0] != "God" || got[1] != "Temple" {
		t.Errorf("Families() = %v", got)
	}

	if _, err := s.LoadParquet("Titan", filepath.Join(dir, "Titan.parquet")); err == nil {
		t.Error("LoadParquet() of a missing file should fail")
	}
	if s.Count("Titan") != 0 {
		t.Error("a failed load must not create rows")
	}
}

func TestFamilyName(t *testing.T) {
	tests := map[string]string{
		"data/gods.parquet":  "gods",
		"God.parquet":        "God",
		"/tmp/a.b.parquet":   "a.b",
		"no_extension":       "no_extension",
		"dir/Temple.PARQUET": "Temple",
	}
	for path, want := range tests {
		if got := FamilyName(path); got != want {
			t.Errorf("FamilyName(%q) = %q, want %q", path, got, want)
		}
	}
}
