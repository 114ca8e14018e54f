package query

import (
	"errors"
	"reflect"
	"testing"
)

func TestSelectBuilder(t *testing.T) {
	q, err := Select("name", "age").
		From("God").
		Where(AndOf(Eq("name", "Ada"), Gt("age", 10))).
		OrderBy(SortDesc("age")).
		Skip(1).
		Limit(5).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	parsed, _, err := Parse(`select name, age from God where name = "Ada" and age > 10 order by age desc skip 1 limit 5`, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(q, parsed) {
		t.Errorf("built query differs from parsed query:\n%v\n%v", q, parsed)
	}
}

func TestSelectBuilder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		b       *SelectBuilder
		wantErr error
	}{
		{name: "missing family", b: Select(), wantErr: ErrEmptyName},
		{name: "empty column", b: Select("").From("God"), wantErr: ErrEmptyName},
		{name: "empty sort", b: Select().From("God").OrderBy(SortAsc("")), wantErr: ErrEmptyName},
		{name: "negative skip", b: Select().From("God").Skip(-1), wantErr: ErrNegativeBound},
		{name: "negative limit", b: Select().From("God").Limit(-1), wantErr: ErrNegativeBound},
		{name: "invalid condition", b: Select().From("God").Where(AndOf(Eq("a", 1))), wantErr: ErrInvalidCondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
			}
			if !IsSyntax(err) {
				t.Errorf("Build() error = %v, want syntax error", err)
			}
		})
	}
}

func TestSelectBuilder_Copies(t *testing.T) {
	columns := []string{"name"}
	b := Select(columns...).From("God")
	q, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	columns[0] = "changed"
	got := q.Columns()
	got[0] = "mutated"
	b.OrderBy(SortAsc("age"))

	if q.Columns()[0] != "name" {
		t.Errorf("Columns() = %v, query must not alias caller slices", q.Columns())
	}
	if len(q.Sorts()) != 0 {
		t.Errorf("Sorts() = %v, built query must not change with the builder", q.Sorts())
	}
}

func TestDeleteBuilder(t *testing.T) {
	q, err := Delete().From("God").Where(Eq("name", "Ares")).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if q.String() != `delete from God where name = "Ares"` {
		t.Errorf("String() = %s", q.String())
	}

	if _, err := Delete().Build(); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Build() without family error = %v, want ErrEmptyName", err)
	}
}
