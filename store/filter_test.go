package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vegasq/columnql/query"
)

func TestMatchLikePattern(t *testing.T) {
	tests := []struct {
		s, pattern string
		want       bool
	}{
		{"Zeus", "Zeus", true},
		{"Zeus", "zeus", false},
		{"Zeus", "Z%", true},
		{"Zeus", "%s", true},
		{"Zeus", "%e%", true},
		{"Zeus", "_eus", true},
		{"Zeus", "__us", true},
		{"Zeus", "_us", false},
		{"Zeus", "%", true},
		{"", "%", true},
		{"", "_", false},
		{"Hermes", "H%m%s", true},
		{"Hermes", "H%x%s", false},
		{"Ἀθηνᾶ", "Ἀθη__", true},
		{"a%b", "a%b", true},
	}

	for _, tt := range tests {
		t.Run(tt.s+"/"+tt.pattern, func(t *testing.T) {
			if got := matchLikePattern(tt.s, tt.pattern); got != tt.want {
				t.Errorf("matchLikePattern(%q, %q) = %v, want %v", tt.s, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestCompareValues(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name   string
		a, b   interface{}
		want   int
		wantOK bool
	}{
		{name: "ints", a: int64(1), b: int64(2), want: -1, wantOK: true},
		{name: "int and float", a: int32(3), b: 3.0, want: 0, wantOK: true},
		{name: "float epsilon", a: 0.1 + 0.2, b: 0.3, want: 0, wantOK: true},
		{name: "strings", a: "b", b: "a", want: 1, wantOK: true},
		{name: "bytes and string", a: []byte("abc"), b: "abc", want: 0, wantOK: true},
		{name: "bools", a: false, b: true, want: -1, wantOK: true},
		{name: "times", a: day, b: day.Add(time.Hour), want: -1, wantOK: true},
		{name: "string against time", a: "2024-05-01T00:00:00Z", b: day, want: 0, wantOK: true},
		{name: "uuid against string", a: "6BA7B810-9DAD-11D1-80B4-00C04FD430C8", b: id, want: 0, wantOK: true},
		{name: "uuid against uuid", a: id, b: id, want: 0, wantOK: true},
		{name: "durations", a: time.Second, b: time.Minute, want: -1, wantOK: true},
		{name: "number against string", a: int64(1), b: "1", wantOK: false},
		{name: "bool against number", a: true, b: int64(1), wantOK: false},
		{name: "nil against value", a: nil, b: "a", wantOK: false},
		{name: "both nil", a: nil, b: nil, want: 0, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := compareValues(tt.a, tt.b)
			if ok != tt.wantOK {
				t.Fatalf("compareValues(%v, %v) ok = %v, want %v", tt.a, tt.b, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("compareValues(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	row := query.Entity{
		"name":      "Zeus",
		"home":      map[string]interface{}{"city": "Olympus", "temple": map[string]interface{}{"size": int64(10)}},
		"home.note": "flat key wins",
	}

	tests := []struct {
		name       string
		attr       string
		want       interface{}
		wantExists bool
	}{
		{name: "top level", attr: "name", want: "Zeus", wantExists: true},
		{name: "nested", attr: "home.city", want: "Olympus", wantExists: true},
		{name: "deep", attr: "home.temple.size", want: int64(10), wantExists: true},
		{name: "flat dotted key", attr: "home.note", want: "flat key wins", wantExists: true},
		{name: "missing", attr: "age", wantExists: false},
		{name: "missing nested", attr: "home.country", wantExists: false},
		{name: "through scalar", attr: "name.first", wantExists: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, exists := lookup(row, tt.attr)
			if exists != tt.wantExists {
				t.Fatalf("lookup(%q) exists = %v, want %v", tt.attr, exists, tt.wantExists)
			}
			if exists && got != tt.want {
				t.Errorf("lookup(%q) = %v, want %v", tt.attr, got, tt.want)
			}
		})
	}
}

func TestEvaluator_Match(t *testing.T) {
	e := evaluator{converters: query.DefaultConverters()}
	row := query.Entity{
		"name":    "Zeus",
		"created": time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		"id":      "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"ttl":     90 * time.Minute,
	}

	tests := []struct {
		name string
		cond query.Condition
		want bool
	}{
		{name: "typed time", cond: query.Gt("created", query.Typed("2019-12-31", "time")), want: true},
		{name: "typed date", cond: query.Lt("created", query.Typed("2019-12-31", "date")), want: false},
		{name: "typed uuid", cond: query.Eq("id", query.Typed("6BA7B810-9DAD-11D1-80B4-00C04FD430C8", "uuid")), want: true},
		{name: "typed duration", cond: query.Gte("ttl", query.Typed("1h", "duration")), want: true},
		{name: "in with typed items", cond: query.InOf("created", query.Typed("2020-01-01T00:00:00Z", "time")), want: true},
		{name: "and short circuits", cond: query.AndOf(query.Eq("name", "Hera"), query.Eq("name", []interface{}{1})), want: false},
		{name: "or short circuits", cond: query.OrOf(query.Eq("name", "Zeus"), query.Eq("name", []interface{}{1})), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.match(row, tt.cond)
			if err != nil {
				t.Fatalf("match() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("match(%v) = %v, want %v", tt.cond, got, tt.want)
			}
		})
	}
}

func TestProject(t *testing.T) {
	row := query.Entity{"name": "Zeus", "age": int64(3000)}

	all := project(row, nil)
	all["name"] = "changed"
	if row["name"] != "Zeus" {
		t.Error("project() must copy the row")
	}

	some := project(row, []string{"age", "missing"})
	if len(some) != 1 || some["age"] != int64(3000) {
		t.Errorf("project() = %v", some)
	}
}
