package query

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestValueOf_Kinds(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want ValueKind
	}{
		{name: "string", in: "a", want: ValueString},
		{name: "int", in: 1, want: ValueInt},
		{name: "int32", in: int32(1), want: ValueInt},
		{name: "uint16", in: uint16(1), want: ValueInt},
		{name: "float32", in: float32(1.5), want: ValueFloat},
		{name: "bool", in: true, want: ValueBool},
		{name: "interface slice", in: []interface{}{1, "a"}, want: ValueList},
		{name: "string slice", in: []string{"a"}, want: ValueList},
		{name: "map", in: map[string]interface{}{"a": 1}, want: ValueMap},
		{name: "columns", in: []Column{NewColumn("a", 1)}, want: ValueMap},
		{name: "time", in: time.Unix(0, 0), want: ValueNative},
		{name: "uint64", in: uint64(1), want: ValueNative},
		{name: "value passes through", in: ValueOf("x"), want: ValueString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValueOf(tt.in).Kind(); got != tt.want {
				t.Errorf("ValueOf(%#v).Kind() = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValue_Get(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want interface{}
	}{
		{name: "int widened", v: ValueOf(int32(7)), want: int64(7)},
		{name: "float widened", v: ValueOf(float32(0.5)), want: float64(0.5)},
		{name: "nested list", v: ValueOf([]interface{}{1, []interface{}{"a"}}), want: []interface{}{int64(1), []interface{}{"a"}}},
		{name: "typed returns raw literal", v: Typed("10", "int"), want: "10"},
		{name: "map keys sorted", v: ValueOf(map[string]interface{}{"b": 2, "a": 1}), want: []Column{NewColumn("a", 1), NewColumn("b", 2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.Get()
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Get() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestValue_ListWithUnboundParam(t *testing.T) {
	p := NewParams()
	list := ValueOf([]Value{ValueOf(1), p.Add("x")})

	if _, err := list.Get(); !IsUnboundParameter(err) {
		t.Fatalf("Get() error = %v, want unbound parameter", err)
	}
	if err := p.Bind("x", "y"); err != nil {
		t.Fatal(err)
	}
	got, err := list.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got, []interface{}{int64(1), "y"}) {
		t.Errorf("Get() = %v", got)
	}
}

func TestValue_Coerce(t *testing.T) {
	id := uuid.MustParse("6f1c2a9e-3b8d-4f5e-a7c6-1d2e3f4a5b62")

	tests := []struct {
		name    string
		v       Value
		want    interface{}
		wantErr bool
	}{
		{name: "untyped passes through", v: ValueOf("10"), want: "10"},
		{name: "string to int", v: Typed("10", "int"), want: 10},
		{name: "string to int64", v: Typed("10", "int64"), want: int64(10)},
		{name: "float to int32", v: Typed(3.0, "int32"), want: int32(3)},
		{name: "int32 overflow", v: Typed(int64(1) << 40, "int32"), wantErr: true},
		{name: "fraction to int", v: Typed(3.5, "int"), wantErr: true},
		{name: "int to string", v: Typed(42, "string"), want: "42"},
		{name: "string to bool", v: Typed("true", "bool"), want: true},
		{name: "int to float", v: Typed(2, "float"), want: float64(2)},
		{name: "string to float32", v: Typed("1.5", "float32"), want: float32(1.5)},
		{name: "date truncates", v: Typed("2021-03-04 15:16:17", "date"), want: time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)},
		{name: "timestamp alias", v: Typed("2021-03-04T15:16:17Z", "timestamp"), want: time.Date(2021, 3, 4, 15, 16, 17, 0, time.UTC)},
		{name: "unix seconds", v: Typed(0, "time"), want: time.Unix(0, 0).UTC()},
		{name: "duration string", v: Typed("1m30s", "duration"), want: 90 * time.Second},
		{name: "duration nanoseconds", v: Typed(5, "duration"), want: time.Duration(5)},
		{name: "uuid", v: Typed(id.String(), "uuid"), want: id},
		{name: "bad uuid", v: Typed("not-a-uuid", "uuid"), wantErr: true},
		{name: "case insensitive type", v: Typed("7", "INT64"), want: int64(7)},
		{name: "unknown type", v: Typed("7", "java.lang.Integer"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.Coerce()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Coerce() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrConversion) {
					t.Errorf("Coerce() error = %v, want ErrConversion", err)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Coerce() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestValue_As(t *testing.T) {
	got, err := ValueOf("12").As("int64")
	if err != nil || got != int64(12) {
		t.Errorf(`As("int64") = %v, %v; want 12`, got, err)
	}

	p := NewParams()
	if _, err := p.Add("x").As("int"); !IsUnboundParameter(err) {
		t.Errorf("As() on unbound param error = %v, want unbound parameter", err)
	}
}

func TestValue_String(t *testing.T) {
	p := NewParams()
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{name: "escaped string", v: ValueOf("a\"b\\c\nd"), want: `"a\"b\\c\nd"`},
		{name: "int", v: ValueOf(-3), want: "-3"},
		{name: "whole float", v: ValueOf(3.0), want: "3.0"},
		{name: "float", v: ValueOf(0.25), want: "0.25"},
		{name: "list", v: ValueOf([]interface{}{1, "a"}), want: `[1, "a"]`},
		{name: "map", v: ValueOf([]Column{NewColumn("k", true)}), want: `{"k": true}`},
		{name: "typed", v: Typed("1", "int"), want: `convert("1", int)`},
		{name: "param", v: p.Add("age"), want: "@age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestConverterRegistry(t *testing.T) {
	r := NewConverterRegistry()
	r.Register(ConverterFunc{TypeName: "Upper", Fn: func(v interface{}) (interface{}, error) {
		s, err := valueToString(v)
		if err != nil {
			return nil, err
		}
		return s + "!", nil
	}})

	if !r.Has("upper") || !r.Has("UPPER") {
		t.Error("Has() should be case insensitive")
	}
	if r.Has("int") {
		t.Error("a new registry must not carry the built-in converters")
	}

	got, err := Typed("hi", "upper").CoerceWith(r)
	if err != nil || got != "hi!" {
		t.Errorf("CoerceWith() = %v, %v; want hi!", got, err)
	}

	if _, err := r.Convert("missing", 1); !errors.Is(err, ErrConversion) {
		t.Errorf("Convert() of unknown type error = %v, want ErrConversion", err)
	}

	names := DefaultConverters().Names()
	for _, want := range []string{"bool", "date", "duration", "float", "int", "string", "time", "timestamp", "uuid"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("DefaultConverters() missing %q in %v", want, names)
		}
	}
}
