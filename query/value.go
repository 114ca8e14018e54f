package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValueKind is the discriminant of a Value
type ValueKind int

const (
	ValueString     ValueKind = iota // string literal
	ValueInt                         // integer literal (int64)
	ValueFloat                       // decimal literal (float64)
	ValueBool                        // true / false
	ValueList                        // [a, b, ...], IN lists and BETWEEN bounds
	ValueMap                         // {k: v, ...} as ordered attribute-value pairs
	ValueTyped                       // convert(value, type)
	ValueParam                       // @name placeholder
	ValueConditions                  // children of AND / OR / NOT
	ValueNative                      // any other Go value supplied by the caller
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueBool:
		return "bool"
	case ValueList:
		return "list"
	case ValueMap:
		return "map"
	case ValueTyped:
		return "typed"
	case ValueParam:
		return "param"
	case ValueConditions:
		return "conditions"
	case ValueNative:
		return "native"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is an immutable literal, or a handle to a parameter slot.
//
// The payload held in raw depends on kind:
//
//	ValueString     string
//	ValueInt        int64
//	ValueFloat      float64
//	ValueBool       bool
//	ValueList       []Value
//	ValueMap        []Column
//	ValueTyped      Value (the raw literal) plus typeName
//	ValueParam      nothing; params and slot locate the holder
//	ValueConditions []Condition
//	ValueNative     interface{}
type Value struct {
	kind     ValueKind
	raw      interface{}
	typeName string
	params   *Params
	slot     int
}

// ValueOf wraps a Go value. Integers become ValueInt, floats ValueFloat,
// []interface{} a list and map[string]interface{} a map with keys in sorted
// order. A Value is returned unchanged.
func ValueOf(v interface{}) Value {
	switch val := v.(type) {
	case Value:
		return val
	case string:
		return Value{kind: ValueString, raw: val}
	case bool:
		return Value{kind: ValueBool, raw: val}
	case int:
		return Value{kind: ValueInt, raw: int64(val)}
	case int8:
		return Value{kind: ValueInt, raw: int64(val)}
	case int16:
		return Value{kind: ValueInt, raw: int64(val)}
	case int32:
		return Value{kind: ValueInt, raw: int64(val)}
	case int64:
		return Value{kind: ValueInt, raw: val}
	case uint8:
		return Value{kind: ValueInt, raw: int64(val)}
	case uint16:
		return Value{kind: ValueInt, raw: int64(val)}
	case uint32:
		return Value{kind: ValueInt, raw: int64(val)}
	case float32:
		return Value{kind: ValueFloat, raw: float64(val)}
	case float64:
		return Value{kind: ValueFloat, raw: val}
	case []Value:
		return Value{kind: ValueList, raw: append([]Value(nil), val...)}
	case []interface{}:
		list := make([]Value, len(val))
		for i, item := range val {
			list[i] = ValueOf(item)
		}
		return Value{kind: ValueList, raw: list}
	case []string:
		list := make([]Value, len(val))
		for i, item := range val {
			list[i] = ValueOf(item)
		}
		return Value{kind: ValueList, raw: list}
	case []Column:
		return Value{kind: ValueMap, raw: append([]Column(nil), val...)}
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		columns := make([]Column, len(keys))
		for i, k := range keys {
			columns[i] = Column{Name: k, Value: ValueOf(val[k])}
		}
		return Value{kind: ValueMap, raw: columns}
	case []Condition:
		return Value{kind: ValueConditions, raw: append([]Condition(nil), val...)}
	default:
		return Value{kind: ValueNative, raw: v}
	}
}

// Typed tags a value with a conversion type name. The conversion itself runs
// only when the consumer calls Coerce.
func Typed(v interface{}, typeName string) Value {
	return Value{kind: ValueTyped, raw: ValueOf(v), typeName: typeName}
}

// Kind returns the value discriminant
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsParam reports whether the value is a parameter placeholder
func (v Value) IsParam() bool {
	return v.kind == ValueParam
}

// ParamName returns the placeholder name, or "" for literals
func (v Value) ParamName() string {
	if v.kind != ValueParam || v.params == nil {
		return ""
	}
	return v.params.nameAt(v.slot)
}

// TypeName returns the conversion type of a typed value
func (v Value) TypeName() string {
	return v.typeName
}

// Get returns the Go representation of the value. Lists resolve to
// []interface{}, maps to []Column and parameters to their bound value.
// Typed values return their raw literal; use Coerce to convert them.
//
// Reading an unbound parameter fails with an unbound parameter error.
func (v Value) Get() (interface{}, error) {
	switch v.kind {
	case ValueList:
		items := v.raw.([]Value)
		out := make([]interface{}, len(items))
		for i, item := range items {
			resolved, err := item.Get()
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	case ValueTyped:
		return v.raw.(Value).Get()
	case ValueParam:
		if v.params == nil {
			return nil, unboundError(nil)
		}
		return v.params.valueAt(v.slot)
	default:
		return v.raw, nil
	}
}

// As converts the value to typeName using the default converter registry
func (v Value) As(typeName string) (interface{}, error) {
	return v.AsWith(DefaultConverters(), typeName)
}

// AsWith converts the value to typeName using the given registry
func (v Value) AsWith(registry *ConverterRegistry, typeName string) (interface{}, error) {
	raw, err := v.Get()
	if err != nil {
		return nil, err
	}
	return registry.Convert(typeName, raw)
}

// Coerce resolves the value and, for typed values, runs the conversion named
// in convert(value, type). Other kinds are returned as Get returns them.
func (v Value) Coerce() (interface{}, error) {
	return v.CoerceWith(DefaultConverters())
}

// CoerceWith is Coerce with an explicit converter registry
func (v Value) CoerceWith(registry *ConverterRegistry) (interface{}, error) {
	if v.kind == ValueTyped {
		return v.raw.(Value).AsWith(registry, v.typeName)
	}
	return v.Get()
}

// List returns the elements of a list value
func (v Value) List() ([]Value, bool) {
	items, ok := v.raw.([]Value)
	if !ok || v.kind != ValueList {
		return nil, false
	}
	return append([]Value(nil), items...), true
}

// Columns returns the attribute-value pairs of a map value
func (v Value) Columns() ([]Column, bool) {
	columns, ok := v.raw.([]Column)
	if !ok || v.kind != ValueMap {
		return nil, false
	}
	return append([]Column(nil), columns...), true
}

// Conditions returns the children held by an AND, OR or NOT payload
func (v Value) Conditions() ([]Condition, bool) {
	conditions, ok := v.raw.([]Condition)
	if !ok || v.kind != ValueConditions {
		return nil, false
	}
	return append([]Condition(nil), conditions...), true
}

// Inner returns the raw literal of a typed value
func (v Value) Inner() (Value, bool) {
	inner, ok := v.raw.(Value)
	if !ok || v.kind != ValueTyped {
		return Value{}, false
	}
	return inner, true
}

// String renders the value in query syntax
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.kind {
	case ValueString:
		sb.WriteString(quote(v.raw.(string)))
	case ValueInt:
		sb.WriteString(strconv.FormatInt(v.raw.(int64), 10))
	case ValueFloat:
		s := strconv.FormatFloat(v.raw.(float64), 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		sb.WriteString(s)
	case ValueBool:
		sb.WriteString(strconv.FormatBool(v.raw.(bool)))
	case ValueList:
		sb.WriteByte('[')
		for i, item := range v.raw.([]Value) {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.write(sb)
		}
		sb.WriteByte(']')
	case ValueMap:
		sb.WriteByte('{')
		for i, column := range v.raw.([]Column) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(quote(column.Name))
			sb.WriteString(": ")
			column.Value.write(sb)
		}
		sb.WriteByte('}')
	case ValueTyped:
		sb.WriteString("convert(")
		v.raw.(Value).write(sb)
		sb.WriteString(", ")
		sb.WriteString(v.typeName)
		sb.WriteByte(')')
	case ValueParam:
		sb.WriteByte('@')
		sb.WriteString(v.ParamName())
	case ValueConditions:
		for i, c := range v.raw.([]Condition) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(c.String())
		}
	default:
		fmt.Fprintf(sb, "%v", v.raw)
	}
}

// quote renders s as a double-quoted string using the escapes the lexer reads
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// Column is a named value: an attribute of an entity or one entry of a map
// literal.
type Column struct {
	Name  string
	Value Value
}

// NewColumn creates a column from a Go value
func NewColumn(name string, value interface{}) Column {
	return Column{Name: name, Value: ValueOf(value)}
}

// Get returns the resolved column value
func (c Column) Get() (interface{}, error) {
	return c.Value.Get()
}

func (c Column) String() string {
	return c.Name + " = " + c.Value.String()
}
