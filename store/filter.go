package store

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vegasq/columnql/query"
)

// evaluator matches entities against condition trees
type evaluator struct {
	converters *query.ConverterRegistry
}

// match reports whether row satisfies c. Attributes missing from the row
// never satisfy a comparison. Operands the store cannot compare fail with
// an unsupported error.
func (e evaluator) match(row query.Entity, c query.Condition) (bool, error) {
	switch c.Type() {
	case query.And:
		for _, child := range c.Children() {
			ok, err := e.match(row, child)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case query.Or:
		for _, child := range c.Children() {
			ok, err := e.match(row, child)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case query.Not:
		children := c.Children()
		if len(children) != 1 {
			return false, query.Unsupported("NOT with %d children", len(children))
		}
		ok, err := e.match(row, children[0])
		return !ok && err == nil, err
	}

	actual, exists := lookup(row, c.Name())
	if !exists || actual == nil {
		return false, nil
	}

	switch c.Type() {
	case query.Equals:
		if columns, ok := c.Value().Columns(); ok {
			return e.matchMap(actual, columns)
		}
		expected, err := e.operand(c.Value())
		if err != nil {
			return false, err
		}
		cmp, ok := compareValues(actual, expected)
		return ok && cmp == 0, nil

	case query.GreaterThan, query.GreaterEqualsThan, query.LesserThan, query.LesserEqualsThan:
		expected, err := e.operand(c.Value())
		if err != nil {
			return false, err
		}
		cmp, ok := compareValues(actual, expected)
		if !ok {
			return false, nil
		}
		switch c.Type() {
		case query.GreaterThan:
			return cmp > 0, nil
		case query.GreaterEqualsThan:
			return cmp >= 0, nil
		case query.LesserThan:
			return cmp < 0, nil
		default:
			return cmp <= 0, nil
		}

	case query.Between:
		bounds, err := e.operands(c.Value())
		if err != nil {
			return false, err
		}
		if len(bounds) != 2 {
			return false, query.Unsupported("BETWEEN on %s with %d bounds", c.Name(), len(bounds))
		}
		low, okLow := compareValues(actual, bounds[0])
		high, okHigh := compareValues(actual, bounds[1])
		return okLow && okHigh && low >= 0 && high <= 0, nil

	case query.In:
		candidates, err := e.operands(c.Value())
		if err != nil {
			return false, err
		}
		for _, candidate := range candidates {
			if cmp, ok := compareValues(actual, candidate); ok && cmp == 0 {
				return true, nil
			}
		}
		return false, nil

	case query.Like:
		pattern, err := e.operand(c.Value())
		if err != nil {
			return false, err
		}
		p, ok := pattern.(string)
		if !ok {
			return false, query.Unsupported("LIKE pattern of type %T", pattern)
		}
		s, ok := toString(actual)
		return ok && matchLikePattern(s, p), nil

	default:
		return false, query.Unsupported("condition %s", c.Type())
	}
}

// matchMap compares the listed sub-attributes of a nested attribute
func (e evaluator) matchMap(actual interface{}, columns []query.Column) (bool, error) {
	nested, ok := actual.(map[string]interface{})
	if !ok {
		return false, nil
	}
	for _, column := range columns {
		value, exists := nested[column.Name]
		if !exists {
			return false, nil
		}
		if sub, ok := column.Value.Columns(); ok {
			matched, err := e.matchMap(value, sub)
			if err != nil || !matched {
				return false, err
			}
			continue
		}
		expected, err := e.operand(column.Value)
		if err != nil {
			return false, err
		}
		if cmp, ok := compareValues(value, expected); !ok || cmp != 0 {
			return false, nil
		}
	}
	return true, nil
}

// operand resolves a scalar operand, running typed conversions
func (e evaluator) operand(v query.Value) (interface{}, error) {
	switch v.Kind() {
	case query.ValueList, query.ValueMap, query.ValueConditions:
		return nil, query.Unsupported("%s operand in comparison", v.Kind())
	}
	resolved, err := v.CoerceWith(e.converters)
	if err != nil {
		return nil, err
	}
	if !isComparable(resolved) {
		return nil, query.Unsupported("operand of type %T", resolved)
	}
	return resolved, nil
}

// operands resolves the elements of a list operand
func (e evaluator) operands(v query.Value) ([]interface{}, error) {
	items, ok := v.List()
	if !ok {
		return nil, query.Unsupported("%s operand where a list is required", v.Kind())
	}
	out := make([]interface{}, len(items))
	for i, item := range items {
		resolved, err := e.operand(item)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

// lookup finds name in row, walking nested maps for dotted names
func lookup(row query.Entity, name string) (interface{}, bool) {
	if v, ok := row[name]; ok {
		return v, true
	}
	if !strings.Contains(name, ".") {
		return nil, false
	}

	var current interface{} = map[string]interface{}(row)
	for _, part := range strings.Split(name, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

func isComparable(v interface{}) bool {
	switch v.(type) {
	case string, []byte, bool, time.Time, time.Duration, uuid.UUID:
		return true
	}
	_, ok := toFloat64(v)
	return ok
}

// compareValues orders a against b. The second result is false when the
// two values have no common ordering.
func compareValues(a, b interface{}) (int, bool) {
	if a == nil || b == nil {
		return 0, a == nil && b == nil
	}

	switch bv := b.(type) {
	case time.Time:
		at, ok := toTime(a)
		if !ok {
			return 0, false
		}
		return at.Compare(bv), true
	case uuid.UUID:
		as, ok := toString(a)
		if !ok {
			if au, isUUID := a.(uuid.UUID); isUUID {
				as = au.String()
			} else {
				return 0, false
			}
		}
		return strings.Compare(strings.ToLower(as), bv.String()), true
	case time.Duration:
		if ad, ok := a.(time.Duration); ok {
			return compareFloat(float64(ad), float64(bv)), true
		}
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := toTime(b)
		if !ok {
			return 0, false
		}
		return at.Compare(bt), true
	}

	// Try numeric comparison
	if an, ok := toFloat64(a); ok {
		if bn, ok := toFloat64(b); ok {
			return compareFloat(an, bn), true
		}
		return 0, false
	}

	// Try string comparison
	if as, ok := toString(a); ok {
		if bs, ok := toString(b); ok {
			return strings.Compare(as, bs), true
		}
		return 0, false
	}

	// Try boolean comparison
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0, true
			case !ab:
				return -1, true
			default:
				return 1, true
			}
		}
	}
	return 0, false
}

func compareFloat(a, b float64) int {
	const epsilon = 1e-9
	if math.Abs(a-b) < epsilon*math.Max(1.0, math.Max(math.Abs(a), math.Abs(b))) {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func toTime(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		converted, err := query.DefaultConverters().Convert("time", val)
		if err != nil {
			return time.Time{}, false
		}
		return converted.(time.Time), true
	default:
		return time.Time{}, false
	}
}

// toFloat64 converts a numeric value to float64 if possible
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// toString accepts strings and byte slices, which parquet uses for
// BYTE_ARRAY columns without a string annotation
func toString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case []byte:
		return string(val), true
	default:
		return "", false
	}
}

// matchLikePattern matches s against a LIKE pattern where % matches any
// sequence of characters and _ matches exactly one
func matchLikePattern(s, pattern string) bool {
	str := []rune(s)
	pat := []rune(pattern)

	si, pi := 0, 0
	star, mark := -1, 0
	for si < len(str) {
		switch {
		case pi < len(pat) && (pat[pi] == '_' || pat[pi] == str[si]):
			si++
			pi++
		case pi < len(pat) && pat[pi] == '%':
			star = pi
			mark = si
			pi++
		case star >= 0:
			pi = star + 1
			mark++
			si = mark
		default:
			return false
		}
	}
	for pi < len(pat) && pat[pi] == '%' {
		pi++
	}
	return pi == len(pat)
}

// project keeps the listed attributes; an empty list keeps a copy of all
func project(row query.Entity, columns []string) query.Entity {
	out := make(query.Entity, len(row))
	if len(columns) == 0 {
		for k, v := range row {
			out[k] = v
		}
		return out
	}
	for _, name := range columns {
		if v, ok := lookup(row, name); ok {
			out[name] = v
		}
	}
	return out
}
