package query

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
)

// ErrConversion is wrapped by every converter failure
var ErrConversion = errors.New("conversion failed")

// Converter converts a resolved value to a target Go type
type Converter interface {
	// Name returns the type name used in convert(value, name)
	Name() string
	// Convert converts v, returning an error wrapping ErrConversion when v
	// cannot be represented
	Convert(v interface{}) (interface{}, error)
}

// ConverterFunc adapts a function to the Converter interface
type ConverterFunc struct {
	TypeName string
	Fn       func(v interface{}) (interface{}, error)
}

func (f ConverterFunc) Name() string { return f.TypeName }

func (f ConverterFunc) Convert(v interface{}) (interface{}, error) {
	return f.Fn(v)
}

// ConverterRegistry resolves the type names accepted by convert(value, type).
// Names are case-insensitive.
type ConverterRegistry struct {
	mu         sync.RWMutex
	converters map[string]Converter
}

// NewConverterRegistry creates an empty registry
func NewConverterRegistry() *ConverterRegistry {
	return &ConverterRegistry{
		converters: make(map[string]Converter),
	}
}

// Register registers a converter under its name
func (r *ConverterRegistry) Register(c Converter) {
	r.RegisterAlias(c.Name(), c)
}

// RegisterAlias registers a converter under an additional name
func (r *ConverterRegistry) RegisterAlias(name string, c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.converters[strings.ToLower(name)] = c
}

// Get retrieves a converter by name (case-insensitive)
func (r *ConverterRegistry) Get(name string) (Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, exists := r.converters[strings.ToLower(name)]
	return c, exists
}

// Has reports whether name resolves to a converter
func (r *ConverterRegistry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the registered type names
func (r *ConverterRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.converters))
	for name := range r.converters {
		names = append(names, name)
	}
	return names
}

// Convert converts v to the type registered as name
func (r *ConverterRegistry) Convert(name string, v interface{}) (interface{}, error) {
	c, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q", ErrConversion, name)
	}
	return c.Convert(v)
}

var defaultConverters *ConverterRegistry

func init() {
	defaultConverters = NewConverterRegistry()
	registerBuiltins(defaultConverters)
}

// DefaultConverters returns the registry used when none is configured
func DefaultConverters() *ConverterRegistry {
	return defaultConverters
}

func registerBuiltins(r *ConverterRegistry) {
	r.Register(ConverterFunc{"string", func(v interface{}) (interface{}, error) { return valueToString(v) }})
	r.Register(ConverterFunc{"bool", func(v interface{}) (interface{}, error) { return valueToBool(v) }})
	r.Register(ConverterFunc{"int64", func(v interface{}) (interface{}, error) { return valueToInt64(v) }})
	r.RegisterAlias("int", ConverterFunc{"int", func(v interface{}) (interface{}, error) {
		n, err := valueToInt64(v)
		if err != nil {
			return nil, err
		}
		return int(n), nil
	}})
	r.Register(ConverterFunc{"int32", func(v interface{}) (interface{}, error) {
		n, err := valueToInt64(v)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %d overflows int32", ErrConversion, n)
		}
		return int32(n), nil
	}})
	r.Register(ConverterFunc{"float64", func(v interface{}) (interface{}, error) { return valueToNumber(v) }})
	r.RegisterAlias("float", ConverterFunc{"float", func(v interface{}) (interface{}, error) { return valueToNumber(v) }})
	r.Register(ConverterFunc{"float32", func(v interface{}) (interface{}, error) {
		f, err := valueToNumber(v)
		if err != nil {
			return nil, err
		}
		return float32(f), nil
	}})
	r.Register(ConverterFunc{"date", func(v interface{}) (interface{}, error) {
		t, err := parseTime(v)
		if err != nil {
			return nil, err
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
	}})
	timestamp := ConverterFunc{"time", func(v interface{}) (interface{}, error) { return parseTime(v) }}
	r.Register(timestamp)
	r.RegisterAlias("timestamp", timestamp)
	r.Register(ConverterFunc{"duration", func(v interface{}) (interface{}, error) { return parseDuration(v) }})
	r.Register(ConverterFunc{"uuid", func(v interface{}) (interface{}, error) { return parseUUID(v) }})
}

// valueToString converts scalars to their string form
func valueToString(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val), nil
	case float32, float64:
		return fmt.Sprintf("%v", val), nil
	case bool:
		return fmt.Sprintf("%t", val), nil
	case time.Time:
		return val.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		return "", fmt.Errorf("%w: cannot convert %T to string", ErrConversion, v)
	}
}

// valueToNumber converts numerics and numeric strings to float64
func valueToNumber(v interface{}) (float64, error) {
	if f, ok := toFloat64(v); ok {
		return f, nil
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrConversion, s)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: cannot convert %T to number", ErrConversion, v)
}

// valueToInt64 converts integers, integral floats and numeric strings
func valueToInt64(v interface{}) (int64, error) {
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint:
		if uint64(val) > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows int64", ErrConversion, val)
		}
		return int64(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows int64", ErrConversion, val)
		}
		return int64(val), nil
	case float32, float64:
		f, _ := toFloat64(val)
		if f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrConversion, f)
		}
		return int64(f), nil
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
			return int64(f), nil
		}
		return 0, fmt.Errorf("%w: %q is not an integer", ErrConversion, val)
	default:
		return 0, fmt.Errorf("%w: cannot convert %T to integer", ErrConversion, v)
	}
}

func valueToBool(v interface{}) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a boolean", ErrConversion, val)
		}
		return b, nil
	default:
		if f, ok := toFloat64(v); ok {
			return f != 0, nil
		}
		return false, fmt.Errorf("%w: cannot convert %T to bool", ErrConversion, v)
	}
}

// parseTime accepts time.Time, unix seconds and any layout dateparse
// recognises
func parseTime(v interface{}) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		t, err := dateparse.ParseAny(strings.TrimSpace(val))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: cannot parse date %q: %v", ErrConversion, val, err)
		}
		return t, nil
	default:
		n, err := valueToInt64(v)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: cannot convert %T to time", ErrConversion, v)
		}
		return time.Unix(n, 0).UTC(), nil
	}
}

// parseDuration accepts Go duration strings and integer nanoseconds
func parseDuration(v interface{}) (time.Duration, error) {
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrConversion, err)
		}
		return d, nil
	default:
		n, err := valueToInt64(v)
		if err != nil {
			return 0, fmt.Errorf("%w: cannot convert %T to duration", ErrConversion, v)
		}
		return time.Duration(n), nil
	}
}

func parseUUID(v interface{}) (uuid.UUID, error) {
	switch val := v.(type) {
	case uuid.UUID:
		return val, nil
	case [16]byte:
		return uuid.UUID(val), nil
	case []byte:
		id, err := uuid.FromBytes(val)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: %v", ErrConversion, err)
		}
		return id, nil
	case string:
		id, err := uuid.Parse(strings.TrimSpace(val))
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: %q is not a uuid: %v", ErrConversion, val, err)
		}
		return id, nil
	default:
		return uuid.Nil, fmt.Errorf("%w: cannot convert %T to uuid", ErrConversion, v)
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
