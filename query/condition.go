package query

import (
	"errors"
	"fmt"
	"strings"
)

// ConditionType identifies the operator of a Condition
type ConditionType int

const (
	Equals ConditionType = iota
	GreaterThan
	GreaterEqualsThan
	LesserThan
	LesserEqualsThan
	Between
	In
	Like
	Not
	And
	Or
)

var conditionNames = map[ConditionType]string{
	Equals:            "EQUALS",
	GreaterThan:       "GREATER_THAN",
	GreaterEqualsThan: "GREATER_EQUALS_THAN",
	LesserThan:        "LESSER_THAN",
	LesserEqualsThan:  "LESSER_EQUALS_THAN",
	Between:           "BETWEEN",
	In:                "IN",
	Like:              "LIKE",
	Not:               "NOT",
	And:               "AND",
	Or:                "OR",
}

func (t ConditionType) String() string {
	if name, ok := conditionNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ConditionType(%d)", int(t))
}

// IsComposite reports whether the type combines child conditions
func (t ConditionType) IsComposite() bool {
	return t == And || t == Or || t == Not
}

// operator returns the query syntax for comparison types
func (t ConditionType) operator() string {
	switch t {
	case Equals:
		return "="
	case GreaterThan:
		return ">"
	case GreaterEqualsThan:
		return ">="
	case LesserThan:
		return "<"
	case LesserEqualsThan:
		return "<="
	case Between:
		return "between"
	case In:
		return "in"
	case Like:
		return "like"
	default:
		return strings.ToLower(t.String())
	}
}

// Names of the synthetic columns carried by composite conditions
const (
	AndName = "_AND"
	OrName  = "_OR"
	NotName = "_NOT"
)

var (
	// ErrInvalidCondition is wrapped by every Condition.Validate failure
	ErrInvalidCondition = errors.New("invalid condition")
)

// Condition is an immutable node of a where clause. Leaves pair an attribute
// name with an operand; AND and OR hold at least two children and NOT holds
// exactly one, under the synthetic names _AND, _OR and _NOT.
type Condition struct {
	typ    ConditionType
	column Column
}

func leaf(typ ConditionType, name string, value interface{}) Condition {
	return Condition{typ: typ, column: Column{Name: name, Value: ValueOf(value)}}
}

// Eq matches entities whose attribute equals value
func Eq(name string, value interface{}) Condition {
	return leaf(Equals, name, value)
}

// Gt matches entities whose attribute is greater than value
func Gt(name string, value interface{}) Condition {
	return leaf(GreaterThan, name, value)
}

// Gte matches entities whose attribute is greater than or equal to value
func Gte(name string, value interface{}) Condition {
	return leaf(GreaterEqualsThan, name, value)
}

// Lt matches entities whose attribute is less than value
func Lt(name string, value interface{}) Condition {
	return leaf(LesserThan, name, value)
}

// Lte matches entities whose attribute is less than or equal to value
func Lte(name string, value interface{}) Condition {
	return leaf(LesserEqualsThan, name, value)
}

// BetweenOf matches entities whose attribute lies in [low, high]
func BetweenOf(name string, low, high interface{}) Condition {
	return leaf(Between, name, []Value{ValueOf(low), ValueOf(high)})
}

// InOf matches entities whose attribute equals one of values
func InOf(name string, values ...interface{}) Condition {
	list := make([]Value, len(values))
	for i, v := range values {
		list[i] = ValueOf(v)
	}
	return leaf(In, name, list)
}

// LikeOf matches entities whose attribute matches a % / _ pattern
func LikeOf(name string, pattern interface{}) Condition {
	return leaf(Like, name, pattern)
}

// NotOf negates c
func NotOf(c Condition) Condition {
	return Condition{typ: Not, column: Column{Name: NotName, Value: ValueOf([]Condition{c})}}
}

// AndOf combines conditions that must all match
func AndOf(conditions ...Condition) Condition {
	return Condition{typ: And, column: Column{Name: AndName, Value: ValueOf(conditions)}}
}

// OrOf combines conditions of which at least one must match
func OrOf(conditions ...Condition) Condition {
	return Condition{typ: Or, column: Column{Name: OrName, Value: ValueOf(conditions)}}
}

// Type returns the condition operator
func (c Condition) Type() ConditionType {
	return c.typ
}

// Name returns the attribute name, or the synthetic name of a composite
func (c Condition) Name() string {
	return c.column.Name
}

// Value returns the operand of a leaf. Composites return a ValueConditions
// value holding their children.
func (c Condition) Value() Value {
	return c.column.Value
}

// Column returns the name/value pair of the condition
func (c Condition) Column() Column {
	return c.column
}

// Children returns the children of a composite condition, nil for leaves
func (c Condition) Children() []Condition {
	if !c.typ.IsComposite() {
		return nil
	}
	children, _ := c.column.Value.Conditions()
	return children
}

// Validate checks the structural rules of the tree rooted at c
func (c Condition) Validate() error {
	return c.validate(0)
}

func (c Condition) validate(depth int) error {
	if depth > MaxConditionTreeDepth {
		return fmt.Errorf("%w: %w", ErrInvalidCondition, ErrConditionTooDeep)
	}
	switch c.typ {
	case And, Or:
		children := c.Children()
		if len(children) < 2 {
			return fmt.Errorf("%w: %s needs at least two children, got %d", ErrInvalidCondition, c.typ, len(children))
		}
		for _, child := range children {
			if err := child.validate(depth + 1); err != nil {
				return err
			}
		}
		return nil
	case Not:
		children := c.Children()
		if len(children) != 1 {
			return fmt.Errorf("%w: NOT needs exactly one child, got %d", ErrInvalidCondition, len(children))
		}
		return children[0].validate(depth + 1)
	}

	if c.column.Name == "" {
		return fmt.Errorf("%w: %s: %w", ErrInvalidCondition, c.typ, ErrEmptyName)
	}
	switch c.typ {
	case Between:
		items, ok := c.column.Value.List()
		if !ok || len(items) != 2 {
			return fmt.Errorf("%w: BETWEEN on %s needs exactly two bounds", ErrInvalidCondition, c.column.Name)
		}
	case In:
		items, ok := c.column.Value.List()
		if !ok || len(items) == 0 {
			return fmt.Errorf("%w: IN on %s needs a non-empty list", ErrInvalidCondition, c.column.Name)
		}
	case Like:
		v := c.column.Value
		if v.Kind() != ValueString && !v.IsParam() {
			return fmt.Errorf("%w: LIKE on %s needs a string pattern, got %s", ErrInvalidCondition, c.column.Name, v.Kind())
		}
	}
	return nil
}

// String renders the condition in query syntax. Composite children are
// parenthesised so the text parses back to the same tree.
func (c Condition) String() string {
	switch c.typ {
	case And, Or:
		parts := make([]string, 0, 2)
		for _, child := range c.Children() {
			parts = append(parts, child.operand())
		}
		return strings.Join(parts, " "+strings.ToLower(c.typ.String())+" ")
	case Not:
		children := c.Children()
		if len(children) != 1 {
			return "not ()"
		}
		return "not " + children[0].operand()
	case Between:
		items, _ := c.column.Value.List()
		if len(items) == 2 {
			return fmt.Sprintf("%s between %s and %s", c.column.Name, items[0], items[1])
		}
	case In:
		items, _ := c.column.Value.List()
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = item.String()
		}
		return fmt.Sprintf("%s in (%s)", c.column.Name, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s %s %s", c.column.Name, c.typ.operator(), c.column.Value)
}

func (c Condition) operand() string {
	if c.typ == And || c.typ == Or {
		return "(" + c.String() + ")"
	}
	return c.String()
}
