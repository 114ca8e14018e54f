package query

import (
	"strconv"
	"strings"
)

// Direction is a sort direction
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// Sort orders results by one attribute
type Sort struct {
	Name      string
	Direction Direction
}

// SortAsc sorts by name ascending
func SortAsc(name string) Sort {
	return Sort{Name: name, Direction: Asc}
}

// SortDesc sorts by name descending
func SortDesc(name string) Sort {
	return Sort{Name: name, Direction: Desc}
}

func (s Sort) String() string {
	return s.Name + " " + strings.ToLower(s.Direction.String())
}

// Entity is one result row: attribute name to value
type Entity = map[string]interface{}

// Statement is a parsed query: *SelectQuery or *DeleteQuery
type Statement interface {
	// ColumnFamily returns the source the statement reads or deletes from
	ColumnFamily() string
	// Condition returns the root of the where clause, if any
	Condition() (Condition, bool)
	String() string

	statement()
}

// SelectQuery describes a select statement. It is immutable once built.
type SelectQuery struct {
	family    string
	columns   []string
	sorts     []Sort
	condition *Condition
	skip      int64
	limit     int64
}

func (q *SelectQuery) statement() {}

// ColumnFamily returns the source name
func (q *SelectQuery) ColumnFamily() string {
	return q.family
}

// Columns returns the projected attributes; empty means all
func (q *SelectQuery) Columns() []string {
	return append([]string(nil), q.columns...)
}

// Sorts returns the sort keys in priority order
func (q *SelectQuery) Sorts() []Sort {
	return append([]Sort(nil), q.sorts...)
}

// Condition returns the root of the where clause
func (q *SelectQuery) Condition() (Condition, bool) {
	if q.condition == nil {
		return Condition{}, false
	}
	return *q.condition, true
}

// Skip returns the number of results to skip, 0 when absent
func (q *SelectQuery) Skip() int64 {
	return q.skip
}

// Limit returns the maximum number of results, 0 when absent
func (q *SelectQuery) Limit() int64 {
	return q.limit
}

// String renders the statement in query syntax
func (q *SelectQuery) String() string {
	var sb strings.Builder
	sb.WriteString("select ")
	if len(q.columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(q.columns, ", "))
	}
	sb.WriteString(" from ")
	sb.WriteString(q.family)
	if q.condition != nil {
		sb.WriteString(" where ")
		sb.WriteString(q.condition.String())
	}
	if len(q.sorts) > 0 {
		parts := make([]string, len(q.sorts))
		for i, s := range q.sorts {
			parts[i] = s.String()
		}
		sb.WriteString(" order by ")
		sb.WriteString(strings.Join(parts, ", "))
	}
	if q.skip > 0 {
		sb.WriteString(" skip ")
		sb.WriteString(strconv.FormatInt(q.skip, 10))
	}
	if q.limit > 0 {
		sb.WriteString(" limit ")
		sb.WriteString(strconv.FormatInt(q.limit, 10))
	}
	return sb.String()
}

// DeleteQuery describes a delete statement. It is immutable once built.
type DeleteQuery struct {
	family    string
	condition *Condition
}

func (q *DeleteQuery) statement() {}

// ColumnFamily returns the source name
func (q *DeleteQuery) ColumnFamily() string {
	return q.family
}

// Condition returns the root of the where clause
func (q *DeleteQuery) Condition() (Condition, bool) {
	if q.condition == nil {
		return Condition{}, false
	}
	return *q.condition, true
}

// String renders the statement in query syntax
func (q *DeleteQuery) String() string {
	s := "delete from " + q.family
	if q.condition != nil {
		s += " where " + q.condition.String()
	}
	return s
}
