package query

import (
	"errors"
	"fmt"
)

// ErrNegativeBound is returned for a negative skip or limit
var ErrNegativeBound = errors.New("skip and limit must not be negative")

// SelectBuilder assembles a SelectQuery. The parser builds its statements
// through it, so hand-built and parsed queries obey the same rules.
//
//	q, err := query.Select("name", "age").
//		From("God").
//		Where(query.AndOf(query.Eq("name", "Ada"), query.Gt("age", 10))).
//		OrderBy(query.SortDesc("age")).
//		Limit(5).
//		Build()
type SelectBuilder struct {
	q   SelectQuery
	err error
}

// Select starts a select statement projecting columns; none means all
func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{q: SelectQuery{columns: append([]string(nil), columns...)}}
}

// From sets the column family
func (b *SelectBuilder) From(family string) *SelectBuilder {
	b.q.family = family
	return b
}

// Where sets the root condition
func (b *SelectBuilder) Where(c Condition) *SelectBuilder {
	b.q.condition = &c
	return b
}

// OrderBy appends sort keys
func (b *SelectBuilder) OrderBy(sorts ...Sort) *SelectBuilder {
	b.q.sorts = append(b.q.sorts, sorts...)
	return b
}

// Skip sets the number of results to skip
func (b *SelectBuilder) Skip(n int64) *SelectBuilder {
	if n < 0 && b.err == nil {
		b.err = fmt.Errorf("%w: skip %d", ErrNegativeBound, n)
	}
	b.q.skip = n
	return b
}

// Limit sets the maximum number of results
func (b *SelectBuilder) Limit(n int64) *SelectBuilder {
	if n < 0 && b.err == nil {
		b.err = fmt.Errorf("%w: limit %d", ErrNegativeBound, n)
	}
	b.q.limit = n
	return b
}

// Build validates and returns the statement
func (b *SelectBuilder) Build() (*SelectQuery, error) {
	if b.err != nil {
		return nil, invalid(b.err)
	}
	if err := ValidateName(b.q.family); err != nil {
		return nil, err
	}
	for _, column := range b.q.columns {
		if err := ValidateName(column); err != nil {
			return nil, err
		}
	}
	for _, s := range b.q.sorts {
		if err := ValidateName(s.Name); err != nil {
			return nil, err
		}
	}
	if b.q.condition != nil {
		if err := b.q.condition.Validate(); err != nil {
			return nil, invalid(err)
		}
	}
	q := b.q
	q.columns = append([]string(nil), b.q.columns...)
	q.sorts = append([]Sort(nil), b.q.sorts...)
	return &q, nil
}

// DeleteBuilder assembles a DeleteQuery
type DeleteBuilder struct {
	q DeleteQuery
}

// Delete starts a delete statement
func Delete() *DeleteBuilder {
	return &DeleteBuilder{}
}

// From sets the column family
func (b *DeleteBuilder) From(family string) *DeleteBuilder {
	b.q.family = family
	return b
}

// Where sets the root condition
func (b *DeleteBuilder) Where(c Condition) *DeleteBuilder {
	b.q.condition = &c
	return b
}

// Build validates and returns the statement
func (b *DeleteBuilder) Build() (*DeleteQuery, error) {
	if err := ValidateName(b.q.family); err != nil {
		return nil, err
	}
	if b.q.condition != nil {
		if err := b.q.condition.Validate(); err != nil {
			return nil, invalid(err)
		}
	}
	q := b.q
	return &q, nil
}
