// Package query parses a small column-family query language into immutable
// statement descriptors and runs them through a pluggable manager.
//
// The language supports:
//   - SELECT with an optional projection, WHERE, ORDER BY, SKIP and LIMIT
//   - DELETE with an optional WHERE
//   - comparisons (=, >, >=, <, <=), BETWEEN, IN and LIKE, each negatable
//     with NOT
//   - AND / OR folded left to right, and parenthesised groups
//   - string, number, boolean, array and map literals
//   - convert(literal, type) for typed values
//   - @name placeholders bound through prepared statements
//
// # Basic Usage
//
// Run a query against a manager:
//
//	qp := query.NewQueryParser()
//	entities, err := qp.Query(ctx, `select name, age from God where age > 10`, manager, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Prepared Statements
//
// Placeholders make a query reusable. The statement is parsed once and
// every Bind is visible to the next execution:
//
//	stmt, err := qp.Prepare(`select * from God where name = @name`, manager, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := stmt.Bind("name", "Diana"); err != nil {
//	    log.Fatal(err)
//	}
//	entities, err := stmt.ResultList(ctx)
//
// Executing while a placeholder is unbound fails with an error matching
// ErrUnboundParameter. Query and QueryAsync never accept placeholders.
//
// # Condition Folding
//
// AND and OR have no precedence. Reading left to right, consecutive uses of
// the same connector collect into one node, and a change of connector makes
// the tree built so far the first child of a new node:
//
//	a = 1 and b = 2 or c = 3    OR[AND[a, b], c]
//
// Use parentheses to group explicitly.
//
// # Building Statements
//
// Statements can also be built without text:
//
//	q, err := query.Select("name").
//	    From("God").
//	    Where(query.OrOf(query.Eq("name", "Diana"), query.Gt("age", 10))).
//	    Build()
//
// # Errors
//
// Failures are *QueryError values classified by Kind. Use errors.Is with
// ErrSyntax, ErrUnboundParameter or ErrUnsupported to test for a kind.
package query
