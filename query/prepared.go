package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vegasq/columnql/internal/metrics"
)

// statement is the state shared by the sync and async prepared forms
type statement struct {
	text     string
	stmt     Statement
	params   *Params
	observer Observer
	parser   *QueryParser
	logger   *slog.Logger
}

// Bind sets every placeholder named name. Unknown names are ignored.
func (s *statement) bind(name string, value interface{}) error {
	if err := s.params.Bind(name, value); err != nil {
		return fmt.Errorf("bind @%s: %w", name, err)
	}
	return nil
}

func (s *statement) bindAll(values map[string]interface{}) error {
	for name, value := range values {
		if err := s.bind(name, value); err != nil {
			return err
		}
	}
	return nil
}

// bindArgs binds args positionally to the declared parameter names
func (s *statement) bindArgs(args ...interface{}) error {
	names := s.params.ParameterNames()
	if len(args) != len(names) {
		return fmt.Errorf("statement declares %d parameters %v, got %d arguments", len(names), names, len(args))
	}
	for i, name := range names {
		if err := s.bind(name, args[i]); err != nil {
			return err
		}
	}
	return nil
}

// ready fails when a placeholder is still unbound
func (s *statement) ready() error {
	if err := s.params.check(); err != nil {
		s.logger.Warn("statement not ready", "query", s.text, "unbound", s.params.Names())
		return err
	}
	return nil
}

func (s *statement) reparse() (*statement, error) {
	stmt, params, err := s.parser.parse(s.text, s.observer)
	if err != nil {
		return nil, err
	}
	for name, value := range s.params.Values() {
		if err := params.Bind(name, value); err != nil {
			return nil, err
		}
	}
	return &statement{
		text:     s.text,
		stmt:     stmt,
		params:   params,
		observer: s.observer,
		parser:   s.parser,
		logger:   s.logger,
	}, nil
}

func recordExecution(mode string, stmt Statement, err error) {
	metrics.ExecutionsTotal.WithLabelValues(mode, statementKind(stmt), metrics.Status(err)).Inc()
}

// PreparedStatement is a parsed statement whose placeholders are bound
// before execution. The descriptor is built once; Bind writes into its
// parameter table, so repeated executions with different values reuse it.
//
// A PreparedStatement may be executed from several goroutines, but binding
// while an execution is in flight changes the values that execution reads.
type PreparedStatement struct {
	statement
	manager Manager
}

// Bind sets every placeholder named name to value
func (ps *PreparedStatement) Bind(name string, value interface{}) error {
	return ps.bind(name, value)
}

// BindAll binds each entry of values
func (ps *PreparedStatement) BindAll(values map[string]interface{}) error {
	return ps.bindAll(values)
}

// BindArgs binds args in the order the parameter names first appear
func (ps *PreparedStatement) BindArgs(args ...interface{}) error {
	return ps.bindArgs(args...)
}

// Params returns the parameter table
func (ps *PreparedStatement) Params() *Params {
	return ps.params
}

// Statement returns the parsed descriptor
func (ps *PreparedStatement) Statement() Statement {
	return ps.stmt
}

// ResultList executes the statement. A select returns the matching
// entities; a delete removes them and returns an empty list.
func (ps *PreparedStatement) ResultList(ctx context.Context) ([]Entity, error) {
	if err := ps.ready(); err != nil {
		return nil, err
	}

	var (
		entities []Entity
		err      error
	)
	switch q := ps.stmt.(type) {
	case *SelectQuery:
		entities, err = ps.manager.Select(ctx, q)
	case *DeleteQuery:
		err = ps.manager.Delete(ctx, q)
		entities = []Entity{}
	}
	recordExecution("sync", ps.stmt, err)
	if err != nil {
		ps.logger.Error("statement failed", "query", ps.text, "error", err)
		return nil, err
	}
	return entities, nil
}

// SingleResult executes the statement and returns its only entity. The
// boolean is false when nothing matched; more than one match fails with
// ErrNonUniqueResult.
func (ps *PreparedStatement) SingleResult(ctx context.Context) (Entity, bool, error) {
	entities, err := ps.ResultList(ctx)
	if err != nil {
		return nil, false, err
	}
	return single(entities)
}

// Execute runs a delete statement
func (ps *PreparedStatement) Execute(ctx context.Context) error {
	if _, ok := ps.stmt.(*DeleteQuery); !ok {
		return fmt.Errorf("execute %s: %w", statementKind(ps.stmt), Unsupported("use ResultList for select statements"))
	}
	_, err := ps.ResultList(ctx)
	return err
}

// Clone parses the statement text again and copies the bound values into
// the new, independent parameter table
func (ps *PreparedStatement) Clone() (*PreparedStatement, error) {
	s, err := ps.reparse()
	if err != nil {
		return nil, err
	}
	return &PreparedStatement{statement: *s, manager: ps.manager}, nil
}

func (ps *PreparedStatement) String() string {
	return fmt.Sprintf("PreparedStatement{query: %s, params: %v}", ps.text, ps.params.ParameterNames())
}

// PreparedStatementAsync is the asynchronous form of PreparedStatement
type PreparedStatementAsync struct {
	statement
	manager AsyncManager
}

// Bind sets every placeholder named name to value
func (ps *PreparedStatementAsync) Bind(name string, value interface{}) error {
	return ps.bind(name, value)
}

// BindAll binds each entry of values
func (ps *PreparedStatementAsync) BindAll(values map[string]interface{}) error {
	return ps.bindAll(values)
}

// BindArgs binds args in the order the parameter names first appear
func (ps *PreparedStatementAsync) BindArgs(args ...interface{}) error {
	return ps.bindArgs(args...)
}

// Params returns the parameter table
func (ps *PreparedStatementAsync) Params() *Params {
	return ps.params
}

// Statement returns the parsed descriptor
func (ps *PreparedStatementAsync) Statement() Statement {
	return ps.stmt
}

// ResultList dispatches the statement. For a select, callback receives the
// entities; for a delete it receives an empty list once the delete is done.
// Unbound placeholders fail synchronously and callback is not invoked.
func (ps *PreparedStatementAsync) ResultList(ctx context.Context, callback SelectCallback) error {
	if callback == nil {
		return ErrNilCallback
	}
	if err := ps.ready(); err != nil {
		return err
	}

	var err error
	switch q := ps.stmt.(type) {
	case *SelectQuery:
		err = ps.manager.SelectAsync(ctx, q, callback)
	case *DeleteQuery:
		err = ps.manager.DeleteAsync(ctx, q, func(err error) {
			if err != nil {
				callback(nil, err)
				return
			}
			callback([]Entity{}, nil)
		})
	}
	recordExecution("async", ps.stmt, err)
	return err
}

// SingleResult dispatches the statement and reports its only entity
func (ps *PreparedStatementAsync) SingleResult(ctx context.Context, callback func(Entity, bool, error)) error {
	if callback == nil {
		return ErrNilCallback
	}
	return ps.ResultList(ctx, func(entities []Entity, err error) {
		if err != nil {
			callback(nil, false, err)
			return
		}
		callback(single(entities))
	})
}

// Execute dispatches a delete statement. callback may be nil.
func (ps *PreparedStatementAsync) Execute(ctx context.Context, callback DeleteCallback) error {
	q, ok := ps.stmt.(*DeleteQuery)
	if !ok {
		return fmt.Errorf("execute %s: %w", statementKind(ps.stmt), Unsupported("use ResultList for select statements"))
	}
	if err := ps.ready(); err != nil {
		return err
	}
	err := ps.manager.DeleteAsync(ctx, q, callback)
	recordExecution("async", ps.stmt, err)
	return err
}

// Clone parses the statement text again and copies the bound values
func (ps *PreparedStatementAsync) Clone() (*PreparedStatementAsync, error) {
	s, err := ps.reparse()
	if err != nil {
		return nil, err
	}
	return &PreparedStatementAsync{statement: *s, manager: ps.manager}, nil
}

func (ps *PreparedStatementAsync) String() string {
	return fmt.Sprintf("PreparedStatementAsync{query: %s, params: %v}", ps.text, ps.params.ParameterNames())
}

func single(entities []Entity) (Entity, bool, error) {
	switch len(entities) {
	case 0:
		return nil, false, nil
	case 1:
		return entities[0], true, nil
	default:
		return nil, false, fmt.Errorf("%w: %d entities", ErrNonUniqueResult, len(entities))
	}
}
