package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vegasq/columnql/internal/logger"
	"github.com/vegasq/columnql/internal/metrics"
)

// DefaultTokenCacheSize is the number of query texts whose tokens are kept
const DefaultTokenCacheSize = 256

// QueryParser is the entry point for running query text against a manager.
// It is safe for concurrent use.
type QueryParser struct {
	converters *ConverterRegistry
	tokens     *lru.Cache[string, []Token]
	logger     *slog.Logger
}

// Option configures a QueryParser
type Option func(*QueryParser)

// WithConverters sets the registry used to resolve convert(value, type)
func WithConverters(r *ConverterRegistry) Option {
	return func(qp *QueryParser) {
		if r != nil {
			qp.converters = r
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(qp *QueryParser) {
		if l != nil {
			qp.logger = l
		}
	}
}

// WithTokenCache keeps the tokens of the size most recently parsed texts.
// A size of zero or less disables the cache.
func WithTokenCache(size int) Option {
	return func(qp *QueryParser) {
		if size <= 0 {
			qp.tokens = nil
			return
		}
		cache, err := lru.New[string, []Token](size)
		if err != nil {
			return
		}
		qp.tokens = cache
	}
}

// NewQueryParser creates a query parser
func NewQueryParser(opts ...Option) *QueryParser {
	qp := &QueryParser{
		converters: DefaultConverters(),
		logger:     logger.Get(),
	}
	WithTokenCache(DefaultTokenCacheSize)(qp)
	for _, opt := range opts {
		opt(qp)
	}
	return qp
}

// Converters returns the registry resolving conversion types
func (qp *QueryParser) Converters() *ConverterRegistry {
	return qp.converters
}

// Parse parses text into a statement and its parameter table. A nil
// observer leaves names unchanged.
func (qp *QueryParser) Parse(text string, observer Observer) (Statement, *Params, error) {
	return qp.parse(text, observer)
}

func (qp *QueryParser) parse(text string, observer Observer) (Statement, *Params, error) {
	start := time.Now()

	if err := ValidateQuery(text); err != nil {
		metrics.ObserveParse("unknown", start, err)
		return nil, nil, err
	}

	tokens := qp.tokenize(text)
	stmt, params, err := ParseTokens(tokens, observer, qp.converters)
	if err != nil {
		metrics.ObserveParse("unknown", start, err)
		qp.logger.Debug("parse failed", "query", text, "error", err)
		return nil, nil, err
	}

	metrics.ObserveParse(statementKind(stmt), start, nil)
	qp.logger.Debug("parsed statement",
		"query", text,
		"kind", statementKind(stmt),
		"params", params.ParameterNames())
	return stmt, params, nil
}

func (qp *QueryParser) tokenize(text string) []Token {
	if qp.tokens == nil {
		return Tokenize(text)
	}
	if tokens, ok := qp.tokens.Get(text); ok {
		metrics.TokenCacheTotal.WithLabelValues("hit").Inc()
		return tokens
	}
	metrics.TokenCacheTotal.WithLabelValues("miss").Inc()
	tokens := Tokenize(text)
	qp.tokens.Add(text, tokens)
	return tokens
}

// parseImmediate parses text for direct execution, where any placeholder
// is an error since nothing can bind it
func (qp *QueryParser) parseImmediate(text string, observer Observer) (Statement, error) {
	stmt, params, err := qp.parse(text, observer)
	if err != nil {
		return nil, err
	}
	if params.Len() > 0 {
		return nil, fmt.Errorf("%w; use Prepare to bind them", unboundError(params.Names()))
	}
	return stmt, nil
}

// Query parses and executes text. A select returns its entities; a delete
// returns an empty list. Text holding @name placeholders fails with an
// unbound parameter error.
func (qp *QueryParser) Query(ctx context.Context, text string, manager Manager, observer Observer) ([]Entity, error) {
	if manager == nil {
		return nil, ErrNilManager
	}
	stmt, err := qp.parseImmediate(text, observer)
	if err != nil {
		return nil, err
	}

	var entities []Entity
	switch q := stmt.(type) {
	case *SelectQuery:
		entities, err = manager.Select(ctx, q)
	case *DeleteQuery:
		err = manager.Delete(ctx, q)
		entities = []Entity{}
	}
	recordExecution("sync", stmt, err)
	if err != nil {
		qp.logger.Error("query failed", "query", text, "error", err)
		return nil, err
	}
	qp.logger.Debug("query executed", "query", text, "entities", len(entities))
	return entities, nil
}

// QueryAsync parses text and dispatches it to manager. The callback of a
// select is handed to the manager as is; a delete reports an empty list
// when done. Errors returned here are parse or dispatch failures, in which
// case callback is never invoked.
func (qp *QueryParser) QueryAsync(ctx context.Context, text string, manager AsyncManager, callback SelectCallback, observer Observer) error {
	if manager == nil {
		return ErrNilManager
	}
	if callback == nil {
		return ErrNilCallback
	}
	stmt, err := qp.parseImmediate(text, observer)
	if err != nil {
		return err
	}

	switch q := stmt.(type) {
	case *SelectQuery:
		err = manager.SelectAsync(ctx, q, callback)
	case *DeleteQuery:
		err = manager.DeleteAsync(ctx, q, func(err error) {
			if err != nil {
				callback(nil, err)
				return
			}
			callback([]Entity{}, nil)
		})
	}
	recordExecution("async", stmt, err)
	if err != nil {
		qp.logger.Error("query dispatch failed", "query", text, "error", err)
	}
	return err
}

// Prepare parses text into a statement whose placeholders can be bound
func (qp *QueryParser) Prepare(text string, manager Manager, observer Observer) (*PreparedStatement, error) {
	if manager == nil {
		return nil, ErrNilManager
	}
	s, err := qp.prepare(text, observer)
	if err != nil {
		return nil, err
	}
	return &PreparedStatement{statement: *s, manager: manager}, nil
}

// PrepareAsync is Prepare for an asynchronous manager
func (qp *QueryParser) PrepareAsync(text string, manager AsyncManager, observer Observer) (*PreparedStatementAsync, error) {
	if manager == nil {
		return nil, ErrNilManager
	}
	s, err := qp.prepare(text, observer)
	if err != nil {
		return nil, err
	}
	return &PreparedStatementAsync{statement: *s, manager: manager}, nil
}

func (qp *QueryParser) prepare(text string, observer Observer) (*statement, error) {
	stmt, params, err := qp.parse(text, observer)
	if err != nil {
		return nil, err
	}
	return &statement{
		text:     text,
		stmt:     stmt,
		params:   params,
		observer: observer,
		parser:   qp,
		logger:   qp.logger,
	}, nil
}
