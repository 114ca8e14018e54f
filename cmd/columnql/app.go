package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vegasq/columnql/config"
	"github.com/vegasq/columnql/internal/logger"
	"github.com/vegasq/columnql/output"
	"github.com/vegasq/columnql/query"
	"github.com/vegasq/columnql/store"
)

// app wires the store, parser and formatter for one CLI invocation
type app struct {
	cfg      *config.Config
	store    *store.Store
	async    *store.AsyncStore
	parser   *query.QueryParser
	observer query.Observer
	format   string
	out      io.Writer
}

func newApp(cfg *config.Config, out io.Writer) (*app, error) {
	s := store.New()
	if err := loadData(s, cfg.Data); err != nil {
		return nil, err
	}

	var observer query.Observer = query.NoopObserver{}
	if cfg.Mapping.File != "" {
		m, err := query.LoadMappingObserver(cfg.Mapping.File)
		if err != nil {
			return nil, err
		}
		observer = m
	}

	async, err := store.NewAsync(s, cfg.Async.Workers)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		store:    s,
		async:    async,
		parser:   query.NewQueryParser(query.WithTokenCache(cfg.Cache.Size)),
		observer: observer,
		format:   cfg.Output.Format,
		out:      out,
	}, nil
}

// loadData loads every parquet file of the data directory, then the
// explicitly configured families
func loadData(s *store.Store, data config.DataConfig) error {
	if data.Dir != "" {
		paths, err := filepath.Glob(filepath.Join(data.Dir, "*.parquet"))
		if err != nil {
			return fmt.Errorf("invalid data directory %s: %w", data.Dir, err)
		}
		for _, path := range paths {
			if _, err := s.LoadParquet(store.FamilyName(path), path); err != nil {
				return err
			}
		}
	}

	families := make([]string, 0, len(data.Files))
	for family := range data.Files {
		families = append(families, family)
	}
	sort.Strings(families)
	for _, family := range families {
		if _, err := s.LoadParquet(family, data.Files[family]); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) close() {
	if err := a.async.Close(5 * time.Second); err != nil {
		logger.Warn("worker pool did not drain", "error", err)
	}
}

// run executes text directly and prints the result
func (a *app) run(ctx context.Context, text string, async bool) error {
	columns := a.columns(text)

	if !async {
		entities, err := a.parser.Query(ctx, text, a.store, a.observer)
		if err != nil {
			return err
		}
		return a.print(entities, columns)
	}

	type result struct {
		entities []query.Entity
		err      error
	}
	done := make(chan result, 1)
	err := a.parser.QueryAsync(ctx, text, a.async, func(entities []query.Entity, err error) {
		done <- result{entities, err}
	}, a.observer)
	if err != nil {
		return err
	}

	select {
	case r := <-done:
		if r.err != nil {
			return r.err
		}
		return a.print(r.entities, columns)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runPrepared executes a prepared statement and prints the result
func (a *app) runPrepared(ctx context.Context, stmt *query.PreparedStatement) error {
	entities, err := stmt.ResultList(ctx)
	if err != nil {
		return err
	}
	var columns []string
	if q, ok := stmt.Statement().(*query.SelectQuery); ok {
		columns = q.Columns()
	}
	return a.print(entities, columns)
}

// columns returns the projection of a select so output keeps its order
func (a *app) columns(text string) []string {
	stmt, _, err := a.parser.Parse(text, a.observer)
	if err != nil {
		return nil
	}
	if q, ok := stmt.(*query.SelectQuery); ok {
		return q.Columns()
	}
	return nil
}

func (a *app) print(entities []query.Entity, columns []string) error {
	formatter, err := output.New(a.format, a.out)
	if err != nil {
		return err
	}
	formatter.SetColumns(columns)
	return formatter.Format(entities)
}

// parseBindings turns name=value pairs into parameter values. Values are
// read as query literals, so 10 binds an integer and "10" a string; text
// that is not a literal binds as a plain string.
func parseBindings(pairs []string) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid binding %q, expected name=value", pair)
		}
		values[strings.TrimPrefix(name, "@")] = bindingValue(raw)
	}
	return values, nil
}

func bindingValue(raw string) interface{} {
	v, err := query.ParseLiteral(raw)
	if err != nil {
		return raw
	}
	resolved, err := v.Coerce()
	if err != nil {
		return raw
	}
	return resolved
}
