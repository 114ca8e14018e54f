package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vegasq/columnql/internal/logger"
	"github.com/vegasq/columnql/internal/metrics"
	"github.com/vegasq/columnql/query"
)

// Store is an in-memory column-family store. Each family holds a list of
// entities; families are created on first insert or load. Store implements
// query.Manager and is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	families map[string][]query.Entity
	eval     evaluator
	logger   *slog.Logger
}

var _ query.Manager = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithConverters sets the registry used to coerce typed operands
func WithConverters(r *query.ConverterRegistry) Option {
	return func(s *Store) {
		if r != nil {
			s.eval.converters = r
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{
		families: make(map[string][]query.Entity),
		eval:     evaluator{converters: query.DefaultConverters()},
		logger:   logger.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert appends rows to family. Rows are copied.
func (s *Store) Insert(family string, rows ...query.Entity) {
	start := time.Now()
	copied := make([]query.Entity, len(rows))
	for i, row := range rows {
		copied[i] = project(row, nil)
	}

	s.mu.Lock()
	s.families[family] = append(s.families[family], copied...)
	count := len(s.families[family])
	s.mu.Unlock()

	metrics.StoreEntities.WithLabelValues(family).Set(float64(count))
	metrics.ObserveStore("insert", start, nil)
}

// LoadParquet appends the rows of a parquet file, or of every file matching
// a glob, to family. It returns the number of rows loaded.
func (s *Store) LoadParquet(family, pattern string) (int, error) {
	start := time.Now()
	rows, err := ReadFiles(pattern)
	if err != nil {
		metrics.ObserveStore("load", start, err)
		return 0, fmt.Errorf("load %s from %s: %w", family, pattern, err)
	}

	s.mu.Lock()
	s.families[family] = append(s.families[family], rows...)
	count := len(s.families[family])
	s.mu.Unlock()

	metrics.StoreEntities.WithLabelValues(family).Set(float64(count))
	metrics.ObserveStore("load", start, nil)
	s.logger.Info("loaded column family", "family", family, "pattern", pattern, "rows", len(rows))
	return len(rows), nil
}

// Families returns the family names in sorted order
func (s *Store) Families() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.families))
	for name := range s.families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of entities in family
func (s *Store) Count(family string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.families[family])
}

// Select filters, sorts, pages and projects the entities of the query's
// family. An unknown family yields no entities.
func (s *Store) Select(ctx context.Context, q *query.SelectQuery) ([]query.Entity, error) {
	start := time.Now()
	entities, err := s.selectRows(ctx, q)
	metrics.ObserveStore("select", start, err)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("select", "family", q.ColumnFamily(), "entities", len(entities))
	return entities, nil
}

func (s *Store) selectRows(ctx context.Context, q *query.SelectQuery) ([]query.Entity, error) {
	s.mu.RLock()
	rows := append([]query.Entity(nil), s.families[q.ColumnFamily()]...)
	s.mu.RUnlock()

	var err error
	if cond, ok := q.Condition(); ok {
		rows, err = s.filter(ctx, rows, cond)
		if err != nil {
			return nil, err
		}
	}

	rows = applySorts(rows, q.Sorts())
	rows = applySkipLimit(rows, q.Skip(), q.Limit())

	result := make([]query.Entity, len(rows))
	for i, row := range rows {
		result[i] = project(row, q.Columns())
	}
	return result, nil
}

// Delete removes the entities matching the query condition, or every
// entity of the family when there is none
func (s *Store) Delete(ctx context.Context, q *query.DeleteQuery) error {
	start := time.Now()
	removed, err := s.deleteRows(ctx, q)
	metrics.ObserveStore("delete", start, err)
	if err != nil {
		return err
	}
	s.logger.Info("deleted entities", "family", q.ColumnFamily(), "removed", removed)
	return nil
}

func (s *Store) deleteRows(ctx context.Context, q *query.DeleteQuery) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, exists := s.families[q.ColumnFamily()]
	if !exists {
		return 0, nil
	}

	cond, ok := q.Condition()
	if !ok {
		s.families[q.ColumnFamily()] = nil
		metrics.StoreEntities.WithLabelValues(q.ColumnFamily()).Set(0)
		return len(rows), nil
	}

	kept := make([]query.Entity, 0, len(rows))
	for i, row := range rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		matched, err := s.eval.match(row, cond)
		if err != nil {
			return 0, err
		}
		if !matched {
			kept = append(kept, row)
		}
	}
	s.families[q.ColumnFamily()] = kept
	metrics.StoreEntities.WithLabelValues(q.ColumnFamily()).Set(float64(len(kept)))
	return len(rows) - len(kept), nil
}

func (s *Store) filter(ctx context.Context, rows []query.Entity, cond query.Condition) ([]query.Entity, error) {
	filtered := make([]query.Entity, 0)
	for i, row := range rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		matched, err := s.eval.match(row, cond)
		if err != nil {
			return nil, err
		}
		if matched {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

// applySorts orders rows by each sort key in turn. Missing attributes sort
// first, or last when descending.
func applySorts(rows []query.Entity, sorts []query.Sort) []query.Entity {
	if len(rows) == 0 || len(sorts) == 0 {
		return rows
	}

	sorted := make([]query.Entity, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		for _, s := range sorts {
			desc := s.Direction == query.Desc
			valI, existsI := lookup(sorted[i], s.Name)
			valJ, existsJ := lookup(sorted[j], s.Name)
			existsI = existsI && valI != nil
			existsJ = existsJ && valJ != nil

			if !existsI && !existsJ {
				continue
			}
			if !existsI {
				return !desc
			}
			if !existsJ {
				return desc
			}

			cmp, _ := compareValues(valI, valJ)
			if cmp != 0 {
				if desc {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		return false
	})
	return sorted
}

// applySkipLimit drops the first skip rows and keeps at most limit rows.
// A limit of 0 keeps everything.
func applySkipLimit(rows []query.Entity, skip, limit int64) []query.Entity {
	if skip >= int64(len(rows)) {
		return []query.Entity{}
	}
	rows = rows[skip:]
	if limit > 0 && limit < int64(len(rows)) {
		rows = rows[:limit]
	}
	return rows
}
