package store

import (
	"context"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/vegasq/columnql/query"
)

// DefaultWorkers is the pool size used when NewAsync is given zero workers
const DefaultWorkers = 8

// AsyncStore runs store operations on a bounded worker pool. Callbacks run
// on a pool goroutine and are invoked exactly once per accepted operation.
type AsyncStore struct {
	store *Store
	pool  *ants.Pool
}

var _ query.AsyncManager = (*AsyncStore)(nil)

// NewAsync wraps s with a pool of workers goroutines
func NewAsync(s *Store, workers int) (*AsyncStore, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(v any) {
		s.logger.Error("async callback panic", "panic", v)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return &AsyncStore{store: s, pool: pool}, nil
}

// Store returns the wrapped store
func (a *AsyncStore) Store() *Store {
	return a.store
}

// SelectAsync runs the select on the pool and hands the result to callback
func (a *AsyncStore) SelectAsync(ctx context.Context, q *query.SelectQuery, callback query.SelectCallback) error {
	if callback == nil {
		return query.ErrNilCallback
	}
	return a.submit(func() {
		var (
			entities []query.Entity
			err      error
		)
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("select from %s panicked: %v", q.ColumnFamily(), r)
				}
			}()
			entities, err = a.store.Select(ctx, q)
		}()
		callback(entities, err)
	})
}

// DeleteAsync runs the delete on the pool. callback may be nil.
func (a *AsyncStore) DeleteAsync(ctx context.Context, q *query.DeleteQuery, callback query.DeleteCallback) error {
	return a.submit(func() {
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("delete from %s panicked: %v", q.ColumnFamily(), r)
				}
			}()
			err = a.store.Delete(ctx, q)
		}()
		if callback != nil {
			callback(err)
		} else if err != nil {
			a.store.logger.Error("async delete failed", "family", q.ColumnFamily(), "error", err)
		}
	})
}

func (a *AsyncStore) submit(task func()) error {
	if err := a.pool.Submit(task); err != nil {
		return fmt.Errorf("failed to dispatch: %w", err)
	}
	return nil
}

// Running returns the number of busy workers
func (a *AsyncStore) Running() int {
	return a.pool.Running()
}

// Close waits up to timeout for in-flight operations and releases the pool
func (a *AsyncStore) Close(timeout time.Duration) error {
	return a.pool.ReleaseTimeout(timeout)
}
