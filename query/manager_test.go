package query

import (
	"context"
	"sync"
)

// recordingManager records the statements it receives and answers selects
// with a fixed result
type recordingManager struct {
	mu       sync.Mutex
	selects  []*SelectQuery
	deletes  []*DeleteQuery
	values   []interface{} // condition operand seen by each select
	entities []Entity
	err      error
}

func (m *recordingManager) Select(_ context.Context, q *SelectQuery) ([]Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selects = append(m.selects, q)
	if c, ok := q.Condition(); ok {
		v, _ := c.Value().Get()
		m.values = append(m.values, v)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.entities, nil
}

func (m *recordingManager) Delete(_ context.Context, q *DeleteQuery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, q)
	return m.err
}

func (m *recordingManager) calls() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.selects), len(m.deletes)
}

// asyncManager runs the recording manager on a goroutine
type asyncManager struct {
	inner        *recordingManager
	lastCallback SelectCallback
	dispatchErr  error
}

func (m *asyncManager) SelectAsync(ctx context.Context, q *SelectQuery, callback SelectCallback) error {
	if m.dispatchErr != nil {
		return m.dispatchErr
	}
	m.lastCallback = callback
	go func() {
		callback(m.inner.Select(ctx, q))
	}()
	return nil
}

func (m *asyncManager) DeleteAsync(ctx context.Context, q *DeleteQuery, callback DeleteCallback) error {
	if m.dispatchErr != nil {
		return m.dispatchErr
	}
	go func() {
		err := m.inner.Delete(ctx, q)
		if callback != nil {
			callback(err)
		}
	}()
	return nil
}
