package query

import "context"

// Manager executes statements against a backend
type Manager interface {
	// Select returns the entities matching q
	Select(ctx context.Context, q *SelectQuery) ([]Entity, error)
	// Delete removes the entities matching q
	Delete(ctx context.Context, q *DeleteQuery) error
}

// SelectCallback receives the outcome of an asynchronous select
type SelectCallback func(entities []Entity, err error)

// DeleteCallback receives the outcome of an asynchronous delete. A nil
// DeleteCallback means the caller does not wait for completion.
type DeleteCallback func(err error)

// AsyncManager executes statements without blocking the caller. The
// returned error reports a failure to dispatch; execution failures reach
// the callback.
type AsyncManager interface {
	SelectAsync(ctx context.Context, q *SelectQuery, callback SelectCallback) error
	DeleteAsync(ctx context.Context, q *DeleteQuery, callback DeleteCallback) error
}

// ManagerFunc adapts a select function to Manager. Delete is unsupported.
type ManagerFunc func(ctx context.Context, q *SelectQuery) ([]Entity, error)

func (f ManagerFunc) Select(ctx context.Context, q *SelectQuery) ([]Entity, error) {
	return f(ctx, q)
}

func (f ManagerFunc) Delete(_ context.Context, q *DeleteQuery) error {
	return Unsupported("delete from %s", q.ColumnFamily())
}

func statementKind(stmt Statement) string {
	switch stmt.(type) {
	case *SelectQuery:
		return "select"
	case *DeleteQuery:
		return "delete"
	default:
		return "unknown"
	}
}
