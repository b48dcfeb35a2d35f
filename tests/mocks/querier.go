package mocks

import (
	"context"
	"database/sql"
	"sync"
)

// RecordedQuery es una sentencia que pasó por CountingQuerier.
type RecordedQuery struct {
	SQL  string
	Args []any
}

// CountingQuerier envuelve un *sql.DB y registra cada sentencia ejecutada.
type CountingQuerier struct {
	DB *sql.DB

	mu      sync.Mutex
	queries []RecordedQuery
}

func NewCountingQuerier(db *sql.DB) *CountingQuerier {
	return &CountingQuerier{DB: db}
}

func (q *CountingQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	q.record(query, args)
	return q.DB.QueryContext(ctx, query, args...)
}

func (q *CountingQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	q.record(query, args)
	return q.DB.ExecContext(ctx, query, args...)
}

func (q *CountingQuerier) record(query string, args []any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queries = append(q.queries, RecordedQuery{SQL: query, Args: append([]any(nil), args...)})
}

func (q *CountingQuerier) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queries)
}

func (q *CountingQuerier) Queries() []RecordedQuery {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]RecordedQuery(nil), q.queries...)
}

func (q *CountingQuerier) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queries = nil
}
