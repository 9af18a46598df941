package repo

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrConflict    = errors.New("unique constraint violated")
	ErrEmptyFilter = errors.New("refusing to mutate without a filter")
)

// Filter matches rows by column equality; every entry must hold.
type Filter map[string]any

// Repository is the record store seen by the services. Implementations must be
// safe for concurrent use.
type Repository[T any] interface {
	Find(ctx context.Context, filter Filter, opts ...Option) ([]T, error)
	FindOne(ctx context.Context, filter Filter, opts ...Option) (*T, error)
	Insert(ctx context.Context, row *T) error
	InsertMany(ctx context.Context, rows []T) error
	// Update applies patch (column -> value) to the rows matching filter and
	// returns the first updated row. ErrNotFound when nothing matched.
	Update(ctx context.Context, filter Filter, patch map[string]any) (*T, error)
	// Delete removes the rows matching filter and reports how many went away.
	Delete(ctx context.Context, filter Filter) (int64, error)
}

type Query struct {
	Preload []string
	Order   string
}

type Option func(*Query)

// Preload loads a named association along with the rows.
func Preload(assoc string) Option {
	return func(q *Query) { q.Preload = append(q.Preload, assoc) }
}

// OrderBy takes "<column> [asc|desc]".
func OrderBy(order string) Option {
	return func(q *Query) { q.Order = order }
}

func buildQuery(opts []Option) Query {
	var q Query
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// Error carries the failed operation and table next to the store error.
type Error struct {
	Op    string
	Table string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
