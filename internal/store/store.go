package store

import (
	"context"

	"banketl/internal/model"
)

// Result holds the rows returned by a query.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Store persists datasets to a relational table and answers read-only queries.
type Store interface {
	// ReplaceTable drops table if it exists and recreates it holding ds.
	ReplaceTable(ctx context.Context, table string, ds *model.Dataset) error
	Query(ctx context.Context, query string) (*Result, error)
	Close() error
}

// Opener acquires a Store. Callers own the returned Store and must Close it.
type Opener interface {
	Open(ctx context.Context) (Store, error)
}

// DSNOpener opens a SQLStore for a fixed driver and DSN.
type DSNOpener struct {
	Driver string
	DSN    string
}

func (o DSNOpener) Open(ctx context.Context) (Store, error) {
	s, err := Open(ctx, o.Driver, o.DSN)
	if err != nil {
		return nil, err
	}
	return s, nil
}
