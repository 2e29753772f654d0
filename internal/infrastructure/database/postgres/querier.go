package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Querier est satisfait par le Client (pool) et par une Transaction,
// ce qui permet aux repositories de s'exécuter dans l'un ou l'autre
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (int64, error)
}

var (
	_ Querier = (*Client)(nil)
	_ Querier = (*Transaction)(nil)
)
