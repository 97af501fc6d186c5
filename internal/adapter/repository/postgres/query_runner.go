package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QueryRunner implements usecase.QueryRunner.
type QueryRunner struct {
	conn pgxConn
}

// NewQueryRunner creates a new QueryRunner.
func NewQueryRunner(pool *pgxpool.Pool) *QueryRunner {
	return newQueryRunner(pool)
}

func newQueryRunner(conn pgxConn) *QueryRunner {
	return &QueryRunner{conn: conn}
}

// RunReadOnly executes query in a read-only transaction that is always rolled back.
func (q *QueryRunner) RunReadOnly(ctx context.Context, query string) ([]map[string]any, error) {
	tx, err := q.conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}

	result, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}

	return result, nil
}
