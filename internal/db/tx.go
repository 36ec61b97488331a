package db

import (
	"context"
	"database/sql"
	"fmt"
)

// WithTx runs fn inside one transaction. The transaction is committed only when fn
// returns nil; every other exit path (error, panic) rolls it back.
func WithTx(ctx context.Context, conn *sql.DB, fn func(q Querier) error) (err error) {
	if conn == nil {
		return fmt.Errorf("db not available")
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
