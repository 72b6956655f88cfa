package pgxutil

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxBeginner is implemented by *pgxpool.Pool, *pgx.Conn and pgxmock pools.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TxConfig groups parameters for WithTx so WithTx takes at most three parameters.
type TxConfig struct {
	Opts pgx.TxOptions
	Fn   func(pgx.Tx) error
}

// ReadOnly returns transaction options for read-only work.
func ReadOnly() pgx.TxOptions {
	return pgx.TxOptions{AccessMode: pgx.ReadOnly}
}

// WithTx runs cfg.Fn within a pgx transaction. The transaction is rolled back when Fn fails
// and committed otherwise.
func WithTx(ctx context.Context, db TxBeginner, cfg TxConfig) error {
	tx, err := db.BeginTx(ctx, cfg.Opts)
	if err != nil {
		return fmt.Errorf("begin pgx tx: %w", err)
	}
	if fnErr := cfg.Fn(tx); fnErr != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			return errors.Join(fnErr, fmt.Errorf("rollback pgx tx: %w", rollbackErr))
		}
		return fnErr
	}
	if commitErr := tx.Commit(ctx); commitErr != nil {
		return fmt.Errorf("commit pgx tx: %w", commitErr)
	}
	return nil
}
