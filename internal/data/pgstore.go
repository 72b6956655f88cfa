package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/target/coursedesk/internal/data/pgxutil"
	apperrors "github.com/target/coursedesk/internal/errors"
	"github.com/target/coursedesk/internal/ports"
)

// bindPrincipalSQL scopes the principal to the current transaction only (is_local = true),
// so a pooled connection never carries it into another request.
const bindPrincipalSQL = `SELECT set_config('app.principal_id', $1, true)`

// PgxPool is the subset of *pgxpool.Pool used by PgStore. pgxmock.PgxPoolIface satisfies it.
type PgxPool interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PgStoreOptions groups optional PgStore dependencies.
type PgStoreOptions struct {
	Logger *slog.Logger
}

// PgStore is the Postgres resource store. Row visibility is decided by row-level security
// policies keyed on app.principal_id.
type PgStore struct {
	pool   PgxPool
	logger *slog.Logger
}

var (
	_ ports.ResourceStore   = (*PgStore)(nil)
	_ ports.ScopedResources = (*scopedStore)(nil)
)

// NewPgStore creates a PgStore over pool.
func NewPgStore(pool PgxPool, opts PgStoreOptions) *PgStore {
	if pool == nil {
		panic("data: NewPgStore requires a pool")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PgStore{pool: pool, logger: logger.With("component", "pg_store")}
}

// As returns the store bound to principalID.
func (s *PgStore) As(principalID string) ports.ScopedResources {
	return &scopedStore{store: s, principal: principalID}
}

// Ping checks database connectivity.
func (s *PgStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return apperrors.MapDBError(fmt.Errorf("ping database: %w", err))
	}
	return nil
}

// Close releases the pool.
func (s *PgStore) Close() { s.pool.Close() }

type scopedStore struct {
	store     *PgStore
	principal string
}

// read runs fn in a read-only transaction bound to the principal.
func (s *scopedStore) read(ctx context.Context, fn func(pgx.Tx) error) error {
	return s.withPrincipal(ctx, pgxutil.ReadOnly(), fn)
}

// write runs fn in a read-write transaction bound to the principal.
func (s *scopedStore) write(ctx context.Context, fn func(pgx.Tx) error) error {
	return s.withPrincipal(ctx, pgx.TxOptions{}, fn)
}

func (s *scopedStore) withPrincipal(ctx context.Context, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	if s.principal == "" {
		return apperrors.AuthenticationRequired("Authentication required")
	}
	err := pgxutil.WithTx(ctx, s.store.pool, pgxutil.TxConfig{
		Opts: opts,
		Fn: func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, bindPrincipalSQL, s.principal); err != nil {
				return fmt.Errorf("bind principal: %w", err)
			}
			return fn(tx)
		},
	})
	return s.mapErr(err)
}

func (s *scopedStore) mapErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	mapped := apperrors.MapDBError(err)
	if apperrors.GetCode(mapped) == apperrors.ErrCodeInternal || !errors.As(mapped, &appErr) {
		s.store.logger.Error("database operation failed", "principal_id", s.principal, "error", err)
	}
	return mapped
}

// notFoundOr maps pgx.ErrNoRows to a not_found error carrying msg.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound(msg)
	}
	return err
}
