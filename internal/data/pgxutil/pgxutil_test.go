package pgxutil

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTx(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		setup   func(m pgxmock.PgxPoolIface)
		fn      func(pgx.Tx) error
		wantErr error
		wantMsg string
	}{
		{
			name: "commits on success",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectBegin()
				m.ExpectExec("SELECT 1").WillReturnResult(pgxmock.NewResult("SELECT", 1))
				m.ExpectCommit()
			},
			fn: func(tx pgx.Tx) error {
				_, err := tx.Exec(context.Background(), "SELECT 1")
				return err
			},
		},
		{
			name: "rolls back on error",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectBegin()
				m.ExpectRollback()
			},
			fn:      func(pgx.Tx) error { return boom },
			wantErr: boom,
		},
		{
			name: "begin failure",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectBegin().WillReturnError(boom)
			},
			fn:      func(pgx.Tx) error { return errors.New("fn must not run") },
			wantErr: boom,
			wantMsg: "begin pgx tx",
		},
		{
			name: "commit failure",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectBegin()
				m.ExpectCommit().WillReturnError(boom)
			},
			fn:      func(pgx.Tx) error { return nil },
			wantErr: boom,
			wantMsg: "commit pgx tx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setup(mock)

			err = WithTx(context.Background(), mock, TxConfig{Fn: tt.fn})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.wantMsg != "" {
					assert.Contains(t, err.Error(), tt.wantMsg)
				}
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReadOnly(t *testing.T) {
	assert.Equal(t, pgx.ReadOnly, ReadOnly().AccessMode)
}
