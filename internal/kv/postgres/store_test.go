package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/spark/internal/errs"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestStore_Get(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	s := NewStore(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT value FROM kv_entries WHERE key=\$1`).
		WithArgs("alat-users").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`[{"id":"a"}]`)))
	v, err := s.Get(ctx, "alat-users")
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"a"}]`, string(v))

	mock.ExpectQuery(`SELECT value FROM kv_entries WHERE key=\$1`).
		WithArgs("alat-users").
		WillReturnError(pgx.ErrNoRows)
	_, err = s.Get(ctx, "alat-users")
	require.ErrorIs(t, err, errs.ErrNotFound)

	mock.ExpectQuery(`SELECT value FROM kv_entries WHERE key=\$1`).
		WithArgs("alat-users").
		WillReturnError(errors.New("conn refused"))
	_, err = s.Get(ctx, "alat-users")
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SetUpserts(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	s := NewStore(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO kv_entries \(key, value\) VALUES \(\$1, \$2\) ON CONFLICT \(key\) DO UPDATE SET value = EXCLUDED\.value, updated_at = now\(\)`).
		WithArgs("alat-accounts", []byte(`[]`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, s.Set(ctx, "alat-accounts", []byte(`[]`)))

	mock.ExpectExec(`INSERT INTO kv_entries`).
		WithArgs("alat-accounts", []byte(`[]`)).
		WillReturnError(errors.New("quota"))
	require.Error(t, s.Set(ctx, "alat-accounts", []byte(`[]`)))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Delete(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	s := NewStore(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM kv_entries WHERE key=\$1`).
		WithArgs("alat-session").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, s.Delete(ctx, "alat-session"))

	// Absent key: zero rows affected is still success.
	mock.ExpectExec(`DELETE FROM kv_entries WHERE key=\$1`).
		WithArgs("alat-session").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.NoError(t, s.Delete(ctx, "alat-session"))

	require.NoError(t, mock.ExpectationsWereMet())
}
