package profile

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeResult struct{ rows int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, nil }

type fakeTx struct {
	record     row
	getErr     error
	execs      []string
	committed  bool
	rolledBack bool
}

func (t *fakeTx) IsOpen() bool { return !t.committed && !t.rolledBack }

func (t *fakeTx) Commit(_ context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *fakeTx) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	t.execs = append(t.execs, query)
	return fakeResult{rows: 1}, nil
}

func (t *fakeTx) GetContext(_ context.Context, dest any, _ string, _ ...any) error {
	if t.getErr != nil {
		return t.getErr
	}
	*dest.(*row) = t.record
	return nil
}

func (t *fakeTx) SelectContext(_ context.Context, _ any, _ string, _ ...any) error {
	return nil
}

func (t *fakeTx) QueryxContext(_ context.Context, _ string, _ ...any) (*sqlx.Rows, error) {
	return nil, nil
}

type fakeDB struct {
	tx    *fakeTx
	txErr error
}

func (d *fakeDB) BeginTxx(_ context.Context, _ *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, errors.New("not implemented")
}

func (d *fakeDB) Close() error {
	return nil
}

func (d *fakeDB) ExecContext(_ context.Context, _ string, _ ...any) (sql.Result, error) {
	return fakeResult{rows: 1}, nil
}

func (d *fakeDB) GetContext(_ context.Context, _ any, _ string, _ ...any) error {
	return nil
}

func (d *fakeDB) SelectContext(_ context.Context, _ any, _ string, _ ...any) error {
	return nil
}

func (d *fakeDB) QueryxContext(_ context.Context, _ string, _ ...any) (*sqlx.Rows, error) {
	return nil, nil
}

func (d *fakeDB) QueryRowxContext(_ context.Context, _ string, _ ...any) *sqlx.Row {
	return nil
}

func (d *fakeDB) NamedExecContext(_ context.Context, _ string, _ any) (sql.Result, error) {
	return fakeResult{rows: 1}, nil
}

func (d *fakeDB) Ping() error {
	return nil
}

func (d *fakeDB) PingContext(_ context.Context) error {
	return nil
}

func (d *fakeDB) SetConnMaxLifetime(_ time.Duration) {}

func (d *fakeDB) SetMaxIdleConns(_ int) {}

func (d *fakeDB) SetMaxOpenConns(_ int) {}

func (d *fakeDB) Stats() sql.DBStats {
	return sql.DBStats{}
}

func (d *fakeDB) GetTx(ctx context.Context, _ *sql.TxOptions) (context.Context, database.Tx, error) {
	if d.txErr != nil {
		return ctx, nil, d.txErr
	}
	return ctx, d.tx, nil
}

func sptr(v string) *string { return &v }

func existingRow() row {
	now := time.Now().UTC().Add(-time.Hour)
	fundSize := 50_000_000.0
	return row{
		ID:       "p1",
		TenantID: "t1",
		Role:     models.RoleFundManager,
		Name:     "Apex Capital",
		Attributes: database.JSONB[models.Attributes]{Data: models.Attributes{
			FundSize: &fundSize,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestUpdateRunsInTransaction(t *testing.T) {
	tx := &fakeTx{record: existingRow()}
	repo := NewRepository(&fakeDB{tx: tx}, testLogger())

	updated, err := repo.Update(context.Background(), "t1", "p1", models.UpdateProfileRequest{
		Name: sptr("Apex Capital II"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Apex Capital II", updated.Name)
	require.NotNil(t, updated.Attributes.FundSize)
	assert.Equal(t, 50_000_000.0, *updated.Attributes.FundSize)

	assert.True(t, tx.committed)
	require.Len(t, tx.execs, 1)
	assert.True(t, strings.HasPrefix(tx.execs[0], "UPDATE profiles"))
}

func TestUpdateMissingProfileReturnsNotFound(t *testing.T) {
	tx := &fakeTx{getErr: errors.New("sql: no rows in result set")}
	repo := NewRepository(&fakeDB{tx: tx}, testLogger())

	_, err := repo.Update(context.Background(), "t1", "missing", models.UpdateProfileRequest{
		Name: sptr("Renamed"),
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	assert.False(t, tx.committed)
	assert.Empty(t, tx.execs)
}

func TestUpdateTransactionStartFailure(t *testing.T) {
	repo := NewRepository(&fakeDB{txErr: errors.New("connection lost")}, testLogger())

	_, err := repo.Update(context.Background(), "t1", "p1", models.UpdateProfileRequest{
		Name: sptr("Renamed"),
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, httperror.GetStatusCode(err))
}
