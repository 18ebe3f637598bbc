package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/revagent/internal/testutil"
)

// mockAdapter is a BaseSQLAdapter over sqlmock that records timeouts.
type mockAdapter struct {
	BaseSQLAdapter
	timeouts   []time.Duration
	timeoutErr error
}

func (m *mockAdapter) Connect(context.Context, Config) error { return nil }
func (m *mockAdapter) Placeholder(int) string                { return "?" }
func (m *mockAdapter) DialectName() string                   { return "mock" }

func (m *mockAdapter) SetQueryTimeout(_ context.Context, d time.Duration) error {
	m.timeouts = append(m.timeouts, d)
	return m.timeoutErr
}

func newMockAdapter(t *testing.T) (*mockAdapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &mockAdapter{BaseSQLAdapter: BaseSQLAdapter{DB: db}}, mock
}

func TestExecutor_Run(t *testing.T) {
	a, mock := newMockAdapter(t)
	mock.ExpectQuery("SELECT writer_name").WillReturnRows(
		sqlmock.NewRows([]string{"writer_name", "total_revenue"}).AddRow("Alex Park", 4644.75),
	)

	exec := NewExecutor(a, testutil.NewTestLogger(t))
	rs, err := exec.Run(context.Background(), "SELECT writer_name, total_revenue FROM x LIMIT 1000", 30*time.Second)
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{30 * time.Second}, a.timeouts)
	assert.Equal(t, [][]any{{"Alex Park", 4644.75}}, rs.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_NoTimeout(t *testing.T) {
	a, mock := newMockAdapter(t)
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

	rs, err := NewExecutor(a, nil).Run(context.Background(), "SELECT 1", 0)
	require.NoError(t, err)
	assert.Empty(t, a.timeouts)
	assert.Equal(t, 1, rs.Len())
}

func TestExecutor_QueryError(t *testing.T) {
	a, mock := newMockAdapter(t)
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("no such column: revenue"))

	_, err := NewExecutor(a, nil).Run(context.Background(), "SELECT revenue FROM t", time.Second)
	require.Error(t, err)
	assert.Equal(t, "no such column: revenue", err.Error())
}

func TestExecutor_SetTimeoutError(t *testing.T) {
	a, _ := newMockAdapter(t)
	a.timeoutErr = assert.AnError

	_, err := NewExecutor(a, nil).Run(context.Background(), "SELECT 1", time.Second)
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to set query timeout")
}

func TestExecutor_DeadlineExceeded(t *testing.T) {
	a, mock := newMockAdapter(t)
	mock.ExpectQuery("SELECT").
		WillDelayFor(time.Second).
		WillReturnRows(sqlmock.NewRows([]string{"x"}).AddRow(1))

	_, err := NewExecutor(a, nil).Run(context.Background(), "SELECT x FROM slow", 20*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query exceeded timeout of 20ms")
}

func TestExecutor_SQLite(t *testing.T) {
	ctx := context.Background()
	a := newSQLite(t)
	require.NoError(t, a.Exec(ctx, "CREATE TABLE t (name TEXT, amount REAL)"))
	require.NoError(t, a.Exec(ctx, "INSERT INTO t VALUES ('a', 1.5), ('b', 2.25)"))

	exec := NewExecutor(a, nil)
	assert.Same(t, Adapter(a), exec.Adapter())

	rs, err := exec.Run(ctx, "SELECT ROUND(SUM(amount), 2) AS total FROM t", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{3.75}}, rs.Rows)
}
