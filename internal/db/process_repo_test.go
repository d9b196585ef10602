package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reportnotifier/internal/types"
)

// --- Mock DBTX ---

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDBTX) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if r := args.Get(0); r != nil {
		return r.(pgx.Rows), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// --- Mock Row ---

type mockRow struct {
	scanErr error
	scanFn  func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.scanFn != nil {
		return r.scanFn(dest...)
	}
	return r.scanErr
}

// --- Mock Rows for Query ---

// mockRows implements pgx.Rows for testing Query results.
type mockRows struct {
	data    [][]any
	idx     int
	closed  bool
	scanErr error
	errVal  error
}

func newMockRows(data [][]any) *mockRows {
	return &mockRows{data: data, idx: -1}
}

func (r *mockRows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	return r.idx < len(r.data)
}

func (r *mockRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.data[r.idx]
	for i, d := range dest {
		switch v := d.(type) {
		case *int:
			*v = row[i].(int)
		case *string:
			*v = row[i].(string)
		case *time.Time:
			*v = row[i].(time.Time)
		}
	}
	return nil
}

func (r *mockRows) Close()                                       { r.closed = true }
func (r *mockRows) Err() error                                   { return r.errVal }
func (r *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) RawValues() [][]byte                          { return nil }
func (r *mockRows) Values() ([]any, error)                       { return nil, nil }
func (r *mockRows) Conn() *pgx.Conn                              { return nil }

// --- ProcessRepository Tests ---

func TestProcessRepository_GetByName_Success(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewProcessRepository(dbx)

	addendum := "Contact the library for details."
	row := &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*int) = 7                               // id
			*dest[1].(*string) = "overdue"                    // name
			*dest[2].(*string) = "Overdue Items Report"       // email_subject
			*dest[3].(*string) = "The following items are overdue." // email_body
			*dest[4].(**string) = &addendum                   // email_addendum
			*dest[5].(*string) = "reports"                    // container
			return nil
		},
	}

	dbx.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), []any{"overdue"}).Return(row)

	process, err := repo.GetByName(context.Background(), "overdue")
	require.NoError(t, err)
	assert.Equal(t, 7, process.ID)
	assert.Equal(t, "overdue", process.Name)
	assert.Equal(t, "Overdue Items Report", process.EmailSubject)
	assert.Equal(t, "reports", process.Container)
	require.NotNil(t, process.EmailAddendum)
	assert.Equal(t, addendum, *process.EmailAddendum)
	dbx.AssertExpectations(t)
}

func TestProcessRepository_GetByName_NullAddendum(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewProcessRepository(dbx)

	row := &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*int) = 3
			*dest[1].(*string) = "missing"
			*dest[2].(*string) = "Missing Items"
			*dest[3].(*string) = "Items reported missing."
			*dest[4].(**string) = nil
			*dest[5].(*string) = "missing-reports"
			return nil
		},
	}

	dbx.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), []any{"missing"}).Return(row)

	process, err := repo.GetByName(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, process.EmailAddendum)
}

func TestProcessRepository_GetByName_NotFound(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewProcessRepository(dbx)

	row := &mockRow{scanErr: pgx.ErrNoRows}
	dbx.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), []any{"unknown"}).Return(row)

	process, err := repo.GetByName(context.Background(), "unknown")
	require.Error(t, err)
	assert.Nil(t, process)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundProcess, appErr.Code)
}

func TestProcessRepository_GetByName_DBError(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewProcessRepository(dbx)

	row := &mockRow{scanErr: errors.New("connection refused")}
	dbx.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), []any{"overdue"}).Return(row)

	process, err := repo.GetByName(context.Background(), "overdue")
	require.Error(t, err)
	assert.Nil(t, process)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}
