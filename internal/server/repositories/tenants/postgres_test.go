package tenants

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+tenants\s*\(name\)\s*VALUES\s*\(\$1\)\s*RETURNING\s+id,\s*name,\s*status,\s*created_at\s*$`
	mock.ExpectQuery(q).
		WithArgs("Acme").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status", "created_at"}).AddRow("t-1", "Acme", "active", time.Now()))

	got, err := repo.Create(context.Background(), "  Acme ")
	require.NoError(t, err)
	assert.Equal(t, "t-1", got.ID)
	assert.Equal(t, common.TenantStatusActive, got.Status)
}

func TestCreate_NameTaken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+tenants`).
		WithArgs("Acme").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), "Acme")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*name,\s*status,\s*created_at\s+FROM\s+tenants\s+WHERE\s+id\s*=\s*\$1\s*$`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestExistsByName(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+tenants\s+WHERE\s+lower\(name\)\s*=\s*lower\(\$1\)\)\s*$`
	mock.ExpectQuery(q).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.ExistsByName(context.Background(), "acme")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCountByStatus(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+count\(\*\)\s+FROM\s+tenants\s+WHERE\s+status\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := repo.CountByStatus(context.Background(), "active")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	mock.ExpectQuery(q).WithArgs("active").WillReturnError(errors.New("db err"))
	_, err = repo.CountByStatus(context.Background(), "active")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
