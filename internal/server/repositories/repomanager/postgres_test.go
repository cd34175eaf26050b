package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db
}

func TestFactories_ReturnRepos(t *testing.T) {
	db := newDB(t)
	defer db.Close()

	var m RepositoryManager = NewPostgresRepositoryManager()

	assert.NotNil(t, m.Profiles(db))
	assert.NotNil(t, m.Tenants(db))
	assert.NotNil(t, m.RefreshTokens(db))
	assert.NotNil(t, m.AuthTokens(db))
	assert.NotNil(t, m.LoginAttempts(db))
	assert.NotNil(t, m.Orders(db))
	assert.NotNil(t, m.AuditLog(db))
	assert.NotNil(t, m.ErrorLogs(db))
	assert.NotNil(t, m.Subscriptions(db))
	assert.NotNil(t, m.Payrolls(db))
}

func TestRunMigrations_Success(t *testing.T) {
	db := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	assert.EqualError(t, err, "boom")
}
