package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListByStatus(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*tenant_id,\s*plan,.*FROM\s+subscriptions\s+WHERE\s+status\s*=\s*\$1\b`).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "plan", "status", "amount", "currency", "created_at"}).
			AddRow("s1", "t1", "pro", "active", 99.9, "BRL", time.Now()).
			AddRow("s2", "t2", "basic", "active", 49.9, "BRL", time.Now()))

	got, err := NewPostgresRepository(db).ListByStatus(context.Background(), "active")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "pro", got[0].Plan)
	assert.InDelta(t, 49.9, got[1].Amount, 1e-9)
}
