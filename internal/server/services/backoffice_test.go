package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/logging"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackOffice(t *testing.T) (*BackOfficeService, *fakeStore) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	store := newFakeStore()
	rm := &fakeRepoManager{s: store}
	audit := NewAuditService(db, rm, nil, logging.Nop{})
	return NewBackOfficeService(db, rm, audit, 5*time.Minute, logging.Nop{}), store
}

func TestBackOffice_HealthCheck(t *testing.T) {
	svc, store := newBackOffice(t)
	assert.Equal(t, HealthError, svc.Health())

	require.NoError(t, svc.HealthCheck(context.Background()))
	assert.Equal(t, HealthOK, svc.Health())

	store.probeErr = errBoom{}
	assert.Error(t, svc.HealthCheck(context.Background()))
	assert.Equal(t, HealthError, svc.Health())
}

func TestBackOffice_OnlineUsersWindow(t *testing.T) {
	svc, store := newBackOffice(t)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	recent := now.Add(-4 * time.Minute)
	stale := now.Add(-6 * time.Minute)
	store.profiles["p1"] = &models.Profile{ID: "p1", Email: "a@example.com", LastSeen: &recent}
	store.profiles["p2"] = &models.Profile{ID: "p2", Email: "b@example.com", LastSeen: &stale}
	store.profiles["p3"] = &models.Profile{ID: "p3", Email: "c@example.com"}

	users, err := svc.RefreshOnlineUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "p1", users[0].ID)

	require.NoError(t, svc.Touch(context.Background(), "p2"))
	assert.Equal(t, now, *store.profiles["p2"].LastSeen)
}

func TestBackOffice_Summary(t *testing.T) {
	svc, store := newBackOffice(t)
	ctx := context.Background()
	_, _ = fakeTenants{store}.Create(ctx, "Acme")
	_, _ = fakeTenants{store}.Create(ctx, "Beta")
	store.tenants["t-x"] = &models.Tenant{ID: "t-x", Name: "Gone", Status: "suspended"}
	store.subscriptions = []*models.Subscription{
		{ID: "s1", Plan: "pro", Status: common.SubscriptionStatusActive},
		{ID: "s2", Plan: "basic", Status: "canceled"},
	}
	store.audit = []*models.AuditEntry{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}
	seen := time.Now()
	store.profiles["p1"] = &models.Profile{ID: "p1", LastSeen: &seen}
	require.NoError(t, svc.HealthCheck(ctx))

	s, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.ActiveTenants)
	assert.Equal(t, 1, s.ActiveSubscriptions)
	require.Len(t, s.ActivePlans, 1)
	assert.Equal(t, "pro", s.ActivePlans[0].Plan)
	assert.Equal(t, 3, s.AuditEntries)
	assert.Len(t, s.OnlineUsers, 1)
	assert.Equal(t, HealthOK, s.Health)
	assert.NotNil(t, s.HealthCheckedAt)
}
