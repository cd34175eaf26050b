package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRate float64

func (r fixedRate) DollarRate(context.Context) float64 { return float64(r) }

func seedDashboard(store *fakeStore) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store.orders["o1"] = &models.Order{ID: "o1", TenantID: "t1", Status: common.OrderStatusInProgress, TotalValue: 100, StartDate: start}
	store.orders["o2"] = &models.Order{ID: "o2", TenantID: "t1", Status: common.OrderStatusFinished, TotalValue: 170, StartDate: start}
	store.orders["o3"] = &models.Order{ID: "o3", TenantID: "t2", Status: common.OrderStatusInProgress, TotalValue: 999, StartDate: start}
	store.payrolls = []*models.Payroll{
		{ID: "p1", TenantID: "t1", Name: "Ana Souza", Email: "ana@example.com", Value: 250.5, Status: models.PayrollPending},
		{ID: "p2", TenantID: "t1", Name: "Bruno", Email: "bruno@example.com", Value: 80, Status: models.PayrollPaid},
		{ID: "p3", TenantID: "t1", Name: "Caio", Email: "caio@example.com", Value: 120, Status: models.PayrollLate},
		{ID: "p4", TenantID: "t2", Name: "Other", Email: "x@example.com", Value: 1, Status: models.PayrollPending},
	}
}

func TestDashboard_Cards(t *testing.T) {
	db, _ := newSQLMockDB(t)
	store := newFakeStore()
	seedDashboard(store)
	svc := NewDashboardService(db, &fakeRepoManager{s: store}, fixedRate(5.4))

	c, err := svc.Cards(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 270.0, c.Revenue.Value)
	assert.InDelta(t, 50.0, c.RevenueUSD, 1e-9)
	assert.Equal(t, 5.4, c.DollarRate)
	assert.Equal(t, 2.0, c.Orders.Value)
	assert.Equal(t, 1.0, c.InProgress.Value)
	assert.Equal(t, "in progress", c.InProgress.Subtitle)
	assert.Equal(t, 1.0, c.PayrollOwed.Value)
	assert.Equal(t, "Payment pending", c.PayrollOwed.Subtitle)
}

func TestDashboard_ActiveOrdersElapsed(t *testing.T) {
	db, _ := newSQLMockDB(t)
	store := newFakeStore()
	seedDashboard(store)
	svc := NewDashboardService(db, &fakeRepoManager{s: store}, fixedRate(5.4))
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 11, 2, 3, 0, time.UTC) }

	list, err := svc.ActiveOrders(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "o1", list[0].ID)
	assert.Equal(t, "1h 2m 3s", list[0].Elapsed)
}

func TestDashboard_PayrollFilter(t *testing.T) {
	db, _ := newSQLMockDB(t)
	store := newFakeStore()
	seedDashboard(store)
	svc := NewDashboardService(db, &fakeRepoManager{s: store}, fixedRate(5.4))
	ctx := context.Background()

	tests := []struct {
		name, status, search string
		want                 []string
	}{
		{"all", "all", "", []string{"p1", "p2", "p3"}},
		{"empty status", "", "", []string{"p1", "p2", "p3"}},
		{"by status", models.PayrollLate, "", []string{"p3"}},
		{"by name", "all", "ANA", []string{"p1"}},
		{"by email", "", "bruno@", []string{"p2"}},
		{"by value", "all", "250.5", []string{"p1"}},
		{"status and search", models.PayrollPaid, "ana", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := svc.Payroll(ctx, "t1", tt.status, tt.search)
			require.NoError(t, err)
			var ids []string
			for _, p := range list {
				ids = append(ids, p.ID)
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}
}
