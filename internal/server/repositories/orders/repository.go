// Package orders declares the tenant-scoped order repository.
package orders

import (
	"context"

	"github.com/dmitrijs2005/boostmanager/internal/server/models"
)

// Stats aggregates a tenant's non-deleted orders for the dashboard.
type Stats struct {
	Count      int
	InProgress int
	Revenue    float64
}

// Repository reads and writes orders. Every method is scoped by tenant and
// ignores soft-deleted rows.
type Repository interface {
	List(ctx context.Context, tenantID string) ([]*models.Order, error)
	Get(ctx context.Context, tenantID, id string) (*models.Order, error)
	Create(ctx context.Context, o *models.Order) error
	Update(ctx context.Context, o *models.Order) error
	SoftDelete(ctx context.Context, tenantID, id string) error
	// NextNumber allocates the next per-tenant order number.
	NextNumber(ctx context.Context, tenantID string) (int64, error)
	Stats(ctx context.Context, tenantID string) (*Stats, error)
	ListByStatus(ctx context.Context, tenantID, status string) ([]*models.Order, error)
}
