// Package tenants declares the repository contract for customer companies.
package tenants

import (
	"context"

	"github.com/dmitrijs2005/boostmanager/internal/server/models"
)

// Repository persists tenants. Names are unique ignoring case; Create
// returns common.ErrorAlreadyExists on a clash.
type Repository interface {
	Create(ctx context.Context, name string) (*models.Tenant, error)
	Get(ctx context.Context, id string) (*models.Tenant, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}
