// Package payrolls reads booster payouts for a tenant.
package payrolls

import (
	"context"

	"github.com/dmitrijs2005/boostmanager/internal/server/models"
)

type Repository interface {
	// List returns payrolls newest first. An empty status means all.
	List(ctx context.Context, tenantID, status string) ([]*models.Payroll, error)
	CountByStatus(ctx context.Context, tenantID, status string) (int, error)
}
