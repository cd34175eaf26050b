// Package errorlogs persists failed API requests for the back office.
package errorlogs

import (
	"context"

	"github.com/dmitrijs2005/boostmanager/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.ErrorLog) error
	Latest(ctx context.Context, limit int) ([]*models.ErrorLog, error)
}
