// Package auditlog persists the back-office audit trail.
package auditlog

import (
	"context"

	"github.com/dmitrijs2005/boostmanager/internal/server/models"
)

type Repository interface {
	// Create fills e.ID and e.Timestamp.
	Create(ctx context.Context, e *models.AuditEntry) error
	// Latest returns up to limit entries, newest first.
	Latest(ctx context.Context, limit int) ([]*models.AuditEntry, error)
	Count(ctx context.Context) (int, error)
}
