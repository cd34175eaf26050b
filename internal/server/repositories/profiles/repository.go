// Package profiles declares the repository contract for application users.
package profiles

import (
	"context"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/server/models"
)

// Repository persists profiles. Lookups of absent rows return
// common.ErrorNotFound; a duplicate e-mail returns common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, p *models.Profile) (*models.Profile, error)
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	ConfirmEmail(ctx context.Context, id string) error
	CompleteOnboarding(ctx context.Context, id, name, tenantID, role string) error
	TouchLastSeen(ctx context.Context, id string, at time.Time) error
	ListSeenSince(ctx context.Context, since time.Time) ([]*models.OnlineUser, error)
	Probe(ctx context.Context) error
}
