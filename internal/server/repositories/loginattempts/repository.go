// Package loginattempts persists failed sign-in counters per e-mail.
package loginattempts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/server/models"
)

type Repository interface {
	// Get returns a zero-valued record for e-mails never seen.
	Get(ctx context.Context, email string) (*models.LoginAttempts, error)
	Save(ctx context.Context, a *models.LoginAttempts) error
	// Increment atomically counts one failure and sets lockUntil once the
	// count reaches maxAttempts. A record that is already locked is left
	// alone and common.ErrAccountLocked is returned.
	Increment(ctx context.Context, email string, maxAttempts int, lockUntil time.Time) (*models.LoginAttempts, error)
	Reset(ctx context.Context, email string) error
}
