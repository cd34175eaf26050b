// Package refreshtokens declares the repository contract for server-side
// refresh tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/server/models"
)

// Repository issues, looks up and revokes refresh tokens.
type Repository interface {
	// Create stores a token for userID expiring at now+validity. Persistent
	// marks a "remember me" session.
	Create(ctx context.Context, userID string, token string, validity time.Duration, persistent bool) error

	// Consume deletes the token and returns the removed row, so only one
	// caller can rotate it. Returns common.ErrorNotFound when absent.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete is a no-op for unknown tokens.
	Delete(ctx context.Context, token string) error

	// DeleteByUser revokes every session of the user.
	DeleteByUser(ctx context.Context, userID string) error
}
