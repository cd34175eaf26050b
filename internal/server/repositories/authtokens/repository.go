// Package authtokens stores single-use e-mail codes (confirmation and
// password recovery). Only SHA-256 hashes of the codes are persisted.
package authtokens

import (
	"context"

	"github.com/dmitrijs2005/boostmanager/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.AuthToken) error
	// Consume marks an unused, unexpired token as used and returns it.
	// Unknown, used or expired tokens yield common.ErrorNotFound.
	Consume(ctx context.Context, tokenHash, purpose string) (*models.AuthToken, error)
}
