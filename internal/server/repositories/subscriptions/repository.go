// Package subscriptions reads tenant billing plans.
package subscriptions

import (
	"context"

	"github.com/dmitrijs2005/boostmanager/internal/server/models"
)

type Repository interface {
	ListByStatus(ctx context.Context, status string) ([]*models.Subscription, error)
}
