package subscriptions

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/boostmanager/internal/dbx"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByStatus(ctx context.Context, status string) ([]*models.Subscription, error) {
	query := `
		SELECT id, tenant_id, plan, status, amount, currency, created_at
		FROM subscriptions
		WHERE status = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Subscription
	for rows.Next() {
		s := &models.Subscription{}
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Plan, &s.Status, &s.Amount, &s.Currency, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
