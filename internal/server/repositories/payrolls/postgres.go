package payrolls

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

func (r *PostgresRepository) List(ctx context.Context, tenantID, status string) ([]*models.Payroll, error) {
	query := `
		SELECT id, tenant_id, name, email, value, status, date
		FROM booster_payrolls
		WHERE tenant_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY date DESC
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, status)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Payroll
	for rows.Next() {
		p := &models.Payroll{}
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.Email, &p.Value, &p.Status, &p.Date); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context, tenantID, status string) (int, error) {
	query := `SELECT count(*) FROM booster_payrolls WHERE tenant_id = $1 AND status = $2`

	var n int
	if err := r.db.QueryRowContext(ctx, query, tenantID, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
