package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/dbx"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const orderColumns = `id, tenant_id, order_number, booster, service_type, weapon_quantity, supplier,
	account_email, account_password, recovery_code, recovery_email, platform, start_date, end_date,
	status, currency, booster_currency, total_value, booster_value, observation, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(s rowScanner) (*models.Order, error) {
	o := &models.Order{}
	var (
		weaponQty sql.NullInt64
		endDate   sql.NullTime
	)
	err := s.Scan(&o.ID, &o.TenantID, &o.OrderNumber, &o.Booster, &o.ServiceType, &weaponQty, &o.Supplier,
		&o.AccountEmail, &o.AccountPassword, &o.RecoveryCode, &o.RecoveryEmail, &o.Platform, &o.StartDate, &endDate,
		&o.Status, &o.Currency, &o.BoosterCurrency, &o.TotalValue, &o.BoosterValue, &o.Observation, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if weaponQty.Valid {
		n := int(weaponQty.Int64)
		o.WeaponQuantity = &n
	}
	if endDate.Valid {
		o.EndDate = &endDate.Time
	}
	return o, nil
}

func nullableInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) List(ctx context.Context, tenantID string) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`
	return r.query(ctx, query, tenantID)
}

func (r *PostgresRepository) ListByStatus(ctx context.Context, tenantID, status string) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE tenant_id = $1 AND status = $2 AND deleted_at IS NULL
		ORDER BY start_date ASC`
	return r.query(ctx, query, tenantID, status)
}

func (r *PostgresRepository) Get(ctx context.Context, tenantID, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) Create(ctx context.Context, o *models.Order) error {
	query := `
		INSERT INTO orders (tenant_id, order_number, booster, service_type, weapon_quantity, supplier,
			account_email, account_password, recovery_code, recovery_email, platform, start_date, end_date,
			status, currency, booster_currency, total_value, booster_value, observation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		o.TenantID, o.OrderNumber, o.Booster, o.ServiceType, nullableInt(o.WeaponQuantity), o.Supplier,
		o.AccountEmail, o.AccountPassword, o.RecoveryCode, o.RecoveryEmail, o.Platform, o.StartDate, o.EndDate,
		o.Status, o.Currency, o.BoosterCurrency, o.TotalValue, o.BoosterValue, o.Observation,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, o *models.Order) error {
	query := `
		UPDATE orders
		SET order_number = $3, booster = $4, service_type = $5, weapon_quantity = $6, supplier = $7,
			account_email = $8, account_password = $9, recovery_code = $10, recovery_email = $11,
			platform = $12, start_date = $13, end_date = $14, status = $15, currency = $16,
			booster_currency = $17, total_value = $18, booster_value = $19, observation = $20,
			updated_at = now()
		WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		o.TenantID, o.ID, o.OrderNumber, o.Booster, o.ServiceType, nullableInt(o.WeaponQuantity), o.Supplier,
		o.AccountEmail, o.AccountPassword, o.RecoveryCode, o.RecoveryEmail, o.Platform, o.StartDate, o.EndDate,
		o.Status, o.Currency, o.BoosterCurrency, o.TotalValue, o.BoosterValue, o.Observation,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, tenantID, id string) error {
	query := `
		UPDATE orders SET deleted_at = now()
		WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, tenantID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) NextNumber(ctx context.Context, tenantID string) (int64, error) {
	query := `
		INSERT INTO tenant_order_sequences (tenant_id, last_number)
		VALUES ($1, 1)
		ON CONFLICT (tenant_id) DO UPDATE
		SET last_number = tenant_order_sequences.last_number + 1
		RETURNING last_number
	`
	var n int64
	if err := r.db.QueryRowContext(ctx, query, tenantID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Stats(ctx context.Context, tenantID string) (*Stats, error) {
	query := `
		SELECT count(*),
		       count(*) FILTER (WHERE status = $2),
		       COALESCE(sum(total_value), 0)
		FROM orders
		WHERE tenant_id = $1 AND deleted_at IS NULL
	`
	s := &Stats{}
	if err := r.db.QueryRowContext(ctx, query, tenantID, common.OrderStatusInProgress).Scan(&s.Count, &s.InProgress, &s.Revenue); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
