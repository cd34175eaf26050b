package tenants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

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

func (r *PostgresRepository) Create(ctx context.Context, name string) (*models.Tenant, error) {
	query :=
		`INSERT INTO tenants (name)
		 VALUES ($1)
		 RETURNING id, name, status, created_at
		 `

	t := &models.Tenant{}
	err := r.db.QueryRowContext(ctx, query, strings.TrimSpace(name)).Scan(&t.ID, &t.Name, &t.Status, &t.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Tenant, error) {
	query := `SELECT id, name, status, created_at FROM tenants WHERE id = $1`

	t := &models.Tenant{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM tenants WHERE lower(name) = lower($1))`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, strings.TrimSpace(name)).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	query := `SELECT count(*) FROM tenants WHERE status = $1`

	var n int
	if err := r.db.QueryRowContext(ctx, query, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
