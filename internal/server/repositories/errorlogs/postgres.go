package errorlogs

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

func (r *PostgresRepository) Create(ctx context.Context, e *models.ErrorLog) error {
	query := `
		INSERT INTO error_logs (message, path, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, query, e.Message, e.Path, e.Status).Scan(&e.ID, &e.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Latest(ctx context.Context, limit int) ([]*models.ErrorLog, error) {
	query := `
		SELECT id, message, path, status, created_at
		FROM error_logs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ErrorLog
	for rows.Next() {
		e := &models.ErrorLog{}
		if err := rows.Scan(&e.ID, &e.Message, &e.Path, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
