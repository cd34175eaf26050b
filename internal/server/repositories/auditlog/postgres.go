package auditlog

import (
	"context"
	"database/sql"
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

func nullable(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.AuditEntry) error {
	query := `
		INSERT INTO audit_log (tenant_id, actor_id, action, entity, entity_id, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, timestamp
	`
	err := r.db.QueryRowContext(ctx, query,
		nullable(e.TenantID), nullable(e.ActorID), e.Action, e.Entity, e.EntityID, e.Details,
	).Scan(&e.ID, &e.Timestamp)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Latest(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, tenant_id, actor_id, action, entity, entity_id, details, timestamp
		FROM audit_log
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AuditEntry
	for rows.Next() {
		e := &models.AuditEntry{}
		var tenantID, actorID sql.NullString
		if err := rows.Scan(&e.ID, &tenantID, &actorID, &e.Action, &e.Entity, &e.EntityID, &e.Details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if tenantID.Valid {
			e.TenantID = &tenantID.String
		}
		if actorID.Valid {
			e.ActorID = &actorID.String
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM audit_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
