package authtokens

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

func (r *PostgresRepository) Create(ctx context.Context, t *models.AuthToken) error {
	query := `
		INSERT INTO auth_tokens (token_hash, user_id, purpose, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, t.TokenHash, t.UserID, t.Purpose, t.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Consume(ctx context.Context, tokenHash, purpose string) (*models.AuthToken, error) {
	query := `
		UPDATE auth_tokens
		SET used_at = now()
		WHERE token_hash = $1 AND purpose = $2 AND used_at IS NULL AND expires_at > now()
		RETURNING token_hash, user_id, purpose, expires_at, used_at
	`
	t := &models.AuthToken{}
	var usedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, tokenHash, purpose).Scan(&t.TokenHash, &t.UserID, &t.Purpose, &t.ExpiresAt, &usedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if usedAt.Valid {
		t.UsedAt = &usedAt.Time
	}
	return t, nil
}
