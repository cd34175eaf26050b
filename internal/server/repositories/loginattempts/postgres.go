package loginattempts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

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

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *PostgresRepository) Get(ctx context.Context, email string) (*models.LoginAttempts, error) {
	query := `SELECT email, attempts, locked_until FROM user_login_attempts WHERE email = $1`

	email = normalize(email)
	a := &models.LoginAttempts{Email: email}
	var lockedUntil sql.NullTime
	err := r.db.QueryRowContext(ctx, query, email).Scan(&a.Email, &a.Attempts, &lockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if lockedUntil.Valid {
		a.LockedUntil = &lockedUntil.Time
	}
	return a, nil
}

func (r *PostgresRepository) Save(ctx context.Context, a *models.LoginAttempts) error {
	query := `
		INSERT INTO user_login_attempts (email, attempts, locked_until, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (email) DO UPDATE
		SET attempts = EXCLUDED.attempts,
		    locked_until = EXCLUDED.locked_until,
		    updated_at = now()
	`
	var lockedUntil sql.NullTime
	if a.LockedUntil != nil {
		lockedUntil = sql.NullTime{Time: *a.LockedUntil, Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, query, normalize(a.Email), a.Attempts, lockedUntil); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Increment(ctx context.Context, email string, maxAttempts int, lockUntil time.Time) (*models.LoginAttempts, error) {
	query := `
		INSERT INTO user_login_attempts (email, attempts, locked_until, updated_at)
		VALUES ($1, 1, CASE WHEN 1 >= $2 THEN $3::timestamptz END, now())
		ON CONFLICT (email) DO UPDATE
		SET attempts = user_login_attempts.attempts + 1,
		    locked_until = CASE WHEN user_login_attempts.attempts + 1 >= $2 THEN $3::timestamptz END,
		    updated_at = now()
		WHERE user_login_attempts.locked_until IS NULL
		RETURNING email, attempts, locked_until
	`
	a := &models.LoginAttempts{}
	var lockedUntil sql.NullTime
	err := r.db.QueryRowContext(ctx, query, normalize(email), maxAttempts, lockUntil).Scan(&a.Email, &a.Attempts, &lockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrAccountLocked
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if lockedUntil.Valid {
		a.LockedUntil = &lockedUntil.Time
	}
	return a, nil
}

func (r *PostgresRepository) Reset(ctx context.Context, email string) error {
	query := `DELETE FROM user_login_attempts WHERE email = $1`
	if _, err := r.db.ExecContext(ctx, query, normalize(email)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
