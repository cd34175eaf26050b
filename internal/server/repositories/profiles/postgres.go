package profiles

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

const profileColumns = `id, email, name, password_hash, role, tenant_id, onboarding_completed, email_confirmed, last_seen, created_at`

func scanProfile(row *sql.Row) (*models.Profile, error) {
	p := &models.Profile{}
	var tenantID sql.NullString
	var lastSeen sql.NullTime
	err := row.Scan(&p.ID, &p.Email, &p.Name, &p.PasswordHash, &p.Role, &tenantID,
		&p.OnboardingCompleted, &p.EmailConfirmed, &lastSeen, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if tenantID.Valid {
		p.TenantID = &tenantID.String
	}
	if lastSeen.Valid {
		p.LastSeen = &lastSeen.Time
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	query :=
		`INSERT INTO profiles (email, name, password_hash, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	err := r.db.QueryRowContext(ctx, query, p.Email, p.Name, p.PasswordHash, p.Role).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM profiles WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// exec runs an UPDATE that must touch exactly one profile.
func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return r.exec(ctx, `UPDATE profiles SET password_hash = $2 WHERE id = $1`, id, passwordHash)
}

func (r *PostgresRepository) ConfirmEmail(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE profiles SET email_confirmed = true WHERE id = $1`, id)
}

func (r *PostgresRepository) CompleteOnboarding(ctx context.Context, id, name, tenantID, role string) error {
	query :=
		`UPDATE profiles
		 SET name = $2, tenant_id = $3, role = $4, onboarding_completed = true
		 WHERE id = $1
		 `
	return r.exec(ctx, query, id, name, tenantID, role)
}

func (r *PostgresRepository) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `UPDATE profiles SET last_seen = $2 WHERE id = $1`, id, at)
}

func (r *PostgresRepository) ListSeenSince(ctx context.Context, since time.Time) ([]*models.OnlineUser, error) {
	query :=
		`SELECT id, name, email, last_seen FROM profiles
		 WHERE last_seen >= $1
		 ORDER BY last_seen DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.OnlineUser
	for rows.Next() {
		u := &models.OnlineUser{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.LastSeen); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// Probe runs the lightweight query used by the health check. An empty
// profiles table is still healthy.
func (r *PostgresRepository) Probe(ctx context.Context) error {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM profiles LIMIT 1`).Scan(&id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
