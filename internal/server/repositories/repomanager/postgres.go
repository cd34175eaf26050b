package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/boostmanager/internal/dbx"
	"github.com/dmitrijs2005/boostmanager/internal/server/migrations"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/authtokens"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/errorlogs"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/loginattempts"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/orders"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/payrolls"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/tenants"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories and runs
// the embedded goose migrations.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Profiles(db dbx.DBTX) profiles.Repository {
	return profiles.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Tenants(db dbx.DBTX) tenants.Repository {
	return tenants.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) AuthTokens(db dbx.DBTX) authtokens.Repository {
	return authtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) LoginAttempts(db dbx.DBTX) loginattempts.Repository {
	return loginattempts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Orders(db dbx.DBTX) orders.Repository {
	return orders.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) AuditLog(db dbx.DBTX) auditlog.Repository {
	return auditlog.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) ErrorLogs(db dbx.DBTX) errorlogs.Repository {
	return errorlogs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Subscriptions(db dbx.DBTX) subscriptions.Repository {
	return subscriptions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Payrolls(db dbx.DBTX) payrolls.Repository {
	return payrolls.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
