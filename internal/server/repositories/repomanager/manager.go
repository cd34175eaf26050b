// Package repomanager vends repositories bound to a dbx.DBTX so services can
// use the same repositories against a pool or inside a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/boostmanager/internal/dbx"
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
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Profiles(db dbx.DBTX) profiles.Repository
	Tenants(db dbx.DBTX) tenants.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	AuthTokens(db dbx.DBTX) authtokens.Repository
	LoginAttempts(db dbx.DBTX) loginattempts.Repository
	Orders(db dbx.DBTX) orders.Repository
	AuditLog(db dbx.DBTX) auditlog.Repository
	ErrorLogs(db dbx.DBTX) errorlogs.Repository
	Subscriptions(db dbx.DBTX) subscriptions.Repository
	Payrolls(db dbx.DBTX) payrolls.Repository
}
