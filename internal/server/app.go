// Package server wires the BoostManager API server together: storage,
// services, the HTTP API, realtime feeds and background jobs, and runs
// them until the process is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/logging"
	"github.com/dmitrijs2005/boostmanager/internal/server/config"
	"github.com/dmitrijs2005/boostmanager/internal/server/httpapi"
	"github.com/dmitrijs2005/boostmanager/internal/server/ratecache"
	"github.com/dmitrijs2005/boostmanager/internal/server/realtime"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/boostmanager/internal/server/scheduler"
	"github.com/dmitrijs2005/boostmanager/internal/server/services"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	hub       *realtime.Hub
	api       *httpapi.Server
	scheduler *scheduler.Scheduler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogBackend, os.Stdout)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	hub := realtime.NewHub(logger)
	client := &http.Client{Timeout: 10 * time.Second}

	audit := services.NewAuditService(db, rm, hub, logger)
	errorLogs := services.NewErrorLogService(db, rm, hub)
	lockout := services.NewLockoutService(db, rm, c)
	auth := services.NewAuthService(db, rm, c, lockout, audit, services.NewLogMailer(logger, c.MailLogBodies), logger)
	orders := services.NewOrderService(db, rm, audit)
	currency := services.NewCurrencyService(c, ratecache.New(c.RedisAddr, c.RedisPassword), client, logger)
	backOffice := services.NewBackOfficeService(db, rm, audit, c.OnlineWindow, logger)

	api := httpapi.NewServer(c.HTTPAddr, logger, httpapi.Services{
		Auth:       auth,
		Lockout:    lockout,
		Onboarding: services.NewOnboardingService(db, rm, c, audit),
		Orders:     orders,
		Export:     services.NewExportService(orders, c),
		Currency:   currency,
		Dashboard:  services.NewDashboardService(db, rm, currency),
		Games:      services.NewGameService(c, client, logger),
		BackOffice: backOffice,
		Audit:      audit,
		ErrorLogs:  errorLogs,
		Feed:       hub,
	}, httpapi.Options{
		LoginRateLimit:  c.LoginRateLimit,
		LoginRateBurst:  c.LoginRateBurst,
		TrustedProxies:  c.TrustedProxies,
		ShutdownTimeout: c.ShutdownTimeout,
	})

	return &App{
		config:    c,
		logger:    logger,
		db:        db,
		hub:       hub,
		api:       api,
		scheduler: scheduler.New(logger, 0, scheduler.Jobs(c, backOffice, currency)...),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until a signal arrives or a component fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := app.api.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()
	go func() {
		defer wg.Done()
		if err := app.scheduler.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	app.hub.Close()
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
