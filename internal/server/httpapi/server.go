// Package httpapi exposes the BoostManager services as a JSON API over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/logging"
	"github.com/dmitrijs2005/boostmanager/internal/server/guards"
	"github.com/dmitrijs2005/boostmanager/internal/server/metrics"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
	"github.com/dmitrijs2005/boostmanager/internal/server/realtime"
	"github.com/dmitrijs2005/boostmanager/internal/server/services"
	"github.com/dmitrijs2005/boostmanager/internal/validation"
	"github.com/go-chi/chi/v5"
)

type AuthService interface {
	SignUp(ctx context.Context, form validation.SignupForm) (*models.Profile, error)
	ConfirmEmail(ctx context.Context, code string) error
	SignIn(ctx context.Context, form validation.LoginForm) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	SignOut(ctx context.Context, refreshToken string) error
	Authenticate(ctx context.Context, accessToken string) (*models.Profile, error)
	Me(ctx context.Context, userID string) (*services.Session, error)
	CheckNewUser(ctx context.Context, userID string) (bool, error)
	RecoverPassword(ctx context.Context, form validation.RecoveryForm) error
	ResetPassword(ctx context.Context, form validation.ResetPasswordForm) error
}

type LockoutService interface {
	Check(ctx context.Context, email string) (*services.LockoutStatus, error)
	RecordFailure(ctx context.Context, email string) (*services.FailureResult, error)
	RemainingAttempts(ctx context.Context, email string) (int, error)
}

type OnboardingService interface {
	TenantExists(ctx context.Context, name string) (bool, error)
	Complete(ctx context.Context, userID string, form validation.OnboardingForm) (*services.OnboardingResult, error)
}

type OrderService interface {
	List(ctx context.Context, tenantID, search string) ([]*models.Order, error)
	Get(ctx context.Context, tenantID, id string) (*models.Order, error)
	Create(ctx context.Context, tenantID, actorID string, form *validation.OrderForm) (*models.Order, error)
	Update(ctx context.Context, tenantID, actorID, id string, form *validation.OrderForm) (*models.Order, error)
	Delete(ctx context.Context, tenantID, actorID, id string) error
}

type ExportService interface {
	Export(ctx context.Context, tenantID string) (*services.ExportResult, error)
}

type CurrencyService interface {
	DollarRate(ctx context.Context) float64
	ExchangeRates(ctx context.Context, base string) (map[string]float64, error)
}

type DashboardService interface {
	Cards(ctx context.Context, tenantID string) (*services.Cards, error)
	ActiveOrders(ctx context.Context, tenantID string) ([]*services.ActiveOrder, error)
	Payroll(ctx context.Context, tenantID, status, search string) ([]*models.Payroll, error)
}

type GameService interface {
	List(ctx context.Context) []*services.Game
}

type BackOfficeService interface {
	Summary(ctx context.Context) (*services.Summary, error)
	Health() string
	Touch(ctx context.Context, userID string) error
}

type AuditService interface {
	Latest(ctx context.Context) ([]*models.AuditEntry, error)
}

type ErrorLogService interface {
	Record(ctx context.Context, message, path string, status int) error
	Latest(ctx context.Context) ([]*models.ErrorLog, error)
}

// Feed streams a realtime topic to websocket clients.
type Feed interface {
	Handler(topic string) http.HandlerFunc
}

// Services groups the dependencies of the API.
type Services struct {
	Auth       AuthService
	Lockout    LockoutService
	Onboarding OnboardingService
	Orders     OrderService
	Export     ExportService
	Currency   CurrencyService
	Dashboard  DashboardService
	Games      GameService
	BackOffice BackOfficeService
	Audit      AuditService
	ErrorLogs  ErrorLogService
	Feed       Feed
}

// Options tune transport behaviour.
type Options struct {
	LoginRateLimit   float64
	LoginRateBurst   int
	TrustedProxies   []string
	PresenceInterval time.Duration
	ShutdownTimeout  time.Duration
}

// limiterIdle is how long an address keeps its login bucket without requests.
const limiterIdle = 10 * time.Minute

type Server struct {
	address  string
	logger   logging.Logger
	svc      Services
	opts     Options
	limiter  *RateLimiter
	presence *presence
}

func NewServer(address string, l logging.Logger, svc Services, opts Options) *Server {
	if opts.PresenceInterval <= 0 {
		opts.PresenceInterval = time.Minute
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		address:  address,
		logger:   l.With("module", "http_server"),
		svc:      svc,
		opts:     opts,
		limiter:  NewRateLimiter(opts.LoginRateLimit, opts.LoginRateBurst, opts.TrustedProxies, l),
		presence: newPresence(opts.PresenceInterval),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID, s.requestLogger, metrics.Instrument, s.recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/api/rates", s.handleRates)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignUp)
		r.Post("/confirm", s.handleConfirmEmail)
		r.With(s.limiter.Handler).Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/logout", s.handleLogout)
		r.Post("/recover", s.handleRecover)
		r.Post("/reset", s.handleReset)
		r.With(s.authenticate, s.guard(guards.Auth)).Get("/me", s.handleMe)
	})

	r.Route("/functions/v1", func(r chi.Router) {
		r.Post("/check-lockout", s.handleCheckLockout)
		r.Post("/record-login-failure", s.handleRecordLoginFailure)
		r.Post("/remaining-attempts", s.handleRemainingAttempts)
		r.With(s.authenticate, s.guard(guards.Auth)).Post("/check-new-user", s.handleCheckNewUser)
	})

	r.Route("/onboarding", func(r chi.Router) {
		r.Use(s.authenticate, s.guard(guards.Auth, guards.OnboardingPending))
		r.Get("/tenant-exists", s.handleTenantExists)
		r.Post("/", s.handleCompleteOnboarding)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate, s.guard(guards.Auth, guards.OnboardingCompleted, guards.Tenant))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", s.handleListOrders)
			r.Post("/", s.handleCreateOrder)
			r.Post("/export", s.handleExportOrders)
			r.Get("/{orderID}", s.handleGetOrder)
			r.Put("/{orderID}", s.handleUpdateOrder)
			r.Delete("/{orderID}", s.handleDeleteOrder)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/cards", s.handleDashboardCards)
			r.Get("/active-orders", s.handleActiveOrders)
			r.Get("/payroll", s.handlePayroll)
		})

		r.Get("/games", s.handleGames)
		r.Get("/currency/usd-brl", s.handleDollarRate)
	})

	r.Route("/superadmin", func(r chi.Router) {
		r.Use(s.authenticate, s.guard(guards.Auth, guards.SuperAdmin))
		r.Get("/summary", s.handleSummary)
		r.Get("/audit", s.handleAuditFeed)
		r.Get("/errors", s.handleErrorFeed)
		if s.svc.Feed != nil {
			r.Get("/ws/audit", s.svc.Feed.Handler(realtime.TopicAudit))
			r.Get("/ws/errors", s.svc.Feed.Handler(realtime.TopicErrors))
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "")
	})

	return r
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.limiter.StartCleanup(ctx, time.Minute, limiterIdle)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
