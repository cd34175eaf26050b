package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/logging"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
	"github.com/dmitrijs2005/boostmanager/internal/server/services"
	"github.com/dmitrijs2005/boostmanager/internal/validation"
)

var errBoom = errors.New("boom")

func strptr(s string) *string { return &s }

var (
	tenantUser = &models.Profile{ID: "u-1", Email: "owner@acme.test", Role: common.RoleOwner, TenantID: strptr("t-1"), OnboardingCompleted: true, EmailConfirmed: true}
	newUser    = &models.Profile{ID: "u-2", Email: "new@acme.test", Role: common.RoleUser, EmailConfirmed: true}
	rootUser   = &models.Profile{ID: "u-3", Email: "root@example.com", Role: common.RoleSuperAdmin, OnboardingCompleted: true, EmailConfirmed: true}
)

// fakeAuth resolves access tokens from a fixed table.
type fakeAuth struct {
	tokens    map[string]*models.Profile
	signInErr error
	pair      *services.TokenPair
	isNew     bool
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		tokens: map[string]*models.Profile{"tenant": tenantUser, "new": newUser, "root": rootUser},
		pair:   &services.TokenPair{AccessToken: "a", RefreshToken: "r"},
	}
}

func (f *fakeAuth) SignUp(ctx context.Context, form validation.SignupForm) (*models.Profile, error) {
	if errs := form.Validate(); !errs.OK() {
		return nil, errs
	}
	return &models.Profile{ID: "u-9", Email: form.Email, Name: form.Name}, nil
}
func (f *fakeAuth) ConfirmEmail(ctx context.Context, code string) error {
	if code != "good" {
		return common.ErrInvalidToken
	}
	return nil
}
func (f *fakeAuth) SignIn(ctx context.Context, form validation.LoginForm) (*services.TokenPair, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.pair, nil
}
func (f *fakeAuth) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	if refreshToken == "rotated" {
		return nil, common.ErrInvalidToken
	}
	return f.pair, nil
}
func (f *fakeAuth) SignOut(ctx context.Context, refreshToken string) error { return nil }
func (f *fakeAuth) Authenticate(ctx context.Context, accessToken string) (*models.Profile, error) {
	if p, ok := f.tokens[accessToken]; ok {
		return p, nil
	}
	return nil, common.ErrorUnauthorized
}
func (f *fakeAuth) Me(ctx context.Context, userID string) (*services.Session, error) {
	for _, p := range f.tokens {
		if p.ID == userID {
			return &services.Session{Profile: p}, nil
		}
	}
	return nil, common.ErrorNotFound
}
func (f *fakeAuth) CheckNewUser(ctx context.Context, userID string) (bool, error) {
	return f.isNew, nil
}
func (f *fakeAuth) RecoverPassword(ctx context.Context, form validation.RecoveryForm) error {
	return nil
}
func (f *fakeAuth) ResetPassword(ctx context.Context, form validation.ResetPasswordForm) error {
	return nil
}

type fakeLockout struct {
	status    *services.LockoutStatus
	failure   *services.FailureResult
	remaining int
	err       error
	emails    []string
}

func (f *fakeLockout) Check(ctx context.Context, email string) (*services.LockoutStatus, error) {
	f.emails = append(f.emails, email)
	return f.status, f.err
}
func (f *fakeLockout) RecordFailure(ctx context.Context, email string) (*services.FailureResult, error) {
	f.emails = append(f.emails, email)
	return f.failure, f.err
}
func (f *fakeLockout) RemainingAttempts(ctx context.Context, email string) (int, error) {
	f.emails = append(f.emails, email)
	return f.remaining, f.err
}

type fakeOnboarding struct {
	taken map[string]bool
}

func (f *fakeOnboarding) TenantExists(ctx context.Context, name string) (bool, error) {
	return f.taken[name], nil
}
func (f *fakeOnboarding) Complete(ctx context.Context, userID string, form validation.OnboardingForm) (*services.OnboardingResult, error) {
	if f.taken[form.TenantName] {
		return nil, common.ErrTenantNameTaken
	}
	return &services.OnboardingResult{
		Profile: &models.Profile{ID: userID, Role: common.RoleOwner, OnboardingCompleted: true},
		Tenant:  &models.Tenant{ID: "t-9", Name: form.TenantName},
	}, nil
}

// fakeOrders keeps orders per tenant.
type fakeOrders struct {
	mu       sync.Mutex
	byTenant map[string][]*models.Order
	err      error
	panicMsg string
	search   string
}

func (f *fakeOrders) List(ctx context.Context, tenantID, search string) ([]*models.Order, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.search = search
	return f.byTenant[tenantID], f.err
}
func (f *fakeOrders) Get(ctx context.Context, tenantID, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.byTenant[tenantID] {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, common.ErrorNotFound
}
func (f *fakeOrders) Create(ctx context.Context, tenantID, actorID string, form *validation.OrderForm) (*models.Order, error) {
	if errs := form.Validate(); !errs.OK() {
		return nil, errs
	}
	o := &models.Order{ID: "o-new", TenantID: tenantID, Booster: form.Booster}
	f.mu.Lock()
	f.byTenant[tenantID] = append(f.byTenant[tenantID], o)
	f.mu.Unlock()
	return o, nil
}
func (f *fakeOrders) Update(ctx context.Context, tenantID, actorID, id string, form *validation.OrderForm) (*models.Order, error) {
	o, err := f.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	o.Booster = form.Booster
	return o, nil
}
func (f *fakeOrders) Delete(ctx context.Context, tenantID, actorID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.byTenant[tenantID]
	for i, o := range list {
		if o.ID == id {
			f.byTenant[tenantID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeExport struct{}

func (fakeExport) Export(ctx context.Context, tenantID string) (*services.ExportResult, error) {
	return &services.ExportResult{Key: tenantID + "/export.json", URL: "https://s3.test/x", Count: 1}, nil
}

type fakeCurrency struct {
	rate     float64
	rates    map[string]float64
	ratesErr error
	base     string
}

func (f *fakeCurrency) DollarRate(ctx context.Context) float64 { return f.rate }
func (f *fakeCurrency) ExchangeRates(ctx context.Context, base string) (map[string]float64, error) {
	f.base = base
	return f.rates, f.ratesErr
}

type fakeDashboard struct {
	tenant string
	status string
	search string
}

func (f *fakeDashboard) Cards(ctx context.Context, tenantID string) (*services.Cards, error) {
	f.tenant = tenantID
	return &services.Cards{Revenue: services.Card{Title: "Revenue", Value: 100}}, nil
}
func (f *fakeDashboard) ActiveOrders(ctx context.Context, tenantID string) ([]*services.ActiveOrder, error) {
	f.tenant = tenantID
	return []*services.ActiveOrder{}, nil
}
func (f *fakeDashboard) Payroll(ctx context.Context, tenantID, status, search string) ([]*models.Payroll, error) {
	f.tenant, f.status, f.search = tenantID, status, search
	return []*models.Payroll{{ID: "p-1", Name: "Ana"}}, nil
}

type fakeGames struct{}

func (fakeGames) List(ctx context.Context) []*services.Game {
	return []*services.Game{{ID: "cod_bo6", Name: "Call of Duty: Black Ops 6", Available: true}}
}

type fakeBackOffice struct {
	mu      sync.Mutex
	health  string
	touches []string
}

func (f *fakeBackOffice) Summary(ctx context.Context) (*services.Summary, error) {
	return &services.Summary{ActiveTenants: 2, Health: f.health}, nil
}
func (f *fakeBackOffice) Health() string { return f.health }
func (f *fakeBackOffice) Touch(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touches = append(f.touches, userID)
	return nil
}

type fakeAudit struct{}

func (fakeAudit) Latest(ctx context.Context) ([]*models.AuditEntry, error) {
	return []*models.AuditEntry{{ID: "a-1", Action: "create"}}, nil
}

type fakeErrorLogs struct {
	mu       sync.Mutex
	recorded []*models.ErrorLog
}

func (f *fakeErrorLogs) Record(ctx context.Context, message, path string, status int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, &models.ErrorLog{Message: message, Path: path, Status: status})
	return nil
}
func (f *fakeErrorLogs) Latest(ctx context.Context) ([]*models.ErrorLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recorded, nil
}

// fakeFeed answers with the topic name instead of upgrading.
type fakeFeed struct{}

func (fakeFeed) Handler(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(topic))
	}
}

type fixture struct {
	auth       *fakeAuth
	lockout    *fakeLockout
	orders     *fakeOrders
	currency   *fakeCurrency
	dashboard  *fakeDashboard
	backoffice *fakeBackOffice
	errorLogs  *fakeErrorLogs
	server     *Server
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		auth:    newFakeAuth(),
		lockout: &fakeLockout{},
		orders: &fakeOrders{byTenant: map[string][]*models.Order{
			"t-1": {{ID: "o-1", TenantID: "t-1", OrderNumber: "0001", Booster: "Ana"}},
			"t-2": {{ID: "o-2", TenantID: "t-2", OrderNumber: "0001", Booster: "Bob"}},
		}},
		currency:   &fakeCurrency{rate: 5.4, rates: map[string]float64{"BRL": 5.4}},
		dashboard:  &fakeDashboard{},
		backoffice: &fakeBackOffice{health: services.HealthOK},
		errorLogs:  &fakeErrorLogs{},
	}
	f.server = NewServer(":0", logging.Nop{}, Services{
		Auth:       f.auth,
		Lockout:    f.lockout,
		Onboarding: &fakeOnboarding{taken: map[string]bool{"Acme": true}},
		Orders:     f.orders,
		Export:     fakeExport{},
		Currency:   f.currency,
		Dashboard:  f.dashboard,
		Games:      fakeGames{},
		BackOffice: f.backoffice,
		Audit:      fakeAudit{},
		ErrorLogs:  f.errorLogs,
		Feed:       fakeFeed{},
	}, opts)
	return f
}
