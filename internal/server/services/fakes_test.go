package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/dbx"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
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

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// fakeStore is an in-memory backing for every repository. Transactions are
// not modelled: writes inside a rolled back tx stay visible.
type fakeStore struct {
	mu sync.Mutex

	profiles      map[string]*models.Profile
	tenants       map[string]*models.Tenant
	refresh       map[string]*models.RefreshToken
	authTokens    map[string]*models.AuthToken
	attempts      map[string]*models.LoginAttempts
	orders        map[string]*models.Order
	sequences     map[string]int64
	audit         []*models.AuditEntry
	errorLogs     []*models.ErrorLog
	subscriptions []*models.Subscription
	payrolls      []*models.Payroll
	seq           int

	probeErr   error
	ordersErr  error
	auditErr   error
	refreshErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:   map[string]*models.Profile{},
		tenants:    map[string]*models.Tenant{},
		refresh:    map[string]*models.RefreshToken{},
		authTokens: map[string]*models.AuthToken{},
		attempts:   map[string]*models.LoginAttempts{},
		orders:     map[string]*models.Order{},
		sequences:  map[string]int64{},
	}
}

func (s *fakeStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

type fakeRepoManager struct{ s *fakeStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository           { return fakeProfiles{m.s} }
func (m *fakeRepoManager) Tenants(dbx.DBTX) tenants.Repository             { return fakeTenants{m.s} }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return fakeRefresh{m.s} }
func (m *fakeRepoManager) AuthTokens(dbx.DBTX) authtokens.Repository       { return fakeAuthTokens{m.s} }
func (m *fakeRepoManager) LoginAttempts(dbx.DBTX) loginattempts.Repository { return fakeAttempts{m.s} }
func (m *fakeRepoManager) Orders(dbx.DBTX) orders.Repository               { return fakeOrders{m.s} }
func (m *fakeRepoManager) AuditLog(dbx.DBTX) auditlog.Repository           { return fakeAudit{m.s} }
func (m *fakeRepoManager) ErrorLogs(dbx.DBTX) errorlogs.Repository         { return fakeErrorLogs{m.s} }
func (m *fakeRepoManager) Subscriptions(dbx.DBTX) subscriptions.Repository {
	return fakeSubscriptions{m.s}
}
func (m *fakeRepoManager) Payrolls(dbx.DBTX) payrolls.Repository { return fakePayrolls{m.s} }

// --- profiles ---

type fakeProfiles struct{ s *fakeStore }

func (r fakeProfiles) Create(_ context.Context, p *models.Profile) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.profiles {
		if x.Email == strings.ToLower(p.Email) {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *p
	c.ID = r.s.nextID("p")
	c.Email = strings.ToLower(p.Email)
	r.s.profiles[c.ID] = &c
	out := c
	return &out, nil
}

func (r fakeProfiles) GetByID(_ context.Context, id string) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	return &c, nil
}

func (r fakeProfiles) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.Email == strings.ToLower(strings.TrimSpace(email)) {
			c := *p
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r fakeProfiles) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == common.ErrorNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r fakeProfiles) update(id string, fn func(p *models.Profile)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(p)
	return nil
}

func (r fakeProfiles) UpdatePassword(_ context.Context, id, hash string) error {
	return r.update(id, func(p *models.Profile) { p.PasswordHash = hash })
}

func (r fakeProfiles) ConfirmEmail(_ context.Context, id string) error {
	return r.update(id, func(p *models.Profile) { p.EmailConfirmed = true })
}

func (r fakeProfiles) CompleteOnboarding(_ context.Context, id, name, tenantID, role string) error {
	return r.update(id, func(p *models.Profile) {
		p.Name = name
		p.TenantID = &tenantID
		p.Role = role
		p.OnboardingCompleted = true
	})
}

func (r fakeProfiles) TouchLastSeen(_ context.Context, id string, at time.Time) error {
	return r.update(id, func(p *models.Profile) { p.LastSeen = &at })
}

func (r fakeProfiles) ListSeenSince(_ context.Context, since time.Time) ([]*models.OnlineUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var res []*models.OnlineUser
	for _, p := range r.s.profiles {
		if p.LastSeen != nil && !p.LastSeen.Before(since) {
			res = append(res, &models.OnlineUser{ID: p.ID, Name: p.Name, Email: p.Email, LastSeen: *p.LastSeen})
		}
	}
	return res, nil
}

func (r fakeProfiles) Probe(context.Context) error { return r.s.probeErr }

// --- tenants ---

type fakeTenants struct{ s *fakeStore }

func (r fakeTenants) Create(ctx context.Context, name string) (*models.Tenant, error) {
	if ok, _ := r.ExistsByName(ctx, name); ok {
		return nil, common.ErrorAlreadyExists
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := &models.Tenant{ID: r.s.nextID("t"), Name: strings.TrimSpace(name), Status: common.TenantStatusActive}
	r.s.tenants[t.ID] = t
	return t, nil
}

func (r fakeTenants) Get(_ context.Context, id string) (*models.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tenants[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (r fakeTenants) ExistsByName(_ context.Context, name string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tenants {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeTenants) CountByStatus(_ context.Context, status string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, t := range r.s.tenants {
		if t.Status == status {
			n++
		}
	}
	return n, nil
}

// --- refresh tokens ---

type fakeRefresh struct{ s *fakeStore }

func (r fakeRefresh) Create(_ context.Context, userID, token string, validity time.Duration, persistent bool) error {
	if r.s.refreshErr != nil {
		return r.s.refreshErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.refresh[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity), Persistent: persistent}
	return nil
}

func (r fakeRefresh) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.refresh[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.s.refresh, token)
	return t, nil
}

func (r fakeRefresh) Delete(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.refresh, token)
	return nil
}

func (r fakeRefresh) DeleteByUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, t := range r.s.refresh {
		if t.UserID == userID {
			delete(r.s.refresh, k)
		}
	}
	return nil
}

// --- auth tokens ---

type fakeAuthTokens struct{ s *fakeStore }

func (r fakeAuthTokens) Create(_ context.Context, t *models.AuthToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *t
	r.s.authTokens[t.TokenHash] = &c
	return nil
}

func (r fakeAuthTokens) Consume(_ context.Context, hash, purpose string) (*models.AuthToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.authTokens[hash]
	if !ok || t.Purpose != purpose || t.UsedAt != nil || !t.ExpiresAt.After(time.Now()) {
		return nil, common.ErrorNotFound
	}
	now := time.Now()
	t.UsedAt = &now
	return t, nil
}

// --- login attempts ---

type fakeAttempts struct{ s *fakeStore }

func (r fakeAttempts) Get(_ context.Context, email string) (*models.LoginAttempts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	if a, ok := r.s.attempts[email]; ok {
		c := *a
		return &c, nil
	}
	return &models.LoginAttempts{Email: email}, nil
}

func (r fakeAttempts) Save(_ context.Context, a *models.LoginAttempts) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *a
	r.s.attempts[a.Email] = &c
	return nil
}

func (r fakeAttempts) Increment(_ context.Context, email string, maxAttempts int, lockUntil time.Time) (*models.LoginAttempts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	a, ok := r.s.attempts[email]
	if !ok {
		a = &models.LoginAttempts{Email: email}
		r.s.attempts[email] = a
	}
	if a.LockedUntil != nil {
		return nil, common.ErrAccountLocked
	}
	a.Attempts++
	if a.Attempts >= maxAttempts {
		until := lockUntil
		a.LockedUntil = &until
	}
	c := *a
	return &c, nil
}

func (r fakeAttempts) Reset(_ context.Context, email string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.attempts, strings.ToLower(strings.TrimSpace(email)))
	return nil
}

// --- orders ---

type fakeOrders struct{ s *fakeStore }

func (r fakeOrders) live(tenantID string) []*models.Order {
	var res []*models.Order
	for _, o := range r.s.orders {
		if o.TenantID == tenantID && o.DeletedAt == nil {
			res = append(res, o)
		}
	}
	return res
}

func (r fakeOrders) List(_ context.Context, tenantID string) ([]*models.Order, error) {
	if r.s.ordersErr != nil {
		return nil, r.s.ordersErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.live(tenantID), nil
}

func (r fakeOrders) ListByStatus(_ context.Context, tenantID, status string) ([]*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var res []*models.Order
	for _, o := range r.live(tenantID) {
		if o.Status == status {
			res = append(res, o)
		}
	}
	return res, nil
}

func (r fakeOrders) Get(_ context.Context, tenantID, id string) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok || o.TenantID != tenantID || o.DeletedAt != nil {
		return nil, common.ErrorNotFound
	}
	c := *o
	return &c, nil
}

func (r fakeOrders) Create(_ context.Context, o *models.Order) error {
	if r.s.ordersErr != nil {
		return r.s.ordersErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.ID = r.s.nextID("o")
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	c := *o
	r.s.orders[o.ID] = &c
	return nil
}

func (r fakeOrders) Update(_ context.Context, o *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.orders[o.ID]
	if !ok || cur.TenantID != o.TenantID {
		return common.ErrorNotFound
	}
	o.CreatedAt = cur.CreatedAt
	o.UpdatedAt = time.Now()
	c := *o
	r.s.orders[o.ID] = &c
	return nil
}

func (r fakeOrders) SoftDelete(_ context.Context, tenantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok || o.TenantID != tenantID || o.DeletedAt != nil {
		return common.ErrorNotFound
	}
	now := time.Now()
	o.DeletedAt = &now
	return nil
}

func (r fakeOrders) NextNumber(_ context.Context, tenantID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sequences[tenantID]++
	return r.s.sequences[tenantID], nil
}

func (r fakeOrders) Stats(_ context.Context, tenantID string) (*orders.Stats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := &orders.Stats{}
	for _, o := range r.live(tenantID) {
		st.Count++
		st.Revenue += o.TotalValue
		if o.Status == common.OrderStatusInProgress {
			st.InProgress++
		}
	}
	return st, nil
}

// --- audit / error logs ---

type fakeAudit struct{ s *fakeStore }

func (r fakeAudit) Create(_ context.Context, e *models.AuditEntry) error {
	if r.s.auditErr != nil {
		return r.s.auditErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = r.s.nextID("a")
	e.Timestamp = time.Now()
	r.s.audit = append(r.s.audit, e)
	return nil
}

func (r fakeAudit) Latest(_ context.Context, limit int) ([]*models.AuditEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var res []*models.AuditEntry
	for i := len(r.s.audit) - 1; i >= 0 && len(res) < limit; i-- {
		res = append(res, r.s.audit[i])
	}
	return res, nil
}

func (r fakeAudit) Count(context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.audit), nil
}

type fakeErrorLogs struct{ s *fakeStore }

func (r fakeErrorLogs) Create(_ context.Context, e *models.ErrorLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = r.s.nextID("e")
	e.CreatedAt = time.Now()
	r.s.errorLogs = append(r.s.errorLogs, e)
	return nil
}

func (r fakeErrorLogs) Latest(_ context.Context, limit int) ([]*models.ErrorLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var res []*models.ErrorLog
	for i := len(r.s.errorLogs) - 1; i >= 0 && len(res) < limit; i-- {
		res = append(res, r.s.errorLogs[i])
	}
	return res, nil
}

// --- billing / payroll ---

type fakeSubscriptions struct{ s *fakeStore }

func (r fakeSubscriptions) ListByStatus(_ context.Context, status string) ([]*models.Subscription, error) {
	var res []*models.Subscription
	for _, x := range r.s.subscriptions {
		if x.Status == status {
			res = append(res, x)
		}
	}
	return res, nil
}

type fakePayrolls struct{ s *fakeStore }

func (r fakePayrolls) List(_ context.Context, tenantID, status string) ([]*models.Payroll, error) {
	var res []*models.Payroll
	for _, p := range r.s.payrolls {
		if p.TenantID == tenantID && (status == "" || p.Status == status) {
			res = append(res, p)
		}
	}
	return res, nil
}

func (r fakePayrolls) CountByStatus(ctx context.Context, tenantID, status string) (int, error) {
	l, err := r.List(ctx, tenantID, status)
	return len(l), err
}

// --- publisher / mailer ---

type capturePublisher struct {
	mu     sync.Mutex
	topics []string
	events []any
}

func (p *capturePublisher) Publish(_ context.Context, topic string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, payload)
}

type captureMailer struct {
	to, subject, body string
	err               error
}

func (m *captureMailer) Send(_ context.Context, to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	return m.err
}

// lastCode extracts the trailing code from a mailed body.
func (m *captureMailer) lastCode() string {
	i := strings.LastIndex(m.body, " ")
	return m.body[i+1:]
}
