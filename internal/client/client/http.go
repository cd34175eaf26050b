package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/client/models"
	"github.com/dmitrijs2005/boostmanager/internal/validation"
)

// HTTPClient talks to the BoostManager JSON API. It attaches the access
// token, refreshes it once on a 401 and raises a Notice for every failed
// request.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onRefresh    func(ctx context.Context, pair *models.TokenPair)
	notify       func(Notice)
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		notify:  func(Notice) {},
	}
}

func (c *HTTPClient) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken, c.refreshToken = access, refresh
}

func (c *HTTPClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// OnTokenRefresh registers fn to persist rotated tokens.
func (c *HTTPClient) OnTokenRefresh(fn func(ctx context.Context, pair *models.TokenPair)) {
	c.onRefresh = fn
}

// OnNotice registers the notice sink.
func (c *HTTPClient) OnNotice(fn func(Notice)) {
	c.notify = fn
}

func (c *HTTPClient) send(ctx context.Context, method, path string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access, _ := c.tokens(); access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	return c.http.Do(req)
}

func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/auth/") || strings.HasPrefix(path, "/functions/")
}

// refresh rotates the token pair. It reports whether a retry makes sense.
func (c *HTTPClient) refresh(ctx context.Context) bool {
	_, refresh := c.tokens()
	if refresh == "" {
		return false
	}
	resp, err := c.send(ctx, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": refresh})
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var pair models.TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return false
	}
	c.SetTokens(pair.AccessToken, pair.RefreshToken)
	if c.onRefresh != nil {
		c.onRefresh(ctx, &pair)
	}
	return true
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	resp, err := c.send(ctx, method, path, in)
	if err == nil && resp.StatusCode == http.StatusUnauthorized && !isAuthPath(path) && c.refresh(ctx) {
		resp.Body.Close()
		resp, err = c.send(ctx, method, path, in)
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if n, ok := NoticeFor(0, path, ""); ok {
			c.notify(n)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		if n, ok := NoticeFor(resp.StatusCode, path, apiErr.Message); ok {
			c.notify(n)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func withQuery(path string, q url.Values) string {
	if enc := q.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}

// Ping checks that the server answers /health.
func (c *HTTPClient) Ping(ctx context.Context) error {
	var out map[string]string
	return c.do(ctx, http.MethodGet, "/health", nil, &out)
}

func (c *HTTPClient) SignUp(ctx context.Context, form validation.SignupForm) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodPost, "/auth/signup", form, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) ConfirmEmail(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodPost, "/auth/confirm", map[string]string{"code": code}, nil)
}

func (c *HTTPClient) Login(ctx context.Context, form validation.LoginForm) (*models.TokenPair, error) {
	var pair models.TokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/login", form, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *HTTPClient) Logout(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", map[string]string{"refresh_token": refreshToken}, nil)
}

func (c *HTTPClient) RecoverPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/recover", validation.RecoveryForm{Email: email}, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, form validation.ResetPasswordForm) error {
	return c.do(ctx, http.MethodPost, "/auth/reset", form, nil)
}

func (c *HTTPClient) Me(ctx context.Context) (*models.Session, error) {
	var s models.Session
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) CheckLockout(ctx context.Context, email string) (*models.LockoutStatus, error) {
	var st models.LockoutStatus
	if err := c.do(ctx, http.MethodPost, "/functions/v1/check-lockout", map[string]string{"email": email}, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *HTTPClient) RemainingAttempts(ctx context.Context, email string) (int, error) {
	var out struct {
		RemainingAttempts int `json:"remainingAttempts"`
	}
	if err := c.do(ctx, http.MethodPost, "/functions/v1/remaining-attempts", map[string]string{"email": email}, &out); err != nil {
		return 0, err
	}
	return out.RemainingAttempts, nil
}

func (c *HTTPClient) CheckNewUser(ctx context.Context) (bool, error) {
	var out struct {
		ShouldRedirect bool `json:"shouldRedirect"`
	}
	if err := c.do(ctx, http.MethodPost, "/functions/v1/check-new-user", nil, &out); err != nil {
		return false, err
	}
	return out.ShouldRedirect, nil
}

func (c *HTTPClient) TenantExists(ctx context.Context, name string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	path := withQuery("/onboarding/tenant-exists", url.Values{"name": {name}})
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

func (c *HTTPClient) CompleteOnboarding(ctx context.Context, form validation.OnboardingForm) (*models.OnboardingResult, error) {
	var res models.OnboardingResult
	if err := c.do(ctx, http.MethodPost, "/onboarding/", form, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) ListOrders(ctx context.Context, search string) ([]*models.Order, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	var list []*models.Order
	if err := c.do(ctx, http.MethodGet, withQuery("/orders", q), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *HTTPClient) CreateOrder(ctx context.Context, form *validation.OrderForm) (*models.Order, error) {
	var o models.Order
	if err := c.do(ctx, http.MethodPost, "/orders", form, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *HTTPClient) UpdateOrder(ctx context.Context, id string, form *validation.OrderForm) (*models.Order, error) {
	var o models.Order
	if err := c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(id), form, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *HTTPClient) DeleteOrder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/orders/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) ExportOrders(ctx context.Context) (*models.ExportResult, error) {
	var res models.ExportResult
	if err := c.do(ctx, http.MethodPost, "/orders/export", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) DashboardCards(ctx context.Context) (*models.Cards, error) {
	var cards models.Cards
	if err := c.do(ctx, http.MethodGet, "/dashboard/cards", nil, &cards); err != nil {
		return nil, err
	}
	return &cards, nil
}

func (c *HTTPClient) ActiveOrders(ctx context.Context) ([]*models.ActiveOrder, error) {
	var list []*models.ActiveOrder
	if err := c.do(ctx, http.MethodGet, "/dashboard/active-orders", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) Payroll(ctx context.Context, status, search string) ([]*models.Payroll, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if search != "" {
		q.Set("search", search)
	}
	var list []*models.Payroll
	if err := c.do(ctx, http.MethodGet, withQuery("/dashboard/payroll", q), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) Games(ctx context.Context) ([]*models.Game, error) {
	var list []*models.Game
	if err := c.do(ctx, http.MethodGet, "/games", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) DollarRate(ctx context.Context) (float64, error) {
	var out struct {
		Rate float64 `json:"rate"`
	}
	if err := c.do(ctx, http.MethodGet, "/currency/usd-brl", nil, &out); err != nil {
		return 0, err
	}
	return out.Rate, nil
}

func (c *HTTPClient) ExchangeRates(ctx context.Context, base string) (map[string]float64, error) {
	q := url.Values{}
	if base != "" {
		q.Set("base", base)
	}
	var out struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("/api/rates", q), nil, &out); err != nil {
		return nil, err
	}
	return out.Rates, nil
}

func (c *HTTPClient) Summary(ctx context.Context) (*models.Summary, error) {
	var s models.Summary
	if err := c.do(ctx, http.MethodGet, "/superadmin/summary", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) AuditFeed(ctx context.Context) ([]*models.AuditEntry, error) {
	var list []*models.AuditEntry
	if err := c.do(ctx, http.MethodGet, "/superadmin/audit", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) ErrorFeed(ctx context.Context) ([]*models.ErrorLog, error) {
	var list []*models.ErrorLog
	if err := c.do(ctx, http.MethodGet, "/superadmin/errors", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}
