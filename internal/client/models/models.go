// Package models holds the API payloads bmctl reads.
package models

import "time"

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Persistent   bool   `json:"persistent"`
}

type Profile struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	Name                string     `json:"name"`
	Role                string     `json:"role"`
	TenantID            *string    `json:"tenant_id"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
	EmailConfirmed      bool       `json:"email_confirmed"`
	LastSeen            *time.Time `json:"last_seen,omitempty"`
}

type Session struct {
	Profile   *Profile `json:"profile"`
	AvatarURL string   `json:"avatar_url"`
}

type LockoutStatus struct {
	Locked      bool       `json:"locked"`
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`
	Message     string     `json:"message,omitempty"`
}

type Tenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type OnboardingResult struct {
	Profile *Profile `json:"profile"`
	Tenant  *Tenant  `json:"tenant"`
}

type Order struct {
	ID              string     `json:"id"`
	OrderNumber     string     `json:"order_number"`
	Booster         string     `json:"booster"`
	ServiceType     string     `json:"service_type"`
	WeaponQuantity  *int       `json:"weapon_quantity,omitempty"`
	Supplier        string     `json:"supplier"`
	AccountEmail    string     `json:"account_email"`
	AccountPassword string     `json:"account_password"`
	RecoveryCode    string     `json:"recovery_code"`
	RecoveryEmail   string     `json:"recovery_email"`
	Platform        string     `json:"platform"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Status          string     `json:"status"`
	Currency        string     `json:"currency"`
	BoosterCurrency string     `json:"booster_currency"`
	TotalValue      float64    `json:"total_value"`
	BoosterValue    float64    `json:"booster_value"`
	Observation     string     `json:"observation"`
	CreatedAt       time.Time  `json:"created_at"`
}

type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Count     int       `json:"count"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Card struct {
	Title    string  `json:"title"`
	Value    float64 `json:"value"`
	Subtitle string  `json:"subtitle,omitempty"`
}

type Cards struct {
	Revenue     Card    `json:"revenue"`
	RevenueUSD  float64 `json:"revenue_usd"`
	DollarRate  float64 `json:"dollar_rate"`
	Orders      Card    `json:"orders"`
	InProgress  Card    `json:"in_progress"`
	PayrollOwed Card    `json:"payroll_boosters"`
}

type ActiveOrder struct {
	Order
	Elapsed string `json:"elapsed"`
}

type Payroll struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Value  float64 `json:"value"`
	Status string  `json:"status"`
}

type Badge struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

type Game struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Badge     *Badge `json:"badge,omitempty"`
	Image     string `json:"image"`
}

type Subscription struct {
	TenantID string  `json:"tenant_id"`
	Plan     string  `json:"plan"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Summary struct {
	ActiveTenants       int             `json:"active_tenants"`
	ActivePlans         []*Subscription `json:"active_plans"`
	ActiveSubscriptions int             `json:"active_subscriptions"`
	AuditEntries        int             `json:"audit_entries"`
	OnlineUsers         []*OnlineUser   `json:"online_users"`
	Health              string          `json:"health"`
	HealthCheckedAt     *time.Time      `json:"health_checked_at,omitempty"`
}

type OnlineUser struct {
	ID       string     `json:"id"`
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	LastSeen *time.Time `json:"last_seen"`
}

type AuditEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorLog struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Status    int       `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is a realtime frame from the back-office feeds.
type Event struct {
	Topic   string         `json:"topic"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}
