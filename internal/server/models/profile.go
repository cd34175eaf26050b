// Package models holds the row types shared by repositories and services.
package models

import "time"

// Profile is an application user. TenantID is nil until onboarding creates
// the user's company.
type Profile struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	Name                string     `json:"name"`
	PasswordHash        string     `json:"-"`
	Role                string     `json:"role"`
	TenantID            *string    `json:"tenant_id"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
	EmailConfirmed      bool       `json:"email_confirmed"`
	LastSeen            *time.Time `json:"last_seen,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// HasTenant reports whether the profile is bound to a tenant.
func (p *Profile) HasTenant() bool {
	return p.TenantID != nil && *p.TenantID != ""
}

// Tenant is a customer company.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Token purposes for AuthToken.
const (
	TokenPurposeConfirmEmail = "confirm_email"
	TokenPurposeRecovery     = "recovery"
)

// AuthToken is a single-use code sent by e-mail. Only its hash is stored.
type AuthToken struct {
	TokenHash string
	UserID    string
	Purpose   string
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// LoginAttempts tracks failed sign-ins per e-mail.
type LoginAttempts struct {
	Email       string
	Attempts    int
	LockedUntil *time.Time
}
