package models

import "time"

// AuditEntry records an action for the superadmin audit feed.
type AuditEntry struct {
	ID        string    `json:"id"`
	TenantID  *string   `json:"tenant_id,omitempty"`
	ActorID   *string   `json:"actor_id,omitempty"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorLog records a failed API request.
type ErrorLog struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Status    int       `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscription is a tenant's billing plan.
type Subscription struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Plan      string    `json:"plan"`
	Status    string    `json:"status"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// Payroll statuses.
const (
	PayrollPaid    = "Paid"
	PayrollPending = "Pending"
	PayrollLate    = "Late"
)

// Payroll is a payout owed to a booster.
type Payroll struct {
	ID       string    `json:"id"`
	TenantID string    `json:"tenant_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Value    float64   `json:"value"`
	Status   string    `json:"status"`
	Date     time.Time `json:"date"`
}

// OnlineUser is a profile seen recently.
type OnlineUser struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	LastSeen time.Time `json:"last_seen"`
}
