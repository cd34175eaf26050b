package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Order is a boosting service order. OrderNumber is unique per tenant.
type Order struct {
	ID              string     `json:"id"`
	TenantID        string     `json:"tenant_id"`
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
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"-"`
}

// FormatOrderNumber renders n zero-padded to four digits ("0007").
func FormatOrderNumber(n int64) string {
	return fmt.Sprintf("%04d", n)
}

// searchable lists the order's fields as text for free-text search.
func (o *Order) searchable() []string {
	fields := []string{
		o.ID, o.OrderNumber, o.Booster, o.ServiceType, o.Supplier,
		o.AccountEmail, o.AccountPassword, o.RecoveryCode, o.RecoveryEmail,
		o.Platform, o.Status, o.Currency, o.BoosterCurrency, o.Observation,
		o.StartDate.Format(time.RFC3339), o.CreatedAt.Format(time.RFC3339),
		strconv.FormatFloat(o.TotalValue, 'f', -1, 64),
		strconv.FormatFloat(o.BoosterValue, 'f', -1, 64),
	}
	if o.WeaponQuantity != nil {
		fields = append(fields, strconv.Itoa(*o.WeaponQuantity))
	}
	if o.EndDate != nil {
		fields = append(fields, o.EndDate.Format(time.RFC3339))
	}
	return fields
}

// Matches reports whether any field contains term, ignoring case.
// An empty term matches every order.
func (o *Order) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range o.searchable() {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
