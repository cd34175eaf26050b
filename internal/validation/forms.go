package validation

import (
	"strings"

	"github.com/dmitrijs2005/boostmanager/internal/common"
)

type LoginForm struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

func validateEmailField(e Errors, field, v string) {
	if required(e, field, v) {
		email(e, field, v)
		minLength(e, field, v, 5)
	}
}

func validatePasswordField(e Errors, field, v string) {
	if required(e, field, v) {
		minLength(e, field, v, 8)
		passwordPattern(e, field, v)
	}
}

func (f LoginForm) Validate() Errors {
	e := Errors{}
	validateEmailField(e, "email", f.Email)
	validatePasswordField(e, "password", f.Password)
	return e
}

type SignupForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	CompanyName     string `json:"companyName,omitempty"`
}

// Validate checks every field and flags confirmPassword with notMatching when
// both passwords are present but differ.
func (f SignupForm) Validate() Errors {
	e := Errors{}
	if required(e, "name", f.Name) {
		minLength(e, "name", strings.TrimSpace(f.Name), 2)
	}
	validateEmailField(e, "email", f.Email)
	validatePasswordField(e, "password", f.Password)
	if required(e, "confirmPassword", f.ConfirmPassword) && f.Password != f.ConfirmPassword {
		e.Add("confirmPassword", CodeNotMatching)
	}
	return e
}

type RecoveryForm struct {
	Email string `json:"email"`
}

func (f RecoveryForm) Validate() Errors {
	e := Errors{}
	validateEmailField(e, "email", f.Email)
	return e
}

type ResetPasswordForm struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (f ResetPasswordForm) Validate() Errors {
	e := Errors{}
	required(e, "token", f.Token)
	validatePasswordField(e, "password", f.Password)
	return e
}

type OnboardingForm struct {
	Name       string `json:"name"`
	TenantName string `json:"tenantName"`
}

func (f OnboardingForm) Validate() Errors {
	e := Errors{}
	if required(e, "name", f.Name) {
		minLength(e, "name", strings.TrimSpace(f.Name), 2)
	}
	if required(e, "tenantName", f.TenantName) {
		minLength(e, "tenantName", strings.TrimSpace(f.TenantName), 2)
	}
	return e
}

// MaxOrderValue bounds total_value and booster_value.
const MaxOrderValue = 999999.99

// Weapon quantity bounds for camouflage services.
const (
	MinWeaponQuantity = 1
	MaxWeaponQuantity = 33
)

type OrderForm struct {
	Booster         string  `json:"booster"`
	ServiceType     string  `json:"service_type"`
	WeaponQuantity  *int    `json:"weapon_quantity"`
	Supplier        string  `json:"supplier"`
	AccountEmail    string  `json:"account_email"`
	AccountPassword string  `json:"account_password"`
	RecoveryCode    string  `json:"recovery_code"`
	RecoveryEmail   string  `json:"recovery_email"`
	Platform        string  `json:"platform"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Status          string  `json:"status"`
	Currency        string  `json:"currency"`
	BoosterCurrency string  `json:"booster_currency"`
	TotalValue      float64 `json:"total_value"`
	BoosterValue    float64 `json:"booster_value"`
	Observation     string  `json:"observation"`
}

// IsCamouflageService reports whether serviceType needs a weapon quantity.
func IsCamouflageService(serviceType string) bool {
	return strings.Contains(strings.ToLower(serviceType), "camuflagem")
}

// Normalize clears weapon_quantity for services that do not use it and
// fills the default currencies.
func (f *OrderForm) Normalize() {
	if !IsCamouflageService(f.ServiceType) {
		f.WeaponQuantity = nil
	}
	if f.Currency == "" {
		f.Currency = "BRL"
	}
	if f.BoosterCurrency == "" {
		f.BoosterCurrency = "BRL"
	}
}

// Validate normalizes f and then applies the order rules.
func (f *OrderForm) Validate() Errors {
	f.Normalize()
	e := Errors{}

	required(e, "booster", f.Booster)
	required(e, "service_type", f.ServiceType)
	required(e, "supplier", f.Supplier)
	if required(e, "account_email", f.AccountEmail) {
		email(e, "account_email", f.AccountEmail)
	}
	required(e, "account_password", f.AccountPassword)
	email(e, "recovery_email", f.RecoveryEmail)
	required(e, "platform", f.Platform)
	if required(e, "status", f.Status) {
		oneOf(e, "status", f.Status, common.OrderStatuses)
	}
	oneOf(e, "currency", f.Currency, common.Currencies)
	oneOf(e, "booster_currency", f.BoosterCurrency, common.Currencies)

	if IsCamouflageService(f.ServiceType) {
		if f.WeaponQuantity == nil {
			e.Add("weapon_quantity", CodeRequired)
		} else {
			between(e, "weapon_quantity", float64(*f.WeaponQuantity), MinWeaponQuantity, MaxWeaponQuantity)
		}
	}

	between(e, "total_value", f.TotalValue, 0, MaxOrderValue)
	between(e, "booster_value", f.BoosterValue, 0, MaxOrderValue)
	maxLength(e, "observation", f.Observation, 500)

	if required(e, "start_date", f.StartDate) {
		start, ok := ParseDate(f.StartDate)
		if !ok {
			e.Add("start_date", CodeDate)
		} else if f.EndDate != "" {
			end, ok := ParseDate(f.EndDate)
			switch {
			case !ok:
				e.Add("end_date", CodeDate)
			case end.Before(start):
				e.Add("end_date", CodeDateRange)
			}
		}
	} else if f.EndDate != "" {
		if _, ok := ParseDate(f.EndDate); !ok {
			e.Add("end_date", CodeDate)
		}
	}

	return e
}
