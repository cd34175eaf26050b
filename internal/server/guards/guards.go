// Package guards decides whether a caller may reach a route and where to
// send them otherwise. Decisions are pure; the HTTP layer applies them.
package guards

import (
	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
)

// Redirect targets.
const (
	PathLogin      = "/auth/login"
	PathOnboarding = "/onboarding"
	PathDashboard  = "/dashboard"
	PathSuperAdmin = "/superadmin"
)

// Reasons.
const (
	ReasonUnauthenticated      = "unauthenticated"
	ReasonOnboardingIncomplete = "onboarding_incomplete"
	ReasonOnboardingCompleted  = "onboarding_completed"
	ReasonSuperAdminArea       = "superadmin"
	ReasonNoProfile            = "no_profile"
	ReasonNotSuperAdmin        = "not_superadmin"
)

type Decision struct {
	Allow    bool
	Redirect string
	Reason   string
}

var allow = Decision{Allow: true}

func deny(redirect, reason string) Decision {
	return Decision{Redirect: redirect, Reason: reason}
}

// Guard inspects the caller's profile; nil means no valid session.
type Guard func(p *models.Profile) Decision

// Auth requires a session.
func Auth(p *models.Profile) Decision {
	if p == nil {
		return deny(PathLogin, ReasonUnauthenticated)
	}
	return allow
}

// OnboardingCompleted sends users without a finished onboarding to it.
func OnboardingCompleted(p *models.Profile) Decision {
	if p == nil {
		return deny(PathLogin, ReasonUnauthenticated)
	}
	if !p.OnboardingCompleted {
		return deny(PathOnboarding, ReasonOnboardingIncomplete)
	}
	return allow
}

// OnboardingPending admits only users still onboarding.
func OnboardingPending(p *models.Profile) Decision {
	if p == nil {
		return deny(PathLogin, ReasonUnauthenticated)
	}
	if p.OnboardingCompleted {
		return deny(PathDashboard, ReasonOnboardingCompleted)
	}
	return allow
}

// Tenant keeps superadmins out of tenant screens.
func Tenant(p *models.Profile) Decision {
	if p == nil {
		return deny(PathLogin, ReasonNoProfile)
	}
	if p.Role == common.RoleSuperAdmin {
		return deny(PathSuperAdmin, ReasonSuperAdminArea)
	}
	return allow
}

// SuperAdmin permits role superadmin only.
func SuperAdmin(p *models.Profile) Decision {
	if p == nil {
		return deny(PathLogin, ReasonUnauthenticated)
	}
	if p.Role != common.RoleSuperAdmin {
		return deny(PathDashboard, ReasonNotSuperAdmin)
	}
	return allow
}

// Chain runs guards in order and returns the first denial.
func Chain(p *models.Profile, gs ...Guard) Decision {
	for _, g := range gs {
		if d := g(p); !d.Allow {
			return d
		}
	}
	return allow
}
