package client

import (
	"context"

	"github.com/dmitrijs2005/boostmanager/internal/client/models"
	"github.com/dmitrijs2005/boostmanager/internal/validation"
)

// Client is the part of the API the session service drives.
type Client interface {
	SetTokens(access, refresh string)
	SignUp(ctx context.Context, form validation.SignupForm) (*models.Profile, error)
	ConfirmEmail(ctx context.Context, code string) error
	Login(ctx context.Context, form validation.LoginForm) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	RecoverPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, form validation.ResetPasswordForm) error
	Me(ctx context.Context) (*models.Session, error)
	CheckLockout(ctx context.Context, email string) (*models.LockoutStatus, error)
	CheckNewUser(ctx context.Context) (bool, error)
	TenantExists(ctx context.Context, name string) (bool, error)
	CompleteOnboarding(ctx context.Context, form validation.OnboardingForm) (*models.OnboardingResult, error)
}
