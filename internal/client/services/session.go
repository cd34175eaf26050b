// Package services holds the bmctl application services. SessionService owns
// the signed-in session: it drives the auth API and keeps tokens and the
// pending company name in the local metadata store between runs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/client/client"
	"github.com/dmitrijs2005/boostmanager/internal/client/models"
	"github.com/dmitrijs2005/boostmanager/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/dbx"
	"github.com/dmitrijs2005/boostmanager/internal/validation"
)

// Metadata keys.
const (
	keyAccessToken        = "access_token"
	keyRefreshToken       = "refresh_token"
	keyPersistent         = "persistent"
	keyEmail              = "email"
	keyPendingCompanyName = "pendingCompanyName"
)

var ErrNotSignedIn = errors.New("not signed in")

// LockedError is returned by Login when the account is locked.
type LockedError struct {
	Until   *time.Time
	Message string
}

func (e *LockedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Until != nil {
		return fmt.Sprintf("account locked until %s", e.Until.Local().Format("15:04"))
	}
	return "account locked"
}

// LoginResult tells the caller where to go after a successful login.
type LoginResult struct {
	Email           string
	NeedsOnboarding bool
}

// SessionService defines the session operations of the CLI.
//
// Contract:
//   - Login: check the lockout, sign in, persist the tokens, report whether
//     onboarding is still pending.
//   - Restore: load persisted tokens into the API client.
//   - Logout: revoke the refresh token and wipe local session data.
//   - SignUp: register and remember the company name for onboarding.
//   - CompleteOnboarding: create the tenant, defaulting to the pending name.
type SessionService interface {
	Login(ctx context.Context, form validation.LoginForm) (*LoginResult, error)
	Restore(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
	SignUp(ctx context.Context, form validation.SignupForm) (*models.Profile, error)
	ConfirmEmail(ctx context.Context, code string) error
	RecoverPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, form validation.ResetPasswordForm) error
	Me(ctx context.Context) (*models.Session, error)
	PendingCompanyName(ctx context.Context) (string, error)
	CompleteOnboarding(ctx context.Context, form validation.OnboardingForm) (*models.OnboardingResult, error)
	SaveTokens(ctx context.Context, pair *models.TokenPair) error
}

type sessionService struct {
	client client.Client
	db     *sql.DB
}

func NewSessionService(c client.Client, db *sql.DB) SessionService {
	return &sessionService{client: c, db: db}
}

func (s *sessionService) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (s *sessionService) Login(ctx context.Context, form validation.LoginForm) (*LoginResult, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := form.Validate().Err(); err != nil {
		return nil, err
	}

	status, err := s.client.CheckLockout(ctx, form.Email)
	if err != nil {
		return nil, fmt.Errorf("check lockout: %w", err)
	}
	if status.Locked {
		return nil, &LockedError{Until: status.LockedUntil, Message: status.Message}
	}

	pair, err := s.client.Login(ctx, form)
	if err != nil {
		return nil, err
	}
	pair.Persistent = form.RememberMe

	if err := s.save(ctx, pair, form.Email); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	needsOnboarding, err := s.client.CheckNewUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("check new user: %w", err)
	}
	return &LoginResult{Email: form.Email, NeedsOnboarding: needsOnboarding}, nil
}

// save stores the session. A session that is not remembered keeps only the
// access token, so it ends when that token expires.
func (s *sessionService) save(ctx context.Context, pair *models.TokenPair, email string) error {
	s.client.SetTokens(pair.AccessToken, pair.RefreshToken)

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, keyAccessToken, []byte(pair.AccessToken)); err != nil {
			return err
		}
		if err := repo.Set(ctx, keyPersistent, []byte(strconv.FormatBool(pair.Persistent))); err != nil {
			return err
		}
		if pair.Persistent {
			if err := repo.Set(ctx, keyRefreshToken, []byte(pair.RefreshToken)); err != nil {
				return err
			}
		} else if err := repo.Delete(ctx, keyRefreshToken); err != nil {
			return err
		}
		if email != "" {
			return repo.Set(ctx, keyEmail, []byte(email))
		}
		return nil
	})
}

// SaveTokens persists a rotated pair, keeping the stored persistence flag.
func (s *sessionService) SaveTokens(ctx context.Context, pair *models.TokenPair) error {
	persistent, err := s.repo(s.db).Get(ctx, keyPersistent)
	if err != nil {
		return err
	}
	pair.Persistent = string(persistent) == "true"
	return s.save(ctx, pair, "")
}

func (s *sessionService) Restore(ctx context.Context) (bool, error) {
	repo := s.repo(s.db)
	access, err := repo.Get(ctx, keyAccessToken)
	if err != nil {
		return false, err
	}
	if len(access) == 0 {
		return false, nil
	}
	refresh, err := repo.Get(ctx, keyRefreshToken)
	if err != nil {
		return false, err
	}
	s.client.SetTokens(string(access), string(refresh))
	return true, nil
}

func (s *sessionService) Logout(ctx context.Context) error {
	refresh, err := s.repo(s.db).Get(ctx, keyRefreshToken)
	if err != nil {
		return err
	}
	if len(refresh) > 0 {
		// Local data goes away even when the server cannot be reached.
		if err := s.client.Logout(ctx, string(refresh)); err != nil && !errors.Is(err, client.ErrUnavailable) {
			return err
		}
	}
	s.client.SetTokens("", "")
	return s.repo(s.db).Clear(ctx)
}

func (s *sessionService) SignUp(ctx context.Context, form validation.SignupForm) (*models.Profile, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := form.Validate().Err(); err != nil {
		return nil, err
	}

	p, err := s.client.SignUp(ctx, form)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(form.CompanyName); name != "" {
		if err := s.repo(s.db).Set(ctx, keyPendingCompanyName, []byte(name)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *sessionService) ConfirmEmail(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return validation.Errors{"code": {validation.CodeRequired}}
	}
	return s.client.ConfirmEmail(ctx, code)
}

func (s *sessionService) RecoverPassword(ctx context.Context, email string) error {
	form := validation.RecoveryForm{Email: strings.TrimSpace(email)}
	if err := form.Validate().Err(); err != nil {
		return err
	}
	return s.client.RecoverPassword(ctx, form.Email)
}

func (s *sessionService) ResetPassword(ctx context.Context, form validation.ResetPasswordForm) error {
	if err := form.Validate().Err(); err != nil {
		return err
	}
	return s.client.ResetPassword(ctx, form)
}

func (s *sessionService) Me(ctx context.Context) (*models.Session, error) {
	ok, err := s.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotSignedIn
	}
	return s.client.Me(ctx)
}

func (s *sessionService) PendingCompanyName(ctx context.Context) (string, error) {
	v, err := s.repo(s.db).Get(ctx, keyPendingCompanyName)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *sessionService) CompleteOnboarding(ctx context.Context, form validation.OnboardingForm) (*models.OnboardingResult, error) {
	if strings.TrimSpace(form.TenantName) == "" {
		pending, err := s.PendingCompanyName(ctx)
		if err != nil {
			return nil, err
		}
		form.TenantName = pending
	}
	form.Name = strings.TrimSpace(form.Name)
	form.TenantName = strings.TrimSpace(form.TenantName)
	if err := form.Validate().Err(); err != nil {
		return nil, err
	}

	exists, err := s.client.TenantExists(ctx, form.TenantName)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrTenantNameTaken
	}

	res, err := s.client.CompleteOnboarding(ctx, form)
	if err != nil {
		return nil, err
	}
	if err := s.repo(s.db).Delete(ctx, keyPendingCompanyName); err != nil {
		return nil, err
	}
	return res, nil
}
