// Package services contains the server's business logic. Services share a
// *sql.DB and a repomanager so they can run repositories inside transactions.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/cryptox"
	"github.com/dmitrijs2005/boostmanager/internal/dbx"
	"github.com/dmitrijs2005/boostmanager/internal/logging"
	"github.com/dmitrijs2005/boostmanager/internal/server/auth"
	"github.com/dmitrijs2005/boostmanager/internal/server/config"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/boostmanager/internal/validation"
)

const (
	confirmTokenValidity  = 24 * time.Hour
	recoveryTokenValidity = time.Hour
)

// TokenPair bundles a short-lived access token and a server-stored refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Persistent   bool   `json:"persistent"`
}

// InvalidCredentialsError is returned by SignIn for a wrong e-mail or password.
type InvalidCredentialsError struct {
	RemainingAttempts int
	Locked            bool
}

func (e *InvalidCredentialsError) Error() string {
	if e.Locked {
		return "invalid credentials, account locked"
	}
	return fmt.Sprintf("invalid credentials, %d attempts remaining", e.RemainingAttempts)
}

func (e *InvalidCredentialsError) Unwrap() error { return common.ErrorUnauthorized }

// AccountLockedError carries the lockout status of a locked account.
type AccountLockedError struct {
	Status *LockoutStatus
}

func (e *AccountLockedError) Error() string { return e.Status.Message }

func (e *AccountLockedError) Unwrap() error { return common.ErrAccountLocked }

// Session is the signed-in user as returned by "me".
type Session struct {
	Profile   *models.Profile `json:"profile"`
	AvatarURL string          `json:"avatar_url"`
}

// AuthService handles sign-up, sign-in, session refresh and password recovery.
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	lockout                      *LockoutService
	audit                        *AuditService
	mailer                       Mailer
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	rememberMeValidityDuration   time.Duration
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	lockout *LockoutService, audit *AuditService, mailer Mailer, logger logging.Logger) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		lockout:                      lockout,
		audit:                        audit,
		mailer:                       mailer,
		logger:                       logger,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		rememberMeValidityDuration:   cfg.RememberMeValidityDuration,
	}
}

// SignUp creates an unconfirmed profile and mails a confirmation code.
func (s *AuthService) SignUp(ctx context.Context, form validation.SignupForm) (*models.Profile, error) {
	if verr := form.Validate(); !verr.OK() {
		return nil, verr
	}

	hash, err := cryptox.HashPassword(form.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var code string
	profile, err := dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Profile, error) {
		profiles := s.repomanager.Profiles(tx)

		exists, err := profiles.EmailExists(ctx, form.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, common.ErrEmailAlreadyRegistered
		}

		p, err := profiles.Create(ctx, &models.Profile{
			Email:        form.Email,
			Name:         strings.TrimSpace(form.Name),
			PasswordHash: hash,
			Role:         common.RoleUser,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return nil, common.ErrEmailAlreadyRegistered
			}
			return nil, err
		}

		code, err = s.issueToken(ctx, tx, p.ID, models.TokenPurposeConfirmEmail, confirmTokenValidity)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	s.sendMail(ctx, profile.Email, "Confirm your e-mail", "Your confirmation code: "+code)
	s.audit.Record(ctx, &models.AuditEntry{
		ActorID:  &profile.ID,
		Action:   ActionUserSignup,
		Entity:   "profile",
		EntityID: profile.ID,
	})
	return profile, nil
}

// ConfirmEmail consumes a confirmation code.
func (s *AuthService) ConfirmEmail(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return common.ErrInvalidToken
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		t, err := s.repomanager.AuthTokens(tx).Consume(ctx, cryptox.HashToken(code), models.TokenPurposeConfirmEmail)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return err
		}
		return s.repomanager.Profiles(tx).ConfirmEmail(ctx, t.UserID)
	})
}

// SignIn checks the lockout first, then the credentials. Failures are
// counted; success clears the counter and opens a session.
func (s *AuthService) SignIn(ctx context.Context, form validation.LoginForm) (*TokenPair, error) {
	if verr := form.Validate(); !verr.OK() {
		return nil, verr
	}

	status, err := s.lockout.Check(ctx, form.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking lockout: %w", err)
	}
	if status.Locked {
		return nil, &AccountLockedError{Status: status}
	}

	profile, err := s.repomanager.Profiles(s.db).GetByEmail(ctx, form.Email)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}
	if profile == nil || cryptox.CheckPassword(profile.PasswordHash, form.Password) != nil {
		res, err := s.lockout.RecordFailure(ctx, form.Email)
		if err != nil {
			return nil, fmt.Errorf("error recording login failure: %w", err)
		}
		return nil, &InvalidCredentialsError{RemainingAttempts: res.RemainingAttempts, Locked: res.IsLocked}
	}

	if !profile.EmailConfirmed {
		return nil, common.ErrEmailNotConfirmed
	}

	if err := s.lockout.Reset(ctx, form.Email); err != nil {
		s.logger.Warn(ctx, "lockout reset failed", "error", err)
	}
	if err := s.repomanager.Profiles(s.db).TouchLastSeen(ctx, profile.ID, time.Now()); err != nil {
		s.logger.Warn(ctx, "last seen update failed", "error", err)
	}

	pair, err := s.generateTokenPair(ctx, s.db, profile, form.RememberMe)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &models.AuditEntry{
		TenantID: profile.TenantID,
		ActorID:  &profile.ID,
		Action:   ActionUserLogin,
		Entity:   "profile",
		EntityID: profile.ID,
	})
	return pair, nil
}

// Refresh validates a refresh token, rotates it transactionally and returns
// a fresh pair. Expired tokens yield ErrRefreshTokenExpired, unknown or
// already rotated ones ErrInvalidToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	return dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*TokenPair, error) {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrInvalidToken
			}
			return nil, fmt.Errorf("error consuming refresh token: %w", err)
		}
		if token.Expires.Before(time.Now()) {
			return nil, common.ErrRefreshTokenExpired
		}
		profile, err := s.repomanager.Profiles(tx).GetByID(ctx, token.UserID)
		if err != nil {
			return nil, fmt.Errorf("error loading profile: %w", err)
		}
		return s.generateTokenPair(ctx, tx, profile, token.Persistent)
	})
}

// SignOut revokes the refresh token. Unknown tokens are ignored.
func (s *AuthService) SignOut(ctx context.Context, refreshToken string) error {
	return s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken)
}

// Authenticate resolves an access token to its profile.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.Profile, error) {
	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	p, err := s.repomanager.Profiles(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	return p, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*Session, error) {
	p, err := s.repomanager.Profiles(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Session{Profile: p, AvatarURL: cryptox.GravatarURL(p.Email)}, nil
}

// CheckNewUser reports whether the user still has to complete onboarding.
func (s *AuthService) CheckNewUser(ctx context.Context, userID string) (bool, error) {
	p, err := s.repomanager.Profiles(s.db).GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return !p.OnboardingCompleted, nil
}

// RecoverPassword mails a recovery code when the e-mail is registered. It
// reports success either way.
func (s *AuthService) RecoverPassword(ctx context.Context, form validation.RecoveryForm) error {
	if verr := form.Validate(); !verr.OK() {
		return verr
	}

	p, err := s.repomanager.Profiles(s.db).GetByEmail(ctx, form.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}

	code, err := s.issueToken(ctx, s.db, p.ID, models.TokenPurposeRecovery, recoveryTokenValidity)
	if err != nil {
		return err
	}
	s.sendMail(ctx, p.Email, "Reset your password", "Your recovery code: "+code)
	return nil
}

// ResetPassword sets a new password from a recovery code and ends every
// session of the user.
func (s *AuthService) ResetPassword(ctx context.Context, form validation.ResetPasswordForm) error {
	if verr := form.Validate(); !verr.OK() {
		return verr
	}

	hash, err := cryptox.HashPassword(form.Password)
	if err != nil {
		return common.ErrorInternal
	}

	userID, err := dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (string, error) {
		t, err := s.repomanager.AuthTokens(tx).Consume(ctx, cryptox.HashToken(form.Token), models.TokenPurposeRecovery)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return "", common.ErrInvalidToken
			}
			return "", err
		}
		if err := s.repomanager.Profiles(tx).UpdatePassword(ctx, t.UserID, hash); err != nil {
			return "", err
		}
		if err := s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, t.UserID); err != nil {
			return "", err
		}
		return t.UserID, nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, &models.AuditEntry{
		ActorID:  &userID,
		Action:   ActionPasswordReset,
		Entity:   "profile",
		EntityID: userID,
	})
	return nil
}

// --- helpers below ---

func (s *AuthService) issueToken(ctx context.Context, tx dbx.DBTX, userID, purpose string, validity time.Duration) (string, error) {
	code, err := common.MakeRandHexString(16)
	if err != nil {
		return "", common.ErrorInternal
	}
	err = s.repomanager.AuthTokens(tx).Create(ctx, &models.AuthToken{
		TokenHash: cryptox.HashToken(code),
		UserID:    userID,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(validity),
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

func (s *AuthService) sendMail(ctx context.Context, to, subject, body string) {
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		s.logger.Error(ctx, "mail delivery failed", "to", to, "error", err)
	}
}

func (s *AuthService) generateAccessToken(p *models.Profile) (string, error) {
	principal := auth.Principal{UserID: p.ID, Role: p.Role}
	if p.TenantID != nil {
		principal.TenantID = *p.TenantID
	}
	return auth.GenerateToken(principal, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *AuthService) generateTokenPair(ctx context.Context, tx dbx.DBTX, p *models.Profile, persistent bool) (*TokenPair, error) {
	access, err := s.generateAccessToken(p)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	validity := s.refreshTokenValidityDuration
	if persistent {
		validity = s.rememberMeValidityDuration
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, p.ID, refresh, validity, persistent); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, Persistent: persistent}, nil
}
