package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/cryptox"
	"github.com/dmitrijs2005/boostmanager/internal/logging"
	"github.com/dmitrijs2005/boostmanager/internal/server/auth"
	"github.com/dmitrijs2005/boostmanager/internal/server/config"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
	"github.com/dmitrijs2005/boostmanager/internal/server/realtime"
	"github.com/dmitrijs2005/boostmanager/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "Secret123"

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		RememberMeValidityDuration:   48 * time.Hour,
		LockoutMaxAttempts:           5,
		LockoutDuration:              15 * time.Minute,
		SuperAdminEmails:             []string{"root@example.com"},
		OnlineWindow:                 5 * time.Minute,
	}
}

type authFixture struct {
	svc    *AuthService
	store  *fakeStore
	mock   sqlmock.Sqlmock
	mailer *captureMailer
	pub    *capturePublisher
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	store := newFakeStore()
	rm := &fakeRepoManager{s: store}
	cfg := testConfig()
	pub := &capturePublisher{}
	mailer := &captureMailer{}
	audit := NewAuditService(db, rm, pub, logging.Nop{})
	lockout := NewLockoutService(db, rm, cfg)
	svc := NewAuthService(db, rm, cfg, lockout, audit, mailer, logging.Nop{})
	return &authFixture{svc: svc, store: store, mock: mock, mailer: mailer, pub: pub}
}

// seedProfile stores a confirmed profile with testPassword.
func (f *authFixture) seedProfile(t *testing.T, email string) *models.Profile {
	t.Helper()
	hash, err := cryptox.HashPassword(testPassword)
	require.NoError(t, err)
	p, err := fakeProfiles{f.store}.Create(context.Background(), &models.Profile{
		Email:          email,
		Name:           "Ana",
		PasswordHash:   hash,
		Role:           common.RoleUser,
		EmailConfirmed: true,
	})
	require.NoError(t, err)
	return p
}

func TestSignUp_CreatesProfileMailsCodeAndAudits(t *testing.T) {
	f := newAuthFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	p, err := f.svc.SignUp(context.Background(), validation.SignupForm{
		Name: "Ana Souza", Email: "Ana@Example.com", Password: testPassword, ConfirmPassword: testPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", p.Email)
	assert.Equal(t, common.RoleUser, p.Role)
	assert.False(t, p.OnboardingCompleted)
	assert.False(t, p.EmailConfirmed)

	assert.Equal(t, "ana@example.com", f.mailer.to)
	assert.Len(t, f.mailer.lastCode(), 32)

	require.Len(t, f.store.audit, 1)
	assert.Equal(t, ActionUserSignup, f.store.audit[0].Action)
	assert.Equal(t, []string{realtime.TopicAudit}, f.pub.topics)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSignUp_RejectsMismatchAndDuplicate(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.SignUp(context.Background(), validation.SignupForm{
		Name: "Ana", Email: "ana@example.com", Password: testPassword, ConfirmPassword: "Other1234",
	})
	var verr validation.Errors
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("confirmPassword", validation.CodeNotMatching))
	assert.ErrorIs(t, err, common.ErrorValidation)

	f.seedProfile(t, "ana@example.com")
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = f.svc.SignUp(context.Background(), validation.SignupForm{
		Name: "Ana", Email: "ana@example.com", Password: testPassword, ConfirmPassword: testPassword,
	})
	assert.ErrorIs(t, err, common.ErrEmailAlreadyRegistered)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestConfirmEmail_ConsumesCodeOnce(t *testing.T) {
	f := newAuthFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	p, err := f.svc.SignUp(context.Background(), validation.SignupForm{
		Name: "Ana", Email: "ana@example.com", Password: testPassword, ConfirmPassword: testPassword,
	})
	require.NoError(t, err)
	code := f.mailer.lastCode()

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	require.NoError(t, f.svc.ConfirmEmail(context.Background(), code))
	assert.True(t, f.store.profiles[p.ID].EmailConfirmed)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	assert.ErrorIs(t, f.svc.ConfirmEmail(context.Background(), code), common.ErrInvalidToken)
	assert.ErrorIs(t, f.svc.ConfirmEmail(context.Background(), " "), common.ErrInvalidToken)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSignIn_Success_IssuesPairWithClaims(t *testing.T) {
	f := newAuthFixture(t)
	p := f.seedProfile(t, "ana@example.com")
	tenantID := "t-9"
	f.store.profiles[p.ID].TenantID = &tenantID
	f.store.profiles[p.ID].Role = common.RoleOwner

	pair, err := f.svc.SignIn(context.Background(), validation.LoginForm{Email: "ana@example.com", Password: testPassword, RememberMe: true})
	require.NoError(t, err)
	assert.True(t, pair.Persistent)

	claims, err := auth.ParseToken(pair.AccessToken, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, p.ID, claims.UserID)
	assert.Equal(t, common.RoleOwner, claims.Role)
	assert.Equal(t, tenantID, claims.TenantID)

	rt := f.store.refresh[pair.RefreshToken]
	require.NotNil(t, rt)
	assert.True(t, rt.Persistent)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), rt.Expires, time.Minute)
	assert.NotNil(t, f.store.profiles[p.ID].LastSeen)
	require.Len(t, f.store.audit, 1)
	assert.Equal(t, ActionUserLogin, f.store.audit[0].Action)
}

func TestSignIn_BadPassword_CountsDownThenLocks(t *testing.T) {
	f := newAuthFixture(t)
	f.seedProfile(t, "ana@example.com")
	form := validation.LoginForm{Email: "ana@example.com", Password: "Wrong1234"}

	for want := 4; want >= 1; want-- {
		_, err := f.svc.SignIn(context.Background(), form)
		var ice *InvalidCredentialsError
		require.ErrorAs(t, err, &ice)
		assert.Equal(t, want, ice.RemainingAttempts)
		assert.False(t, ice.Locked)
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	}

	_, err := f.svc.SignIn(context.Background(), form)
	var ice *InvalidCredentialsError
	require.ErrorAs(t, err, &ice)
	assert.True(t, ice.Locked)
	assert.Equal(t, 0, ice.RemainingAttempts)

	// even the right password is refused while locked
	_, err = f.svc.SignIn(context.Background(), validation.LoginForm{Email: "ana@example.com", Password: testPassword})
	var locked *AccountLockedError
	require.ErrorAs(t, err, &locked)
	assert.ErrorIs(t, err, common.ErrAccountLocked)
	assert.Contains(t, locked.Error(), "Account is temporarily locked")
}

func TestSignIn_SuccessResetsAttempts(t *testing.T) {
	f := newAuthFixture(t)
	f.seedProfile(t, "ana@example.com")
	_, _ = f.svc.SignIn(context.Background(), validation.LoginForm{Email: "ana@example.com", Password: "Wrong1234"})
	require.Equal(t, 1, f.store.attempts["ana@example.com"].Attempts)

	_, err := f.svc.SignIn(context.Background(), validation.LoginForm{Email: "ana@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.NotContains(t, f.store.attempts, "ana@example.com")
}

func TestSignIn_UnknownEmailAndUnconfirmed(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.SignIn(context.Background(), validation.LoginForm{Email: "ghost@example.com", Password: testPassword})
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	p := f.seedProfile(t, "new@example.com")
	f.store.profiles[p.ID].EmailConfirmed = false
	_, err = f.svc.SignIn(context.Background(), validation.LoginForm{Email: "new@example.com", Password: testPassword})
	assert.ErrorIs(t, err, common.ErrEmailNotConfirmed)
}

func TestSignIn_InvalidForm(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.SignIn(context.Background(), validation.LoginForm{Email: "not-an-email", Password: "short"})
	var verr validation.Errors
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("email", validation.CodeEmail))
	assert.True(t, verr.Has("password", validation.CodeMinLength))
}

func TestRefresh_RotatesAndKeepsPersistence(t *testing.T) {
	f := newAuthFixture(t)
	f.seedProfile(t, "ana@example.com")
	pair, err := f.svc.SignIn(context.Background(), validation.LoginForm{Email: "ana@example.com", Password: testPassword, RememberMe: true})
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	next, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	assert.True(t, next.Persistent)
	assert.NotContains(t, f.store.refresh, pair.RefreshToken)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRefresh_ExpiredAndUnknown(t *testing.T) {
	f := newAuthFixture(t)
	f.store.refresh["old"] = &models.RefreshToken{UserID: "u1", Token: "old", Expires: time.Now().Add(-time.Minute)}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err := f.svc.Refresh(context.Background(), "old")
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = f.svc.Refresh(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRefresh_TokenRotatesOnlyOnce(t *testing.T) {
	f := newAuthFixture(t)
	p := f.seedProfile(t, "ana@example.com")
	f.store.refresh["r"] = &models.RefreshToken{UserID: p.ID, Token: "r", Expires: time.Now().Add(time.Hour)}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err := f.svc.Refresh(context.Background(), "r")
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = f.svc.Refresh(context.Background(), "r")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRefresh_CreateFailsRollsBack(t *testing.T) {
	f := newAuthFixture(t)
	p := f.seedProfile(t, "ana@example.com")
	f.store.refresh["r"] = &models.RefreshToken{UserID: p.ID, Token: "r", Expires: time.Now().Add(time.Hour)}
	f.store.refreshErr = errBoom{}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err := f.svc.Refresh(context.Background(), "r")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	p := f.seedProfile(t, "ana@example.com")

	token, err := auth.GenerateToken(auth.Principal{UserID: p.ID}, []byte("k"), time.Minute)
	require.NoError(t, err)
	got, err := f.svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	ghost, _ := auth.GenerateToken(auth.Principal{UserID: "nobody"}, []byte("k"), time.Minute)
	_, err = f.svc.Authenticate(context.Background(), ghost)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = f.svc.Authenticate(context.Background(), "garbage")
	assert.Error(t, err)
}

func TestMeAndCheckNewUser(t *testing.T) {
	f := newAuthFixture(t)
	p := f.seedProfile(t, "ana@example.com")

	s, err := f.svc.Me(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, cryptox.GravatarURL("ana@example.com"), s.AvatarURL)

	isNew, err := f.svc.CheckNewUser(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, isNew)

	f.store.profiles[p.ID].OnboardingCompleted = true
	isNew, err = f.svc.CheckNewUser(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, isNew)
}

func TestRecoverAndResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	p := f.seedProfile(t, "ana@example.com")
	f.store.refresh["s1"] = &models.RefreshToken{UserID: p.ID, Token: "s1", Expires: time.Now().Add(time.Hour)}

	require.NoError(t, f.svc.RecoverPassword(context.Background(), validation.RecoveryForm{Email: "ghost@example.com"}))
	assert.Empty(t, f.mailer.to)

	require.NoError(t, f.svc.RecoverPassword(context.Background(), validation.RecoveryForm{Email: "ana@example.com"}))
	code := f.mailer.lastCode()

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	require.NoError(t, f.svc.ResetPassword(context.Background(), validation.ResetPasswordForm{Token: code, Password: "NewSecret9"}))

	assert.NoError(t, cryptox.CheckPassword(f.store.profiles[p.ID].PasswordHash, "NewSecret9"))
	assert.Empty(t, f.store.refresh)
	require.Len(t, f.store.audit, 1)
	assert.Equal(t, ActionPasswordReset, f.store.audit[0].Action)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	err := f.svc.ResetPassword(context.Background(), validation.ResetPasswordForm{Token: code, Password: "NewSecret9"})
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
