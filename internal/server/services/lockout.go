package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/server/config"
	"github.com/dmitrijs2005/boostmanager/internal/server/metrics"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/repomanager"
)

type LockoutStatus struct {
	Locked      bool       `json:"locked"`
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`
	Message     string     `json:"message,omitempty"`
}

type FailureResult struct {
	RemainingAttempts int  `json:"remainingAttempts"`
	IsLocked          bool `json:"isLocked"`
}

// LockoutService counts failed sign-ins per e-mail and locks the account
// for a fixed period once the limit is reached.
type LockoutService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	maxAttempts int
	duration    time.Duration
	now         func() time.Time
}

func NewLockoutService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *LockoutService {
	return &LockoutService{
		db:          db,
		repomanager: m,
		maxAttempts: cfg.LockoutMaxAttempts,
		duration:    cfg.LockoutDuration,
		now:         time.Now,
	}
}

func lockedMessage(until time.Time) string {
	return fmt.Sprintf("Account is temporarily locked. Please try again after %s.", until.Format("2006-01-02 15:04:05"))
}

// current loads the record and clears a lock whose period has passed.
func (s *LockoutService) current(ctx context.Context, email string) (*models.LoginAttempts, error) {
	if strings.TrimSpace(email) == "" {
		return nil, common.ErrEmailRequired
	}
	repo := s.repomanager.LoginAttempts(s.db)
	a, err := repo.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if a.LockedUntil != nil && !s.now().Before(*a.LockedUntil) {
		a.Attempts = 0
		a.LockedUntil = nil
		if err := repo.Save(ctx, a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (s *LockoutService) Check(ctx context.Context, email string) (*LockoutStatus, error) {
	a, err := s.current(ctx, email)
	if err != nil {
		return nil, err
	}
	if a.LockedUntil == nil {
		return &LockoutStatus{Locked: false}, nil
	}
	return &LockoutStatus{Locked: true, LockedUntil: a.LockedUntil, Message: lockedMessage(*a.LockedUntil)}, nil
}

func (s *LockoutService) remaining(a *models.LoginAttempts) int {
	return max(0, s.maxAttempts-a.Attempts)
}

func (s *LockoutService) RecordFailure(ctx context.Context, email string) (*FailureResult, error) {
	a, err := s.current(ctx, email)
	if err != nil {
		return nil, err
	}
	metrics.RecordLoginFailure()

	if a.LockedUntil == nil {
		a, err = s.repomanager.LoginAttempts(s.db).Increment(ctx, email, s.maxAttempts, s.now().Add(s.duration))
		switch {
		case errors.Is(err, common.ErrAccountLocked):
			// a concurrent failure locked the account first
			if a, err = s.repomanager.LoginAttempts(s.db).Get(ctx, email); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		case a.LockedUntil != nil:
			metrics.RecordLockout()
		}
	}
	return &FailureResult{RemainingAttempts: s.remaining(a), IsLocked: a.LockedUntil != nil}, nil
}

func (s *LockoutService) RemainingAttempts(ctx context.Context, email string) (int, error) {
	a, err := s.current(ctx, email)
	if err != nil {
		return 0, err
	}
	return s.remaining(a), nil
}

func (s *LockoutService) Reset(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return common.ErrEmailRequired
	}
	return s.repomanager.LoginAttempts(s.db).Reset(ctx, email)
}
