package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/logging"
	"github.com/dmitrijs2005/boostmanager/internal/server/metrics"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/repomanager"
)

const (
	HealthOK    = "ok"
	HealthError = "error"
)

// Summary is the superadmin landing view.
type Summary struct {
	ActiveTenants       int                    `json:"active_tenants"`
	ActivePlans         []*models.Subscription `json:"active_plans"`
	ActiveSubscriptions int                    `json:"active_subscriptions"`
	AuditEntries        int                    `json:"audit_entries"`
	OnlineUsers         []*models.OnlineUser   `json:"online_users"`
	Health              string                 `json:"health"`
	HealthCheckedAt     *time.Time             `json:"health_checked_at,omitempty"`
}

// BackOfficeService serves superadmin summaries and keeps the periodically
// refreshed health and presence snapshots.
type BackOfficeService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	audit        *AuditService
	onlineWindow time.Duration
	logger       logging.Logger
	now          func() time.Time

	mu        sync.RWMutex
	health    string
	checkedAt *time.Time
	online    []*models.OnlineUser
}

func NewBackOfficeService(db *sql.DB, m repomanager.RepositoryManager, audit *AuditService, onlineWindow time.Duration, logger logging.Logger) *BackOfficeService {
	return &BackOfficeService{
		db:           db,
		repomanager:  m,
		audit:        audit,
		onlineWindow: onlineWindow,
		logger:       logger,
		now:          time.Now,
		health:       HealthError,
	}
}

// HealthCheck probes the database and stores the result.
func (s *BackOfficeService) HealthCheck(ctx context.Context) error {
	err := s.repomanager.Profiles(s.db).Probe(ctx)
	status := HealthOK
	if err != nil {
		status = HealthError
		s.logger.Warn(ctx, "health check failed", "error", err)
	}
	at := s.now()

	s.mu.Lock()
	s.health = status
	s.checkedAt = &at
	s.mu.Unlock()

	metrics.SetHealthy(err == nil)
	return err
}

func (s *BackOfficeService) Health() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.health
}

// RefreshOnlineUsers reloads profiles seen within the online window.
func (s *BackOfficeService) RefreshOnlineUsers(ctx context.Context) ([]*models.OnlineUser, error) {
	users, err := s.repomanager.Profiles(s.db).ListSeenSince(ctx, s.now().Add(-s.onlineWindow))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.online = users
	s.mu.Unlock()
	metrics.SetOnlineUsers(len(users))
	return users, nil
}

// Touch records activity for userID.
func (s *BackOfficeService) Touch(ctx context.Context, userID string) error {
	return s.repomanager.Profiles(s.db).TouchLastSeen(ctx, userID, s.now())
}

func (s *BackOfficeService) Summary(ctx context.Context) (*Summary, error) {
	tenantCount, err := s.repomanager.Tenants(s.db).CountByStatus(ctx, common.TenantStatusActive)
	if err != nil {
		return nil, err
	}
	plans, err := s.repomanager.Subscriptions(s.db).ListByStatus(ctx, common.SubscriptionStatusActive)
	if err != nil {
		return nil, err
	}
	auditCount, err := s.audit.Count(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	online := s.online
	health := s.health
	checkedAt := s.checkedAt
	s.mu.RUnlock()

	if online == nil {
		if online, err = s.RefreshOnlineUsers(ctx); err != nil {
			return nil, err
		}
	}

	return &Summary{
		ActiveTenants:       tenantCount,
		ActivePlans:         plans,
		ActiveSubscriptions: len(plans),
		AuditEntries:        auditCount,
		OnlineUsers:         online,
		Health:              health,
		HealthCheckedAt:     checkedAt,
	}, nil
}
