package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/boostmanager/internal/dbx"
	"github.com/dmitrijs2005/boostmanager/internal/logging"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
	"github.com/dmitrijs2005/boostmanager/internal/server/realtime"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/repomanager"
)

// Audit actions.
const (
	ActionUserSignup    = "user.signup"
	ActionUserLogin     = "user.login"
	ActionPasswordReset = "user.password_reset"
	ActionTenantCreated = "tenant.created"
	ActionOrderCreated  = "order.created"
	ActionOrderUpdated  = "order.updated"
	ActionOrderDeleted  = "order.deleted"
)

const (
	AuditFeedSize = 20
	ErrorFeedSize = 10
)

// Publisher pushes back-office events to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) {}

// AuditService writes the audit trail and streams new entries.
type AuditService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   Publisher
	logger      logging.Logger
}

func NewAuditService(db *sql.DB, m repomanager.RepositoryManager, p Publisher, logger logging.Logger) *AuditService {
	if p == nil {
		p = nopPublisher{}
	}
	return &AuditService{db: db, repomanager: m, publisher: p, logger: logger}
}

// Write stores e through tx without publishing it. Callers publish after
// the surrounding transaction commits.
func (s *AuditService) Write(ctx context.Context, tx dbx.DBTX, e *models.AuditEntry) error {
	if err := s.repomanager.AuditLog(tx).Create(ctx, e); err != nil {
		return fmt.Errorf("error writing audit entry: %w", err)
	}
	return nil
}

func (s *AuditService) Publish(ctx context.Context, e *models.AuditEntry) {
	s.publisher.Publish(ctx, realtime.TopicAudit, e)
}

// Record writes and publishes e. Failures are logged, never returned: the
// audited action has already happened.
func (s *AuditService) Record(ctx context.Context, e *models.AuditEntry) {
	if err := s.Write(ctx, s.db, e); err != nil {
		s.logger.Error(ctx, "audit record failed", "action", e.Action, "error", err)
		return
	}
	s.Publish(ctx, e)
}

func (s *AuditService) Latest(ctx context.Context) ([]*models.AuditEntry, error) {
	return s.repomanager.AuditLog(s.db).Latest(ctx, AuditFeedSize)
}

func (s *AuditService) Count(ctx context.Context) (int, error) {
	return s.repomanager.AuditLog(s.db).Count(ctx)
}

// ErrorLogService records failed API requests for the back office.
type ErrorLogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   Publisher
}

func NewErrorLogService(db *sql.DB, m repomanager.RepositoryManager, p Publisher) *ErrorLogService {
	if p == nil {
		p = nopPublisher{}
	}
	return &ErrorLogService{db: db, repomanager: m, publisher: p}
}

func (s *ErrorLogService) Record(ctx context.Context, message, path string, status int) error {
	e := &models.ErrorLog{Message: message, Path: path, Status: status}
	if err := s.repomanager.ErrorLogs(s.db).Create(ctx, e); err != nil {
		return err
	}
	s.publisher.Publish(ctx, realtime.TopicErrors, e)
	return nil
}

func (s *ErrorLogService) Latest(ctx context.Context) ([]*models.ErrorLog, error) {
	return s.repomanager.ErrorLogs(s.db).Latest(ctx, ErrorFeedSize)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
