package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/dbx"
	"github.com/dmitrijs2005/boostmanager/internal/server/auth"
	"github.com/dmitrijs2005/boostmanager/internal/server/config"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/boostmanager/internal/validation"
)

type OnboardingResult struct {
	Profile *models.Profile `json:"profile"`
	Tenant  *models.Tenant  `json:"tenant"`
}

// OnboardingService provisions a tenant for a freshly signed-up user.
type OnboardingService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	audit            *AuditService
	superAdminEmails []string
}

func NewOnboardingService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, audit *AuditService) *OnboardingService {
	return &OnboardingService{
		db:               db,
		repomanager:      m,
		audit:            audit,
		superAdminEmails: cfg.SuperAdminEmails,
	}
}

func (s *OnboardingService) TenantExists(ctx context.Context, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, nil
	}
	return s.repomanager.Tenants(s.db).ExistsByName(ctx, name)
}

// Complete creates the tenant and binds the profile to it in one transaction.
// The profile becomes superadmin when its e-mail is allow-listed, owner
// otherwise.
func (s *OnboardingService) Complete(ctx context.Context, userID string, form validation.OnboardingForm) (*OnboardingResult, error) {
	if verr := form.Validate(); !verr.OK() {
		return nil, verr
	}

	var entry *models.AuditEntry
	res, err := dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*OnboardingResult, error) {
		profiles := s.repomanager.Profiles(tx)
		tenants := s.repomanager.Tenants(tx)

		p, err := profiles.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if p.OnboardingCompleted {
			return nil, common.ErrOnboardingCompleted
		}

		taken, err := tenants.ExistsByName(ctx, form.TenantName)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, common.ErrTenantNameTaken
		}

		t, err := tenants.Create(ctx, form.TenantName)
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return nil, common.ErrTenantNameTaken
			}
			return nil, err
		}

		role := auth.RoleForNewTenant(p.Email, s.superAdminEmails)
		name := strings.TrimSpace(form.Name)
		if err := profiles.CompleteOnboarding(ctx, p.ID, name, t.ID, role); err != nil {
			return nil, err
		}
		p.Name = name
		p.TenantID = &t.ID
		p.Role = role
		p.OnboardingCompleted = true

		entry = &models.AuditEntry{
			TenantID: &t.ID,
			ActorID:  &p.ID,
			Action:   ActionTenantCreated,
			Entity:   "tenant",
			EntityID: t.ID,
			Details:  t.Name,
		}
		if err := s.audit.Write(ctx, tx, entry); err != nil {
			return nil, err
		}
		return &OnboardingResult{Profile: p, Tenant: t}, nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Publish(ctx, entry)
	return res, nil
}
