package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/dbx"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/boostmanager/internal/validation"
)

// OrderService manages a tenant's orders. Every call is scoped by tenantID.
type OrderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	audit       *AuditService
}

func NewOrderService(db *sql.DB, m repomanager.RepositoryManager, audit *AuditService) *OrderService {
	return &OrderService{db: db, repomanager: m, audit: audit}
}

// List returns non-deleted orders, newest first, keeping only those with a
// field containing search (case-insensitive).
func (s *OrderService) List(ctx context.Context, tenantID, search string) ([]*models.Order, error) {
	all, err := s.repomanager.Orders(s.db).List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(search) == "" {
		return all, nil
	}
	result := make([]*models.Order, 0, len(all))
	for _, o := range all {
		if o.Matches(search) {
			result = append(result, o)
		}
	}
	return result, nil
}

func (s *OrderService) Get(ctx context.Context, tenantID, id string) (*models.Order, error) {
	return s.repomanager.Orders(s.db).Get(ctx, tenantID, id)
}

// Create validates the form, assigns the next order number and stores the order.
func (s *OrderService) Create(ctx context.Context, tenantID, actorID string, form *validation.OrderForm) (*models.Order, error) {
	o, err := s.orderFromForm(form)
	if err != nil {
		return nil, err
	}
	o.TenantID = tenantID

	var entry *models.AuditEntry
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Orders(tx)
		n, err := repo.NextNumber(ctx, tenantID)
		if err != nil {
			return err
		}
		o.OrderNumber = models.FormatOrderNumber(n)
		if err := repo.Create(ctx, o); err != nil {
			return err
		}
		entry = s.orderAudit(ActionOrderCreated, tenantID, actorID, o)
		return s.audit.Write(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Publish(ctx, entry)
	return o, nil
}

// Update replaces the order's fields. The order number is kept; one is
// allocated only when the stored order has none.
func (s *OrderService) Update(ctx context.Context, tenantID, actorID, id string, form *validation.OrderForm) (*models.Order, error) {
	o, err := s.orderFromForm(form)
	if err != nil {
		return nil, err
	}
	o.TenantID = tenantID
	o.ID = id

	var entry *models.AuditEntry
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Orders(tx)
		existing, err := repo.Get(ctx, tenantID, id)
		if err != nil {
			return err
		}
		o.OrderNumber = existing.OrderNumber
		if o.OrderNumber == "" {
			n, err := repo.NextNumber(ctx, tenantID)
			if err != nil {
				return err
			}
			o.OrderNumber = models.FormatOrderNumber(n)
		}
		if err := repo.Update(ctx, o); err != nil {
			return err
		}
		entry = s.orderAudit(ActionOrderUpdated, tenantID, actorID, o)
		return s.audit.Write(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Publish(ctx, entry)
	return o, nil
}

// Delete soft-deletes the order.
func (s *OrderService) Delete(ctx context.Context, tenantID, actorID, id string) error {
	var entry *models.AuditEntry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Orders(tx)
		o, err := repo.Get(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := repo.SoftDelete(ctx, tenantID, id); err != nil {
			return err
		}
		entry = s.orderAudit(ActionOrderDeleted, tenantID, actorID, o)
		return s.audit.Write(ctx, tx, entry)
	})
	if err != nil {
		return err
	}

	s.audit.Publish(ctx, entry)
	return nil
}

// --- helpers below ---

func (s *OrderService) orderAudit(action, tenantID, actorID string, o *models.Order) *models.AuditEntry {
	return &models.AuditEntry{
		TenantID: strPtr(tenantID),
		ActorID:  strPtr(actorID),
		Action:   action,
		Entity:   "order",
		EntityID: o.ID,
		Details:  "#" + o.OrderNumber,
	}
}

func (s *OrderService) orderFromForm(form *validation.OrderForm) (*models.Order, error) {
	if verr := form.Validate(); !verr.OK() {
		return nil, verr
	}

	observation, err := sanitiseText(form.Observation)
	if err != nil {
		return nil, fmt.Errorf("%w: observation: %v", common.ErrorValidation, err)
	}

	start, _ := validation.ParseDate(form.StartDate)
	var end *time.Time
	if form.EndDate != "" {
		t, _ := validation.ParseDate(form.EndDate)
		end = &t
	}

	return &models.Order{
		Booster:         strings.TrimSpace(form.Booster),
		ServiceType:     form.ServiceType,
		WeaponQuantity:  form.WeaponQuantity,
		Supplier:        strings.TrimSpace(form.Supplier),
		AccountEmail:    strings.TrimSpace(form.AccountEmail),
		AccountPassword: form.AccountPassword,
		RecoveryCode:    form.RecoveryCode,
		RecoveryEmail:   strings.TrimSpace(form.RecoveryEmail),
		Platform:        form.Platform,
		StartDate:       start,
		EndDate:         end,
		Status:          form.Status,
		Currency:        form.Currency,
		BoosterCurrency: form.BoosterCurrency,
		TotalValue:      form.TotalValue,
		BoosterValue:    form.BoosterValue,
		Observation:     observation,
	}, nil
}
