package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
	"github.com/dmitrijs2005/boostmanager/internal/validation"
	"github.com/go-chi/chi/v5"
)

// tenantScope returns the caller's tenant and id. Guards have already
// ensured a profile with a tenant.
func tenantScope(r *http.Request) (tenantID, actorID string, err error) {
	p := profileFrom(r.Context())
	if p == nil {
		return "", "", common.ErrorUnauthorized
	}
	if !p.HasTenant() {
		return "", "", common.ErrTenantNotAssigned
	}
	return *p.TenantID, p.ID, nil
}

func (s *Server) handleTenantExists(w http.ResponseWriter, r *http.Request) {
	exists, err := s.svc.Onboarding.TenantExists(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (s *Server) handleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	var req validation.OnboardingForm
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}
	res, err := s.svc.Onboarding.Complete(r.Context(), profileFrom(r.Context()).ID, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	tenantID, _, err := tenantScope(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.svc.Orders.List(r.Context(), tenantID, r.URL.Query().Get("search"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if list == nil {
		list = []*models.Order{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	tenantID, _, err := tenantScope(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	o, err := s.svc.Orders.Get(r.Context(), tenantID, chi.URLParam(r, "orderID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	tenantID, actorID, err := tenantScope(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req validation.OrderForm
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}
	o, err := s.svc.Orders.Create(r.Context(), tenantID, actorID, &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	tenantID, actorID, err := tenantScope(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req validation.OrderForm
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}
	o, err := s.svc.Orders.Update(r.Context(), tenantID, actorID, chi.URLParam(r, "orderID"), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	tenantID, actorID, err := tenantScope(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.svc.Orders.Delete(r.Context(), tenantID, actorID, chi.URLParam(r, "orderID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportOrders(w http.ResponseWriter, r *http.Request) {
	tenantID, _, err := tenantScope(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.svc.Export.Export(r.Context(), tenantID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDashboardCards(w http.ResponseWriter, r *http.Request) {
	tenantID, _, err := tenantScope(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cards, err := s.svc.Dashboard.Cards(r.Context(), tenantID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleActiveOrders(w http.ResponseWriter, r *http.Request) {
	tenantID, _, err := tenantScope(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.svc.Dashboard.ActiveOrders(r.Context(), tenantID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handlePayroll(w http.ResponseWriter, r *http.Request) {
	tenantID, _, err := tenantScope(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	list, err := s.svc.Dashboard.Payroll(r.Context(), tenantID, q.Get("status"), q.Get("search"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Games.List(r.Context()))
}

func (s *Server) handleDollarRate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{"rate": s.svc.Currency.DollarRate(r.Context())})
}
