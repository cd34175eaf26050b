package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/boostmanager/internal/server/services"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := services.HealthOK
	if s.svc.BackOffice != nil {
		status = s.svc.BackOffice.Health()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// handleRates proxies exchangerate.host for the requested base currency.
func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	base := strings.TrimSpace(r.URL.Query().Get("base"))
	rates, err := s.svc.Currency.ExchangeRates(r.Context(), base)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if base == "" {
		base = "USD"
	}
	writeJSON(w, http.StatusOK, map[string]any{"base": strings.ToUpper(base), "rates": rates})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.BackOffice.Summary(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleAuditFeed(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Audit.Latest(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleErrorFeed(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ErrorLogs.Latest(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
