package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/boostmanager/internal/common"
)

type emailRequest struct {
	Email string `json:"email"`
}

// decodeEmail reads {email}. A missing body or e-mail answers with the
// function error shape and returns false.
func decodeEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, functionError{Code: http.StatusBadRequest, Message: common.ErrEmailRequired.Error()})
		return "", false
	}
	return req.Email, true
}

func (s *Server) functionFail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, common.ErrEmailRequired) {
		writeJSON(w, http.StatusBadRequest, functionError{Code: http.StatusBadRequest, Message: err.Error()})
		return
	}
	ctx := r.Context()
	s.logger.Error(ctx, "lockout function failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, functionError{Code: http.StatusInternalServerError, Message: "Internal server error"})
}

func (s *Server) handleCheckLockout(w http.ResponseWriter, r *http.Request) {
	email, ok := decodeEmail(w, r)
	if !ok {
		return
	}
	st, err := s.svc.Lockout.Check(r.Context(), email)
	if err != nil {
		s.functionFail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleRecordLoginFailure(w http.ResponseWriter, r *http.Request) {
	email, ok := decodeEmail(w, r)
	if !ok {
		return
	}
	res, err := s.svc.Lockout.RecordFailure(r.Context(), email)
	if err != nil {
		s.functionFail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRemainingAttempts(w http.ResponseWriter, r *http.Request) {
	email, ok := decodeEmail(w, r)
	if !ok {
		return
	}
	n, err := s.svc.Lockout.RemainingAttempts(r.Context(), email)
	if err != nil {
		s.functionFail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"remainingAttempts": n})
}

func (s *Server) handleCheckNewUser(w http.ResponseWriter, r *http.Request) {
	p := profileFrom(r.Context())
	isNew, err := s.svc.Auth.CheckNewUser(r.Context(), p.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"shouldRedirect": isNew})
}
