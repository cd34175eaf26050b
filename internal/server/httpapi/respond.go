package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/logging"
	"github.com/dmitrijs2005/boostmanager/internal/server/services"
	"github.com/dmitrijs2005/boostmanager/internal/validation"
)

// errorBody is the JSON shape of every failed API call.
type errorBody struct {
	Error             string            `json:"error"`
	Message           string            `json:"message,omitempty"`
	Redirect          string            `json:"redirect,omitempty"`
	Fields            validation.Errors `json:"fields,omitempty"`
	RemainingAttempts *int              `json:"remainingAttempts,omitempty"`
	IsLocked          *bool             `json:"isLocked,omitempty"`
	LockedUntil       *time.Time        `json:"lockedUntil,omitempty"`
}

// functionError is the body returned by the lockout functions.
type functionError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// errorResponse maps a service error to a status and body.
func errorResponse(err error) (int, errorBody) {
	var verr validation.Errors
	var ice *services.InvalidCredentialsError
	var locked *services.AccountLockedError

	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, errorBody{Error: "validation_failed", Message: "Please correct the highlighted fields.", Fields: verr}
	case errors.As(err, &ice):
		return http.StatusUnauthorized, errorBody{
			Error:             "invalid_credentials",
			Message:           "Invalid e-mail or password.",
			RemainingAttempts: &ice.RemainingAttempts,
			IsLocked:          &ice.Locked,
		}
	case errors.As(err, &locked):
		isLocked := true
		return http.StatusLocked, errorBody{
			Error:       "account_locked",
			Message:     locked.Status.Message,
			IsLocked:    &isLocked,
			LockedUntil: locked.Status.LockedUntil,
		}
	case errors.Is(err, common.ErrEmailRequired):
		return http.StatusBadRequest, errorBody{Error: "email_required", Message: err.Error()}
	case errors.Is(err, common.ErrEmailAlreadyRegistered):
		return http.StatusConflict, errorBody{Error: "email_already_registered", Message: "This e-mail is already registered."}
	case errors.Is(err, common.ErrEmailNotConfirmed):
		return http.StatusForbidden, errorBody{Error: "email_not_confirmed", Message: "Please confirm your e-mail before signing in."}
	case errors.Is(err, common.ErrTenantNameTaken):
		return http.StatusConflict, errorBody{Error: "tenant_name_taken", Message: err.Error()}
	case errors.Is(err, common.ErrOnboardingCompleted):
		return http.StatusConflict, errorBody{Error: "onboarding_completed", Message: "Onboarding is already complete."}
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusBadRequest, errorBody{Error: "invalid_token", Message: "The code is invalid or has expired."}
	case errors.Is(err, common.ErrRefreshTokenExpired), errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, errorBody{Error: "token_expired", Message: "Your session has expired."}
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, errorBody{Error: "unauthorized"}
	case errors.Is(err, common.ErrorForbidden), errors.Is(err, common.ErrTenantNotAssigned):
		return http.StatusForbidden, errorBody{Error: "forbidden"}
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, errorBody{Error: "not_found"}
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, errorBody{Error: "already_exists"}
	case errors.Is(err, common.ErrorValidation):
		return http.StatusUnprocessableEntity, errorBody{Error: "validation_failed", Message: err.Error()}
	case errors.Is(err, services.ErrRatesUnavailable):
		return http.StatusInternalServerError, errorBody{Error: "rates_unavailable", Message: "Failed to fetch rates."}
	default:
		return http.StatusInternalServerError, errorBody{Error: "server_error", Message: "Unexpected error."}
	}
}

// fail writes err and records server-side failures in the error log.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		ctx := r.Context()
		logging.FromContext(ctx, s.logger).Error(ctx, "request failed", "path", r.URL.Path, "error", err)
		if s.svc.ErrorLogs != nil {
			if rerr := s.svc.ErrorLogs.Record(ctx, err.Error(), r.URL.Path, status); rerr != nil {
				logging.FromContext(ctx, s.logger).Warn(ctx, "error log write failed", "error", rerr)
			}
		}
	}
	writeJSON(w, status, body)
}
