package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrUnavailable           = errors.New("server unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)

// APIError is a non-2xx API response.
type APIError struct {
	Status            int                 `json:"-"`
	Code              string              `json:"error"`
	Message           string              `json:"message"`
	Redirect          string              `json:"redirect"`
	Fields            map[string][]string `json:"fields"`
	RemainingAttempts *int                `json:"remainingAttempts"`
	IsLocked          *bool               `json:"isLocked"`
	LockedUntil       *time.Time          `json:"lockedUntil"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	}
	return false
}
