package client

import (
	"fmt"
	"net/http"
	"strings"
)

// Notice severities.
const (
	SeverityWarn  = "warn"
	SeverityError = "error"
)

// Notice is a user-facing message raised for a failed request.
type Notice struct {
	Severity string
	Summary  string
	Detail   string
}

func (n Notice) String() string {
	return fmt.Sprintf("[%s] %s: %s", n.Severity, n.Summary, n.Detail)
}

var authFunctions = []string{
	"/functions/v1/check-lockout",
	"/functions/v1/record-login-failure",
	"/functions/v1/remaining-attempts",
}

var authEndpoints = []string{"/auth/login", "/auth/signup"}

func containsAny(path string, list []string) bool {
	for _, p := range list {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// NoticeFor maps a failed request to the notice shown to the user. Status 0
// means the server could not be reached. Login, signup and the lockout
// functions report their own failures, so they only get the 403 and
// connection notices.
func NoticeFor(status int, path, apiMessage string) (Notice, bool) {
	quiet := containsAny(path, authFunctions) || containsAny(path, authEndpoints)
	if apiMessage == "" {
		apiMessage = "Unexpected error."
	}

	switch {
	case status == http.StatusUnauthorized && !quiet:
		return Notice{SeverityWarn, "Session Expired", "Your session has expired. Please log in again."}, true
	case status == http.StatusForbidden:
		return Notice{SeverityError, "Access Denied", "You do not have permission for this action."}, true
	case status == 0:
		return Notice{SeverityError, "No connection", "Unable to connect to the server."}, true
	case !quiet:
		return Notice{SeverityError, fmt.Sprintf("Error %d", status), apiMessage}, true
	}
	return Notice{}, false
}
