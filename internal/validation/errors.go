// Package validation implements the form rules shared by the API server and
// the bmctl client. Failures are reported per field as short codes
// ("required", "email", "minlength", ...) so both sides render the same
// messages.
package validation

import (
	"sort"
	"strings"

	"github.com/dmitrijs2005/boostmanager/internal/common"
)

// Error codes.
const (
	CodeRequired    = "required"
	CodeEmail       = "email"
	CodeMinLength   = "minlength"
	CodeMaxLength   = "maxlength"
	CodePattern     = "pattern"
	CodeNotMatching = "notMatching"
	CodeMin         = "min"
	CodeMax         = "max"
	CodeDate        = "date"
	CodeDateRange   = "dateRange"
	CodeOneOf       = "oneOf"
)

// Errors maps a field name to the codes it failed. A nil or empty Errors
// means the form is valid.
type Errors map[string][]string

func (e Errors) Add(field, code string) {
	e[field] = append(e[field], code)
}

// Has reports whether field failed with code.
func (e Errors) Has(field, code string) bool {
	for _, c := range e[field] {
		if c == code {
			return true
		}
	}
	return false
}

func (e Errors) OK() bool {
	return len(e) == 0
}

// Err returns e as an error, or nil when there are no failures.
func (e Errors) Err() error {
	if e.OK() {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], ","))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// Unwrap lets callers match any form failure with errors.Is(err, common.ErrorValidation).
func (e Errors) Unwrap() error {
	return common.ErrorValidation
}
