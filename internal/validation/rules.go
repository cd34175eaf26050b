package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Same grammar as the browser's e-mail validator.
var emailRe = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

var (
	lowerRe = regexp.MustCompile(`[a-z]`)
	upperRe = regexp.MustCompile(`[A-Z]`)
	digitRe = regexp.MustCompile(`\d`)
)

// Optional rules (email, length, pattern) accept the empty string; pair them
// with required() where the field is mandatory.

func required(e Errors, field, v string) bool {
	if strings.TrimSpace(v) == "" {
		e.Add(field, CodeRequired)
		return false
	}
	return true
}

func email(e Errors, field, v string) {
	if v != "" && !emailRe.MatchString(v) {
		e.Add(field, CodeEmail)
	}
}

func minLength(e Errors, field, v string, n int) {
	if v != "" && utf8.RuneCountInString(v) < n {
		e.Add(field, CodeMinLength)
	}
}

func maxLength(e Errors, field, v string, n int) {
	if utf8.RuneCountInString(v) > n {
		e.Add(field, CodeMaxLength)
	}
}

// passwordPattern requires a lowercase letter, an uppercase letter and a digit.
func passwordPattern(e Errors, field, v string) {
	if v == "" {
		return
	}
	if !lowerRe.MatchString(v) || !upperRe.MatchString(v) || !digitRe.MatchString(v) {
		e.Add(field, CodePattern)
	}
}

func between(e Errors, field string, v, lo, hi float64) {
	if v < lo {
		e.Add(field, CodeMin)
	}
	if v > hi {
		e.Add(field, CodeMax)
	}
}

func oneOf(e Errors, field, v string, allowed []string) {
	if v == "" {
		return
	}
	for _, a := range allowed {
		if a == v {
			return
		}
	}
	e.Add(field, CodeOneOf)
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts ISO timestamps as sent by the order form as well as
// plain calendar dates.
func ParseDate(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PasswordStrength scores a password from 0 to 4: one point each for a length
// of at least 8, a lowercase letter, an uppercase letter and a digit.
func PasswordStrength(pw string) int {
	score := 0
	if len(pw) >= 8 {
		score++
	}
	if lowerRe.MatchString(pw) {
		score++
	}
	if upperRe.MatchString(pw) {
		score++
	}
	if digitRe.MatchString(pw) {
		score++
	}
	return score
}

// StrengthLabel names a PasswordStrength score for display.
func StrengthLabel(score int) string {
	switch {
	case score <= 1:
		return "weak"
	case score == 2:
		return "fair"
	case score == 3:
		return "good"
	default:
		return "strong"
	}
}
