package services

import (
	"errors"

	"github.com/microcosm-cc/bluemonday"
)

var ErrUnstableSanitisation = errors.New("sanitisation unstable")

const maxSanitisePasses = 10

var strictPolicy = bluemonday.StrictPolicy()

// sanitiseText strips every HTML element from value, repeating until the
// output stops changing.
func sanitiseText(value string) (string, error) {
	for i := 0; i < maxSanitisePasses; i++ {
		clean := strictPolicy.Sanitize(value)
		if clean == value {
			return clean, nil
		}
		value = clean
	}
	return "", ErrUnstableSanitisation
}
