package exceptions

import (
	"errors"

	"go.uber.org/multierr"
)

// Errors combines the non-nil errors into one, or returns nil if there are none.
func Errors(errs ...error) error {
	return multierr.Combine(errs...)
}

func Append(err error, other error) error {
	return multierr.Append(err, other)
}

// IsMulti reports whether err matches any target. A combined error matches
// only if every error inside it does.
func IsMulti(err error, targetList ...error) bool {
	if err == nil {
		return false
	}
	if innerErrors := multierr.Errors(err); len(innerErrors) > 1 {
		for _, innerErr := range innerErrors {
			if !IsMulti(innerErr, targetList...) {
				return false
			}
		}
		return true
	}
	for _, target := range targetList {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
