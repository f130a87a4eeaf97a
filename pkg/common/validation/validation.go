package validation

import (
	"time"

	cerrors "github.com/vnykmshr/coalesce/pkg/common/errors"
)

// ValidateNonNegativeDuration rejects negative durations. Zero is allowed.
func ValidateNonNegativeDuration(module, field string, value time.Duration) error {
	if value < 0 {
		return cerrors.NewValidationError(module, field, value, "cannot be negative").
			WithHint("use 0 or a positive duration")
	}
	return nil
}

// ValidateNotEmpty rejects the empty string.
func ValidateNotEmpty(module, field string, value string) error {
	if value == "" {
		return cerrors.NewValidationError(module, field, value, "cannot be empty").
			WithHint("provide a non-empty " + field)
	}
	return nil
}
