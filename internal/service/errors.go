package service

import (
	"errors"
	"fmt"

	"feather-finance/pkg/common"
)

// ErrValidation marks input rejected before it reaches the database.
var ErrValidation = errors.New("validation failed")

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > common.MaxQueryLimit {
		return common.MaxQueryLimit
	}
	return limit
}
