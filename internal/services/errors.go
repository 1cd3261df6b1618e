package services

import (
	"errors"

	apperrors "realtydash/internal/errors"
)

// Data service errors
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)

// invalidInput returns a validation error that matches ErrInvalidInput
func invalidInput(message string) error {
	return apperrors.NewAppError(apperrors.ErrTypeValidation, message, ErrInvalidInput)
}
