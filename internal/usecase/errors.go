package usecase

import (
	"errors"
	"fmt"

	"content-catalog/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("permission denied")
)

// ValidationError carries per-field messages keyed by json field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), utils.FormatValidationErrors(e.Fields))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func validationFailed(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

func invalidField(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// validate runs struct tag validation and returns a *ValidationError.
func validate(req interface{}) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationFailed(errs)
	}
	return nil
}

// parseID treats malformed ids as missing objects.
func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s %q: %w", kind, raw, ErrNotFound)
	}
	return id, nil
}
