package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrDuplicateSubmission = errors.New("you have already responded to this survey")
	ErrConflict            = errors.New("conflict")
)

// errSurveyNotFound is shared by owner and public lookups so an inactive
// survey and a missing one produce the same message.
var errSurveyNotFound = fmt.Errorf("survey %w", ErrNotFound)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
