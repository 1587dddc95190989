package models

import (
	"github.com/pkg/errors"
)

// Error kinds surfaced by the engine. Callers match them with errors.Is; the
// concrete error carries the field-level detail.
var (
	// ErrInvalidInput: revenue <= 0, timeframe outside [1,120], a rate outside its range.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingReferenceData: country or scenario data lacks a required field.
	ErrMissingReferenceData = errors.New("missing reference data")

	// ErrNonConvergence is reported by the IRR solver. It is never fatal for a calculation.
	ErrNonConvergence = errors.New("solver did not converge")

	// ErrNotFound is returned by reference lookups for unknown ids/codes.
	ErrNotFound = errors.New("not found")
)

// InvalidInputf wraps ErrInvalidInput with a formatted message.
func InvalidInputf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}

// MissingReferencef wraps ErrMissingReferenceData with a formatted message.
func MissingReferencef(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMissingReferenceData, format, args...)
}
