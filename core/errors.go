package core

import "github.com/pkg/errors"

// FieldError names one offending field of a rejected payload.
type FieldError struct {
	Field string
	Error string
}

// ValidationError rejects a payload with per-field detail. The HTTP error
// handler renders it as a 400 alongside validator.ValidationErrors; domain
// code raises it for checks the validator tags cannot express (unknown
// request status, duplicate email).
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown marks an error the API server cannot recover from in-process;
// the HTTP error handler signals a graceful stop when it sees one.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
