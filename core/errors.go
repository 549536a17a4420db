package core

import "github.com/pkg/errors"

// FieldError ties a validation failure to the offending input field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports a request rejected by input validation. Err carries
// the single message surfaced to clients; Fields the per-field breakdown.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown marks an integrity failure: storage handed back something it never
// should (for example an unusable record ID). The API responds with a 500 and
// then stops the process gracefully rather than keep serving from a store it
// can no longer trust.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown reports whether any error in err's cause chain is a shutdown
// error.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
