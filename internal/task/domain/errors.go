package domain

import "errors"

var (
	ErrInvalidStatus       = errors.New("invalid status")
	ErrTaskNotFound        = errors.New("task not found")
	ErrNothingToGenerate   = errors.New("nothing to generate")
	ErrEmptyNote           = errors.New("note content is empty")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrInvalidEnhancement  = errors.New("invalid enhancement mode")
	ErrSchemaMismatch      = errors.New("sheet header does not match task schema")
	ErrInvalidDateRange    = errors.New("invalid date range")
	ErrEmptyQuestion       = errors.New("question is empty")
)

// ValidationError is returned when input is rejected before any external call.
// Message is safe to show to the user.
type ValidationError struct {
	Err     error
	Message string
}

func NewValidationError(err error, message string) *ValidationError {
	return &ValidationError{Err: err, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err (or anything it wraps) is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
