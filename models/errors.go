package models

// FieldError marks a malformed or missing field detected before any
// store write. The HTTP layer maps it to a 400.
type FieldError struct {
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func NewFieldError(message string) *FieldError {
	return &FieldError{Message: message}
}
