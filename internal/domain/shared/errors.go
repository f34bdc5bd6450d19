package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return &DomainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Common domain errors
var (
	ErrNotFound        = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists   = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput    = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized    = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden       = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrConflict        = NewDomainError("CONFLICT", "Operation conflicts with current resource state")
	ErrPayloadTooLarge = NewDomainError("PAYLOAD_TOO_LARGE", "Payload exceeds the allowed size")
	ErrInvalidState    = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// NewReferentialError builds a referential-integrity error pointing at a
// specific record in a batch. The index is zero-based.
func NewReferentialError(index int, format string, args ...any) *DomainError {
	return &DomainError{
		Code:    "REFERENTIAL_INTEGRITY",
		Message: fmt.Sprintf("record %d: %s", index, fmt.Sprintf(format, args...)),
	}
}
