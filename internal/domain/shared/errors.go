package shared

import "errors"

// ErrorKind classifies domain errors for transport mapping and retry policy.
type ErrorKind string

const (
	// ErrKindValidation marks malformed or missing input; the caller's fault.
	ErrKindValidation ErrorKind = "VALIDATION"
	// ErrKindConflict marks an operation that would violate an invariant,
	// e.g. a second active lease for the same unit.
	ErrKindConflict ErrorKind = "CONFLICT"
	// ErrKindNotFound marks a referenced entity that does not exist.
	ErrKindNotFound ErrorKind = "NOT_FOUND"
	// ErrKindAccessDenied marks a target outside the actor's scope.
	ErrKindAccessDenied ErrorKind = "ACCESS_DENIED"
	// ErrKindPaymentProcessing marks an upstream payment failure. These are
	// retryable by the caller with backoff; the core never retries silently.
	ErrKindPaymentProcessing ErrorKind = "PAYMENT_PROCESSING"
	// ErrKindConsistency marks an invariant found already violated at read
	// time. Fatal: the current operation halts and the error is logged loudly.
	// Data is never auto-corrected.
	ErrKindConsistency ErrorKind = "CONSISTENCY"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind      ErrorKind `json:"kind"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error of the given kind
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(ErrKindValidation, code, message)
}

// NewConflictError creates a conflict error
func NewConflictError(code, message string) *DomainError {
	return NewDomainError(ErrKindConflict, code, message)
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(code, message string) *DomainError {
	return NewDomainError(ErrKindNotFound, code, message)
}

// NewAccessDeniedError creates an access-denied error
func NewAccessDeniedError(code, message string) *DomainError {
	return NewDomainError(ErrKindAccessDenied, code, message)
}

// NewPaymentProcessingError creates a retryable payment-processing error
func NewPaymentProcessingError(code, message string) *DomainError {
	return &DomainError{
		Kind:      ErrKindPaymentProcessing,
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// NewConsistencyError creates a fatal consistency error
func NewConsistencyError(code, message string) *DomainError {
	return NewDomainError(ErrKindConsistency, code, message)
}

// IsKind reports whether err is a DomainError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool { return IsKind(err, ErrKindConflict) }

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool { return IsKind(err, ErrKindNotFound) }

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool { return IsKind(err, ErrKindValidation) }

// IsAccessDenied reports whether err is an access-denied error
func IsAccessDenied(err error) bool { return IsKind(err, ErrKindAccessDenied) }

// IsConsistency reports whether err is a consistency error
func IsConsistency(err error) bool { return IsKind(err, ErrKindConsistency) }

// Common domain errors
var (
	ErrNotFound            = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewConflictError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewConflictError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrAccessDenied        = NewAccessDeniedError("ACCESS_DENIED", "Actor is not permitted to access this resource")
	ErrInvalidState        = NewConflictError("INVALID_STATE", "Operation not allowed in current state")
)
