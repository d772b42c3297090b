package dto

import (
	"net/http"

	"github.com/propman/backend/internal/domain/shared"
)

// Transport-level error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// errorKindHTTPStatus maps domain error kinds to HTTP status codes
var errorKindHTTPStatus = map[shared.ErrorKind]int{
	shared.ErrKindValidation:        http.StatusBadRequest,
	shared.ErrKindConflict:          http.StatusConflict,
	shared.ErrKindNotFound:          http.StatusNotFound,
	shared.ErrKindAccessDenied:      http.StatusForbidden,
	shared.ErrKindPaymentProcessing: http.StatusBadGateway,
	shared.ErrKindConsistency:       http.StatusInternalServerError,
}

// credentialCodes are access-denied codes that signal a failed authentication
// rather than an authorization failure, and map to 401 instead of 403.
var credentialCodes = map[string]struct{}{
	"INVALID_CREDENTIALS": {},
	"ACTOR_DEACTIVATED":   {},
}

// HTTPStatusForDomainError returns the status code for a domain error
func HTTPStatusForDomainError(err *shared.DomainError) int {
	if err.Kind == shared.ErrKindAccessDenied {
		if _, ok := credentialCodes[err.Code]; ok {
			return http.StatusUnauthorized
		}
	}
	if status, ok := errorKindHTTPStatus[err.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
