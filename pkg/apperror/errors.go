package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Signature & Authentication (SEC) ----
// Signature failures are 400: the provider must not retry an untrusted body.

func ErrMissingSignature() *AppError {
	return New("SEC_001", "Missing signature header", http.StatusBadRequest)
}

func ErrInvalidSignature(err error) *AppError {
	return Wrap("SEC_002", "Invalid signature or payload", http.StatusBadRequest, err)
}

func ErrInvalidToken() *AppError {
	return New("SEC_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("SEC_004", "Operator role required", http.StatusForbidden)
}

// ---- Event Processing (EVT) ----

func ErrNotFound(entity string) *AppError {
	return New("EVT_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ErrProcessingFailed invites the provider to redeliver later.
func ErrProcessingFailed(reason string) *AppError {
	return New("EVT_002", fmt.Sprintf("Event processing failed: %s", reason), http.StatusInternalServerError)
}

// ---- Validation (VAL) ----

// Validation returns a VAL_001 validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// ErrPayloadTooLarge rejects notification bodies over the configured limit.
func ErrPayloadTooLarge() *AppError {
	return New("VAL_002", "Request body too large", http.StatusRequestEntityTooLarge)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- Configuration (CFG) ----

// ErrConfiguration is never reported as a client problem.
func ErrConfiguration(err error) *AppError {
	return Wrap("CFG_001", "Service misconfigured", http.StatusInternalServerError, err)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
