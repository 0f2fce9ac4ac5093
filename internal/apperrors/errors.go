package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller is not the owner of the resource or lacks admin rights.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates the operation lost against concurrent state: sold out,
// already resolved, or allocation retries exhausted.
var ErrConflict = errors.New("conflict")

// ErrInsufficientFunds indicates the paying account balance does not cover the amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidState indicates the entity is not in a state that allows the operation.
var ErrInvalidState = errors.New("invalid state")

// ErrExternalUnavailable indicates an external ledger or dispatcher could not be reached.
var ErrExternalUnavailable = errors.New("external service unavailable")

// AppError carries an HTTP-ish status code along with the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a status code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError returns an AppError wrapping ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}
