package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode identifies the failure category independently of transport.
type ErrorCode int

const (
	ErrInternal ErrorCode = iota + 1000
	ErrConflict
	ErrNotFound
	ErrInvalidID
	ErrValidation
	ErrSlotTaken
	ErrDuplicateBooking
	ErrInvalidCredentials
	ErrNotApproved
)

// AppError represents an application error with a stable code.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Fields  []string  `json:"fields,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors
func Conflict(message string) *AppError {
	return &AppError{Code: ErrConflict, Message: message}
}

func NotFound(resource string) *AppError {
	return &AppError{Code: ErrNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NotFoundMsg(message string) *AppError {
	return &AppError{Code: ErrNotFound, Message: message}
}

func InvalidID(message string) *AppError {
	return &AppError{Code: ErrInvalidID, Message: message}
}

// Validation aggregates every offending field into a single error.
func Validation(fields []string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: fmt.Sprintf("validation failed: %s", strings.Join(fields, ", ")),
		Fields:  fields,
	}
}

func SlotTaken(message string) *AppError {
	return &AppError{Code: ErrSlotTaken, Message: message}
}

func DuplicateBooking(message string) *AppError {
	return &AppError{Code: ErrDuplicateBooking, Message: message}
}

func InvalidCredentials(message string) *AppError {
	return &AppError{Code: ErrInvalidCredentials, Message: message}
}

func NotApproved(message string) *AppError {
	return &AppError{Code: ErrNotApproved, Message: message}
}

func Internal(err error) *AppError {
	return &AppError{Code: ErrInternal, Message: "internal server error", Err: err}
}

// Code extracts the error code, defaulting to ErrInternal for unknown errors.
func Code(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return Code(err) == code
}

// HTTPStatus maps an error to its HTTP status code.
func HTTPStatus(err error) int {
	switch Code(err) {
	case ErrConflict:
		return http.StatusConflict
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInvalidID, ErrSlotTaken, ErrDuplicateBooking, ErrInvalidCredentials:
		return http.StatusBadRequest
	case ErrValidation:
		return http.StatusUnprocessableEntity
	case ErrNotApproved:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
