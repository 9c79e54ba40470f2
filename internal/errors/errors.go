package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"taguchi/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// GetCode returns the code of the first AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeDatabaseError = "DATABASE_ERROR"
	CodeInternalError = "INTERNAL_ERROR"
	CodeInvalidInput  = "INVALID_INPUT"

	CodeInputShape             = "INPUT_SHAPE"
	CodeNotFound               = "NOT_FOUND"
	CodeParameter              = "PARAMETER"
	CodeInfeasibleConstruction = "INFEASIBLE_CONSTRUCTION"
	CodeExternalEngine         = "EXTERNAL_ENGINE"
	CodeEngineUnavailable      = "ENGINE_UNAVAILABLE"
	CodeIO                     = "IO_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// DatabaseError wraps a storage driver failure outside the domain repositories
func DatabaseError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeDatabaseError,
		Message: message,
		Cause:   cause,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// domainCodes maps domain sentinels to codes, most specific first
var domainCodes = []struct {
	sentinel error
	code     string
	status   int
}{
	{core.ErrInputShape, CodeInputShape, http.StatusBadRequest},
	{core.ErrParameter, CodeParameter, http.StatusBadRequest},
	{core.ErrInfeasibleConstruction, CodeInfeasibleConstruction, http.StatusUnprocessableEntity},
	{core.ErrEngineUnavailable, CodeEngineUnavailable, http.StatusServiceUnavailable},
	{core.ErrExternalEngine, CodeExternalEngine, http.StatusBadGateway},
	{core.ErrNotFound, CodeNotFound, http.StatusNotFound},
	{core.ErrIO, CodeIO, http.StatusInternalServerError},
}

// FromDomain converts a domain error into an AppError carrying the matching
// code. Errors outside the domain taxonomy become INTERNAL_ERROR.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	for _, m := range domainCodes {
		if stderrors.Is(err, m.sentinel) {
			return &AppError{Code: m.code, Message: err.Error(), Cause: err}
		}
	}
	return &AppError{Code: CodeInternalError, Message: err.Error(), Cause: err}
}

// HTTPStatus returns the response status for an error
func HTTPStatus(err error) int {
	code := GetCode(FromDomain(err))
	for _, m := range domainCodes {
		if m.code == code {
			return m.status
		}
	}
	if code == CodeInvalidInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
