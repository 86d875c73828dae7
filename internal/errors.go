package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeUnavailable  ErrorType = "SERVICE_UNAVAILABLE"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"

	ErrCodeTenantNotFound        ErrorCode = "TENANT_NOT_FOUND"
	ErrCodeTenantExists          ErrorCode = "TENANT_EXISTS"
	ErrCodeCredentialsIncomplete ErrorCode = "CREDENTIALS_INCOMPLETE"
	ErrCodeInvalidCredentials    ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive          ErrorCode = "USER_INACTIVE"
	ErrCodePermissionDenied      ErrorCode = "PERMISSION_DENIED"
	ErrCodeSessionExpired        ErrorCode = "SESSION_EXPIRED"
	ErrCodeInvalidResetToken     ErrorCode = "INVALID_RESET_TOKEN"
	ErrCodeWeakPassword          ErrorCode = "WEAK_PASSWORD"

	ErrCodeProjectNotFound  ErrorCode = "PROJECT_NOT_FOUND"
	ErrCodeTaskNotFound     ErrorCode = "TASK_NOT_FOUND"
	ErrCodeMemberNotFound   ErrorCode = "MEMBER_NOT_FOUND"
	ErrCodeTeamNotFound     ErrorCode = "TEAM_NOT_FOUND"
	ErrCodeRoleNotFound     ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeRoleBuiltin      ErrorCode = "ROLE_BUILTIN"
	ErrCodeTimerNotRunning  ErrorCode = "TIMER_NOT_RUNNING"
	ErrCodeTimerRunning     ErrorCode = "TIMER_ALREADY_RUNNING"
	ErrCodeDatabaseFailure  ErrorCode = "DATABASE_FAILURE"
	ErrCodeNotificationGone ErrorCode = "NOTIFICATION_NOT_FOUND"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
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

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewUnavailableError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Code:       ErrCodeDatabaseFailure,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// Sentinel errors for the core flows. User-facing messages are deliberately
// neutral: login failures never reveal whether the account exists, and tenant
// database errors never leak driver detail to the client.
var (
	ErrTenantNotFound = NewNotFoundError("no workspace is registered for this email domain", ErrCodeTenantNotFound)
	ErrTenantExists   = NewConflictError("a tenant with this domain or database name already exists", ErrCodeTenantExists)

	ErrCredentialsIncomplete = &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeCredentialsIncomplete,
		Message:    "workspace is not fully provisioned, contact your administrator",
		StatusCode: http.StatusInternalServerError,
	}

	ErrInvalidCredentials = NewUnauthorizedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("user account is inactive", ErrCodeUserInactive)
	ErrPermissionDenied   = NewForbiddenError("permission denied", ErrCodePermissionDenied)
	ErrSessionExpired     = NewUnauthorizedError("session expired, sign in again", ErrCodeSessionExpired)
	ErrInvalidResetToken  = NewUnauthorizedError("reset link is invalid or has expired", ErrCodeInvalidResetToken)

	ErrServiceUnavailable = NewUnavailableError("service temporarily unavailable", nil)

	ErrProjectNotFound = NewNotFoundError("project not found", ErrCodeProjectNotFound)
	ErrTaskNotFound    = NewNotFoundError("task not found", ErrCodeTaskNotFound)
	ErrMemberNotFound  = NewNotFoundError("member not found", ErrCodeMemberNotFound)
	ErrTeamNotFound    = NewNotFoundError("team not found", ErrCodeTeamNotFound)
	ErrRoleNotFound    = NewNotFoundError("role not found", ErrCodeRoleNotFound)
	ErrRoleBuiltin     = NewConflictError("builtin roles cannot be deleted", ErrCodeRoleBuiltin)

	ErrTimerNotRunning = NewNotFoundError("no running timer", ErrCodeTimerNotRunning)
	ErrTimerRunning    = NewConflictError("a timer is already running", ErrCodeTimerRunning)
	ErrEntryNotOwned   = NewForbiddenError("time entry belongs to another member", ErrCodePermissionDenied)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
