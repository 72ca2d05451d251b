package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fzdarsky/cognito-srp/pkg/srp"
)

// ErrorCode represents a stable, user-facing error code.
type ErrorCode string

// Error codes.
const (
	// ErrCodeFormat indicates a malformed value, usually an upstream encoding bug.
	ErrCodeFormat ErrorCode = "FORMAT_ERROR"
	// ErrCodeProtocol indicates an SRP safety check failed; a new attempt may succeed.
	ErrCodeProtocol ErrorCode = "PROTOCOL_ERROR"
	// ErrCodeAuthenticationFailed indicates wrong credentials or a proof mismatch.
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	// ErrCodeCryptoFailure indicates the random source or a primitive failed.
	ErrCodeCryptoFailure ErrorCode = "CRYPTO_FAILURE"

	// ErrCodeUnexpectedChallenge indicates the provider asked for a challenge this client does not answer.
	ErrCodeUnexpectedChallenge ErrorCode = "UNEXPECTED_CHALLENGE"
	// ErrCodeServiceError indicates the identity provider rejected the request.
	ErrCodeServiceError ErrorCode = "SERVICE_ERROR"
	// ErrCodeNetworkError indicates the identity provider could not be reached.
	ErrCodeNetworkError ErrorCode = "NETWORK_ERROR"
	// ErrCodeConfigurationError indicates invalid client configuration.
	ErrCodeConfigurationError ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeSystemError indicates any other failure.
	ErrCodeSystemError ErrorCode = "SYSTEM_ERROR"
)

// Identity provider exception types seen in ServiceError.Type.
const (
	ExceptionNotAuthorized    = "NotAuthorizedException"
	ExceptionUserNotFound     = "UserNotFoundException"
	ExceptionInvalidParameter = "InvalidParameterException"
	ExceptionResourceNotFound = "ResourceNotFoundException"
	ExceptionTooManyRequests  = "TooManyRequestsException"
	ExceptionInternalError    = "InternalErrorException"
	ExceptionPasswordReset    = "PasswordResetRequiredException"
	ExceptionUserNotConfirmed = "UserNotConfirmedException"
)

// ErrUnexpectedChallenge is returned when a response names a challenge other than the one expected.
var ErrUnexpectedChallenge = errors.New("unexpected challenge")

// credentialsMessage is the only text shown for any authentication failure.
const credentialsMessage = "Incorrect username or password"

// ErrorResponse represents a standardized error report.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ErrorResponse) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a new ErrorResponse.
func NewError(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// NewErrorWithDetails creates a new ErrorResponse with details.
func NewErrorWithDetails(code ErrorCode, message, details string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewNetworkError creates a network error.
func NewNetworkError(details string) *ErrorResponse {
	return NewErrorWithDetails(ErrCodeNetworkError, "Identity provider unreachable", details)
}

// NewConfigurationError creates a configuration error.
func NewConfigurationError(details string) *ErrorResponse {
	return NewErrorWithDetails(ErrCodeConfigurationError, "Configuration error", details)
}

// ServiceError is an error body returned by the identity provider.
type ServiceError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"__type"`
	Message    string `json:"message"`
}

// ParseServiceError decodes an error body. Bodies that are not JSON are kept as the message.
func ParseServiceError(statusCode int, body []byte) *ServiceError {
	se := &ServiceError{StatusCode: statusCode}
	if err := Unmarshal(body, se); err != nil || se.Type == "" {
		se.Type = "UnknownError"
		se.Message = strings.TrimSpace(string(body))
	}
	return se
}

// Kind returns the exception name without any namespace prefix.
func (e *ServiceError) Kind() string {
	if i := strings.LastIndexByte(e.Type, '#'); i >= 0 {
		return e.Type[i+1:]
	}
	return e.Type
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("identity provider error (HTTP %d): %s: %s", e.StatusCode, e.Kind(), e.Message)
}

// IsAuthFailure reports whether the provider rejected the credentials themselves.
func (e *ServiceError) IsAuthFailure() bool {
	switch e.Kind() {
	case ExceptionNotAuthorized, ExceptionUserNotFound:
		return true
	}
	return false
}

// Is lets errors.Is(err, srp.ErrAuthentication) match a credential rejection by the provider.
func (e *ServiceError) Is(target error) bool {
	return target == srp.ErrAuthentication && e.IsAuthFailure()
}

// FromError maps any error from an authentication attempt to an ErrorResponse. Authentication
// failures never carry details.
func FromError(err error) *ErrorResponse {
	if err == nil {
		return nil
	}

	var resp *ErrorResponse
	if errors.As(err, &resp) {
		return resp
	}

	var se *ServiceError
	switch {
	case errors.Is(err, srp.ErrAuthentication):
		return NewError(ErrCodeAuthenticationFailed, credentialsMessage)
	case errors.As(err, &se):
		return NewErrorWithDetails(ErrCodeServiceError, "Identity provider rejected the request", se.Kind()+": "+se.Message)
	case errors.Is(err, ErrUnexpectedChallenge):
		return NewErrorWithDetails(ErrCodeUnexpectedChallenge, "Unsupported challenge", err.Error())
	case errors.Is(err, srp.ErrFormat):
		return NewErrorWithDetails(ErrCodeFormat, "Malformed value", err.Error())
	case errors.Is(err, srp.ErrProtocol):
		return NewErrorWithDetails(ErrCodeProtocol, "SRP safety check failed", err.Error())
	case errors.Is(err, srp.ErrCryptoFailure):
		return NewErrorWithDetails(ErrCodeCryptoFailure, "Cryptographic failure", err.Error())
	default:
		return NewErrorWithDetails(ErrCodeSystemError, "Unexpected error", err.Error())
	}
}
