package types

import (
	"errors"
	"net/http"
)

type ErrorCode string

func (e ErrorCode) String() string {
	return string(e)
}

const (
	// 5XX
	InternalServiceError ErrorCode = "INTERNAL_SERVICE_ERROR"
	PriceUnavailable     ErrorCode = "PRICE_UNAVAILABLE"
	// 4XX
	ValidationError      ErrorCode = "VALIDATION_ERROR"
	NotFound             ErrorCode = "NOT_FOUND"
	BadRequest           ErrorCode = "BAD_REQUEST"
	Forbidden            ErrorCode = "FORBIDDEN"
	RequestTimeout       ErrorCode = "REQUEST_TIMEOUT"
	TooManyRequests      ErrorCode = "TOO_MANY_REQUESTS"
	InvalidRoute         ErrorCode = "INVALID_ROUTE"
	InvalidState         ErrorCode = "INVALID_STATE"
	VerificationTimeout  ErrorCode = "VERIFICATION_TIMEOUT"
	VerificationMismatch ErrorCode = "VERIFICATION_MISMATCH"
	AlreadyDistributed   ErrorCode = "ALREADY_DISTRIBUTED"
	DistributionError    ErrorCode = "DISTRIBUTION_ERROR"
	RestartLimitExceeded ErrorCode = "RESTART_LIMIT_EXCEEDED"
)

// Error represents an error with an HTTP status code and an application-specific error code.
type Error struct {
	Err        error
	StatusCode int
	ErrorCode  ErrorCode
}

const UninitializedStatusCode = 0

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the provided status code, error code, and underlying error.
// If the status code is not provided (0), it defaults to http.StatusInternalServerError(500).
// If the error code is empty, it defaults to INTERNAL_SERVICE_ERROR.
func NewError(statusCode int, errorCode ErrorCode, err error) *Error {
	if statusCode == UninitializedStatusCode {
		statusCode = http.StatusInternalServerError
	}
	if errorCode == "" {
		errorCode = InternalServiceError
	}
	return &Error{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Err:        err,
	}
}

func NewErrorWithMsg(statusCode int, errorCode ErrorCode, msg string) *Error {
	return NewError(statusCode, errorCode, errors.New(msg))
}

func NewInternalServiceError(err error) *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		ErrorCode:  InternalServiceError,
		Err:        err,
	}
}

// StatusCodeFor returns the HTTP status code the bridge pipeline uses for a given error code.
func StatusCodeFor(code ErrorCode) int {
	switch code {
	case ValidationError, BadRequest, InvalidRoute:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case RequestTimeout, VerificationTimeout:
		return http.StatusRequestTimeout
	case TooManyRequests:
		return http.StatusTooManyRequests
	case InvalidState, AlreadyDistributed, RestartLimitExceeded:
		return http.StatusConflict
	case VerificationMismatch:
		return http.StatusUnprocessableEntity
	case DistributionError:
		return http.StatusFailedDependency
	case PriceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewBridgeError builds an Error whose status code is derived from the error code.
func NewBridgeError(errorCode ErrorCode, msg string) *Error {
	return NewErrorWithMsg(StatusCodeFor(errorCode), errorCode, msg)
}

// IsErrorCode reports whether err is a *Error carrying the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.ErrorCode == code
	}
	return false
}
