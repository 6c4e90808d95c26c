package utils

import (
	"errors"
	"net/http"
)

// Domain error kinds. Services wrap these with fmt.Errorf("...: %w", Err...)
// and handlers map them to HTTP status codes via ErrorStatus.
var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidDateRange      = errors.New("booking must span at least 24 hours")
	ErrDateConflict          = errors.New("vehicle is already booked for the selected dates")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrAlreadyExists         = errors.New("already exists")
	ErrExternalService       = errors.New("external service failure")
	ErrSignatureVerification = errors.New("webhook signature verification failed")
	ErrRateLimited           = errors.New("rate limit exceeded")
)

type errorKind struct {
	err    error
	status int
	code   string
}

var errorKinds = []errorKind{
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrInvalidDateRange, http.StatusBadRequest, "INVALID_DATE_RANGE"},
	{ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{ErrDateConflict, http.StatusConflict, "DATE_CONFLICT"},
	{ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
	{ErrExternalService, http.StatusBadGateway, "EXTERNAL_SERVICE_FAILURE"},
	{ErrSignatureVerification, http.StatusBadRequest, "SIGNATURE_VERIFICATION_FAILED"},
	{ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
}

// ErrorStatus returns the HTTP status and error code for err. Unknown
// errors map to 500 INTERNAL_ERROR.
func ErrorStatus(err error) (int, string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.status, k.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
