package session

import (
	"errors"
	"fmt"
)

// ErrNoToken is wrapped by the AuthenticationError returned when an
// authenticated request is attempted without a stored token.
var ErrNoToken = errors.New("No authentication token found")

const (
	loginFailedMessage    = "Login failed"
	signupFailedMessage   = "Signup failed"
	sessionExpiredMessage = "Session expired. Please log in again."
)

// AuthenticationError reports bad credentials, a server-reported failure or
// a missing token. StatusCode is zero when no response was involved.
type AuthenticationError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// SessionExpiredError is returned when the server rejects the stored token.
type SessionExpiredError struct {
	URL string
}

func (e *SessionExpiredError) Error() string {
	return sessionExpiredMessage
}

// IsSessionExpired reports whether err is, or wraps, a SessionExpiredError.
func IsSessionExpired(err error) bool {
	var expired *SessionExpiredError
	return errors.As(err, &expired)
}

func newServerError(statusCode int, message, fallback string) *AuthenticationError {
	if message == "" {
		message = fallback
	}
	return &AuthenticationError{
		Message:    message,
		StatusCode: statusCode,
		Err:        fmt.Errorf("unexpected status %d", statusCode),
	}
}
