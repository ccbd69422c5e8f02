package directory

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the session or credentials are rejected.
	ErrUnauthorized = errors.New("directory rejected the credentials")
	// ErrUserNotFound is returned for unknown user ids.
	ErrUserNotFound = errors.New("directory user not found")
	// ErrInvalidKey is returned when no user id can be extracted from a key.
	ErrInvalidKey = errors.New("no user id in resolution key")
	// ErrTwoFactorUnsupported is returned when the account only offers email codes.
	ErrTwoFactorUnsupported = errors.New("account requires a two-factor method other than TOTP")
	// ErrTwoFactorFailed is returned when the TOTP code was not accepted.
	ErrTwoFactorFailed = errors.New("two-factor verification failed")
	// ErrMissingTOTPSecret is returned when a TOTP challenge arrives without a configured secret.
	ErrMissingTOTPSecret = errors.New("two-factor authentication required but no TOTP secret configured")
	// ErrEmptyDisplayName is returned when the directory reports a user without a name.
	ErrEmptyDisplayName = errors.New("directory returned an empty display name")
)

// StatusError is an unexpected HTTP status from the directory.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Retryable reports whether the request may succeed when repeated.
func (e *StatusError) Retryable() bool {
	return e.Status == 429 || e.Status >= 500
}
