package jamf

import (
	"errors"
	"fmt"
)

// ErrNoCredentials is returned when a login is needed but the username or
// password is missing. That covers a username without a password, and an
// API token that has expired with no password configured to replace it.
var ErrNoCredentials = errors.New("no credentials configured")

// ErrInvalidated is returned for requests on a session after Invalidate.
var ErrInvalidated = errors.New("session has been invalidated")

// AuthError reports a failed login, a rejected token or an unreachable
// server during authentication.
type AuthError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("jamf auth %s: %v", e.Op, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("jamf auth %s: server returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("jamf auth %s failed", e.Op)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NotFoundError reports that no object matches the given field value.
type NotFoundError struct {
	Kind  string // "" for a device, otherwise building, department, site, prestage or profile
	Field string // id, serial, udid, name, asset_tag
	Value string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s with %s %q", e.What(), e.Field, e.Value)
}

// What names the kind of object that was not found.
func (e *NotFoundError) What() string {
	if e.Kind == "" {
		return "device"
	}
	return e.Kind
}

// ValidationError reports input rejected locally or by the server.
type ValidationError struct {
	Field      string
	Value      string
	Message    string
	StatusCode int // zero when rejected before sending
}

func (e *ValidationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("invalid %s %q: %s (status %d)", e.Field, e.Value, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
}

// SchemaError reports a server response that does not have the expected
// shape, such as a device without an id.
type SchemaError struct {
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected response schema at %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("unexpected response schema: missing %s", e.Field)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// APIError is any other non-success response.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jamf API %s %s returned %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsAuth reports whether err is or wraps an *AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
