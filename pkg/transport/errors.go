package transport

import (
	"errors"
	"fmt"
)

// errNoAuthentication is the message carried by AuthenticationError when a
// request is attempted before SetAuthentication.
const errNoAuthentication = "Can not perform API Request without Authentication"

// AuthenticationError is returned when a request is attempted without credentials.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

// HTTPError wraps a failure reported by the underlying sender.
type HTTPError struct {
	Message string
	// Code is the status code reported alongside the failure, 0 when the
	// request never produced a response.
	Code int
	Err  error
}

func (e *HTTPError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("http error (%d): %s", e.Code, e.Message)
	}
	return "http error: " + e.Message
}

func (e *HTTPError) Unwrap() error { return e.Err }

// IsAuthenticationError reports whether err is, or wraps, an AuthenticationError.
func IsAuthenticationError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// IsHTTPError reports whether err is, or wraps, an HTTPError.
func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// codedError is implemented by sender errors that know the response status.
type codedError interface {
	Code() int
}

func newHTTPError(err error) *HTTPError {
	httpErr := &HTTPError{Message: err.Error(), Err: err}
	var coded codedError
	if errors.As(err, &coded) {
		httpErr.Code = coded.Code()
	}
	return httpErr
}
