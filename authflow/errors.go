package authflow

import (
	"fmt"

	"github.com/jrsteele09/brightpath-auth/apiclient"
	"github.com/pkg/errors"
)

var (
	// ErrMalformedResponse: the backend answered 2xx without the required fields.
	ErrMalformedResponse = apiclient.ErrMalformedResponse
	// ErrInvalidResetLink: the reset URL lacks uidb64 or token.
	ErrInvalidResetLink = errors.New("invalid reset link")
	// ErrPasswordMismatch: new password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrMissingFields: a required input was left empty.
	ErrMissingFields = errors.New("required fields missing")
	// ErrSessionChanged: the credentials were replaced or cleared while the
	// flow was waiting on the backend, so its result was not applied.
	ErrSessionChanged = errors.New("session changed during flow")
)

// UnknownRoleError is returned when the profile resolved to a role outside
// the routed set. Value is the role as the server sent it.
type UnknownRoleError struct {
	Value string
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("unknown user role: %q", e.Value)
}
