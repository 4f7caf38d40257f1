package authflow

import (
	"context"
	"time"

	"github.com/jrsteele09/brightpath-auth/apiclient"
	"github.com/jrsteele09/brightpath-auth/navigation"
	"github.com/pkg/errors"
)

const (
	networkFallback = "Network or server error."
	cancelledMsg    = "Request cancelled."
)

// Result is what a flow resolves to.
type Result struct {
	// Message is the text to show the user, for success and failure alike.
	Message string
	// Err is nil on success.
	Err error
	// Redirect is where the user was (or will be, see RedirectAfter) sent.
	Redirect navigation.Route
	// RedirectAfter is non-zero when Redirect is scheduled rather than immediate.
	RedirectAfter time.Duration
	// FieldErrors holds the server's per-field validation errors as sent.
	FieldErrors map[string][]string
	// ClearForm tells the caller to reset its input fields.
	ClearForm bool
}

// OK reports whether the flow succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

func failure(err error, message string) Result {
	return Result{Err: err, Message: message}
}

// apiFailure converts a client error using the shared normalisation policy.
func apiFailure(ctx context.Context, err error, fallback string) Result {
	if ctx.Err() != nil {
		return failure(ctx.Err(), cancelledMsg)
	}
	res := failure(err, apiclient.Message(err, fallback))

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		res.FieldErrors = fieldErrors(apiErr.Body)
	}
	return res
}

func fieldErrors(body apiclient.ErrorBody) map[string][]string {
	if len(body.FieldErrors) == 0 && len(body.NonFieldErrors) == 0 {
		return nil
	}
	out := make(map[string][]string, len(body.FieldErrors)+1)
	for k, v := range body.FieldErrors {
		out[k] = v
	}
	if len(body.NonFieldErrors) > 0 {
		out["non_field_errors"] = body.NonFieldErrors
	}
	return out
}
