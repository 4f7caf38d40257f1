package authflow

import (
	"context"
	"strings"

	"github.com/jrsteele09/brightpath-auth/apiclient"
	"github.com/jrsteele09/brightpath-auth/navigation"
)

// Registration is the sign-up form.
type Registration struct {
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
}

func (r Registration) complete() bool {
	return strings.TrimSpace(r.Username) != "" &&
		strings.TrimSpace(r.Email) != "" &&
		r.Password != "" &&
		r.PasswordConfirmation != ""
}

// Register creates an account. Password matching and uniqueness are left to
// the backend, whose field errors are returned in Result.FieldErrors.
func (c *Controller) Register(ctx context.Context, reg Registration) Result {
	if !reg.complete() {
		return failure(ErrMissingFields, "All fields are required.")
	}

	resp, err := c.api.Register(ctx, apiclient.RegistrationRequest{
		Username:             reg.Username,
		Email:                reg.Email,
		Password:             reg.Password,
		PasswordConfirmation: reg.PasswordConfirmation,
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("username", reg.Username).Msg("registration failed")
		return apiFailure(ctx, err, networkFallback)
	}
	if ctx.Err() != nil {
		return failure(ctx.Err(), cancelledMsg)
	}

	msg := resp.Detail
	if msg == "" {
		msg = "User registered successfully!"
	}
	c.scheduleRedirect(navigation.Login, c.delays.Register)
	c.logger.Info().Str("username", reg.Username).Msg("user registered")
	return Result{
		Message:       msg,
		Redirect:      navigation.Login,
		RedirectAfter: c.delays.Register,
		ClearForm:     true,
	}
}
