package authflow

import (
	"context"
	"strings"

	"github.com/jrsteele09/brightpath-auth/apiclient"
	"github.com/jrsteele09/brightpath-auth/navigation"
)

// ForgotPassword asks the backend to email a reset link.
func (c *Controller) ForgotPassword(ctx context.Context, email string) Result {
	if strings.TrimSpace(email) == "" {
		return failure(ErrMissingFields, "Email is required.")
	}

	_, err := c.api.ForgotPassword(ctx, apiclient.ForgotPasswordRequest{Email: email})
	if err != nil {
		c.logger.Warn().Err(err).Msg("forgot password request failed")
		return apiFailure(ctx, err, "Something went wrong.")
	}
	if ctx.Err() != nil {
		return failure(ctx.Err(), cancelledMsg)
	}

	c.scheduleRedirect(navigation.Login, c.delays.ForgotPassword)
	return Result{
		Message:       "Check your email for the reset link.",
		Redirect:      navigation.Login,
		RedirectAfter: c.delays.ForgotPassword,
		ClearForm:     true,
	}
}

// ResetPassword sets a new password using the components of a reset link.
// Nothing is sent when the link is incomplete or the passwords differ.
func (c *Controller) ResetPassword(ctx context.Context, link navigation.ResetLink, password, confirmation string) Result {
	if !link.Complete() {
		return failure(ErrInvalidResetLink, "Invalid reset link. Missing parameters.")
	}
	if password != confirmation {
		return failure(ErrPasswordMismatch, "Passwords do not match.")
	}
	if password == "" {
		return failure(ErrMissingFields, "Password is required.")
	}

	resp, err := c.api.ResetPassword(ctx, apiclient.ResetPasswordRequest{
		UserIDEncoded: link.UserIDEncoded,
		Token:         link.Token,
		Password:      password,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("password reset failed")
		return apiFailure(ctx, err, "Failed to reset password. Link may be invalid or expired.")
	}
	if ctx.Err() != nil {
		return failure(ctx.Err(), cancelledMsg)
	}

	msg := resp.Detail
	if msg == "" {
		msg = "Password reset successful!"
	}
	c.scheduleRedirect(navigation.Login, c.delays.ResetPassword)
	return Result{
		Message:       msg,
		Redirect:      navigation.Login,
		RedirectAfter: c.delays.ResetPassword,
		ClearForm:     true,
	}
}
