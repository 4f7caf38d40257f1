package authflow

import (
	"context"

	"github.com/jrsteele09/brightpath-auth/navigation"
	"github.com/pkg/errors"
)

// Logout clears the stored session and returns to the login page. Logging
// out twice is harmless.
func (c *Controller) Logout(ctx context.Context) Result {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error().Err(err).Msg("failed to clear credentials")
		return failure(errors.Wrap(err, "[Controller Logout] clear credentials"), "Could not log out.")
	}
	c.nav.Navigate(navigation.Login, false)
	return Result{Message: "Logged out.", Redirect: navigation.Login}
}
