package authflow

import (
	"context"
	"strings"

	"github.com/jrsteele09/brightpath-auth/apiclient"
	"github.com/jrsteele09/brightpath-auth/credentials"
	"github.com/jrsteele09/brightpath-auth/internal/utils"
	"github.com/jrsteele09/brightpath-auth/navigation"
	"github.com/jrsteele09/brightpath-auth/roles"
	"github.com/pkg/errors"
)

// Credentials are what the user types into the login form.
type Credentials struct {
	Username string
	Password string
}

// Login exchanges credentials for tokens, persists them, fetches the
// profile and routes the user to their landing page.
//
// Tokens are persisted before the profile call, so a profile failure leaves
// the user holding valid tokens but no role.
func (c *Controller) Login(ctx context.Context, creds Credentials) Result {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return failure(ErrMissingFields, "Username and password are required.")
	}

	tokens, err := c.api.ObtainToken(ctx, apiclient.TokenRequest{Username: creds.Username, Password: creds.Password})
	if err != nil {
		c.logger.Warn().Err(err).Str("username", creds.Username).Msg("token request failed")
		return apiFailure(ctx, err, networkFallback)
	}
	if ctx.Err() != nil {
		return failure(ctx.Err(), cancelledMsg)
	}
	if !tokens.Complete() {
		return failure(ErrMalformedResponse, "Invalid server response: tokens missing.")
	}

	access := utils.Value(tokens.AccessToken)
	err = c.store.Update(ctx, func(credentials.Session) (credentials.Session, error) {
		return credentials.Session{AccessToken: access, RefreshToken: utils.Value(tokens.RefreshToken)}, nil
	})
	if err != nil {
		return failure(errors.Wrap(err, "[Controller Login] persist tokens"), networkFallback)
	}

	profile, err := c.api.Profile(apiclient.WithBearer(ctx, access))
	if err != nil {
		c.logger.Warn().Err(err).Str("username", creds.Username).Msg("profile request failed after login")
		return apiFailure(ctx, err, networkFallback)
	}
	if ctx.Err() != nil {
		return failure(ctx.Err(), cancelledMsg)
	}

	role := roles.Normalize(profile.Role)
	changed := false
	err = c.store.Update(ctx, func(current credentials.Session) (credentials.Session, error) {
		if current.AccessToken != access {
			changed = true
			return current, credentials.ErrSkipUpdate
		}
		current.Role = role
		current.Username = profile.Username
		return current, nil
	})
	if err != nil {
		return failure(errors.Wrap(err, "[Controller Login] persist profile"), networkFallback)
	}
	if changed {
		return failure(ErrSessionChanged, "Your session changed while signing in. Please try again.")
	}

	route, ok := navigation.LandingRoute(role)
	if !ok {
		return failure(&UnknownRoleError{Value: profile.Role}, "Unknown user role: "+profile.Role)
	}

	c.nav.Navigate(route, true)
	c.logger.Info().Str("username", profile.Username).Str("role", string(role)).Msg("logged in")
	return Result{Message: "Welcome, " + profile.Username + ".", Redirect: route}
}
