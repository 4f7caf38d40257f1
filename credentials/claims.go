package credentials

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// AccessTokenExpiry decodes the exp claim of the access token without
// verifying its signature. It is informational only; nothing refreshes or
// rejects a token based on it. ok is false when the token is absent, not a
// JWT, or carries no exp claim.
func (s Session) AccessTokenExpiry() (expiry time.Time, ok bool) {
	if s.AccessToken == "" {
		return time.Time{}, false
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(s.AccessToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
