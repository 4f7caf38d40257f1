package navigation

import (
	"net/url"

	"github.com/pkg/errors"
)

const (
	resetUserParam  = "uidb64"
	resetTokenParam = "token"
)

// ResetLink is the token pair carried by a password-reset URL. Both values are
// opaque and forwarded to the backend exactly as received.
type ResetLink struct {
	UserIDEncoded string
	Token         string
}

// ParseResetLink extracts the reset parameters from a navigation URL.
// Missing parameters are left empty; use Complete to check them.
func ParseResetLink(rawURL string) (ResetLink, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ResetLink{}, errors.Wrap(err, "[ParseResetLink] invalid url")
	}
	return ResetLinkFromQuery(u.Query()), nil
}

// ResetLinkFromQuery reads the reset parameters from already parsed query values.
func ResetLinkFromQuery(q url.Values) ResetLink {
	return ResetLink{
		UserIDEncoded: q.Get(resetUserParam),
		Token:         q.Get(resetTokenParam),
	}
}

// Complete reports whether both components are present.
func (l ResetLink) Complete() bool {
	return l.UserIDEncoded != "" && l.Token != ""
}
