package credentials

import (
	"github.com/jrsteele09/brightpath-auth/roles"
)

// Key is the name a session field is persisted under.
type Key string

const (
	AccessTokenKey  Key = "access"
	RefreshTokenKey Key = "refresh"
	RoleKey         Key = "role"
	UsernameKey     Key = "username"
)

// Keys lists every persisted key.
var Keys = []Key{AccessTokenKey, RefreshTokenKey, RoleKey, UsernameKey}

// Session is the persisted credential snapshot. An empty field means the key
// is absent from the store.
type Session struct {
	// Short-lived bearer credential; its presence means "logged in".
	AccessToken string
	// Longer-lived credential, kept but never exercised by any flow.
	RefreshToken string
	// Resolved role, always in normalised form.
	Role roles.Role
	// Username reported by the profile endpoint.
	Username string
}

// LoggedIn reports whether the session carries an access token. Role and
// username may still be unresolved.
func (s Session) LoggedIn() bool {
	return s.AccessToken != ""
}

// IsZero reports whether no key is set.
func (s Session) IsZero() bool {
	return s == Session{}
}

// Merge returns s with every non-empty field of fields applied on top.
func (s Session) Merge(fields Session) Session {
	if fields.AccessToken != "" {
		s.AccessToken = fields.AccessToken
	}
	if fields.RefreshToken != "" {
		s.RefreshToken = fields.RefreshToken
	}
	if fields.Role != roles.Unknown {
		s.Role = roles.Normalize(string(fields.Role))
	}
	if fields.Username != "" {
		s.Username = fields.Username
	}
	return s
}

// ToMap returns the key/value form, omitting absent keys.
func (s Session) ToMap() map[Key]string {
	m := make(map[Key]string, len(Keys))
	set := func(k Key, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set(AccessTokenKey, s.AccessToken)
	set(RefreshTokenKey, s.RefreshToken)
	set(RoleKey, string(roles.Normalize(string(s.Role))))
	set(UsernameKey, s.Username)
	return m
}

// FromMap builds a Session from its key/value form. Unknown keys are ignored.
func FromMap(m map[Key]string) Session {
	return Session{
		AccessToken:  m[AccessTokenKey],
		RefreshToken: m[RefreshTokenKey],
		Role:         roles.Normalize(m[RoleKey]),
		Username:     m[UsernameKey],
	}
}
