package apiclient

import "github.com/jrsteele09/brightpath-auth/internal/utils"

// TokenRequest is posted to the token endpoint.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by the token endpoint. Both fields are pointers
// so an absent token can be told apart from a present one.
type TokenResponse struct {
	// AccessToken is the short-lived bearer credential (a JWT).
	AccessToken *string `json:"access,omitempty"`

	// RefreshToken is the longer-lived credential; stored, never exercised.
	RefreshToken *string `json:"refresh,omitempty"`
}

// Complete reports whether both tokens were issued.
func (r TokenResponse) Complete() bool {
	return utils.Present(r.AccessToken) && utils.Present(r.RefreshToken)
}

// Profile is returned by the profile endpoint. Role is sent as the backend
// stores it (e.g. "INSTRUCTOR") and must be normalised by the caller.
type Profile struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// RegistrationRequest is posted to the register endpoint. The backend checks
// that the passwords match and that username and email are unique.
type RegistrationRequest struct {
	Username             string `json:"username"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password2"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest carries the reset link components verbatim.
type ResetPasswordRequest struct {
	UserIDEncoded string `json:"uidb64"`
	Token         string `json:"token"`
	Password      string `json:"password"`
}

// DetailResponse is the confirmation body of the register and password endpoints.
type DetailResponse struct {
	Detail string `json:"detail"`
}
