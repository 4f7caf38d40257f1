package apiclient

import (
	"context"
	"net/http"
)

// Endpoint paths, relative to the API root.
const (
	TokenPath          = "/auth/token/"
	ProfilePath        = "/auth/profile/"
	RegisterPath       = "/auth/register/"
	ForgotPasswordPath = "/auth/forgot-password/"
	ResetPasswordPath  = "/auth/reset-password/"
)

// ObtainToken exchanges credentials for an access/refresh token pair. The
// response is returned as sent; callers must check Complete.
func (c *Client) ObtainToken(ctx context.Context, req TokenRequest) (TokenResponse, error) {
	var resp TokenResponse
	err := c.Do(ctx, http.MethodPost, TokenPath, req, false, &resp)
	return resp, err
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	var resp Profile
	err := c.Do(ctx, http.MethodGet, ProfilePath, nil, true, &resp)
	return resp, err
}

func (c *Client) Register(ctx context.Context, req RegistrationRequest) (DetailResponse, error) {
	var resp DetailResponse
	err := c.Do(ctx, http.MethodPost, RegisterPath, req, false, &resp)
	return resp, err
}

func (c *Client) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (DetailResponse, error) {
	var resp DetailResponse
	err := c.Do(ctx, http.MethodPost, ForgotPasswordPath, req, false, &resp)
	return resp, err
}

func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (DetailResponse, error) {
	var resp DetailResponse
	err := c.Do(ctx, http.MethodPost, ResetPasswordPath, req, false, &resp)
	return resp, err
}
