package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/brightpath-auth/credentials"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Client is a thin transport over the BrightPath REST API. Every call is a
// single attempt with no retries. Calls are bounded by the caller's context
// and by the http.Client timeout, if one is set.
type Client struct {
	baseURL    *url.URL
	store      credentials.Store
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its transport is
// wrapped to stamp request IDs.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

type bearerKey struct{}

// WithBearer returns a context whose authenticated calls use token instead of
// the stored access token.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

// New creates a client for the API rooted at baseURL (e.g. http://localhost:8000/api).
func New(baseURL string, store credentials.Store, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[apiclient New] baseURL is required")
	}
	if store == nil {
		return nil, errors.New("[apiclient New] store is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, errors.Wrap(err, "[apiclient New] invalid baseURL")
	}

	c := &Client{
		baseURL:    u,
		store:      store,
		httpClient: &http.Client{},
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		return nil, errors.New("[apiclient New] http client is required")
	}

	hc := *c.httpClient
	hc.Transport = &requestIDTransport{next: hc.Transport, logger: c.logger}
	c.httpClient = &hc
	return c, nil
}

// Do sends one request. body, when non-nil, is JSON encoded; a 2xx response
// is decoded into out when out is non-nil. When authenticated is set the
// bearer token is read at call time; with no token the request goes out
// unauthenticated and any rejection comes from the server.
func (c *Client) Do(ctx context.Context, method, path string, body any, authenticated bool, out any) error {
	endpoint, err := c.baseURL.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return errors.Wrapf(err, "[Client Do] invalid path %q", path)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client Do] encode body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return errors.Wrap(err, "[Client Do] build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authenticated {
		token, err := c.bearerToken(ctx)
		if err != nil {
			return err
		}
		if token != "" {
			(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: ParseErrorBody(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(ErrMalformedResponse, "[Client Do] %s %s: %v", method, path, err)
	}
	return nil
}

func (c *Client) bearerToken(ctx context.Context) (string, error) {
	if token, ok := ctx.Value(bearerKey{}).(string); ok {
		return token, nil
	}
	session, err := c.store.Read(ctx)
	if err != nil {
		return "", errors.Wrap(err, "[Client bearerToken] read credentials")
	}
	return session.AccessToken, nil
}
