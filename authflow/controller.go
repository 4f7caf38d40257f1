// Package authflow drives login, registration, logout and password recovery
// as independent request/response cycles. Flows never panic or return
// errors past their boundary: each resolves to a Result for its caller.
package authflow

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/brightpath-auth/apiclient"
	"github.com/jrsteele09/brightpath-auth/credentials"
	"github.com/jrsteele09/brightpath-auth/navigation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// API is the part of the API client the flows call.
type API interface {
	ObtainToken(ctx context.Context, req apiclient.TokenRequest) (apiclient.TokenResponse, error)
	Profile(ctx context.Context) (apiclient.Profile, error)
	Register(ctx context.Context, req apiclient.RegistrationRequest) (apiclient.DetailResponse, error)
	ForgotPassword(ctx context.Context, req apiclient.ForgotPasswordRequest) (apiclient.DetailResponse, error)
	ResetPassword(ctx context.Context, req apiclient.ResetPasswordRequest) (apiclient.DetailResponse, error)
}

// Delays are the pauses before a successful flow sends the user back to login.
type Delays struct {
	Register       time.Duration
	ForgotPassword time.Duration
	ResetPassword  time.Duration
}

// DefaultDelays match the confirmation screens of the web application.
var DefaultDelays = Delays{
	Register:       2 * time.Second,
	ForgotPassword: 5 * time.Second,
	ResetPassword:  3 * time.Second,
}

// Stopper cancels a scheduled function.
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Stopper

func timeAfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Controller runs the auth flows against one credential store and navigator.
type Controller struct {
	store     credentials.Store
	api       API
	nav       navigation.Navigator
	logger    zerolog.Logger
	delays    Delays
	afterFunc AfterFunc
	scope     context.Context

	mu      sync.Mutex
	closed  bool
	nextID  int
	pending map[int]pendingRedirect
	wg      sync.WaitGroup
}

type pendingRedirect struct {
	timer Stopper
	done  func()
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithDelays overrides the redirect delays.
func WithDelays(d Delays) ControllerOption {
	return func(c *Controller) {
		c.delays = d
	}
}

// WithLogger sets the controller's logger.
func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithAfterFunc replaces the timer used for delayed redirects (primarily for testing).
func WithAfterFunc(fn AfterFunc) ControllerOption {
	return func(c *Controller) {
		c.afterFunc = fn
	}
}

// WithScope binds delayed redirects to ctx: once it is done, pending
// redirects are cancelled as if Close had been called.
func WithScope(ctx context.Context) ControllerOption {
	return func(c *Controller) {
		c.scope = ctx
	}
}

// New creates a Controller.
func New(store credentials.Store, api API, nav navigation.Navigator, options ...ControllerOption) (*Controller, error) {
	if store == nil {
		return nil, errors.New("[authflow New] store is required")
	}
	if api == nil {
		return nil, errors.New("[authflow New] api is required")
	}
	if nav == nil {
		return nil, errors.New("[authflow New] navigator is required")
	}

	c := &Controller{
		store:     store,
		api:       api,
		nav:       nav,
		logger:    log.Logger,
		delays:    DefaultDelays,
		afterFunc: timeAfterFunc,
		pending:   make(map[int]pendingRedirect),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.scope != nil {
		context.AfterFunc(c.scope, c.Close)
	}
	return c, nil
}

// Close cancels every pending delayed redirect. Flows started afterwards
// still run but no longer schedule redirects.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, p := range c.pending {
		if p.timer.Stop() {
			p.done()
		}
		delete(c.pending, id)
	}
}

// Wait blocks until every pending redirect has fired or been cancelled.
func (c *Controller) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of scheduled redirects.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Controller) scheduleRedirect(route navigation.Route, delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	id := c.nextID
	c.nextID++
	c.wg.Add(1)
	var once sync.Once
	done := func() { once.Do(c.wg.Done) }

	timer := c.afterFunc(delay, func() {
		defer done()
		c.mu.Lock()
		_, live := c.pending[id]
		delete(c.pending, id)
		c.mu.Unlock()
		if live {
			c.nav.Navigate(route, false)
		}
	})
	c.pending[id] = pendingRedirect{timer: timer, done: done}
}
