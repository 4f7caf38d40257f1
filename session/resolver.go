// Package session decides, when the entry page loads, whether stored
// credentials still represent a valid session and where that session lands.
package session

import (
	"context"
	"sync"

	"github.com/jrsteele09/brightpath-auth/apiclient"
	"github.com/jrsteele09/brightpath-auth/credentials"
	"github.com/jrsteele09/brightpath-auth/navigation"
	"github.com/jrsteele09/brightpath-auth/roles"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// State is the outcome of a resolution.
type State int

const (
	// Anonymous means no access token was stored; nothing was fetched.
	Anonymous State = iota
	// Authenticated means the stored token was accepted and role/username were written.
	Authenticated
	// Invalidated means the profile fetch failed and the store was cleared.
	Invalidated
	// Superseded means the credentials changed while the profile was in
	// flight (e.g. a login completed); the result was discarded.
	Superseded
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case Invalidated:
		return "invalidated"
	case Superseded:
		return "superseded"
	}
	return "unknown"
}

// Resolution describes what Resolve found and did.
type Resolution struct {
	State    State
	Role     roles.Role
	Username string
	// Redirect is the landing route navigated to, empty if none.
	Redirect navigation.Route
}

// ProfileFetcher is the part of the API client the resolver needs.
type ProfileFetcher interface {
	Profile(ctx context.Context) (apiclient.Profile, error)
}

// Resolver validates stored credentials against the profile endpoint.
type Resolver struct {
	store  credentials.Store
	api    ProfileFetcher
	nav    navigation.Navigator
	logger zerolog.Logger
	group  singleflight.Group
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the resolver's logger.
func WithLogger(logger zerolog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver.
func NewResolver(store credentials.Store, api ProfileFetcher, nav navigation.Navigator, options ...ResolverOption) (*Resolver, error) {
	if store == nil {
		return nil, errors.New("[NewResolver] store is required")
	}
	if api == nil {
		return nil, errors.New("[NewResolver] api is required")
	}
	if nav == nil {
		return nil, errors.New("[NewResolver] navigator is required")
	}

	r := &Resolver{
		store:  store,
		api:    api,
		nav:    nav,
		logger: log.Logger,
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// Resolve validates the stored session. Profile failures are not returned:
// they clear the store and yield Invalidated. The returned error covers
// store failures and cancellation only.
//
// Concurrent calls share a single profile request; callers joining an
// in-flight resolution receive its result. The request runs detached from
// any one caller, so a caller that gives up does not fail the others. A
// cancelled caller never touches the store.
func (r *Resolver) Resolve(ctx context.Context) (Resolution, error) {
	ch := r.group.DoChan("resolve", func() (any, error) {
		return r.fetch(context.WithoutCancel(ctx))
	})

	var f *flight
	select {
	case <-ctx.Done():
		return Resolution{}, errors.Wrap(ctx.Err(), "[Resolver Resolve] cancelled")
	case res := <-ch:
		if res.Err != nil {
			return Resolution{}, res.Err
		}
		f = res.Val.(*flight)
	}
	if err := ctx.Err(); err != nil {
		return Resolution{}, errors.Wrap(err, "[Resolver Resolve] cancelled")
	}
	if f.token == "" {
		return Resolution{State: Anonymous}, nil
	}

	f.once.Do(func() {
		f.res, f.resErr = r.apply(ctx, f)
	})
	return f.res, f.resErr
}

// flight is one shared profile fetch. The first caller still waiting when
// it lands applies it; the others receive the same Resolution.
type flight struct {
	token      string
	profile    apiclient.Profile
	profileErr error

	once   sync.Once
	res    Resolution
	resErr error
}

func (r *Resolver) fetch(ctx context.Context) (*flight, error) {
	stored, err := r.store.Read(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[Resolver fetch] read credentials")
	}
	if !stored.LoggedIn() {
		return &flight{}, nil
	}
	if exp, ok := stored.AccessTokenExpiry(); ok {
		r.logger.Debug().Time("expires_at", exp).Msg("resolving stored session")
	}

	f := &flight{token: stored.AccessToken}
	f.profile, f.profileErr = r.api.Profile(apiclient.WithBearer(ctx, f.token))
	return f, nil
}

func (r *Resolver) apply(ctx context.Context, f *flight) (Resolution, error) {
	if f.profileErr != nil {
		return r.invalidate(ctx, f.token, f.profileErr)
	}

	token, profile := f.token, f.profile
	role := roles.Normalize(profile.Role)
	superseded := false
	err := r.store.Update(ctx, func(current credentials.Session) (credentials.Session, error) {
		if current.AccessToken != token {
			superseded = true
			return current, credentials.ErrSkipUpdate
		}
		current.Role = role
		current.Username = profile.Username
		return current, nil
	})
	if err != nil {
		return Resolution{}, errors.Wrap(err, "[Resolver apply] write profile")
	}
	if superseded {
		r.logger.Debug().Msg("credentials changed during resolution, result discarded")
		return Resolution{State: Superseded}, nil
	}

	res := Resolution{State: Authenticated, Role: role, Username: profile.Username}
	if route, ok := navigation.LandingRoute(role); ok && navigation.IsEntry(r.nav.Current()) {
		r.nav.Navigate(route, true)
		res.Redirect = route
	}
	r.logger.Info().Str("username", profile.Username).Str("role", string(role)).Msg("session resolved")
	return res, nil
}

// invalidate clears the credentials the failed profile call was made with.
func (r *Resolver) invalidate(ctx context.Context, token string, cause error) (Resolution, error) {
	r.logger.Warn().Err(cause).Msg("stored session rejected, clearing credentials")

	superseded := false
	err := r.store.Update(ctx, func(current credentials.Session) (credentials.Session, error) {
		if current.AccessToken != token {
			superseded = true
			return current, credentials.ErrSkipUpdate
		}
		return credentials.Session{}, nil
	})
	if err != nil {
		return Resolution{}, errors.Wrap(err, "[Resolver invalidate] clear credentials")
	}
	if superseded {
		return Resolution{State: Superseded}, nil
	}
	return Resolution{State: Invalidated}, nil
}
