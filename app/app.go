// Package app is the composition root: it owns the single credential store
// and wires the API client, resolver, flows and guard around it.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/brightpath-auth/apiclient"
	"github.com/jrsteele09/brightpath-auth/authflow"
	"github.com/jrsteele09/brightpath-auth/credentials"
	"github.com/jrsteele09/brightpath-auth/credentials/redisstore"
	"github.com/jrsteele09/brightpath-auth/guard"
	"github.com/jrsteele09/brightpath-auth/internal/config"
	"github.com/jrsteele09/brightpath-auth/internal/logging"
	"github.com/jrsteele09/brightpath-auth/navigation"
	"github.com/jrsteele09/brightpath-auth/session"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisPingTimeout = 3 * time.Second

type App struct {
	Config    config.Config
	Logger    zerolog.Logger
	Store     credentials.Store
	API       *apiclient.Client
	Navigator *navigation.History
	Resolver  *session.Resolver
	Flows     *authflow.Controller
	Guard     *guard.Guard

	logger      *zerolog.Logger
	startRoute  navigation.Route
	redisClient redis.UniversalClient
	ownsRedis   bool
}

type Option func(*App)

// WithLogger replaces the logger built from the config.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) {
		a.logger = &logger
	}
}

// WithStartRoute sets the page the navigator starts on (login by default).
func WithStartRoute(route navigation.Route) Option {
	return func(a *App) {
		a.startRoute = route
	}
}

// WithRedisClient supplies the client for the redis backend instead of
// dialling REDIS_ADDR. The caller keeps ownership.
func WithRedisClient(client redis.UniversalClient) Option {
	return func(a *App) {
		a.redisClient = client
	}
}

func New(cfg config.Config, options ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("[app New] config is required")
	}
	if err := config.Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "[app New] invalid config")
	}

	a := &App{Config: cfg, startRoute: navigation.Login}
	for _, opt := range options {
		opt(a)
	}
	if a.logger != nil {
		a.Logger = *a.logger
	} else {
		a.Logger = logging.New(cfg)
	}

	store, err := a.newStore()
	if err != nil {
		return nil, err
	}
	a.Store = store

	a.API, err = apiclient.New(cfg.GetAPIBaseURL(), store,
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.GetRequestTimeout()}),
		apiclient.WithLogger(a.Logger),
	)
	if err != nil {
		a.closeRedis()
		return nil, errors.Wrap(err, "[app New] api client")
	}

	a.Navigator = navigation.NewHistory(a.startRoute)

	if a.Resolver, err = session.NewResolver(store, a.API, a.Navigator, session.WithLogger(a.Logger)); err != nil {
		a.closeRedis()
		return nil, errors.Wrap(err, "[app New] resolver")
	}

	a.Flows, err = authflow.New(store, a.API, a.Navigator,
		authflow.WithLogger(a.Logger),
		authflow.WithDelays(authflow.Delays{
			Register:       cfg.GetRegisterRedirectDelay(),
			ForgotPassword: cfg.GetForgotPasswordRedirectDelay(),
			ResetPassword:  cfg.GetResetPasswordRedirectDelay(),
		}),
	)
	if err != nil {
		a.closeRedis()
		return nil, errors.Wrap(err, "[app New] auth flows")
	}

	if a.Guard, err = guard.New(store, guard.WithLogger(a.Logger)); err != nil {
		a.closeRedis()
		return nil, errors.Wrap(err, "[app New] guard")
	}

	a.Logger.Debug().Str("backend", cfg.GetCredentialBackend()).Str("profile", cfg.GetProfile()).Msg("app ready")
	return a, nil
}

func (a *App) newStore() (credentials.Store, error) {
	switch a.Config.GetCredentialBackend() {
	case config.BackendMemory:
		return credentials.NewInMemoryStore(), nil
	case config.BackendRedis:
		if a.redisClient == nil {
			a.redisClient = redis.NewClient(&redis.Options{
				Addr:     a.Config.GetRedisAddr(),
				Password: a.Config.GetRedisPassword(),
			})
			a.ownsRedis = true
		}
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if err := a.redisClient.Ping(ctx).Err(); err != nil {
			a.closeRedis()
			return nil, errors.Wrapf(err, "[app newStore] redis at %s", a.Config.GetRedisAddr())
		}
		store, err := redisstore.New(a.redisClient, a.Config.GetProfile())
		if err != nil {
			a.closeRedis()
			return nil, errors.Wrap(err, "[app newStore] redis store")
		}
		return store, nil
	default:
		store, err := credentials.NewFileStore(a.Config.GetCredentialFile(), credentials.WithLogger(a.Logger))
		if err != nil {
			return nil, errors.Wrap(err, "[app newStore] file store")
		}
		return store, nil
	}
}

// Close cancels pending redirects and releases the store backend.
func (a *App) Close() error {
	if a.Flows != nil {
		a.Flows.Close()
	}
	return a.closeRedis()
}

func (a *App) closeRedis() error {
	if !a.ownsRedis || a.redisClient == nil {
		return nil
	}
	a.ownsRedis = false
	if err := a.redisClient.Close(); err != nil {
		return errors.Wrap(err, "[App Close] redis")
	}
	return nil
}
