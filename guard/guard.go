// Package guard gates protected views on the stored session. It trusts the
// stored role and never calls the backend.
package guard

import (
	"context"

	"github.com/jrsteele09/brightpath-auth/credentials"
	"github.com/jrsteele09/brightpath-auth/navigation"
	"github.com/jrsteele09/brightpath-auth/roles"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Reason explains a denial.
type Reason int

const (
	None            Reason = iota // Access allowed
	Unauthenticated               // No access token stored
	Forbidden                     // Role absent or outside the allow-set
)

func (r Reason) String() string {
	switch r {
	case None:
		return "none"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// Decision is the outcome of a check.
type Decision struct {
	Allowed bool
	Reason  Reason
	// Role is the stored role the decision was made on.
	Role roles.Role
}

// Allow returns an allowing decision.
func Allow(role roles.Role) Decision {
	return Decision{Allowed: true, Role: role}
}

// Deny returns a denying decision.
func Deny(reason Reason, role roles.Role) Decision {
	return Decision{Reason: reason, Role: role}
}

// View is a protected page and the roles that may open it. An empty
// Allowed set admits any authenticated user.
type View struct {
	Route   navigation.Route
	Allowed roles.AllowSet
}

var (
	InstructorDashboardView = View{Route: navigation.InstructorDashboard, Allowed: roles.InstructorViews}
	AdminDashboardView      = View{Route: navigation.AdminDashboard, Allowed: roles.AdminViews}
)

// Guard checks stored credentials against a view's requirements.
type Guard struct {
	store  credentials.Store
	logger zerolog.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithLogger sets the guard's logger.
func WithLogger(logger zerolog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = logger
	}
}

// New creates a Guard.
func New(store credentials.Store, options ...GuardOption) (*Guard, error) {
	if store == nil {
		return nil, errors.New("[guard New] store is required")
	}
	g := &Guard{store: store, logger: log.Logger}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// Check decides whether the stored session satisfies required.
func (g *Guard) Check(ctx context.Context, required roles.AllowSet) Decision {
	stored, err := g.store.Read(ctx)
	if err != nil {
		g.logger.Error().Err(err).Msg("guard could not read credentials")
		return Deny(Unauthenticated, roles.Unknown)
	}
	if !stored.LoggedIn() {
		return Deny(Unauthenticated, roles.Unknown)
	}
	if len(required) > 0 && !required.Contains(stored.Role) {
		return Deny(Forbidden, stored.Role)
	}
	return Allow(stored.Role)
}

// Enter guards view and navigates: to the view when allowed, otherwise to
// the login page without leaving the protected route in history.
func (g *Guard) Enter(ctx context.Context, nav navigation.Navigator, view View) Decision {
	d := g.Check(ctx, view.Allowed)
	if !d.Allowed {
		g.logger.Debug().Str("route", string(view.Route)).Stringer("required", view.Allowed).Stringer("reason", d.Reason).Msg("view denied")
		nav.Navigate(navigation.Login, true)
		return d
	}
	nav.Navigate(view.Route, false)
	return d
}
