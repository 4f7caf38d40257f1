package navigation

import (
	"sync"

	"github.com/jrsteele09/brightpath-auth/roles"
)

// Route identifies a page of the application.
type Route string

const (
	Login               Route = "/login"
	Register            Route = "/register"
	ForgotPassword      Route = "/forgot-password"
	ResetPassword       Route = "/reset-password"
	InstructorDashboard Route = "/dashboard"
	AdminDashboard      Route = "/admin-dashboard"
)

// LandingRoute returns the dashboard a role lands on after authentication.
// Roles outside the routed set have no landing route.
func LandingRoute(role roles.Role) (Route, bool) {
	switch roles.Normalize(string(role)) {
	case roles.Instructor:
		return InstructorDashboard, true
	case roles.Admin, roles.Manager:
		return AdminDashboard, true
	}
	return "", false
}

// IsEntry reports whether the route is an entry page, i.e. one a resolved
// session should be moved away from.
func IsEntry(route Route) bool {
	return route == Login
}

// Navigator moves the user between pages.
type Navigator interface {
	// Navigate moves to route. replace drops the current page from history.
	Navigate(route Route, replace bool)
	// Current returns the page the user is on.
	Current() Route
}

// Visit is one recorded navigation.
type Visit struct {
	Route   Route
	Replace bool
}

// History is a Navigator that records where the user went.
// It is safe for concurrent use.
type History struct {
	mu     sync.RWMutex
	visits []Visit
	start  Route
}

var _ Navigator = (*History)(nil)

// NewHistory creates a History positioned on start.
func NewHistory(start Route) *History {
	return &History{start: start}
}

func (h *History) Navigate(route Route, replace bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.visits = append(h.visits, Visit{Route: route, Replace: replace})
}

func (h *History) Current() Route {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.visits) == 0 {
		return h.start
	}
	return h.visits[len(h.visits)-1].Route
}

// Visits returns a copy of the recorded navigations, oldest first.
func (h *History) Visits() []Visit {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Visit, len(h.visits))
	copy(out, h.visits)
	return out
}
