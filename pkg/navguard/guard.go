// Package navguard decides, per navigation attempt, whether a route may be
// entered under the current session state. It never races ahead of an
// in-flight session restoration.
package navguard

import (
	"context"

	"github.com/AshhadS/gymapp/pkg/apiclient"
	"github.com/AshhadS/gymapp/pkg/session"
)

type Route struct {
	Path         string
	RequiresAuth bool
	// Role restricts an authenticated route to one role; empty means any
	// authenticated principal.
	Role string
	// GuestOnly marks routes like login/signup that authenticated users
	// are bounced away from.
	GuestOnly bool
}

// DefaultRoutes mirrors the application's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/"},
		{Path: "/login", GuestOnly: true},
		{Path: "/signup", GuestOnly: true},
		{Path: "/client", RequiresAuth: true, Role: "client"},
		{Path: "/trainer", RequiresAuth: true, Role: "trainer"},
	}
}

type DecisionKind int

const (
	// Undetermined is returned only when the guard could not finish
	// waiting for session restoration.
	Undetermined DecisionKind = iota
	Allowed
	RedirectToLogin
	RedirectToOwnDashboard
)

type Decision struct {
	Kind DecisionKind
	// Target is the redirect destination for the two redirect kinds.
	Target string
	// ReturnTo preserves the originally requested path on login
	// redirects so the login flow can send the user back.
	ReturnTo string
}

// SessionCache is the slice of session.Cache the guard consults.
type SessionCache interface {
	Restore(ctx context.Context) (session.State, error)
	State() session.State
	Principal() *apiclient.Principal
}

type Guard struct {
	cache  SessionCache
	routes map[string]Route
}

func New(cache SessionCache, routes []Route) *Guard {
	table := make(map[string]Route, len(routes))
	for _, route := range routes {
		table[route.Path] = route
	}
	return &Guard{cache: cache, routes: table}
}

// DashboardFor maps a role to its dashboard path.
func DashboardFor(role string) string {
	return "/" + role
}

// Decide evaluates one navigation attempt. Checks run in a fixed order —
// authentication, then role, then guest-only — and the first failing check
// wins. A restoration still in flight suspends the decision; a suspension
// the caller abandons comes back Undetermined.
func (g *Guard) Decide(ctx context.Context, path string) (Decision, error) {
	// Always settle the session first so the decision never sees a stale
	// Empty while a stored credential is being revalidated. Verification
	// failure is not an error here, just an unauthenticated session.
	state, err := g.cache.Restore(ctx)
	if err != nil && state == session.StateRestoring {
		return Decision{Kind: Undetermined}, err
	}

	route, known := g.routes[path]
	if !known {
		return Decision{Kind: Allowed}, nil
	}

	authed := state == session.StateAuthenticated
	principal := g.cache.Principal()

	if route.RequiresAuth && (!authed || principal == nil) {
		return Decision{Kind: RedirectToLogin, Target: "/login", ReturnTo: path}, nil
	}

	if route.RequiresAuth && route.Role != "" && principal.Role != route.Role {
		own := DashboardFor(principal.Role)
		if own == path {
			return Decision{Kind: Allowed}, nil
		}
		return Decision{Kind: RedirectToOwnDashboard, Target: own}, nil
	}

	if route.GuestOnly && authed && principal != nil {
		own := DashboardFor(principal.Role)
		if own == path {
			return Decision{Kind: Allowed}, nil
		}
		return Decision{Kind: RedirectToOwnDashboard, Target: own}, nil
	}

	return Decision{Kind: Allowed}, nil
}
