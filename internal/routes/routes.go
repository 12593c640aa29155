// Package routes decides, per navigation, whether a view may render or must
// redirect given the current session. The decision is a pure function of the
// declared route classification and session presence; it performs no I/O.
package routes

import "scanview/internal/session"

// Class is the per-path policy tag.
type Class string

const (
	// Public routes render regardless of session state.
	Public Class = "public"
	// PublicOnly routes render only while logged out; with a session they
	// redirect to the authenticated landing view.
	PublicOnly Class = "public-only"
	// Protected routes render only while logged in; without a session they
	// redirect to the public entry view.
	Protected Class = "protected"
)

// Well-known navigation targets.
const (
	PathHome      = "/"
	PathLogin     = "/login"
	PathSignup    = "/signup"
	PathAbout     = "/about"
	PathLogout    = "/logout"
	PathDashboard = "/dashboard"
	PathReports   = "/reports"
	PathProfile   = "/profile"
)

// Table declares exactly one classification per path.
type Table map[string]Class

// DefaultTable mirrors the application's view set: marketing pages stay
// public, auth entry points are public-only, everything behind login is
// protected.
func DefaultTable() Table {
	return Table{
		PathHome:      Public,
		PathAbout:     Public,
		PathLogout:    Public,
		PathLogin:     PublicOnly,
		PathSignup:    PublicOnly,
		PathDashboard: Protected,
		PathReports:   Protected,
		PathProfile:   Protected,
	}
}

// Decision is the guard's verdict for one navigation.
type Decision struct {
	Render     bool
	RedirectTo string
}

// Guard evaluates navigations against the route table and the session store.
type Guard struct {
	table    Table
	sessions *session.Store
}

// NewGuard builds a guard over the given table. Paths missing from the table
// redirect to the home view.
func NewGuard(table Table, sessions *session.Store) *Guard {
	return &Guard{table: table, sessions: sessions}
}

// Decide reads the session exactly once and applies the classification
// policy. Redirect targets are fixed: the requested path is not preserved for
// post-login resume.
func (g *Guard) Decide(path string) Decision {
	class, known := g.table[path]
	if !known {
		return Decision{RedirectTo: PathHome}
	}

	authed := g.sessions.Current() != nil
	switch class {
	case PublicOnly:
		if authed {
			return Decision{RedirectTo: PathDashboard}
		}
	case Protected:
		if !authed {
			return Decision{RedirectTo: PathLogin}
		}
	}
	return Decision{Render: true}
}
