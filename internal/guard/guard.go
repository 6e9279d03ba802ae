// Package guard decides whether a navigation target is permitted for the
// current session. Pure decision logic; the caller performs the redirect.
package guard

import (
	"edulist_client/internal/session"
)

// Route targets for denied access.
const (
	LoginRoute = "/login"
	HomeRoute  = "/"
)

// Decision is the outcome of an access check.
type Decision struct {
	Allowed  bool
	Redirect string // destination when not allowed
}

// Allow is the permitted decision.
var Allow = Decision{Allowed: true}

// RedirectTo denies access and names the destination.
func RedirectTo(target string) Decision {
	return Decision{Redirect: target}
}

// CanAccess evaluates the session against a route's required roles.
// Unauthenticated sessions are sent to the login route; authenticated
// sessions missing a required role are sent home. No required roles means
// any authenticated user may pass. Re-evaluate on every navigation and on
// every session change; a role or authentication flip takes effect without
// a navigation in between.
func CanAccess(snap session.Snapshot, requiredRoles ...session.Role) Decision {
	if snap.User == nil {
		return RedirectTo(LoginRoute)
	}
	if len(requiredRoles) == 0 {
		return Allow
	}
	for _, role := range requiredRoles {
		if snap.User.Role == role {
			return Allow
		}
	}
	return RedirectTo(HomeRoute)
}
