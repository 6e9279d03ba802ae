// Package session holds the client-side authentication state: the bearer
// token, the current user, and the loading flag covering the gap between
// process start and the first session load. The Store is explicit and
// injectable; everything that needs session state (route guard, transport,
// CLI) receives it as a dependency.
package session

import "context"

// Role is the backend-assigned account role.
type Role string

const (
	RoleUser      Role = "user"
	RoleInstitute Role = "institute"
	RoleAdmin     Role = "admin"
)

// User is the authenticated account as reported by the backend.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Credentials is a login request.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is a sign-up request. Role selects the account type; the
// institute role stays subject to admin approval on the backend, but the
// returned token authenticates the new session immediately either way.
type Registration struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role" validate:"required,oneof=user institute"`
}

// AuthPayload is the backend response to a successful login or register.
type AuthPayload struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// API is the slice of the auth endpoints the Store drives. Implemented by
// the auth service; narrowed to an interface so store tests can fake it.
type API interface {
	CurrentUser(ctx context.Context) (*User, error)
	Login(ctx context.Context, creds Credentials) (*AuthPayload, error)
	Register(ctx context.Context, details Registration) (*AuthPayload, error)
}

// Snapshot is an immutable view of the session state handed to readers and
// subscribers.
type Snapshot struct {
	User    *User
	Token   string
	Loading bool
}

// IsAuthenticated reports whether a user is present. The Store guarantees a
// token is always present when this is true.
func (s Snapshot) IsAuthenticated() bool {
	return s.User != nil
}
