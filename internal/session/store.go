package session

import (
	"context"
	"sync"
	"time"

	"edulist_client/platform/apperr"
	"edulist_client/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// Store is the single session instance for a running client. State is
// mutated only through Load, Login, Register, and Logout; every transition
// notifies subscribers with a fresh Snapshot.
//
// The Store implements transport.TokenSource, so the Authorization header
// is always derived from the current state at dispatch time. There is no
// separate header state that could go stale.
type Store struct {
	mu      sync.RWMutex
	user    *User
	token   string
	loading bool
	subs    map[int]func(Snapshot)
	nextSub int

	tokens TokenStore
	api    API
	log    *logger.Logger

	loadGroup singleflight.Group
	autoLoad  sync.Once
}

// NewStore creates the session store. The persisted token, if any, is read
// immediately; the store starts in the loading state until the first Load
// resolves it into Authenticated or Anonymous.
func NewStore(tokens TokenStore, log *logger.Logger) *Store {
	token, err := tokens.Get()
	if err != nil {
		log.Warn("token store read failed", "error", err)
		token = ""
	}
	return &Store{
		token:   token,
		loading: true,
		subs:    make(map[int]func(Snapshot)),
		tokens:  tokens,
		log:     log,
	}
}

// AttachAPI binds the auth endpoints. The Store and the HTTP adapter
// reference each other (the adapter reads the token from the Store), so the
// API is attached after both exist.
func (s *Store) AttachAPI(api API) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.api = api
}

// Token implements transport.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	var user *User
	if s.user != nil {
		u := *s.user
		user = &u
	}
	return Snapshot{User: user, Token: s.token, Loading: s.loading}
}

// Subscribe registers fn to be called on every state transition. The
// returned function removes the subscription. fn is also invoked once
// immediately with the current state.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	snap := s.snapshotLocked()
	s.mu.Unlock()

	fn(snap)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(snap Snapshot) {
	s.mu.RLock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// LoadOnce runs Load at most once per process lifetime. This is the
// startup trigger; calling it again later is a no-op.
func (s *Store) LoadOnce(ctx context.Context) {
	s.autoLoad.Do(func() {
		s.Load(ctx)
	})
}

// Load establishes the session from the persisted token. Fail-closed: any
// failure, including a 401 from the current-user endpoint, degrades to
// Anonymous and removes the persisted token. Never retried automatically.
// Concurrent calls collapse into one request.
func (s *Store) Load(ctx context.Context) Snapshot {
	snap, _, _ := s.loadGroup.Do("load", func() (any, error) {
		return s.loadSession(ctx), nil
	})
	return snap.(Snapshot)
}

func (s *Store) loadSession(ctx context.Context) Snapshot {
	token := s.Token()
	if token == "" {
		return s.becomeAnonymous(false)
	}

	if expired, exp := tokenExpired(token); expired {
		s.log.AuthEvent("session_load", "", false, "persisted token expired at "+exp.Format(time.RFC3339))
		return s.becomeAnonymous(true)
	}

	api := s.currentAPI()
	if api == nil {
		s.log.Error("session load before API attached")
		return s.becomeAnonymous(false)
	}

	user, err := api.CurrentUser(ctx)
	if err != nil {
		s.log.AuthEvent("session_load", "", false, err.Error())
		return s.becomeAnonymous(true)
	}

	s.log.AuthEvent("session_load", user.Email, true, "")
	return s.becomeAuthenticated(token, user, false)
}

// Login authenticates with credentials. On success the returned token is
// persisted and the session becomes Authenticated; on failure the session
// is Anonymous and the backend error propagates for the caller to display.
func (s *Store) Login(ctx context.Context, creds Credentials) (Snapshot, error) {
	api := s.currentAPI()
	if api == nil {
		return s.Snapshot(), apperr.Internal("session store has no auth API attached")
	}

	payload, err := api.Login(ctx, creds)
	if err != nil {
		s.log.AuthEvent("login", creds.Email, false, err.Error())
		return s.becomeAnonymous(true), err
	}

	s.log.AuthEvent("login", payload.User.Email, true, "")
	return s.becomeAuthenticated(payload.Token, &payload.User, true), nil
}

// Register creates an account. Registration implies login: the returned
// token immediately authenticates the new session.
func (s *Store) Register(ctx context.Context, details Registration) (Snapshot, error) {
	api := s.currentAPI()
	if api == nil {
		return s.Snapshot(), apperr.Internal("session store has no auth API attached")
	}

	payload, err := api.Register(ctx, details)
	if err != nil {
		s.log.AuthEvent("register", details.Email, false, err.Error())
		return s.becomeAnonymous(true), err
	}

	s.log.AuthEvent("register", payload.User.Email, true, "")
	return s.becomeAuthenticated(payload.Token, &payload.User, true), nil
}

// Logout unconditionally resets to Anonymous. Never fails; a token store
// error is logged and the in-memory state clears regardless.
func (s *Store) Logout() Snapshot {
	s.log.AuthEvent("logout", "", true, "")
	return s.becomeAnonymous(true)
}

func (s *Store) currentAPI() API {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.api
}

func (s *Store) becomeAnonymous(clearPersisted bool) Snapshot {
	if clearPersisted {
		if err := s.tokens.Clear(); err != nil {
			s.log.Warn("token store clear failed", "error", err)
		}
	}

	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.loading = false
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return snap
}

func (s *Store) becomeAuthenticated(token string, user *User, persist bool) Snapshot {
	if persist {
		if err := s.tokens.Put(token); err != nil {
			s.log.Warn("token store write failed", "error", err)
		}
	}

	s.mu.Lock()
	u := *user
	s.user = &u
	s.token = token
	s.loading = false
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return snap
}

// tokenExpired inspects the persisted JWT's exp claim without verifying the
// signature. Verification is the backend's job; this only avoids a doomed
// round trip for a token that is already past its expiry. A token that does
// not parse as a JWT is left for the backend to judge.
func tokenExpired(token string) (bool, time.Time) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false, time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, time.Time{}
	}
	if time.Now().After(exp.Time) {
		return true, exp.Time
	}
	return false, time.Time{}
}
