package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"edulist_client/platform/apperr"
	"edulist_client/platform/logger"

	"github.com/golang-jwt/jwt/v5"
)

type fakeAPI struct {
	mu               sync.Mutex
	currentUserCalls int
	currentUser      *User
	currentUserErr   error
	loginPayload     *AuthPayload
	loginErr         error
	registerPayload  *AuthPayload
	registerErr      error
}

func (f *fakeAPI) CurrentUser(context.Context) (*User, error) {
	f.mu.Lock()
	f.currentUserCalls++
	f.mu.Unlock()
	if f.currentUserErr != nil {
		return nil, f.currentUserErr
	}
	return f.currentUser, nil
}

func (f *fakeAPI) Login(_ context.Context, _ Credentials) (*AuthPayload, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginPayload, nil
}

func (f *fakeAPI) Register(_ context.Context, _ Registration) (*AuthPayload, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerPayload, nil
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentUserCalls
}

func newTestStore(t *testing.T, persisted string, api API) (*Store, *MemoryTokenStore) {
	t.Helper()
	tokens := &MemoryTokenStore{}
	if persisted != "" {
		if err := tokens.Put(persisted); err != nil {
			t.Fatalf("seed token: %v", err)
		}
	}
	store := NewStore(tokens, logger.Discard())
	if api != nil {
		store.AttachAPI(api)
	}
	return store, tokens
}

func TestNewStore_StartsLoadingWithPersistedToken(t *testing.T) {
	store, _ := newTestStore(t, "t0", nil)

	snap := store.Snapshot()
	if !snap.Loading {
		t.Fatal("expected loading=true before first load")
	}
	if snap.IsAuthenticated() {
		t.Fatal("must not be authenticated before the session load resolves")
	}
	if store.Token() != "t0" {
		t.Fatalf("expected persisted token to be readable, got %q", store.Token())
	}
}

func TestLoad_NoTokenBecomesAnonymous(t *testing.T) {
	api := &fakeAPI{}
	store, _ := newTestStore(t, "", api)

	snap := store.Load(context.Background())
	if snap.Loading {
		t.Fatal("loading must clear")
	}
	if snap.IsAuthenticated() {
		t.Fatal("expected anonymous")
	}
	if api.calls() != 0 {
		t.Fatal("no token must mean no current-user request")
	}
}

func TestLoad_ValidTokenAuthenticates(t *testing.T) {
	api := &fakeAPI{currentUser: &User{ID: "u1", Name: "Asha", Email: "a@example.com", Role: RoleInstitute}}
	store, tokens := newTestStore(t, "t1", api)

	snap := store.Load(context.Background())
	if !snap.IsAuthenticated() {
		t.Fatal("expected authenticated")
	}
	if snap.User.Role != RoleInstitute {
		t.Fatalf("expected institute role, got %s", snap.User.Role)
	}
	if snap.Token != "t1" {
		t.Fatalf("expected token t1, got %q", snap.Token)
	}
	if persisted, _ := tokens.Get(); persisted != "t1" {
		t.Fatalf("persisted token must remain, got %q", persisted)
	}
}

func TestLoad_AuthFailureFailsClosedAndClearsPersistedToken(t *testing.T) {
	api := &fakeAPI{currentUserErr: apperr.Unauthorized("token expired")}
	store, tokens := newTestStore(t, "stale", api)

	snap := store.Load(context.Background())
	if snap.IsAuthenticated() {
		t.Fatal("expected anonymous after 401")
	}
	if snap.Loading {
		t.Fatal("loading must clear")
	}
	if persisted, _ := tokens.Get(); persisted != "" {
		t.Fatalf("stale token must be removed from storage, got %q", persisted)
	}
	if store.Token() != "" {
		t.Fatal("adapter-visible token must be cleared")
	}
}

func TestLoad_LocallyExpiredTokenSkipsRoundTrip(t *testing.T) {
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	api := &fakeAPI{currentUser: &User{ID: "u1"}}
	store, tokens := newTestStore(t, expired, api)

	snap := store.Load(context.Background())
	if snap.IsAuthenticated() {
		t.Fatal("expected anonymous for expired token")
	}
	if api.calls() != 0 {
		t.Fatal("expired token must not reach the network")
	}
	if persisted, _ := tokens.Get(); persisted != "" {
		t.Fatal("expired token must be cleared from storage")
	}
}

func TestLoadOnce_RunsAtMostOnce(t *testing.T) {
	api := &fakeAPI{currentUser: &User{ID: "u1"}}
	store, _ := newTestStore(t, "t1", api)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.LoadOnce(context.Background())
		}()
	}
	wg.Wait()
	store.LoadOnce(context.Background())

	if got := api.calls(); got != 1 {
		t.Fatalf("expected exactly one current-user request, got %d", got)
	}
}

func TestLogin_SuccessPersistsTokenAndAuthenticates(t *testing.T) {
	api := &fakeAPI{loginPayload: &AuthPayload{
		Token: "t1",
		User:  User{ID: "u1", Name: "Asha", Email: "a@example.com", Role: RoleInstitute},
	}}
	store, tokens := newTestStore(t, "", api)

	snap, err := store.Login(context.Background(), Credentials{Email: "a@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !snap.IsAuthenticated() {
		t.Fatal("expected authenticated")
	}
	if snap.User.Role != RoleInstitute {
		t.Fatalf("expected role institute, got %s", snap.User.Role)
	}
	if persisted, _ := tokens.Get(); persisted != "t1" {
		t.Fatalf("expected persisted token t1, got %q", persisted)
	}
	if store.Token() != "t1" {
		t.Fatalf("expected adapter token t1, got %q", store.Token())
	}
}

func TestLogin_FailurePropagatesAndLeavesAnonymous(t *testing.T) {
	api := &fakeAPI{loginErr: apperr.Server("Invalid credentials")}
	store, _ := newTestStore(t, "", api)

	snap, err := store.Login(context.Background(), Credentials{Email: "a@example.com", Password: "bad"})
	if err == nil {
		t.Fatal("expected login error to propagate")
	}
	if apperr.UserMessage(err) != "Invalid credentials" {
		t.Fatalf("backend message must survive for display, got %q", apperr.UserMessage(err))
	}
	if snap.IsAuthenticated() {
		t.Fatal("expected anonymous after failed login")
	}
}

func TestRegister_ImpliesLogin(t *testing.T) {
	api := &fakeAPI{registerPayload: &AuthPayload{
		Token: "t2",
		User:  User{ID: "u2", Name: "New", Email: "n@example.com", Role: RoleUser},
	}}
	store, tokens := newTestStore(t, "", api)

	snap, err := store.Register(context.Background(), Registration{
		Name: "New", Email: "n@example.com", Password: "secret1", Role: RoleUser,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !snap.IsAuthenticated() {
		t.Fatal("registration must authenticate immediately")
	}
	if persisted, _ := tokens.Get(); persisted != "t2" {
		t.Fatalf("expected persisted token t2, got %q", persisted)
	}
}

func TestLogout_ClearsEverything(t *testing.T) {
	api := &fakeAPI{loginPayload: &AuthPayload{Token: "t1", User: User{ID: "u1", Role: RoleUser}}}
	store, tokens := newTestStore(t, "", api)

	if _, err := store.Login(context.Background(), Credentials{Email: "a@example.com", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	snap := store.Logout()
	if snap.IsAuthenticated() {
		t.Fatal("expected anonymous after logout")
	}
	if persisted, _ := tokens.Get(); persisted != "" {
		t.Fatalf("persisted token must be cleared, got %q", persisted)
	}
	if store.Token() != "" {
		t.Fatal("adapter-visible token must be empty after logout")
	}
}

func TestSubscribe_NotifiesOnTransitions(t *testing.T) {
	api := &fakeAPI{loginPayload: &AuthPayload{Token: "t1", User: User{ID: "u1", Role: RoleUser}}}
	store, _ := newTestStore(t, "", api)

	var mu sync.Mutex
	var seen []bool
	unsubscribe := store.Subscribe(func(snap Snapshot) {
		mu.Lock()
		seen = append(seen, snap.IsAuthenticated())
		mu.Unlock()
	})

	if _, err := store.Login(context.Background(), Credentials{Email: "a@example.com", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	store.Logout()

	mu.Lock()
	got := append([]bool(nil), seen...)
	mu.Unlock()

	// Immediate snapshot, then login, then logout.
	want := []bool{false, true, false}
	if len(got) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("notification %d: expected authenticated=%v, got %v", i, want[i], got[i])
		}
	}

	unsubscribe()
	store.Logout()
	mu.Lock()
	after := len(seen)
	mu.Unlock()
	if after != len(want) {
		t.Fatal("unsubscribed listener must not be notified")
	}
}

func TestSnapshot_TokenPresentWheneverAuthenticated(t *testing.T) {
	api := &fakeAPI{loginPayload: &AuthPayload{Token: "t1", User: User{ID: "u1", Role: RoleUser}}}
	store, _ := newTestStore(t, "", api)

	snap, err := store.Login(context.Background(), Credentials{Email: "a@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if snap.IsAuthenticated() && snap.Token == "" {
		t.Fatal("invariant violated: authenticated without a credential")
	}
}
