package authstate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/RainersCode/rugby-team-portal/internal/services"
	"github.com/RainersCode/rugby-team-portal/internal/store"
	"github.com/RainersCode/rugby-team-portal/types"
)

type fakeRefreshClient struct {
	mu     sync.Mutex
	calls  int
	result RefreshResult
	err    error
}

func (f *fakeRefreshClient) Refresh(ctx context.Context) (RefreshResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

func (f *fakeRefreshClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSessionSource struct {
	session types.Session
	user    types.User
	err     error
}

func (f *fakeSessionSource) GetSession(ctx context.Context, sessionID string) (types.Session, types.User, error) {
	if f.err != nil {
		return types.Session{}, types.User{}, f.err
	}
	return f.session, f.user, nil
}

type fakeProfileSource struct {
	mu       sync.Mutex
	calls    int
	profiles []types.Profile
	errs     []error
}

func (f *fakeProfileSource) Profile(ctx context.Context, userID string) (types.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return types.Profile{}, f.errs[i]
	}
	if i < len(f.profiles) {
		return f.profiles[i], nil
	}
	if len(f.profiles) > 0 {
		return f.profiles[len(f.profiles)-1], nil
	}
	return types.Profile{}, store.ErrNotFound
}

type fakeNavigator struct {
	path      string
	navigated []string
}

func (f *fakeNavigator) CurrentPath() string  { return f.path }
func (f *fakeNavigator) Navigate(path string) { f.navigated = append(f.navigated, path) }

func newTestManager(refresh RefreshClient, sessions SessionSource, profiles ProfileSource, nav Navigator) *Manager {
	return NewManager(refresh, sessions, profiles, func() string { return "sess-1" }, nav, nil, ManagerConfig{
		DebounceInterval: time.Hour,
		PollInterval:     time.Hour,
	})
}

func authenticatedResult() RefreshResult {
	return RefreshResult{
		Authenticated: true,
		User:          types.User{ID: "user-1", Email: "captain@club.lv"},
		Session:       types.Session{ID: "sess-1", ExpiresAt: time.Now().Add(time.Hour)},
		IsAdmin:       false,
	}
}

func TestRefreshResolvesLoading(t *testing.T) {
	client := &fakeRefreshClient{result: authenticatedResult()}
	m := newTestManager(client, &fakeSessionSource{}, &fakeProfileSource{}, nil)

	if !m.State().IsLoading {
		t.Fatal("manager must start loading")
	}

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	state := m.State()
	if state.IsLoading {
		t.Fatal("first refresh must resolve IsLoading")
	}
	if state.CheckingSession {
		t.Fatal("CheckingSession must be cleared")
	}
	if !state.Authenticated() || state.User.ID != "user-1" {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestRefreshDebounce(t *testing.T) {
	client := &fakeRefreshClient{result: authenticatedResult()}
	m := newTestManager(client, &fakeSessionSource{}, &fakeProfileSource{}, nil)

	for i := 0; i < 5; i++ {
		if err := m.Refresh(context.Background()); err != nil {
			t.Fatalf("refresh %d: %v", i, err)
		}
	}
	if got := client.callCount(); got != 1 {
		t.Fatalf("refresh calls = %d, want 1 (debounced)", got)
	}
}

func TestRefreshAnonymousOn401(t *testing.T) {
	client := &fakeRefreshClient{result: RefreshResult{}}
	m := newTestManager(client, &fakeSessionSource{}, &fakeProfileSource{}, nil)

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	state := m.State()
	if state.Authenticated() || state.IsAdmin || state.IsLoading {
		t.Fatalf("expected resolved anonymous state, got %+v", state)
	}
}

func TestRefreshFallbackConverges(t *testing.T) {
	client := &fakeRefreshClient{err: errors.New("connection refused")}
	sessions := &fakeSessionSource{
		session: types.Session{ID: "sess-1", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)},
		user:    types.User{ID: "user-1", Email: "captain@club.lv"},
	}
	profiles := &fakeProfileSource{profiles: []types.Profile{{ID: "user-1", Role: types.RoleAdmin}}}
	m := newTestManager(client, sessions, profiles, nil)

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	state := m.State()
	if !state.Authenticated() || state.User.ID != "user-1" {
		t.Fatalf("fallback did not authenticate: %+v", state)
	}
	if !state.IsAdmin {
		t.Fatal("fallback must read the admin role")
	}
	if state.CheckingSession || state.IsLoading {
		t.Fatal("transient flags must be cleared after fallback")
	}
}

func TestRefreshFallbackAnonymous(t *testing.T) {
	client := &fakeRefreshClient{err: errors.New("connection refused")}
	sessions := &fakeSessionSource{err: services.ErrNotAuthenticated}
	m := newTestManager(client, sessions, &fakeProfileSource{}, nil)

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if state := m.State(); state.Authenticated() {
		t.Fatalf("expected anonymous state, got %+v", state)
	}
}

func TestRefreshFallbackProfileErrorFailsClosed(t *testing.T) {
	client := &fakeRefreshClient{err: errors.New("connection refused")}
	sessions := &fakeSessionSource{
		session: types.Session{ID: "sess-1", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)},
		user:    types.User{ID: "user-1"},
	}
	profiles := &fakeProfileSource{errs: []error{errors.New("timeout")}}
	m := newTestManager(client, sessions, profiles, nil)

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	state := m.State()
	if !state.Authenticated() {
		t.Fatal("session read succeeded, user must be set")
	}
	if state.IsAdmin {
		t.Fatal("profile error must deny admin")
	}
}

func TestRefreshFallbackStoreOutage(t *testing.T) {
	client := &fakeRefreshClient{err: errors.New("connection refused")}
	sessions := &fakeSessionSource{err: errors.New("store down")}
	m := newTestManager(client, sessions, &fakeProfileSource{}, nil)

	if err := m.Refresh(context.Background()); err == nil {
		t.Fatal("expected error when both paths fail")
	}

	state := m.State()
	if state.Authenticated() {
		t.Fatal("outage must read as anonymous, not stale authenticated")
	}
	if state.IsLoading || state.CheckingSession {
		t.Fatal("transient flags must be cleared even on failure")
	}
}

func TestCheckingSessionToggledOnLaterRefreshes(t *testing.T) {
	client := &fakeRefreshClient{result: authenticatedResult()}
	m := NewManager(client, &fakeSessionSource{}, &fakeProfileSource{}, func() string { return "sess-1" }, nil, nil, ManagerConfig{
		DebounceInterval: time.Nanosecond,
		PollInterval:     time.Hour,
	})

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	sawChecking := false
	unsubscribe := m.Subscribe(func(state State) {
		if state.CheckingSession {
			sawChecking = true
		}
	})
	defer unsubscribe()

	time.Sleep(time.Millisecond)
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("second refresh: %v", err)
	}

	if !sawChecking {
		t.Fatal("later refreshes must raise CheckingSession")
	}
	if m.State().CheckingSession {
		t.Fatal("CheckingSession must be cleared at the end")
	}
}

func TestSignedOutEventShortCircuits(t *testing.T) {
	client := &fakeRefreshClient{result: authenticatedResult()}
	nav := &fakeNavigator{path: "/admin/articles"}
	m := newTestManager(client, &fakeSessionSource{}, &fakeProfileSource{}, nav)

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	callsBefore := client.callCount()

	m.HandleAuthEvent(services.AuthEvent{Type: services.EventSignedOut, UserID: "user-1"})

	state := m.State()
	if state.Authenticated() || state.IsAdmin {
		t.Fatalf("sign-out must drop to anonymous, got %+v", state)
	}
	if state.IsLoading {
		t.Fatal("sign-out must not revert to loading")
	}
	if client.callCount() != callsBefore {
		t.Fatal("sign-out must not trigger a network refresh")
	}
	if len(nav.navigated) != 1 || nav.navigated[0] != "/" {
		t.Fatalf("expected redirect home from admin page, got %v", nav.navigated)
	}
}

func TestSignedOutEventOffAdminPage(t *testing.T) {
	client := &fakeRefreshClient{result: authenticatedResult()}
	nav := &fakeNavigator{path: "/members/events"}
	m := newTestManager(client, &fakeSessionSource{}, &fakeProfileSource{}, nav)

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	m.HandleAuthEvent(services.AuthEvent{Type: services.EventSignedOut, UserID: "user-1"})

	if len(nav.navigated) != 0 {
		t.Fatalf("no redirect expected off admin pages, got %v", nav.navigated)
	}
}

func TestWakeTriggersRefreshAfterDebounce(t *testing.T) {
	client := &fakeRefreshClient{result: authenticatedResult()}
	m := NewManager(client, &fakeSessionSource{}, &fakeProfileSource{}, func() string { return "sess-1" }, nil, nil, ManagerConfig{
		DebounceInterval: time.Nanosecond,
		PollInterval:     time.Hour,
	})

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	time.Sleep(time.Millisecond)

	m.Wake(context.Background())
	if got := client.callCount(); got != 2 {
		t.Fatalf("refresh calls = %d, want 2", got)
	}
}
