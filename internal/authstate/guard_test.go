package authstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RainersCode/rugby-team-portal/types"
)

func resolvedManager(t *testing.T, result RefreshResult) *Manager {
	t.Helper()
	client := &fakeRefreshClient{result: result}
	m := newTestManager(client, &fakeSessionSource{}, &fakeProfileSource{}, nil)
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return m
}

func newTestAdminGuard(m *Manager, profiles ProfileSource) (*AdminGuard, *[]time.Duration) {
	guard := NewAdminGuard(m, profiles, nil)
	delays := &[]time.Duration{}
	guard.sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return guard, delays
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	m := resolvedManager(t, RefreshResult{})

	decision, err := m.RequireAuth(context.Background(), "/members/events", RequireAuthOptions{
		RedirectTo: "/auth/signin",
	})
	if err != nil {
		t.Fatalf("require auth: %v", err)
	}
	if decision.Ready {
		t.Fatal("anonymous visitor must not be ready")
	}
	if decision.RedirectTo != "/auth/signin?redirect=%2Fmembers%2Fevents" {
		t.Fatalf("redirect = %q", decision.RedirectTo)
	}
}

func TestRequireAuthReadyWhenSignedIn(t *testing.T) {
	m := resolvedManager(t, authenticatedResult())

	decision, err := m.RequireAuth(context.Background(), "/members", RequireAuthOptions{RedirectTo: "/auth/signin"})
	if err != nil {
		t.Fatalf("require auth: %v", err)
	}
	if !decision.Ready {
		t.Fatalf("expected ready, got %+v", decision)
	}
}

func TestRequireAuthAdminOption(t *testing.T) {
	m := resolvedManager(t, authenticatedResult())

	decision, err := m.RequireAuth(context.Background(), "/admin", RequireAuthOptions{
		RedirectTo:   "/auth/signin",
		RequireAdmin: true,
	})
	if err != nil {
		t.Fatalf("require auth: %v", err)
	}
	if decision.Ready || decision.RedirectTo != "/" {
		t.Fatalf("non-admin must be sent home, got %+v", decision)
	}
}

func TestRequireAuthWaitsForInitialLoad(t *testing.T) {
	client := &fakeRefreshClient{result: authenticatedResult()}
	m := newTestManager(client, &fakeSessionSource{}, &fakeProfileSource{}, nil)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = m.Refresh(context.Background())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	decision, err := m.RequireAuth(ctx, "/members", RequireAuthOptions{RedirectTo: "/auth/signin"})
	if err != nil {
		t.Fatalf("require auth: %v", err)
	}
	if !decision.Ready {
		t.Fatalf("expected ready after load, got %+v", decision)
	}
}

func TestAdminGuardImmediateAdmin(t *testing.T) {
	result := authenticatedResult()
	result.IsAdmin = true
	m := resolvedManager(t, result)

	guard, delays := newTestAdminGuard(m, &fakeProfileSource{})
	decision, err := guard.Check(context.Background(), "/admin")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !decision.Ready {
		t.Fatalf("expected ready, got %+v", decision)
	}
	if len(*delays) != 0 {
		t.Fatalf("no re-checks expected, got %d", len(*delays))
	}
}

func TestAdminGuardPromotesAfterRetries(t *testing.T) {
	m := resolvedManager(t, authenticatedResult())

	profiles := &fakeProfileSource{profiles: []types.Profile{
		{ID: "user-1", Role: types.RoleUser},
		{ID: "user-1", Role: types.RoleUser},
		{ID: "user-1", Role: types.RoleAdmin},
	}}
	guard, delays := newTestAdminGuard(m, profiles)

	decision, err := guard.Check(context.Background(), "/admin")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !decision.Ready {
		t.Fatalf("expected ready after promotion, got %+v", decision)
	}
	if len(*delays) != 3 {
		t.Fatalf("re-checks = %d, want 3", len(*delays))
	}

	want := []time.Duration{
		nextDelay(defaultRetryBase, 0),
		nextDelay(defaultRetryBase, 1),
		nextDelay(defaultRetryBase, 2),
	}
	for i, d := range *delays {
		if d != want[i] {
			t.Fatalf("delay %d = %v, want %v", i, d, want[i])
		}
	}

	if !m.State().IsAdmin {
		t.Fatal("promotion must update the mirrored state")
	}
}

func TestAdminGuardExhaustion(t *testing.T) {
	m := resolvedManager(t, authenticatedResult())

	profiles := &fakeProfileSource{profiles: []types.Profile{{ID: "user-1", Role: types.RoleUser}}}
	guard, delays := newTestAdminGuard(m, profiles)

	decision, err := guard.Check(context.Background(), "/admin")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if decision.Ready || decision.RedirectTo != "/" {
		t.Fatalf("exhaustion must redirect home, got %+v", decision)
	}
	if len(*delays) != adminCheckAttempts {
		t.Fatalf("re-checks = %d, want %d", len(*delays), adminCheckAttempts)
	}
}

func TestAdminGuardErrorsCountAsAttempts(t *testing.T) {
	m := resolvedManager(t, authenticatedResult())

	boom := errors.New("profile read failed")
	profiles := &fakeProfileSource{errs: []error{boom, boom, boom, boom, boom}}
	guard, delays := newTestAdminGuard(m, profiles)

	decision, err := guard.Check(context.Background(), "/admin")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if decision.Ready || decision.RedirectTo != "/" {
		t.Fatalf("persistent errors must redirect home, got %+v", decision)
	}
	if len(*delays) != adminCheckAttempts {
		t.Fatalf("the loop must terminate after %d attempts, got %d", adminCheckAttempts, len(*delays))
	}
}

func TestAdminGuardAnonymous(t *testing.T) {
	m := resolvedManager(t, RefreshResult{})

	guard, _ := newTestAdminGuard(m, &fakeProfileSource{})
	decision, err := guard.Check(context.Background(), "/admin/articles")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if decision.RedirectTo != "/auth/signin?redirect=%2Fadmin%2Farticles" {
		t.Fatalf("redirect = %q", decision.RedirectTo)
	}
}

func TestAdminGuardContextCancelled(t *testing.T) {
	m := resolvedManager(t, authenticatedResult())

	guard := NewAdminGuard(m, &fakeProfileSource{profiles: []types.Profile{{Role: types.RoleUser}}}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := guard.Check(ctx, "/admin"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
