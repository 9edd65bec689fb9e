package authstate

import (
	"context"
	"net/url"
	"time"

	"github.com/RainersCode/rugby-team-portal/internal/metrics"
)

const adminCheckAttempts = 5

// Decision is the outcome of a guard check. Exactly one of Ready or
// RedirectTo is meaningful.
type Decision struct {
	Ready      bool
	RedirectTo string
}

// RequireAuthOptions configures RequireAuth.
type RequireAuthOptions struct {
	// RedirectTo is the sign-in path for anonymous visitors. The current
	// path is appended as a percent-encoded redirect parameter.
	RedirectTo string
	// RequireAdmin additionally requires the admin role.
	RequireAdmin bool
}

// RequireAuth waits for the initial refresh to resolve and decides whether
// the current view may render. Anonymous visitors are redirected to the
// sign-in path exactly once, carrying the current path so sign-in can
// return to it.
func (m *Manager) RequireAuth(ctx context.Context, currentPath string, opts RequireAuthOptions) (Decision, error) {
	state, err := m.waitLoaded(ctx)
	if err != nil {
		return Decision{}, err
	}

	if !state.Authenticated() {
		target := opts.RedirectTo + "?redirect=" + url.QueryEscape(currentPath)
		return Decision{RedirectTo: target}, nil
	}
	if opts.RequireAdmin && !state.IsAdmin {
		return Decision{RedirectTo: "/"}, nil
	}
	return Decision{Ready: true}, nil
}

// AdminGuard gates admin views. A signed-in user whose snapshot says
// non-admin gets a bounded series of delayed direct role re-reads before
// being turned away, covering the window where a freshly granted role has
// not reached the mirrored state yet.
type AdminGuard struct {
	manager   *Manager
	profiles  ProfileSource
	collector *metrics.Collector
	baseDelay time.Duration

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewAdminGuard(manager *Manager, profiles ProfileSource, collector *metrics.Collector) *AdminGuard {
	return &AdminGuard{
		manager:   manager,
		profiles:  profiles,
		collector: collector,
		baseDelay: defaultRetryBase,
		sleep:     sleepContext,
	}
}

// Check decides whether the admin view at currentPath may render.
//
// Re-check errors count as attempts, so the loop always terminates after
// adminCheckAttempts rounds.
func (g *AdminGuard) Check(ctx context.Context, currentPath string) (Decision, error) {
	state, err := g.manager.waitLoaded(ctx)
	if err != nil {
		return Decision{}, err
	}

	if !state.Authenticated() {
		target := "/auth/signin?redirect=" + url.QueryEscape(currentPath)
		return Decision{RedirectTo: target}, nil
	}
	if state.IsAdmin {
		return Decision{Ready: true}, nil
	}

	userID := state.User.ID
	for attempt := 0; attempt < adminCheckAttempts; attempt++ {
		if err := g.sleep(ctx, nextDelay(g.baseDelay, attempt)); err != nil {
			return Decision{}, err
		}
		g.collector.RecordGuardRetry()

		profile, err := g.profiles.Profile(ctx, userID)
		if err != nil {
			continue
		}
		if profile.IsAdmin() {
			g.manager.promoteAdmin()
			return Decision{Ready: true}, nil
		}
	}
	return Decision{RedirectTo: "/"}, nil
}

// waitLoaded blocks until the initial refresh has resolved.
func (m *Manager) waitLoaded(ctx context.Context) (State, error) {
	if state := m.State(); !state.IsLoading {
		return state, nil
	}

	loaded := make(chan State, 1)
	unsubscribe := m.Subscribe(func(state State) {
		if !state.IsLoading {
			select {
			case loaded <- state:
			default:
			}
		}
	})
	defer unsubscribe()

	// Re-check after subscribing so a refresh completing in between cannot
	// strand the wait.
	if state := m.State(); !state.IsLoading {
		return state, nil
	}

	select {
	case state := <-loaded:
		return state, nil
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
