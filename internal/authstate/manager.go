package authstate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/RainersCode/rugby-team-portal/internal/metrics"
	"github.com/RainersCode/rugby-team-portal/internal/services"
	"github.com/RainersCode/rugby-team-portal/internal/store"
)

const (
	defaultDebounceInterval = 5 * time.Second
	defaultPollInterval     = 15 * time.Minute
)

// ManagerConfig tunes the refresh cadence.
type ManagerConfig struct {
	DebounceInterval time.Duration
	PollInterval     time.Duration
}

// Manager maintains a client-side mirror of the auth state. It has an
// explicit lifecycle: construct, Start, Stop. Refreshes are serialized; a
// caller arriving while one is in flight waits for the lock and then hits
// the debounce window, so concurrent triggers collapse into one round trip.
type Manager struct {
	refresh   RefreshClient
	sessions  SessionSource
	profiles  ProfileSource
	sessionID func() string
	nav       Navigator
	collector *metrics.Collector
	config    ManagerConfig

	// refreshMu serializes Refresh end to end; mu guards the snapshot.
	refreshMu sync.Mutex
	mu        sync.Mutex
	state     State

	lastRefresh time.Time
	refreshed   bool

	subscribers map[int]func(State)
	nextSubID   int

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewManager(
	refresh RefreshClient,
	sessions SessionSource,
	profiles ProfileSource,
	sessionID func() string,
	nav Navigator,
	collector *metrics.Collector,
	config ManagerConfig,
) *Manager {
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = defaultDebounceInterval
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}
	return &Manager{
		refresh:     refresh,
		sessions:    sessions,
		profiles:    profiles,
		sessionID:   sessionID,
		nav:         nav,
		collector:   collector,
		config:      config,
		state:       State{IsLoading: true},
		subscribers: make(map[int]func(State)),
		stopCh:      make(chan struct{}),
	}
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers a callback invoked on every state change and returns
// an unsubscribe function. Callbacks run synchronously.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

// Start performs the initial refresh and begins the polling loop.
func (m *Manager) Start(ctx context.Context) {
	if err := m.Refresh(ctx); err != nil {
		slog.Error("initial auth refresh failed", slog.String("error", err.Error()))
	}

	go func() {
		ticker := time.NewTicker(m.config.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := m.Refresh(ctx); err != nil {
					slog.Error("polled auth refresh failed", slog.String("error", err.Error()))
				}
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the polling loop. Safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Wake triggers a refresh when the client regains focus. The debounce
// window absorbs rapid focus flapping.
func (m *Manager) Wake(ctx context.Context) {
	if err := m.Refresh(ctx); err != nil {
		slog.Error("wake auth refresh failed", slog.String("error", err.Error()))
	}
}

// HandleAuthEvent reacts to session store events. A sign-out drops to the
// anonymous state immediately, with no network round trip, and requests a
// redirect home when an admin page is showing; other events schedule a
// refresh.
func (m *Manager) HandleAuthEvent(event services.AuthEvent) {
	if event.Type == services.EventSignedOut {
		m.mu.Lock()
		m.state = State{IsLoading: false}
		m.lastRefresh = time.Time{}
		m.mu.Unlock()
		m.notify()

		if m.nav != nil && hasAdminPrefix(m.nav.CurrentPath()) {
			m.nav.Navigate("/")
		}
		return
	}

	go func() {
		if err := m.Refresh(context.Background()); err != nil {
			slog.Error("event-driven auth refresh failed",
				slog.String("event", event.Type),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Refresh re-validates the session. Calls within the debounce window of
// the previous one are no-ops, except that the very first call always
// runs. CheckingSession is cleared on every exit path.
func (m *Manager) Refresh(ctx context.Context) error {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	m.mu.Lock()
	if m.refreshed && time.Since(m.lastRefresh) < m.config.DebounceInterval {
		m.mu.Unlock()
		return nil
	}
	m.refreshed = true
	m.lastRefresh = time.Now()
	if !m.state.IsLoading {
		m.state.CheckingSession = true
	}
	m.mu.Unlock()
	m.notify()

	defer m.settle()

	result, err := m.refresh.Refresh(ctx)
	if err == nil {
		m.apply(result)
		m.collector.RecordRefresh(metrics.PathPrimary, outcomeFor(result))
		return nil
	}

	slog.Warn("refresh endpoint unavailable, using fallback", slog.String("error", err.Error()))
	return m.refreshFallback(ctx)
}

// refreshFallback reads the session and profile directly, converging to
// the same state the primary path would have produced.
func (m *Manager) refreshFallback(ctx context.Context) error {
	session, user, err := m.sessions.GetSession(ctx, m.sessionID())
	if err != nil {
		if errors.Is(err, services.ErrNotAuthenticated) {
			m.apply(RefreshResult{})
			m.collector.RecordRefresh(metrics.PathFallback, metrics.OutcomeAnonymous)
			return nil
		}
		// Fail closed: an unreachable store reads as anonymous rather than
		// leaving a stale authenticated snapshot in place.
		m.apply(RefreshResult{})
		m.collector.RecordRefresh(metrics.PathFallback, metrics.OutcomeError)
		return err
	}

	isAdmin := false
	profile, err := m.profiles.Profile(ctx, user.ID)
	if err == nil {
		isAdmin = profile.IsAdmin()
	} else if !errors.Is(err, store.ErrNotFound) {
		slog.Error("fallback profile read failed, denying admin",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	m.apply(RefreshResult{
		Authenticated: true,
		User:          user,
		Session:       session,
		IsAdmin:       isAdmin,
	})
	m.collector.RecordRefresh(metrics.PathFallback, metrics.OutcomeAuthenticated)
	return nil
}

func (m *Manager) apply(result RefreshResult) {
	m.mu.Lock()
	if result.Authenticated {
		user := result.User
		session := result.Session
		m.state.User = &user
		m.state.Session = &session
		m.state.IsAdmin = result.IsAdmin
	} else {
		m.state.User = nil
		m.state.Session = nil
		m.state.IsAdmin = false
	}
	m.mu.Unlock()
	m.notify()
}

// settle clears the transient flags. The first completed refresh resolves
// IsLoading for good.
func (m *Manager) settle() {
	m.mu.Lock()
	m.state.IsLoading = false
	m.state.CheckingSession = false
	m.mu.Unlock()
	m.notify()
}

// promoteAdmin records a confirmed admin role discovered by the admin
// guard's delayed re-checks.
func (m *Manager) promoteAdmin() {
	m.mu.Lock()
	m.state.IsAdmin = true
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) notify() {
	m.mu.Lock()
	state := m.state
	subscribers := make([]func(State), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subscribers = append(subscribers, fn)
	}
	m.mu.Unlock()

	for _, fn := range subscribers {
		fn(state)
	}
}

func outcomeFor(result RefreshResult) string {
	if result.Authenticated {
		return metrics.OutcomeAuthenticated
	}
	return metrics.OutcomeAnonymous
}

func hasAdminPrefix(path string) bool {
	return path == "/admin" || (len(path) > 6 && path[:7] == "/admin/")
}
