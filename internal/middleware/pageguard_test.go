package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RainersCode/rugby-team-portal/internal/services"
	"github.com/RainersCode/rugby-team-portal/types"
)

type stubValidator struct {
	sessions map[string]types.User
}

func (s *stubValidator) GetSession(ctx context.Context, sessionID string) (types.Session, types.User, error) {
	user, ok := s.sessions[sessionID]
	if !ok {
		return types.Session{}, types.User{}, services.ErrNotAuthenticated
	}
	return types.Session{ID: sessionID, UserID: user.ID}, user, nil
}

type stubChecker struct {
	admins map[string]bool
}

func (s *stubChecker) IsAdmin(ctx context.Context, userID string) bool {
	return s.admins[userID]
}

func newTestGuard() *PageGuard {
	validator := &stubValidator{sessions: map[string]types.User{
		"sess-admin": {ID: "admin-1"},
		"sess-user":  {ID: "user-1"},
	}}
	checker := &stubChecker{admins: map[string]bool{"admin-1": true}}
	return NewPageGuard(validator, checker, nil, PageGuardConfig{CookieName: "portal_session"})
}

func guardedRequest(t *testing.T, guard *PageGuard, path, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	handler := guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "portal_session", Value: sessionID})
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPageGuardRedirectsAnonymous(t *testing.T) {
	guard := newTestGuard()

	rec := guardedRequest(t, guard, "/admin/articles", "")
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/auth/signin?redirect=%2Fadmin%2Farticles" {
		t.Fatalf("Location = %q", got)
	}
}

func TestPageGuardNonAdminSentHome(t *testing.T) {
	guard := newTestGuard()

	rec := guardedRequest(t, guard, "/admin/articles", "sess-user")
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/" {
		t.Fatalf("Location = %q", got)
	}
}

func TestPageGuardAdminPasses(t *testing.T) {
	guard := newTestGuard()

	rec := guardedRequest(t, guard, "/admin/articles", "sess-admin")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestPageGuardMemberPages(t *testing.T) {
	guard := newTestGuard()

	if rec := guardedRequest(t, guard, "/members/events", "sess-user"); rec.Code != http.StatusOK {
		t.Fatalf("authenticated member page status = %d, want 200", rec.Code)
	}
	rec := guardedRequest(t, guard, "/members/events", "")
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("anonymous member page status = %d, want 307", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/auth/signin?redirect=%2Fmembers%2Fevents" {
		t.Fatalf("Location = %q", got)
	}
}

func TestPageGuardAuthPagesInverted(t *testing.T) {
	guard := newTestGuard()

	rec := guardedRequest(t, guard, "/auth/signin", "sess-user")
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("authenticated auth page status = %d, want 307", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/" {
		t.Fatalf("Location = %q", got)
	}

	if rec := guardedRequest(t, guard, "/auth/signin", ""); rec.Code != http.StatusOK {
		t.Fatalf("anonymous auth page status = %d, want 200", rec.Code)
	}
}

func TestPageGuardPublicAndLookalikePaths(t *testing.T) {
	guard := newTestGuard()

	if rec := guardedRequest(t, guard, "/news/latest", ""); rec.Code != http.StatusOK {
		t.Fatalf("public path status = %d, want 200", rec.Code)
	}
	// Prefix matching is segment-based.
	if rec := guardedRequest(t, guard, "/administrator", ""); rec.Code != http.StatusOK {
		t.Fatalf("lookalike path status = %d, want 200", rec.Code)
	}
}

func TestPageGuardInvalidSessionTreatedAsAnonymous(t *testing.T) {
	guard := newTestGuard()

	rec := guardedRequest(t, guard, "/profile", "sess-revoked")
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/auth/signin?redirect=%2Fprofile" {
		t.Fatalf("Location = %q", got)
	}
}
