package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RainersCode/rugby-team-portal/config"
	"github.com/RainersCode/rugby-team-portal/internal/services"
	"github.com/RainersCode/rugby-team-portal/internal/store"
	"github.com/RainersCode/rugby-team-portal/types"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

const testCookieName = "portal_session"

type memUserRepo struct {
	byID    map[string]types.User
	byEmail map[string]types.User
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (types.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *memUserRepo) Create(ctx context.Context, user types.User, profile types.Profile) (types.User, error) {
	m.byID[user.ID] = user
	m.byEmail[user.Email] = user
	return user, nil
}

type memProfileRepo struct {
	profiles map[string]types.Profile
	err      error
}

func (m *memProfileRepo) GetByUserID(ctx context.Context, userID string) (types.Profile, error) {
	if m.err != nil {
		return types.Profile{}, m.err
	}
	profile, ok := m.profiles[userID]
	if !ok {
		return types.Profile{}, store.ErrNotFound
	}
	return profile, nil
}

type memSessionRepo struct {
	sessions map[string]types.Session
}

func (m *memSessionRepo) Create(ctx context.Context, session types.Session) (types.Session, error) {
	session.CreatedAt = time.Now()
	m.sessions[session.ID] = session
	return session, nil
}

func (m *memSessionRepo) GetByID(ctx context.Context, id string) (types.Session, error) {
	session, ok := m.sessions[id]
	if !ok || session.Expired(time.Now()) {
		return types.Session{}, store.ErrNotFound
	}
	return session, nil
}

func (m *memSessionRepo) Rotate(ctx context.Context, id, newRefreshToken string, newExpiry time.Time) (types.Session, error) {
	session, ok := m.sessions[id]
	if !ok || session.Expired(time.Now()) {
		return types.Session{}, store.ErrNotFound
	}
	session.RefreshToken = newRefreshToken
	session.ExpiresAt = newExpiry
	m.sessions[id] = session
	return session, nil
}

func (m *memSessionRepo) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

type authFixture struct {
	service  *services.AuthService
	profiles *memProfileRepo
	sessions *memSessionRepo
	router   *chi.Mux
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("scrumhalf9"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := types.User{ID: "user-1", Email: "captain@club.lv", PasswordHash: string(hashed)}

	users := &memUserRepo{
		byID:    map[string]types.User{user.ID: user},
		byEmail: map[string]types.User{user.Email: user},
	}
	profiles := &memProfileRepo{profiles: map[string]types.Profile{
		user.ID: {ID: user.ID, Role: types.RoleUser},
	}}
	sessions := &memSessionRepo{sessions: make(map[string]types.Session)}

	service := services.NewAuthService(users, profiles, sessions, "test-secret", services.AuthConfig{
		SessionMaxAge:  time.Hour,
		AccessTokenTTL: 15 * time.Minute,
	})

	router := chi.NewRouter()
	router.Route("/api/auth", func(r chi.Router) {
		AuthRouter(r, service, config.CookieConfig{Name: testCookieName}, nil, nil)
	})

	return &authFixture{service: service, profiles: profiles, sessions: sessions, router: router}
}

func (f *authFixture) signIn(t *testing.T) *http.Cookie {
	t.Helper()
	body := strings.NewReader(`{"email":"captain@club.lv","password":"scrumhalf9"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", body)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("sign in status = %d, body %s", rec.Code, rec.Body.String())
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == testCookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("sign in did not set the session cookie")
	return nil
}

func TestSignInInvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)

	body := strings.NewReader(`{"email":"captain@club.lv","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", body)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Error != "Invalid email or password" {
		t.Fatalf("error = %q, want %q", resp.Error, "Invalid email or password")
	}
}

func TestSignInMissingFields(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(`{"email":"captain@club.lv"}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSignInSetsHTTPOnlyCookie(t *testing.T) {
	f := newAuthFixture(t)
	cookie := f.signIn(t)

	if !cookie.HttpOnly {
		t.Fatal("session cookie must be HTTP-only")
	}
	if _, ok := f.sessions.sessions[cookie.Value]; !ok {
		t.Fatalf("cookie value %q does not match a stored session", cookie.Value)
	}
}

func assertNoStore(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if got := rec.Header().Get("Cache-Control"); got != "no-cache, no-store, must-revalidate" {
		t.Fatalf("Cache-Control = %q", got)
	}
	if got := rec.Header().Get("Pragma"); got != "no-cache" {
		t.Fatalf("Pragma = %q", got)
	}
	if got := rec.Header().Get("Expires"); got != "0" {
		t.Fatalf("Expires = %q", got)
	}
}

func TestRefreshAnonymous(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Error != "Not authenticated" {
		t.Fatalf("error = %q, want %q", resp.Error, "Not authenticated")
	}
	assertNoStore(t, rec)
}

func TestRefreshAuthenticated(t *testing.T) {
	f := newAuthFixture(t)
	cookie := f.signIn(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	assertNoStore(t, rec)

	var resp SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.User.ID != "user-1" || resp.User.Role != types.RoleUser {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
	if resp.IsAdmin {
		t.Fatal("plain user must not be admin")
	}
	if resp.Session.AccessToken == "" {
		t.Fatal("expected a minted access token")
	}

	// Read-only: the stored refresh token must be untouched.
	stored := f.sessions.sessions[cookie.Value]
	before := stored.RefreshToken
	f.router.ServeHTTP(httptest.NewRecorder(), req.Clone(req.Context()))
	if f.sessions.sessions[cookie.Value].RefreshToken != before {
		t.Fatal("refresh endpoint must not rotate the session")
	}
}

func TestRefreshMissingProfileFailsClosed(t *testing.T) {
	f := newAuthFixture(t)
	cookie := f.signIn(t)
	delete(f.profiles.profiles, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.IsAdmin {
		t.Fatal("missing profile must yield isAdmin false")
	}
}

func TestRefreshProfileErrorIs500(t *testing.T) {
	f := newAuthFixture(t)
	cookie := f.signIn(t)
	f.profiles.err = context.DeadlineExceeded

	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	assertNoStore(t, rec)
}

func TestSessionStatusRoutes(t *testing.T) {
	f := newAuthFixture(t)
	cookie := f.signIn(t)
	before := f.sessions.sessions[cookie.Value].RefreshToken

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp SessionStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Status != "authenticated" || resp.User.ID != "user-1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp.SessionExpires.IsZero() {
		t.Fatal("sessionExpires must be set")
	}
	if f.sessions.sessions[cookie.Value].RefreshToken != before {
		t.Fatal("GET session must not rotate")
	}

	// POST forces a rotation.
	postReq := httptest.NewRequest(http.MethodPost, "/api/auth/session", nil)
	postReq.AddCookie(cookie)
	postRec := httptest.NewRecorder()
	f.router.ServeHTTP(postRec, postReq)

	if postRec.Code != http.StatusOK {
		t.Fatalf("POST status = %d, body %s", postRec.Code, postRec.Body.String())
	}
	if f.sessions.sessions[cookie.Value].RefreshToken == before {
		t.Fatal("POST session must rotate the refresh token")
	}
}

func TestSignOutClearsCookie(t *testing.T) {
	f := newAuthFixture(t)
	cookie := f.signIn(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if _, ok := f.sessions.sessions[cookie.Value]; ok {
		t.Fatal("session row must be deleted")
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("session cookie must be cleared")
	}
}

func TestSignUpConflict(t *testing.T) {
	f := newAuthFixture(t)

	body := strings.NewReader(`{"email":"captain@club.lv","password":"whatever","first_name":"J","last_name":"B"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", body)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}
