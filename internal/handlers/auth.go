package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/RainersCode/rugby-team-portal/config"
	"github.com/RainersCode/rugby-team-portal/internal/metrics"
	"github.com/RainersCode/rugby-team-portal/internal/middleware"
	"github.com/RainersCode/rugby-team-portal/internal/services"
	"github.com/RainersCode/rugby-team-portal/internal/store"
	"github.com/RainersCode/rugby-team-portal/types"
	"github.com/go-chi/chi/v5"
)

// AuthHandler provides the cookie-session authentication endpoints.
type AuthHandler struct {
	authService *services.AuthService
	cookie      config.CookieConfig
	collector   *metrics.Collector
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(authService *services.AuthService, cookie config.CookieConfig, collector *metrics.Collector) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
		collector:   collector,
	}
}

// AuthRouter registers auth routes on the given router. The sign-in route
// takes an optional rate limiting middleware.
func AuthRouter(
	r chi.Router,
	authService *services.AuthService,
	cookie config.CookieConfig,
	collector *metrics.Collector,
	signInLimiter func(http.Handler) http.Handler,
) {
	handler := NewAuthHandler(authService, cookie, collector)

	r.Post("/signup", handler.SignUp)
	if signInLimiter != nil {
		r.With(signInLimiter).Post("/signin", handler.SignIn)
	} else {
		r.Post("/signin", handler.SignIn)
	}
	r.Post("/signout", handler.SignOut)
	r.Get("/refresh", handler.Refresh)
	r.Get("/session", handler.GetSessionStatus)
	r.Post("/session", handler.RefreshSessionStatus)
}

// SignUp creates an account with a default-role profile.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	user, err := h.authService.SignUp(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, SignUpResponse{User: userPayloadFrom(user, types.RoleUser)})
}

// SignIn verifies credentials, creates a session and sets the session cookie.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	session, user, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.collector.RecordSignIn("invalid")
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.collector.RecordSignIn("error")
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}

	role, err := h.roleFor(r, user.ID)
	if err != nil {
		h.collector.RecordSignIn("error")
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	h.setSessionCookie(w, session)
	h.collector.RecordSignIn("ok")
	writeJSON(w, http.StatusOK, SessionResponse{
		User:    userPayloadFrom(user, role),
		Session: sessionPayloadFrom(session),
		IsAdmin: role == types.RoleAdmin,
	})
}

// SignOut deletes the session and clears the cookie. Succeeds even when no
// session cookie is present.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionIDFromCookie(r)

	if err := h.authService.SignOut(r.Context(), sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign out")
		return
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Refresh validates the session and reports the current auth state with a
// live admin status. It is read-only: it never rotates the session or
// touches cookies, and the response is never cacheable because a cached
// body would replay stale session state into every caller.
//
// A missing profile row yields isAdmin false with a 200; a failed profile
// read is a 500, because the caller cannot distinguish "not admin" from
// "could not check" on its own.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	setNoStore(w)

	session, user, err := h.authService.GetSession(r.Context(), h.sessionIDFromCookie(r))
	if err != nil {
		if errors.Is(err, services.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	role, err := h.roleFor(r, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		User:    userPayloadFrom(user, role),
		Session: sessionPayloadFrom(session),
		IsAdmin: role == types.RoleAdmin,
	})
}

// GetSessionStatus reports the current session without rotating it.
func (h *AuthHandler) GetSessionStatus(w http.ResponseWriter, r *http.Request) {
	setNoStore(w)

	session, user, err := h.authService.GetSession(r.Context(), h.sessionIDFromCookie(r))
	if err != nil {
		if errors.Is(err, services.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	h.writeSessionStatus(w, r, session, user)
}

// RefreshSessionStatus rotates the session before reporting it. The rotated
// session gets a fresh cookie with the extended expiry.
func (h *AuthHandler) RefreshSessionStatus(w http.ResponseWriter, r *http.Request) {
	setNoStore(w)

	session, user, err := h.authService.RefreshSession(r.Context(), h.sessionIDFromCookie(r))
	if err != nil {
		if errors.Is(err, services.ErrNotAuthenticated) {
			h.clearSessionCookie(w)
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to refresh session")
		return
	}

	h.setSessionCookie(w, session)
	h.writeSessionStatus(w, r, session, user)
}

func (h *AuthHandler) writeSessionStatus(w http.ResponseWriter, r *http.Request, session types.Session, user types.User) {
	role, err := h.roleFor(r, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, SessionStatusResponse{
		Status:         "authenticated",
		User:           userPayloadFrom(user, role),
		SessionExpires: session.ExpiresAt,
	})
}

// roleFor reads the live profile role. A missing profile is the default
// role, not an error.
func (h *AuthHandler) roleFor(r *http.Request, userID string) (string, error) {
	profile, err := h.authService.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.RoleUser, nil
		}
		return "", err
	}
	return profile.Role, nil
}

func (h *AuthHandler) sessionIDFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(h.cookie.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session types.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.ID,
		Path:     "/",
		Domain:   h.cookie.Domain,
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSite,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSite,
	})
}

// setNoStore marks the response uncacheable for browsers and proxies alike.
func setNoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

// ProfileRouter registers the current-user profile routes.
func ProfileRouter(r chi.Router, authService *services.AuthService, profiles ProfileUpdater) {
	handler := &ProfileHandler{authService: authService, profiles: profiles}
	r.Get("/", handler.Get)
	r.Put("/", handler.Update)
}

// ProfileUpdater persists profile field changes.
type ProfileUpdater interface {
	Update(ctx context.Context, profile types.Profile) (types.Profile, error)
}

// ProfileHandler serves the authenticated user's profile.
type ProfileHandler struct {
	authService *services.AuthService
	profiles    ProfileUpdater
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	profile, err := h.authService.Profile(r.Context(), userID)
	if err != nil {
		writeStoreError(w, err, "profile not found", "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req ProfileUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	current, err := h.authService.Profile(r.Context(), userID)
	if err != nil {
		writeStoreError(w, err, "profile not found", "failed to load profile")
		return
	}

	current.FirstName = strings.TrimSpace(req.FirstName)
	current.LastName = strings.TrimSpace(req.LastName)

	updated, err := h.profiles.Update(r.Context(), current)
	if err != nil {
		writeStoreError(w, err, "profile not found", "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type SignUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type SignUpResponse struct {
	User UserPayload `json:"user"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is the shared payload of the sign-in, session and refresh
// endpoints; the guards depend on all three converging to the same shape.
type SessionResponse struct {
	User    UserPayload    `json:"user"`
	Session SessionPayload `json:"session"`
	IsAdmin bool           `json:"isAdmin"`
}

// SessionStatusResponse is the payload of the session status routes.
type SessionStatusResponse struct {
	Status         string      `json:"status"`
	User           UserPayload `json:"user"`
	SessionExpires time.Time   `json:"sessionExpires"`
}

type UserPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type SessionPayload struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type ProfileUpdateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func userPayloadFrom(user types.User, role string) UserPayload {
	return UserPayload{ID: user.ID, Email: user.Email, Role: role}
}

func sessionPayloadFrom(session types.Session) SessionPayload {
	return SessionPayload{AccessToken: session.AccessToken, ExpiresAt: session.ExpiresAt}
}
