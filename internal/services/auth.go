package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/RainersCode/rugby-team-portal/internal/store"
	"github.com/RainersCode/rugby-team-portal/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors for the auth use-cases.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// Auth event types emitted to subscribers.
const (
	EventSignedIn       = "SIGNED_IN"
	EventSignedOut      = "SIGNED_OUT"
	EventTokenRefreshed = "TOKEN_REFRESHED"
)

// AuthEvent notifies subscribers of a session state change.
type AuthEvent struct {
	Type   string
	UserID string
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User, profile types.Profile) (types.User, error)
}

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (types.Profile, error)
}

// SessionRepository defines persistence operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session types.Session) (types.Session, error)
	GetByID(ctx context.Context, id string) (types.Session, error)
	Rotate(ctx context.Context, id, newRefreshToken string, newExpiry time.Time) (types.Session, error)
	Delete(ctx context.Context, id string) error
}

// AuthConfig carries session and token lifetimes.
type AuthConfig struct {
	SessionMaxAge  time.Duration
	AccessTokenTTL time.Duration
}

// AuthService is the session store: it issues, validates, refreshes and
// revokes sessions, and derives admin status from the profiles table. Admin
// status is re-read on every call, never cached.
type AuthService struct {
	users    UserRepository
	profiles ProfileRepository
	sessions SessionRepository
	secret   []byte
	config   AuthConfig

	mu          sync.Mutex
	subscribers map[int]func(AuthEvent)
	nextSubID   int
}

func NewAuthService(
	users UserRepository,
	profiles ProfileRepository,
	sessions SessionRepository,
	jwtSecret string,
	config AuthConfig,
) *AuthService {
	if config.SessionMaxAge <= 0 {
		config.SessionMaxAge = 7 * 24 * time.Hour
	}
	if config.AccessTokenTTL <= 0 {
		config.AccessTokenTTL = time.Hour
	}
	return &AuthService{
		users:       users,
		profiles:    profiles,
		sessions:    sessions,
		secret:      []byte(jwtSecret),
		config:      config,
		subscribers: make(map[int]func(AuthEvent)),
	}
}

// Subscribe registers a callback for auth events and returns an unsubscribe
// function. Callbacks run synchronously on the goroutine emitting the event.
func (s *AuthService) Subscribe(fn func(AuthEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// SignUp creates a user with a profile (role "user") and returns the user.
func (s *AuthService) SignUp(ctx context.Context, email, password, firstName, lastName string) (types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return types.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := types.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashed),
	}
	profile := types.Profile{
		ID:        user.ID,
		Role:      types.RoleUser,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	}

	created, err := s.users.Create(ctx, user, profile)
	if err != nil {
		return types.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.Info("user registered", slog.String("user_id", created.ID))
	return created, nil
}

// SignIn verifies credentials and issues a session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (types.Session, types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Session{}, types.User{}, ErrInvalidCredentials
		}
		return types.Session{}, types.User{}, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.Session{}, types.User{}, ErrInvalidCredentials
	}

	refreshToken, err := generateToken()
	if err != nil {
		return types.Session{}, types.User{}, fmt.Errorf("generate refresh token: %w", err)
	}

	session, err := s.sessions.Create(ctx, types.Session{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.config.SessionMaxAge),
	})
	if err != nil {
		return types.Session{}, types.User{}, fmt.Errorf("create session: %w", err)
	}

	session.AccessToken, err = s.mintAccessToken(user.ID, session.ID)
	if err != nil {
		return types.Session{}, types.User{}, fmt.Errorf("mint access token: %w", err)
	}

	s.emit(AuthEvent{Type: EventSignedIn, UserID: user.ID})
	slog.Info("user signed in", slog.String("user_id", user.ID))
	return session, user, nil
}

// SignOut deletes the session. Unknown session IDs are not an error; the
// outcome (no session) is the same.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load session: %w", err)
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.emit(AuthEvent{Type: EventSignedOut, UserID: session.UserID})
	return nil
}

// GetSession validates the session and returns it with a fresh access token
// and the owning user. Expired or unknown sessions yield ErrNotAuthenticated.
// Read-only: session state is not mutated.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (types.Session, types.User, error) {
	if sessionID == "" {
		return types.Session{}, types.User{}, ErrNotAuthenticated
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Session{}, types.User{}, ErrNotAuthenticated
		}
		return types.Session{}, types.User{}, fmt.Errorf("load session: %w", err)
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Session{}, types.User{}, ErrNotAuthenticated
		}
		return types.Session{}, types.User{}, fmt.Errorf("load user: %w", err)
	}

	session.AccessToken, err = s.mintAccessToken(user.ID, session.ID)
	if err != nil {
		return types.Session{}, types.User{}, fmt.Errorf("mint access token: %w", err)
	}
	return session, user, nil
}

// RefreshSession rotates the refresh token, extends the expiry and re-mints
// the access token. The previous refresh token is invalid afterwards.
func (s *AuthService) RefreshSession(ctx context.Context, sessionID string) (types.Session, types.User, error) {
	if sessionID == "" {
		return types.Session{}, types.User{}, ErrNotAuthenticated
	}

	refreshToken, err := generateToken()
	if err != nil {
		return types.Session{}, types.User{}, fmt.Errorf("generate refresh token: %w", err)
	}

	session, err := s.sessions.Rotate(ctx, sessionID, refreshToken, time.Now().Add(s.config.SessionMaxAge))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Session{}, types.User{}, ErrNotAuthenticated
		}
		return types.Session{}, types.User{}, fmt.Errorf("rotate session: %w", err)
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Session{}, types.User{}, ErrNotAuthenticated
		}
		return types.Session{}, types.User{}, fmt.Errorf("load user: %w", err)
	}

	session.AccessToken, err = s.mintAccessToken(user.ID, session.ID)
	if err != nil {
		return types.Session{}, types.User{}, fmt.Errorf("mint access token: %w", err)
	}

	s.emit(AuthEvent{Type: EventTokenRefreshed, UserID: user.ID})
	return session, user, nil
}

// Profile re-reads the profile row for the user. Callers distinguish a
// missing row (store.ErrNotFound) from a lookup failure.
func (s *AuthService) Profile(ctx context.Context, userID string) (types.Profile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// IsAdmin re-reads the profile role and reports admin status. Fail closed:
// any error, including a missing profile row, yields false.
func (s *AuthService) IsAdmin(ctx context.Context, userID string) bool {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("profile lookup failed, denying admin",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
		return false
	}
	return profile.IsAdmin()
}

// VerifyAccessToken parses and validates an access token, returning the
// user ID and session ID claims.
func (s *AuthService) VerifyAccessToken(tokenString string) (userID, sessionID string, err error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return "", "", err
	}
	if !token.Valid {
		return "", "", errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", "", errors.New("missing subject")
	}
	return claims.Subject, claims.ID, nil
}

func (s *AuthService) mintAccessToken(userID, sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *AuthService) emit(event AuthEvent) {
	s.mu.Lock()
	subscribers := make([]func(AuthEvent), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(event)
	}
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
