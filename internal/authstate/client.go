package authstate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/RainersCode/rugby-team-portal/types"
)

// refreshTimeout bounds one refresh round trip so a stalled upstream cannot
// wedge the manager's single-flight lock.
const refreshTimeout = 8 * time.Second

// HTTPRefreshClient calls the auth refresh endpoint with the current
// session cookie. SessionID is read per call so cookie rotation is picked
// up automatically.
type HTTPRefreshClient struct {
	baseURL    string
	cookieName string
	sessionID  func() string
	client     *http.Client
}

func NewHTTPRefreshClient(baseURL, cookieName string, sessionID func() string) *HTTPRefreshClient {
	return &HTTPRefreshClient{
		baseURL:    baseURL,
		cookieName: cookieName,
		sessionID:  sessionID,
		client:     &http.Client{Timeout: refreshTimeout},
	}
}

type refreshUserPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type refreshSessionPayload struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type refreshPayload struct {
	User    refreshUserPayload    `json:"user"`
	Session refreshSessionPayload `json:"session"`
	IsAdmin bool                  `json:"isAdmin"`
}

// Refresh performs one round trip. A 401 yields an anonymous result with a
// nil error; any other failure is returned to the caller so it can take
// the fallback path.
func (c *HTTPRefreshClient) Refresh(ctx context.Context) (RefreshResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/refresh", nil)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("build refresh request: %w", err)
	}
	if sessionID := c.sessionID(); sessionID != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: sessionID})
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("refresh request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload refreshPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return RefreshResult{}, fmt.Errorf("decode refresh response: %w", err)
		}
		return RefreshResult{
			Authenticated: true,
			User: types.User{
				ID:    payload.User.ID,
				Email: payload.User.Email,
			},
			Session: types.Session{
				AccessToken: payload.Session.AccessToken,
				ExpiresAt:   payload.Session.ExpiresAt,
			},
			IsAdmin: payload.IsAdmin,
		}, nil
	case http.StatusUnauthorized:
		return RefreshResult{}, nil
	default:
		return RefreshResult{}, fmt.Errorf("refresh endpoint returned %d", resp.StatusCode)
	}
}
