// Package authstate mirrors the server-side session for a signed-in client.
// A Manager periodically refreshes its view through the auth refresh
// endpoint, falls back to direct session and profile reads when that
// endpoint is unreachable, and exposes guards that gate protected views on
// the resolved state.
package authstate

import (
	"context"

	"github.com/RainersCode/rugby-team-portal/types"
)

// State is a snapshot of the mirrored auth state.
//
// IsLoading is true until the first Refresh completes and never reverts
// afterwards; later refreshes toggle CheckingSession instead so consumers
// can distinguish "never resolved" from "re-validating".
type State struct {
	User            *types.User
	Session         *types.Session
	IsAdmin         bool
	IsLoading       bool
	CheckingSession bool
}

// Authenticated reports whether the state carries a signed-in user.
func (s State) Authenticated() bool {
	return s.User != nil
}

// SessionSource reads a session directly from the session store. Used on
// the fallback path when the refresh endpoint fails.
type SessionSource interface {
	GetSession(ctx context.Context, sessionID string) (types.Session, types.User, error)
}

// ProfileSource reads a profile directly from the session store.
type ProfileSource interface {
	Profile(ctx context.Context, userID string) (types.Profile, error)
}

// Navigator abstracts the view layer's location. CurrentPath returns the
// path being displayed; Navigate requests a client-side redirect.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

// RefreshResult is the outcome of one call against the refresh endpoint.
// Authenticated false with a nil error means the server answered 401; the
// caller is anonymous, not in an error state.
type RefreshResult struct {
	Authenticated bool
	User          types.User
	Session       types.Session
	IsAdmin       bool
}

// RefreshClient performs the primary refresh.
type RefreshClient interface {
	Refresh(ctx context.Context) (RefreshResult, error)
}
