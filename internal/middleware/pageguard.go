package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/RainersCode/rugby-team-portal/internal/metrics"
)

// Default page guard paths.
const (
	defaultSignInPath = "/auth/signin"
	defaultHomePath   = "/"
)

// defaultProtectedPrefixes are the page prefixes requiring a session.
var defaultProtectedPrefixes = []string{"/members", "/profile", "/settings", "/admin"}

// PageGuardConfig configures the page guard.
type PageGuardConfig struct {
	CookieName        string
	SignInPath        string
	HomePath          string
	ProtectedPrefixes []string
	AdminPrefix       string
	AuthPrefix        string
}

// PageGuard is the server-side enforcement point for page routes. It runs
// before any page handler: protected prefixes without a valid session
// redirect to sign-in carrying the original path in a redirect parameter,
// the admin prefix additionally re-reads the profile role, and auth pages
// bounce already-authenticated visitors home. It is intentionally
// independent of the client-side guards; each enforcement point denies on
// its own.
type PageGuard struct {
	validator SessionValidator
	checker   AdminChecker
	collector *metrics.Collector
	config    PageGuardConfig
}

func NewPageGuard(validator SessionValidator, checker AdminChecker, collector *metrics.Collector, config PageGuardConfig) *PageGuard {
	if config.SignInPath == "" {
		config.SignInPath = defaultSignInPath
	}
	if config.HomePath == "" {
		config.HomePath = defaultHomePath
	}
	if config.ProtectedPrefixes == nil {
		config.ProtectedPrefixes = defaultProtectedPrefixes
	}
	if config.AdminPrefix == "" {
		config.AdminPrefix = "/admin"
	}
	if config.AuthPrefix == "" {
		config.AuthPrefix = "/auth"
	}
	return &PageGuard{
		validator: validator,
		checker:   checker,
		collector: collector,
		config:    config,
	}
}

// Middleware applies the guard rules to the wrapped handler.
func (g *PageGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		userID, authenticated := g.currentUser(r)

		if hasPathPrefix(path, g.config.AuthPrefix) {
			if authenticated {
				g.redirect(w, r, g.config.HomePath, "already_authenticated")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		protected := false
		for _, prefix := range g.config.ProtectedPrefixes {
			if hasPathPrefix(path, prefix) {
				protected = true
				break
			}
		}
		if !protected {
			next.ServeHTTP(w, r)
			return
		}

		if !authenticated {
			target := g.config.SignInPath + "?redirect=" + url.QueryEscape(path)
			g.redirect(w, r, target, "unauthenticated")
			return
		}

		if hasPathPrefix(path, g.config.AdminPrefix) && !g.checker.IsAdmin(r.Context(), userID) {
			g.redirect(w, r, g.config.HomePath, "not_admin")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *PageGuard) currentUser(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(g.config.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	_, user, err := g.validator.GetSession(r.Context(), cookie.Value)
	if err != nil {
		return "", false
	}
	return user.ID, true
}

func (g *PageGuard) redirect(w http.ResponseWriter, r *http.Request, target, reason string) {
	g.collector.RecordPageRedirect(reason)
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// hasPathPrefix matches whole path segments: "/admin" covers "/admin" and
// "/admin/articles" but not "/administrator".
func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
