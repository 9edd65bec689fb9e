// Package metrics collects and exposes Prometheus metrics for the auth
// protocol and the API surface.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh paths and outcomes recorded by the collector.
const (
	PathPrimary  = "primary"
	PathFallback = "fallback"

	OutcomeAuthenticated = "authenticated"
	OutcomeAnonymous     = "anonymous"
	OutcomeError         = "error"
)

// Collector records auth protocol events. A nil *Collector is safe to use;
// all methods become no-ops so callers never need to guard.
type Collector struct {
	signins      *prometheus.CounterVec
	refreshes    *prometheus.CounterVec
	guardRetries prometheus.Counter
	pageRedirect *prometheus.CounterVec
}

// NewCollector registers the auth metrics on the given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_signin_total",
			Help: "Sign-in attempts by result.",
		}, []string{"result"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_auth_refresh_total",
			Help: "Auth refreshes by path taken and outcome.",
		}, []string{"path", "outcome"}),
		guardRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_admin_guard_retries_total",
			Help: "Delayed admin re-checks performed by the admin guard.",
		}),
		pageRedirect: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_page_guard_redirect_total",
			Help: "Redirects issued by the page guard middleware by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(c.signins, c.refreshes, c.guardRetries, c.pageRedirect)
	return c
}

// RecordSignIn records a sign-in attempt result ("ok", "invalid", "error").
func (c *Collector) RecordSignIn(result string) {
	if c == nil {
		return
	}
	c.signins.WithLabelValues(result).Inc()
}

// RecordRefresh records an auth refresh by path and outcome.
func (c *Collector) RecordRefresh(path, outcome string) {
	if c == nil {
		return
	}
	c.refreshes.WithLabelValues(path, outcome).Inc()
}

// RecordGuardRetry records one delayed admin re-check.
func (c *Collector) RecordGuardRetry() {
	if c == nil {
		return
	}
	c.guardRetries.Inc()
}

// RecordPageRedirect records a page guard redirect by reason
// ("unauthenticated", "not_admin", "already_authenticated").
func (c *Collector) RecordPageRedirect(reason string) {
	if c == nil {
		return
	}
	c.pageRedirect.WithLabelValues(reason).Inc()
}

// Handler returns the Prometheus scrape handler for the registry.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
