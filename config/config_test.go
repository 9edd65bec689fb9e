package config

import (
	"net/http"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.ServerPort != 8080 {
		t.Fatalf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if cfg.Cookie.Name != "portal_session" {
		t.Fatalf("Cookie.Name = %q", cfg.Cookie.Name)
	}
	if cfg.Cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("Cookie.SameSite = %v, want lax", cfg.Cookie.SameSite)
	}
	if cfg.Session.MaxAgeSeconds != 7*24*3600 {
		t.Fatalf("Session.MaxAgeSeconds = %d", cfg.Session.MaxAgeSeconds)
	}
	if cfg.Storage.Backend != "minio" {
		t.Fatalf("Storage.Backend = %q", cfg.Storage.Backend)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("COOKIE_NAME", "club_session")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("COOKIE_SAMESITE", "strict")
	t.Setenv("DB_USE_SSL", "1")

	cfg := LoadConfig()

	if cfg.ServerPort != 9090 {
		t.Fatalf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if cfg.Cookie.Name != "club_session" {
		t.Fatalf("Cookie.Name = %q", cfg.Cookie.Name)
	}
	if !cfg.Cookie.Secure {
		t.Fatal("Cookie.Secure must be true")
	}
	if cfg.Cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("Cookie.SameSite = %v, want strict", cfg.Cookie.SameSite)
	}
	if !cfg.Database.UseSSL {
		t.Fatal("Database.UseSSL must be true")
	}
}

func TestParseSameSite(t *testing.T) {
	cases := map[string]http.SameSite{
		"none":   http.SameSiteNoneMode,
		"strict": http.SameSiteStrictMode,
		"lax":    http.SameSiteLaxMode,
		"":       http.SameSiteLaxMode,
		"bogus":  http.SameSiteLaxMode,
		"Strict": http.SameSiteStrictMode,
	}
	for in, want := range cases {
		if got := parseSameSite(in); got != want {
			t.Fatalf("parseSameSite(%q) = %v, want %v", in, got, want)
		}
	}
}
