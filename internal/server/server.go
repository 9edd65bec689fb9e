package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/RainersCode/rugby-team-portal/config"
	"github.com/RainersCode/rugby-team-portal/internal/db"
	"github.com/RainersCode/rugby-team-portal/internal/events"
	"github.com/RainersCode/rugby-team-portal/internal/handlers"
	"github.com/RainersCode/rugby-team-portal/internal/metrics"
	"github.com/RainersCode/rugby-team-portal/internal/middleware"
	"github.com/RainersCode/rugby-team-portal/internal/security"
	"github.com/RainersCode/rugby-team-portal/internal/services"
	"github.com/RainersCode/rugby-team-portal/internal/storage"
	"github.com/RainersCode/rugby-team-portal/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *events.Publisher
	limiter    *middleware.RateLimiter
}

// New constructs a Server with all routes and middleware wired.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	photoStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("init photo storage: %w", err)
	}
	if err := photoStore.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("ensure photo bucket: %w", err)
	}

	publisher, err := events.NewPublisher(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("init event publisher: %w", err)
	}

	userRepo := store.NewUserRepository(dbConn)
	profileRepo := store.NewProfileRepository(dbConn)
	sessionRepo := store.NewSessionRepository(dbConn)
	articleRepo := store.NewArticleRepository(dbConn)
	matchRepo := store.NewMatchRepository(dbConn)
	playerRepo := store.NewPlayerRepository(dbConn)
	trainingRepo := store.NewTrainingRepository(dbConn)
	activityRepo := store.NewActivityRepository(dbConn)
	galleryRepo := store.NewGalleryRepository(dbConn)

	sanitizer := security.NewSanitizer()

	authService := services.NewAuthService(userRepo, profileRepo, sessionRepo, cfg.JWTSecret, services.AuthConfig{
		SessionMaxAge:  time.Duration(cfg.Session.MaxAgeSeconds) * time.Second,
		AccessTokenTTL: time.Duration(cfg.Session.AccessTokenTTL) * time.Second,
	})
	articleService := services.NewArticleService(articleRepo, sanitizer, publisher)
	matchService := services.NewMatchService(matchRepo, publisher)
	playerService := services.NewPlayerService(playerRepo)
	trainingService := services.NewTrainingService(trainingRepo)
	activityService := services.NewActivityService(activityRepo, publisher)
	galleryService := services.NewGalleryService(galleryRepo, photoStore)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	sessionMW := middleware.NewSessionMiddleware(authService, cfg.Cookie.Name)
	adminMW := middleware.NewRequireAdmin(authService)
	requireAdmin := func(next http.Handler) http.Handler {
		return sessionMW(adminMW(next))
	}

	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	pageGuard := middleware.NewPageGuard(authService, authService, collector, middleware.PageGuardConfig{
		CookieName: cfg.Cookie.Name,
	})

	router := chi.NewRouter()
	router.Use(
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		chimiddleware.Logger,
		chimiddleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Method(http.MethodGet, "/metrics", metrics.Handler(registry))

	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService, cfg.Cookie, collector, limiter.Middleware)
	})
	router.Route("/api/profile", func(r chi.Router) {
		r.Use(sessionMW)
		handlers.ProfileRouter(r, authService, profileRepo)
	})
	router.Route("/api/articles", func(r chi.Router) {
		handlers.ArticleRouter(r, articleService, requireAdmin)
	})
	router.Route("/api/matches", func(r chi.Router) {
		handlers.MatchRouter(r, matchService, requireAdmin)
	})
	router.Route("/api/players", func(r chi.Router) {
		handlers.PlayerRouter(r, playerService, requireAdmin)
	})
	router.Route("/api/trainings", func(r chi.Router) {
		handlers.TrainingRouter(r, trainingService, requireAdmin)
	})
	router.Route("/api/activities", func(r chi.Router) {
		handlers.ActivityRouter(r, activityService, requireAdmin)
	})
	router.Route("/api/galleries", func(r chi.Router) {
		handlers.GalleryRouter(r, galleryService, requireAdmin)
	})

	// Page routes serve the portal shell behind the page guard; the shell
	// bootstraps the client which then talks to /api.
	router.Group(func(r chi.Router) {
		r.Use(pageGuard.Middleware)
		shell := http.HandlerFunc(pageShell)
		r.Get("/", shell)
		for _, prefix := range []string{"/auth", "/members", "/profile", "/settings", "/admin"} {
			r.Get(prefix, shell)
			r.Get(prefix+"/*", shell)
		}
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		publisher:  publisher,
		limiter:    limiter,
	}, nil
}

func pageShell(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintln(w, `<!doctype html><html><head><title>Rugby Team Portal</title></head><body><div id="app"></div></body></html>`)
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown and releases held resources.
func (s *Server) Shutdown() error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
