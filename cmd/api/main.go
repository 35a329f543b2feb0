// Package main is the entrypoint for the folio server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/foliocms/folio/internal/auth"
	"github.com/foliocms/folio/internal/cache"
	"github.com/foliocms/folio/internal/config"
	"github.com/foliocms/folio/internal/handler"
	"github.com/foliocms/folio/internal/metrics"
	"github.com/foliocms/folio/internal/middleware"
	"github.com/foliocms/folio/internal/repository"
	"github.com/foliocms/folio/internal/server"
	"github.com/foliocms/folio/internal/service"
	"github.com/foliocms/folio/internal/storage"
	"github.com/foliocms/folio/internal/view"
)

// handlers groups everything setupRouter mounts.
type handlers struct {
	base       *handler.Handler
	health     *handler.HealthHandler
	metrics    *handler.MetricsHandler
	auth       *handler.AuthHandler
	tech       *handler.TechHandler
	experience *handler.ExperienceHandler
	project    *handler.ProjectHandler
	portfolio  *handler.PortfolioHandler
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return err
	}
	logger.Info("connected to database")

	if err := repo.Migrate(ctx); err != nil {
		repo.Close()
		return err
	}
	logger.Info("migrations applied")

	// Flash storage
	var flashes handler.FlashStore = handler.CookieFlashes{Secure: cfg.SecureCookies()}
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			repo.Close()
			return err
		}
		flashes = handler.NewRedisFlashes(cacheClient, cfg.SecureCookies(), logger)
		logger.Info("connected to Redis")
	}

	// Object storage
	s3api, err := storage.NewClient(ctx, storage.ClientOptions{
		Region:         cfg.S3Region,
		Endpoint:       cfg.S3Endpoint,
		ForcePathStyle: cfg.S3ForcePathStyle,
		AccessKeyID:    cfg.AWSAccessKeyID,
		SecretKey:      cfg.AWSSecretKey,
	})
	if err != nil {
		repo.Close()
		return err
	}
	gateway := storage.NewGateway(s3api, cfg.S3Bucket, cfg.S3Region, storage.WithPublicBaseURL(cfg.S3PublicBaseURL))

	// Services
	tokens := auth.NewTokenIssuer(cfg.JWTSecret)
	recorder := metrics.NewInMemory()
	opts := service.Options{
		ReleaseImageOnDelete: cfg.ReleaseImageOnDelete,
		Metrics:              recorder,
	}
	authService := service.NewAuthService(repo, auth.NewHasher(cfg.BcryptCost), tokens, logger)
	techService := service.NewTechService(repo, gateway, opts, logger)
	experienceService := service.NewExperienceService(repo, gateway, opts, logger)
	projectService := service.NewProjectService(repo, gateway, opts, logger)

	// Handlers
	checks := map[string]handler.HealthChecker{"postgres": repo, "s3": gateway, "redis": nil}
	if cacheClient != nil {
		checks["redis"] = cacheClient
	}
	base := handler.New(view.NewRenderer(gateway.URL), flashes, cfg.MaxUploadBytes, logger)
	hs := handlers{
		base:       base,
		health:     handler.NewHealthHandler(checks),
		metrics:    handler.NewMetricsHandler(recorder),
		auth:       handler.NewAuthHandler(base, authService, tokens.TTL(), cfg.SecureCookies()),
		tech:       handler.NewTechHandler(base, techService),
		experience: handler.NewExperienceHandler(base, experienceService),
		project:    handler.NewProjectHandler(base, projectService),
		portfolio:  handler.NewPortfolioHandler(base, techService, experienceService, projectService),
	}

	r := setupRouter(hs, authService, imageOrigin(gateway.URL("origin")), cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"bucket", cfg.S3Bucket,
		"require_auth", cfg.RequireAuth,
	)

	return srv.Run(ctx)
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(hs handlers, verifier middleware.Verifier, imageOrigin string, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	var origins []string
	if imageOrigin != "" {
		origins = append(origins, imageOrigin)
	}

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: cfg.IsDevelopment(),
		ImageOrigins:  origins,
	}))
	r.Use(middleware.Session(verifier, logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	// Health endpoints
	r.Get("/healthz", hs.health.Healthz)
	r.Get("/readyz", hs.health.Readyz)
	r.Get("/metrics", hs.metrics.Metrics)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/tech", http.StatusFound)
	})
	r.Get("/portfolio", hs.portfolio.Show)

	// Form bodies are capped with some headroom over the image limit.
	limit := middleware.MaxBodySize(cfg.MaxUploadBytes + 1<<20)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", hs.auth.LoginForm)
		r.With(limit).Post("/login", hs.auth.Login)
		r.Get("/register", hs.auth.RegisterForm)
		r.With(limit).Post("/register", hs.auth.Register)
		r.Get("/logout", hs.auth.Logout)
	})

	// Mutations optionally require a session.
	write := func(r chi.Router) chi.Router {
		r = r.With(limit)
		if cfg.RequireAuth {
			r = r.With(middleware.RequireAuth("/auth/login", logger))
		}
		return r
	}
	scripted := func(r chi.Router) chi.Router {
		r = r.With(limit)
		if cfg.RequireAuth {
			r = r.With(middleware.RequireAuthJSON(logger))
		}
		return r
	}

	r.Route("/tech", func(r chi.Router) {
		r.Get("/", hs.tech.List)
		write(r).Post("/", hs.tech.Create)
		write(r).Get("/create", hs.tech.CreateForm)
		write(r).Post("/create", hs.tech.Create)
		write(r).Get("/edit/{id}", hs.tech.EditForm)
		write(r).Post("/edit/{id}", hs.tech.Update)
		scripted(r).Post("/update/{id}", hs.tech.UpdateInPlace)
		write(r).Post("/delete/{id}", hs.tech.Delete)
	})

	r.Route("/experiences", func(r chi.Router) {
		r.Get("/", hs.experience.List)
		write(r).Get("/create", hs.experience.CreateForm)
		write(r).Post("/create", hs.experience.Create)
		write(r).Get("/edit/{id}", hs.experience.EditForm)
		write(r).Post("/edit/{id}", hs.experience.Update)
		write(r).Post("/delete/{id}", hs.experience.Delete)
	})

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", hs.project.List)
		write(r).Get("/create", hs.project.CreateForm)
		write(r).Post("/create", hs.project.Create)
		write(r).Get("/edit/{id}", hs.project.EditForm)
		write(r).Post("/edit/{id}", hs.project.Update)
		write(r).Post("/delete/{id}", hs.project.Delete)
	})

	// 404 and 405 handlers
	r.NotFound(hs.base.NotFound)
	r.MethodNotAllowed(hs.base.MethodNotAllowed)

	return r
}

// imageOrigin returns the scheme and host images are served from.
func imageOrigin(sample string) string {
	u, err := url.Parse(sample)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
