// Package main is the entrypoint for the recipe API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ritesshguptaa/recipy-app-api/internal/auth"
	"github.com/ritesshguptaa/recipy-app-api/internal/cache"
	"github.com/ritesshguptaa/recipy-app-api/internal/config"
	"github.com/ritesshguptaa/recipy-app-api/internal/handler"
	"github.com/ritesshguptaa/recipy-app-api/internal/metrics"
	"github.com/ritesshguptaa/recipy-app-api/internal/middleware"
	"github.com/ritesshguptaa/recipy-app-api/internal/repository"
	"github.com/ritesshguptaa/recipy-app-api/internal/server"
	"github.com/ritesshguptaa/recipy-app-api/internal/service"
)

// authMinDuration pads token authentication so hits and misses take equally long.
const authMinDuration = 20 * time.Millisecond

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Wait for the database, then bring the schema up to date
	repo, err := repository.WaitForDB(ctx, cfg.DatabaseURL, repository.WaitOptions{
		Timeout:  cfg.DBWaitTimeout,
		Interval: cfg.DBWaitInterval,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
			logger.Error("failed to apply migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
			repo.Close()
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	// Redis is optional. Without it tokens are resolved from Postgres on
	// every request and rate limiting is off.
	var (
		cacheClient *cache.Cache
		authCache   service.AuthCache
		limiter     middleware.RateLimiter
		cacheProbe  handler.HealthChecker
	)
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL, cfg.TokenCacheTTL)
		if err != nil {
			logger.Error("failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			repo.Close()
			os.Exit(1)
		}
		authCache, limiter, cacheProbe = cacheClient, cacheClient, cacheClient
		logger.Info("connected to Redis")
	} else {
		logger.Warn("REDIS_URL not set, token cache and rate limiting disabled")
	}

	// Metrics
	var recorder metrics.Recorder = metrics.NewNoop()
	var promRecorder *metrics.PrometheusRecorder
	if cfg.MetricsEnabled {
		promRecorder = metrics.NewPrometheus(nil)
		recorder = promRecorder
	}

	// Services
	hasher := auth.NewArgon2Hasher(cfg.Argon2Params())
	userService := service.NewUserService(repo, hasher, authCache, recorder, logger)
	tokenService := service.NewTokenService(repo, hasher, authCache, recorder, logger)
	tagStore := service.NewTagStore(repository.NewTagStore(repo), recorder)
	ingredientStore := service.NewIngredientStore(repository.NewIngredientStore(repo), recorder)
	recipeStore := service.NewRecipeStore(repository.NewRecipeStore(repo), recorder)

	routerCfg := handler.RouterConfig{
		Logger:      logger,
		Users:       handler.NewUserHandler(userService, tokenService, logger),
		Tags:        handler.NewTagHandler(tagStore, logger),
		Ingredients: handler.NewIngredientHandler(ingredientStore, logger),
		Recipes:     handler.NewRecipeHandler(recipeStore, logger),
		Health:      handler.NewHealthHandler(repo, cacheProbe, logger),
		Recorder:    recorder,
		Auth: middleware.AuthConfig{
			Logger:      logger,
			Tokens:      tokenService,
			Metrics:     recorder,
			MinDuration: authMinDuration,
		},
		RateLimit: middleware.RateLimitConfig{
			Logger:       logger,
			Limiter:      limiter,
			APIEnabled:   cfg.RateLimitAPIEnabled,
			APIPerMinute: cfg.RateLimitAPIPerMinute,
			APIBurst:     cfg.RateLimitAPIBurst,
			AuthEnabled:  cfg.RateLimitAuthEnabled,
			AuthRPS:      cfg.RateLimitAuthRPS,
			AuthBurst:    cfg.RateLimitAuthBurst,
		},
		Security:    middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()},
		CORS:        middleware.DefaultCORSConfig(cfg.GetCORSAllowedOrigins()),
		MaxBodySize: cfg.MaxRequestBodySize,
	}
	if promRecorder != nil {
		routerCfg.MetricsHandler = promRecorder.Handler()
	}

	srv := server.New(handler.NewRouter(routerCfg), server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// LIFO: the cache closes before the database.
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
		slog.Int("port", cfg.AppPort),
		slog.String("env", cfg.AppEnv),
		slog.Bool("redis", cacheClient != nil),
		slog.Bool("metrics", cfg.MetricsEnabled),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
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

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// redactURL drops the password from a connection URL.
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

// sanitizeError replaces every secret URL in err's text with its redacted form.
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
