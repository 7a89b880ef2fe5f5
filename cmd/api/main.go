package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/cache"
	"github.com/justsurfingit/job-board/internal/cache/memory"
	rediscache "github.com/justsurfingit/job-board/internal/cache/redis"
	"github.com/justsurfingit/job-board/internal/config"
	"github.com/justsurfingit/job-board/internal/database"
	"github.com/justsurfingit/job-board/internal/handlers"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/middleware"
	"github.com/justsurfingit/job-board/internal/recommend"
	"github.com/justsurfingit/job-board/internal/services"
	"github.com/justsurfingit/job-board/internal/telemetry"
)

const serviceName = "job-board"

func main() {
	// 1. Load configuration
	cfg, envLoaded := config.Load()

	// 2. Logger
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	log = log.WithHashSalt(cfg.LogHashSalt)
	defer log.Sync()
	if !envLoaded {
		log.Info("no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Tracing
	shutdownTracing := telemetry.Init(ctx, log, telemetry.Config{
		Enabled:     cfg.OtelEnabled,
		ServiceName: serviceName,
		Environment: cfg.AppEnv,
		Endpoint:    cfg.OtelEndpoint,
		Insecure:    cfg.OtelInsecure,
	})

	// 4. Database Connection
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}

	// 5. Recommendation cache: redis when reachable, in-process otherwise
	recCache := newCache(ctx, cfg, log)
	defer recCache.Close()

	// 6. Initialize Core Services (Dependencies)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	llmService, err := services.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, db, log)
	if err != nil {
		log.Fatal("failed to initialize LLM service", "error", err)
	}
	savedJobService := services.NewSavedJobService(db, log)
	jobService := services.NewJobService(db, log, savedJobService)
	matcherService := services.NewMatcherService(db, log)
	preferenceService := services.NewPreferenceService(db, log)
	authService := services.NewAuthService(db, tokens, log)
	applicationService := services.NewApplicationService(db, log, savedJobService)

	// 7. Recommendation strategy: external AI service first, in-process matcher as fallback
	strategy := &recommend.Strategy{
		Fallback: recommend.LocalProvider{Recommender: matcherService},
		Log:      log.With("component", "recommend.Strategy"),
	}
	if cfg.RecommenderURL != "" {
		strategy.Primary = recommend.NewHTTPProvider(cfg.RecommenderURL, cfg.RecommenderTimeout)
	} else {
		log.Warn("RECOMMENDER_URL is empty, AI recommendations use the in-process matcher")
	}
	recommendationService := services.NewRecommendationService(db, strategy, recCache, cfg.RecommendCacheTTL, log)

	// 8. Initialize Handlers
	h := &handlers.Handlers{
		Health:      handlers.NewHealthHandler(db),
		Auth:        handlers.NewAuthHandler(authService, log),
		Job:         handlers.NewJobHandler(llmService, jobService, matcherService, recommendationService, log),
		SavedJob:    handlers.NewSavedJobHandler(savedJobService, log),
		Preference:  handlers.NewPreferenceHandler(preferenceService, recommendationService, log),
		Application: handlers.NewApplicationHandler(applicationService, log),
	}

	// 9. Setup Router, middleware & routes
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		gin.Recovery(),
		otelgin.Middleware(serviceName),
		middleware.RequestID(),
		middleware.RequestLogger(log.With("component", "http")),
		middleware.CORS(cfg.CORSOrigins),
	)
	h.Register(r.Group("/api/v1"), middleware.NewAuthMiddleware(log, tokens))

	// 10. Run until signalled
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed to start", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing shutdown failed", "error", err)
	}
}

func newCache(ctx context.Context, cfg *config.Config, log *logger.Logger) cache.Cache {
	opts := cache.Options{
		DefaultTTL:    cfg.RecommendCacheTTL,
		RedisURL:      cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR is empty, using in-process recommendation cache")
		return memory.New(opts)
	}
	rc := rediscache.New(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		log.Warn("redis unreachable, using in-process recommendation cache", "addr", cfg.RedisAddr, "error", err)
		_ = rc.Close()
		return memory.New(opts)
	}
	log.Info("redis recommendation cache connected", "addr", cfg.RedisAddr)
	return rc
}
