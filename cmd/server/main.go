package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/facilitair/site-server-go/internal/analytics"
	"github.com/facilitair/site-server-go/internal/config"
	"github.com/facilitair/site-server-go/internal/database"
	"github.com/facilitair/site-server-go/internal/handler"
	"github.com/facilitair/site-server-go/internal/jobs"
	"github.com/facilitair/site-server-go/internal/mail"
	"github.com/facilitair/site-server-go/internal/middleware"
	"github.com/facilitair/site-server-go/internal/ratelimit"
	"github.com/facilitair/site-server-go/internal/redis"
	"github.com/facilitair/site-server-go/internal/repository"
	"github.com/facilitair/site-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Msg("database connected")

	var limiter ratelimit.Limiter
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, falling back to in-memory rate limiting")
		limiter = ratelimit.NewMemoryLimiter()
	} else {
		defer redisClient.Close()
		log.Info().Msg("redis connected")
		limiter = ratelimit.NewRedisLimiter(redisClient.Client)
	}

	subscriberRepo := repository.NewSubscriberRepository(db.DB)
	surveyRepo := repository.NewSurveyRepository(db.DB)
	betaPasswordRepo := repository.NewBetaPasswordRepository(db.DB)
	betaSessionRepo := repository.NewBetaSessionRepository(db.DB)
	adminSessionRepo := repository.NewAdminSessionRepository(db.DB)

	var mailer mail.Mailer
	if cfg.EmailEnabled() {
		mailer = mail.NewResendMailer(cfg.ResendAPIKey, cfg.FromEmail, cfg.BaseURL)
	} else {
		log.Warn().Msg("RESEND_API_KEY not set, outgoing email disabled")
		mailer = mail.DisabledMailer{}
	}

	var analyticsClient *analytics.Client
	if cfg.CloudflareEnabled() {
		analyticsClient = analytics.NewClient(cfg.CloudflareAPIKey, cfg.CloudflareEmail, cfg.CloudflareZoneID)
	}

	subscriberService := service.NewSubscriberService(subscriberRepo, surveyRepo, mailer)
	betaService := service.NewBetaService(db, betaPasswordRepo, betaSessionRepo, adminSessionRepo, cfg.BetaAdminPassword)

	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(cfg.AdminAPIKey)
	adminAuthMiddleware := middleware.NewAdminAuthMiddleware(betaService)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)
	subscribeLimit := middleware.NewRateLimitMiddleware(limiter, "subscribe", config.SubscribeRateLimitPerMin, time.Minute)
	betaVerifyLimit := middleware.NewRateLimitMiddleware(limiter, "beta-verify", config.LoginRateLimitPerMin, time.Minute)
	adminAuthLimit := middleware.NewRateLimitMiddleware(limiter, "admin-auth", config.LoginRateLimitPerMin, time.Minute)

	subscriberHandler := handler.NewSubscriberHandler(subscriberService)
	betaHandler := handler.NewBetaHandler(betaService)
	adminHandler := handler.NewAdminHandler(subscriberService, analyticsClient)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)
	r.Use(securityHeadersMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.With(subscribeLimit.Handler).Post("/subscribe", subscriberHandler.Subscribe)
		r.Get("/confirm/{token}", subscriberHandler.Confirm)
		r.Post("/survey", subscriberHandler.SubmitSurvey)
		r.Get("/unsubscribe/{token}", subscriberHandler.Unsubscribe)

		r.Route("/beta", func(r chi.Router) {
			r.With(betaVerifyLimit.Handler).Post("/verify", betaHandler.VerifyPassword)
			r.Post("/verify-session", betaHandler.VerifySession)

			r.Route("/admin", func(r chi.Router) {
				r.With(adminAuthLimit.Handler).Post("/auth", betaHandler.AdminAuth)

				r.Group(func(r chi.Router) {
					r.Use(adminAuthMiddleware.Handler)
					r.Post("/generate", betaHandler.GeneratePassword)
					r.Get("/list", betaHandler.ListPasswords)
					r.Post("/revoke", betaHandler.RevokePassword)
					r.Post("/logout", betaHandler.Logout)
				})
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(apiKeyMiddleware.Handler)
			r.Get("/stats", adminHandler.Stats)
			r.Get("/subscribers", adminHandler.ListSubscribers)
			r.Delete("/subscribers/{id}", adminHandler.DeleteSubscriber)
			r.Get("/survey-responses", adminHandler.SurveyResponses)
			r.Post("/send-announcement", adminHandler.SendAnnouncement)
			r.Get("/cloudflare-analytics", adminHandler.CloudflareAnalytics)
		})
	})

	r.Handle("/*", handler.StaticFileServer(cfg.StaticDir))

	cleanupJob := jobs.NewCleanupJob(betaSessionRepo, adminSessionRepo, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
