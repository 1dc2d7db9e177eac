package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workshop-backend/internal/appointments"
	"workshop-backend/internal/auth"
	"workshop-backend/internal/cache"
	"workshop-backend/internal/config"
	"workshop-backend/internal/db"
	"workshop-backend/internal/events"
	"workshop-backend/internal/handlers"
	"workshop-backend/internal/mechanics"
	"workshop-backend/internal/middleware"
	"workshop-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB, time.Duration(cfg.MongoTimeoutSec)*time.Second)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected", slog.String("db", cfg.MongoDB))
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("redis connected")
		defer redisCache.Close()
		cacheStore = redisCache
	}
	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second

	var jwtManager *auth.Manager
	if cfg.JWTSecret != "" {
		jwtManager = &auth.Manager{
			Secret:     []byte(cfg.JWTSecret),
			AccessTTL:  time.Duration(cfg.AccessTTLMinutes) * time.Minute,
			RefreshTTL: time.Duration(cfg.RefreshTTLMinutes) * time.Minute,
			Issuer:     "workshop-backend",
		}
	}
	if !cfg.AdminAuthEnabled() {
		logger.Warn("admin auth disabled: set ADMIN_API_KEY or JWT_SECRET to protect operator routes")
	}

	passwordHash := cfg.AdminPasswordHash
	if passwordHash == "" && cfg.AdminPassword != "" {
		passwordHash, err = auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			logger.Error("admin password hash failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	var producer events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewKafkaProducer(cfg.KafkaBrokers)
		logger.Info("kafka events enabled", slog.String("topic", cfg.KafkaTopic))
	} else {
		producer = events.NewLogProducer(logger)
		logger.Info("kafka events disabled, logging events instead")
	}
	publisher := events.NewPublisher(producer, cfg.KafkaTopic, logger)
	defer publisher.Close()

	val := validation.New()

	mechanicsService := mechanics.NewService(mechanics.NewRepository(cols.Mechanics))
	mechanicsHandler := mechanics.NewHandler(mechanicsService, cacheStore, cacheTTL, logger)

	appointmentsService := appointments.NewService(
		appointments.NewRepository(cols.Appointments, cols.Counters),
		mechanicsService,
		publisher,
		val,
		appointments.WithListLimit(cfg.ListLimit),
	)
	appointmentsHandler := appointments.NewHandler(appointmentsService, cacheStore, cacheTTL, logger)

	server := &handlers.Server{
		Cfg:          cfg,
		Val:          val,
		Log:          logger,
		DB:           db.NewPinger(client),
		Auth:         jwtManager,
		PasswordHash: passwordHash,
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.FrontendOrigin))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	bookingLimiter := middleware.NewRateLimiter(cfg.RateLimitBookingRPS, cfg.RateLimitBookingBurst)
	adminOnly := middleware.AdminAuth(cfg.AdminAPIKey, jwtManager)

	registerRoutes := func(api chi.Router) {
		api.Get("/mechanics", mechanicsHandler.List)
		api.With(bookingLimiter.Middleware).Post("/appointments", appointmentsHandler.Book)

		api.Group(func(protected chi.Router) {
			protected.Use(adminOnly)
			protected.Get("/appointments", appointmentsHandler.List)
			protected.Get("/appointments/stats", appointmentsHandler.Stats)
			protected.Put("/appointments/status", appointmentsHandler.UpdateStatus)
			protected.Get("/appointments/{id}", appointmentsHandler.Get)
			protected.Delete("/appointments/{id}", appointmentsHandler.Delete)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Post("/login", server.AdminLogin)
			admin.Post("/refresh", server.AdminRefresh)
			admin.Post("/logout", server.AdminLogout)
		})
	}

	r.Get("/healthz", server.Healthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api", registerRoutes)
	r.Route("/api/v1", registerRoutes)

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}
