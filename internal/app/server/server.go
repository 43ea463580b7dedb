package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/core"
	"ems/internal/domain/leave"
	"ems/internal/domain/payroll"
	"ems/internal/platform/config"
	"ems/internal/platform/crypto"
	"ems/internal/platform/db"
	"ems/internal/platform/logger"
	"ems/internal/platform/metrics"
	"ems/internal/platform/storage"
	audithandler "ems/internal/transport/http/handlers/audit"
	authhandler "ems/internal/transport/http/handlers/auth"
	corehandler "ems/internal/transport/http/handlers/core"
	leavehandler "ems/internal/transport/http/handlers/leave"
	payrollhandler "ems/internal/transport/http/handlers/payroll"
	systemhandler "ems/internal/transport/http/handlers/system"
	"ems/internal/transport/http/middleware"
)

const loginAttemptsPerMinute = 10

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
	Logger *slog.Logger
}

// New connects to the database, prepares the schema and builds the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	log := logger.New(os.Stdout, cfg.LogLevel, cfg.Environment)
	slog.SetDefault(log)

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	router, err := newRouter(cfg, log, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &App{Config: cfg, DB: pool, Router: router, Logger: log}, nil
}

func newRouter(cfg config.Config, log *slog.Logger, pool *pgxpool.Pool) (http.Handler, error) {
	sealer, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	photos, err := storage.NewLocal(cfg.PhotoRoot)
	if err != nil {
		return nil, err
	}
	documentRoot, err := storage.NewLocal(cfg.DocumentRoot)
	if err != nil {
		return nil, err
	}
	docs := storage.NewEncrypted(documentRoot, sealer)

	money, err := payroll.NewMoney(cfg.CurrencyLocale)
	if err != nil {
		return nil, err
	}

	collector := metrics.New()
	perms := auth.StaticPermissions{}
	auditSvc := audit.New(pool)
	authSvc := auth.NewService(auth.NewStore(pool), auth.TokenConfig{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.TokenTTL,
	})
	coreSvc := core.NewService(core.NewStore(pool), photos)
	leaveSvc := leave.NewService(leave.NewStore(pool))
	payrollSvc := payroll.NewService(
		payroll.NewStore(pool),
		docs,
		payroll.NewRenderer(money),
		payroll.WithMetrics(collector),
	)

	var exposed *metrics.Collector
	if cfg.MetricsEnabled {
		exposed = collector
	}
	system := systemhandler.NewHandler(pool, exposed, perms)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(httplog.RequestLogger(log, logger.RequestOptions(cfg.LogLevel)))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSAllowedOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", "X-Total-Count", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(chimw.RealIP)
	router.Use(chimw.CleanPath)
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes, cfg.MaxUploadBytes))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}
	router.Use(middleware.Auth(cfg.JWTSecret, cfg.JWTIssuer))

	system.RegisterProbes(router)

	router.Route("/api/v1", func(r chi.Router) {
		loginLimit := middleware.RateLimit(loginAttemptsPerMinute, time.Minute, middleware.WithKeyFunc(middleware.ClientIPKey))
		authhandler.NewHandler(authSvc, auditSvc).RegisterRoutes(r, loginLimit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

			corehandler.NewHandler(coreSvc, perms, auditSvc, cfg.MaxUploadBytes).RegisterRoutes(r)
			leavehandler.NewHandler(leaveSvc, perms, auditSvc).RegisterRoutes(r)
			payrollhandler.NewHandler(payrollSvc, perms, auditSvc).RegisterRoutes(r)
			audithandler.NewHandler(auditSvc, perms).RegisterRoutes(r)
			system.RegisterRoutes(r)
		})
	})

	return router, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening", "addr", a.Config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	a.Logger.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
