package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ccsfp/clinic-api/internal/config"
	"github.com/ccsfp/clinic-api/internal/email"
	"github.com/ccsfp/clinic-api/internal/handler"
	accountHandler "github.com/ccsfp/clinic-api/internal/handler/account"
	appointmentHandler "github.com/ccsfp/clinic-api/internal/handler/appointment"
	consultationHandler "github.com/ccsfp/clinic-api/internal/handler/consultation"
	recordHandler "github.com/ccsfp/clinic-api/internal/handler/record"
	"github.com/ccsfp/clinic-api/internal/middleware"
	"github.com/ccsfp/clinic-api/internal/model"
	"github.com/ccsfp/clinic-api/internal/router"
	accountService "github.com/ccsfp/clinic-api/internal/service/account"
	consultationService "github.com/ccsfp/clinic-api/internal/service/consultation"
	schedulingService "github.com/ccsfp/clinic-api/internal/service/scheduling"
	visitService "github.com/ccsfp/clinic-api/internal/service/visit"
	"github.com/ccsfp/clinic-api/internal/store"
	"github.com/ccsfp/clinic-api/internal/store/memory"
	"github.com/ccsfp/clinic-api/internal/store/postgres"
	"github.com/ccsfp/clinic-api/pkg/auth"
	"github.com/ccsfp/clinic-api/pkg/lock"
	"github.com/ccsfp/clinic-api/pkg/logger"
	"github.com/ccsfp/clinic-api/pkg/security"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to configuration file")
	flag.Parse()

	log.Logger = *logger.NewLogger(nil).Zerolog()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	st := newStore(cfg)
	locker := newLocker(cfg)

	hasher := security.NewBcryptHasher(security.DefaultCost)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	var emailSvc email.Service
	if cfg.SMTPEnabled() {
		emailSvc = email.NewSMTPService(cfg.SMTP)
	} else {
		emailSvc = email.NewNoopService()
		log.Info().Msg("SMTP not configured, notification mail disabled")
	}

	bootstrap := model.BootstrapAdmin{
		Username: cfg.Bootstrap.Username,
		Password: cfg.Bootstrap.Password,
		FullName: cfg.Bootstrap.FullName,
		Email:    cfg.Bootstrap.Email,
	}

	accountSvc := accountService.NewService(st, hasher, jwtSvc, emailSvc, bootstrap)
	schedulingSvc := schedulingService.NewService(st, locker)
	consultationSvc := consultationService.NewService(st)
	visitSvc := visitService.NewService(st)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	h := handler.NewHandler()
	accountH := accountHandler.NewHandler(accountSvc)
	appointmentH := appointmentHandler.NewHandler(schedulingSvc)
	consultationH := consultationHandler.NewHandler(consultationSvc)
	recordH := recordHandler.NewHandler(visitSvc)

	rps := 0.0
	if cfg.RateLimit.Enabled {
		rps = cfg.RateLimit.RequestsPerSecond
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	}

	r := router.NewRouter(authMiddleware, accountH, appointmentH, consultationH, recordH, h, router.RouterConfig{
		RateLimitRPS:   rps,
		RateLimitBurst: cfg.RateLimit.Burst,
		CORSConfig:     corsConfig,
		MetricsPrefix: "clinic_api",
		ListCacheTTL:  5 * time.Second,
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

// newStore connects to Postgres when a host is configured, otherwise the
// API runs against the in-memory store.
func newStore(cfg *config.Config) store.Store {
	if cfg.Database.Host == "" {
		log.Warn().Msg("no database host configured, using in-memory store")
		return memory.NewStore()
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	st, err := postgres.NewStore(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare database schema")
	}
	return st
}

// newLocker uses Redis when configured so that booking checks stay
// serialized across multiple API instances.
func newLocker(cfg *config.Config) lock.Locker {
	if cfg.Redis.URL == "" {
		return lock.NewKeyedMutex()
	}

	locker, err := lock.NewRedisLocker(lock.RedisConfig{URL: cfg.Redis.URL})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	return locker
}
