package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/academy-api/api/swagger"
	"github.com/noah-isme/academy-api/internal/handler"
	"github.com/noah-isme/academy-api/internal/repository"
	"github.com/noah-isme/academy-api/internal/router"
	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/pkg/cache"
	"github.com/noah-isme/academy-api/pkg/config"
	"github.com/noah-isme/academy-api/pkg/database"
	"github.com/noah-isme/academy-api/pkg/logger"
)

// @title Academy API
// @version 1.0.0
// @description Student enrollment, fee ledger, payments and assignment submissions.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	checks := map[string]handler.Pinger{"postgres": db.PingContext}

	// Redis is optional; without it the dashboard is always recomputed.
	var redisClient *redis.Client
	if cfg.Dashboard.CacheEnabled {
		redisClient, err = cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	ledgerSvc := service.NewLedgerService(userRepo, courseRepo, metrics, validate, logr)
	studentSvc := service.NewStudentService(userRepo, ledgerSvc, cacheSvc, validate, logr, service.StudentServiceConfig{
		IDPrefix: cfg.Students.IDPrefix,
		IDDigits: cfg.Students.IDDigits,
	})
	courseSvc := service.NewCourseService(courseRepo, cacheSvc, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, userRepo, metrics, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, courseRepo, submissionRepo, cacheSvc, validate, logr)
	submissionSvc := service.NewSubmissionService(submissionRepo, assignmentSvc, cacheSvc, metrics, validate, logr)
	expansionSvc := service.NewExpansionService(userRepo, courseRepo, assignmentRepo)
	exportSvc := service.NewExportService(paymentSvc, expansionSvc, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Users:       userRepo,
		Courses:     courseRepo,
		Assignments: assignmentRepo,
		Submissions: submissionRepo,
		Cache:       cacheSvc,
		Logger:      logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:    cfg.Dashboard.CacheTTL,
			RecentLimit: cfg.Dashboard.RecentLimit,
		},
	})

	engine := router.New(router.Deps{
		Handlers: router.Handlers{
			Auth:        handler.NewAuthHandler(authSvc, expansionSvc),
			Students:    handler.NewStudentHandler(studentSvc, ledgerSvc, expansionSvc),
			Courses:     handler.NewCourseHandler(courseSvc),
			Payments:    handler.NewPaymentHandler(paymentSvc, exportSvc, expansionSvc),
			Assignments: handler.NewAssignmentHandler(assignmentSvc, expansionSvc),
			Submissions: handler.NewSubmissionHandler(submissionSvc, expansionSvc),
			Dashboard:   handler.NewDashboardHandler(dashboardSvc),
			Metrics:     handler.NewMetricsHandler(metrics, checks),
		},
		Tokens:         authSvc,
		Metrics:        metrics,
		Logger:         logr,
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	case sig := <-shutdown:
		logr.Info("shutdown started", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logr.Error("graceful shutdown failed", zap.Error(err))
			_ = srv.Close()
		}
	}
}
