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

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/mbdsaraiva/academia-api/api/swagger"
	"github.com/mbdsaraiva/academia-api/internal/handler"
	"github.com/mbdsaraiva/academia-api/internal/middleware"
	"github.com/mbdsaraiva/academia-api/internal/repository"
	"github.com/mbdsaraiva/academia-api/internal/service"
	"github.com/mbdsaraiva/academia-api/pkg/cache"
	"github.com/mbdsaraiva/academia-api/pkg/config"
	"github.com/mbdsaraiva/academia-api/pkg/database"
	"github.com/mbdsaraiva/academia-api/pkg/export"
	"github.com/mbdsaraiva/academia-api/pkg/logger"
	corsmiddleware "github.com/mbdsaraiva/academia-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mbdsaraiva/academia-api/pkg/middleware/requestid"
)

// @title Academia API
// @version 1.0.0
// @description Students, courses, enrollments and their registration fees.
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, logr); err != nil {
			logr.Fatal("migration failed", zap.Error(err))
		}
	}

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			redisRepo := repository.NewCacheRepository(client)
			defer redisRepo.Close() //nolint:errcheck
			cacheRepo = redisRepo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Reports.CacheTTL, logr, cfg.Cache.Enabled)

	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	reportRepo := repository.NewReportRepository(db)

	validate := service.NewValidator()
	studentSvc := service.NewStudentService(studentRepo, enrollmentRepo, cacheSvc, metrics, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, enrollmentRepo, cacheSvc, metrics, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, cacheSvc, metrics, validate, logr)
	reportSvc := service.NewReportService(reportRepo, cacheSvc, metrics, export.NewRenderer(), cfg.Reports.CacheTTL, logr)
	dashboardSvc := service.NewDashboardService(reportRepo, cacheSvc, metrics, service.DashboardConfig{
		CacheTTL:       cfg.Dashboard.CacheTTL,
		PopularCourses: cfg.Dashboard.PopularCourses,
	}, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics", "/health", "/ready"))
	r.Use(middleware.RequestTiming())

	metricsHandler := handler.NewMetricsHandler(metrics, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Summary)

	if cfg.DocsEnabled && cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Students:    handler.NewStudentHandler(studentSvc),
		Courses:     handler.NewCourseHandler(courseSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		Reports:     handler.NewReportHandler(reportSvc),
		Dashboard:   handler.NewDashboardHandler(dashboardSvc),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
