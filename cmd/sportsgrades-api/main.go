package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sportsgrades-api/api/swagger"
	"github.com/noah-isme/sportsgrades-api/internal/handler"
	"github.com/noah-isme/sportsgrades-api/internal/middleware"
	"github.com/noah-isme/sportsgrades-api/internal/models"
	"github.com/noah-isme/sportsgrades-api/internal/repository"
	"github.com/noah-isme/sportsgrades-api/internal/service"
	"github.com/noah-isme/sportsgrades-api/pkg/cache"
	"github.com/noah-isme/sportsgrades-api/pkg/config"
	"github.com/noah-isme/sportsgrades-api/pkg/database"
	"github.com/noah-isme/sportsgrades-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sportsgrades-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sportsgrades-api/pkg/middleware/requestid"
)

// @title Sports Grades API
// @version 1.0.0
// @description Student-athlete search and grade lookup for mentors and coaches
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type handlers struct {
	students *handler.StudentHandler
	grades   *handler.GradeHandler
	access   *handler.AccessHandler
	sports   *handler.SportHandler
	metrics  *handler.MetricsHandler
}

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
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	store, cacheBackend, closeStore := gradeCacheStore(cfg, db, logr)
	defer closeStore()

	validate := validator.New()
	studentRepo := repository.NewStudentRepository(db)
	accessRepo := repository.NewAccessRepository(db)
	userRepo := repository.NewUserRepository(db)
	sportRepo := repository.NewSportRepository(db)
	gradeRepo := repository.NewGradeRepository(db)

	tokenSvc := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	accessSvc := service.NewAccessService(accessRepo, userRepo, sportRepo, studentRepo, validate, logr.Named("access"))
	searchSvc := service.NewSearchService(studentRepo, accessSvc, metricsSvc, validate, logr.Named("search"), cfg.Search.MaxResults)
	resultCache := service.NewResultCacheService(store, metricsSvc, cfg.Cache.TTL, logr.Named("grade_cache"))
	gradeSvc := service.NewGradeService(gradeRepo, accessSvc, resultCache, metricsSvc, cfg.Cache.TTL, logr.Named("grades"))
	sportSvc := service.NewSportService(sportRepo)

	exportSvc := service.NewExportService(gradeSvc, userRepo, logr.Named("export"), nil, nil)

	if sweepNeeded(cfg, cacheBackend) {
		sweeper := service.NewCacheSweeper(resultCache, cfg.Cache.SweepSchedule, logr.Named("sweeper"))
		if err := sweeper.Start(); err != nil {
			logr.Fatal("failed to start cache sweeper", zap.Error(err))
		}
		defer sweeper.Stop()
	}

	h := handlers{
		students: handler.NewStudentHandler(searchSvc),
		grades:   handler.NewGradeHandler(gradeSvc, exportSvc),
		access:   handler.NewAccessHandler(accessSvc),
		sports:   handler.NewSportHandler(sportSvc),
		metrics:  handler.NewMetricsHandler(metricsSvc, db),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	registerRoutes(r, cfg, tokenSvc, h)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "cache_backend", cacheBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func registerRoutes(r *gin.Engine, cfg *config.Config, tokens middleware.TokenValidator, h handlers) {
	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", h.metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	viewers := []models.UserRole{models.RoleMentor, models.RoleAdmin, models.RoleSuperAdmin}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Timeout(cfg.RequestTimeout))
	api.Use(middleware.JWT(tokens))
	api.Use(middleware.WithResponseMeta())

	api.GET("/sports", h.sports.List)
	api.GET("/access/me", h.access.Me)

	students := api.Group("/students", middleware.RequireRoles(viewers...))
	students.GET("/search", h.students.Search)
	students.GET("/:id/grades", h.grades.Grades)
	if cfg.Exports.Enabled {
		students.GET("/:id/grades/export", h.grades.Export)
	}
	students.DELETE("/:id/grades/cache", middleware.RequireAdmin(), h.grades.PurgeCache)

	admin := api.Group("/access", middleware.RequireAdmin())
	admin.GET("/grants", h.access.ListGrants)
	admin.POST("/grants", h.access.CreateGrants)
	admin.DELETE("/grants/:id", h.access.DeleteGrant)
	admin.GET("/student-grants", h.access.ListStudentGrants)
	admin.POST("/student-grants", h.access.CreateStudentGrant)
	admin.DELETE("/student-grants/:id", h.access.DeleteStudentGrant)

	if cfg.Metrics.Enabled {
		api.GET("/metrics/summary", middleware.RequireAdmin(), h.metrics.Summary)
	}
}

// gradeCacheStore picks the result cache backend and reports the one in use.
// Redis falls back to the table when unreachable.
func gradeCacheStore(cfg *config.Config, db *sqlx.DB, logr *zap.Logger) (service.GradeCacheStore, string, func()) {
	if cfg.Cache.Backend == config.CacheBackendRedis {
		client, err := cache.NewRedis(cfg.Redis)
		if err == nil {
			repo := repository.NewCacheRepository(client, logr.Named("redis_cache"))
			return repo, config.CacheBackendRedis, func() { _ = repo.Close() }
		}
		logr.Warn("redis unavailable, caching grades in postgres", zap.Error(err))
	}
	return repository.NewGradeCacheRepository(db), config.CacheBackendPostgres, func() {}
}

// sweepNeeded reports whether the insert-only cache table needs the expiry sweeper.
func sweepNeeded(cfg *config.Config, backend string) bool {
	return cfg.Cache.SweepEnabled && backend == config.CacheBackendPostgres
}
