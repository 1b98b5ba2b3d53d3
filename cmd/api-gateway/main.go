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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/saju-admin-api/api/swagger"
	"github.com/noah-isme/saju-admin-api/internal/handler"
	internalmiddleware "github.com/noah-isme/saju-admin-api/internal/middleware"
	"github.com/noah-isme/saju-admin-api/internal/repository"
	"github.com/noah-isme/saju-admin-api/internal/service"
	"github.com/noah-isme/saju-admin-api/pkg/cache"
	"github.com/noah-isme/saju-admin-api/pkg/config"
	"github.com/noah-isme/saju-admin-api/pkg/database"
	"github.com/noah-isme/saju-admin-api/pkg/export"
	"github.com/noah-isme/saju-admin-api/pkg/jobs"
	"github.com/noah-isme/saju-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/saju-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/saju-admin-api/pkg/middleware/requestid"
)

// @title Saju Admin API
// @version 1.0.0
// @description Review and moderation of gyeokguk judgment suggestions.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatal(err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Suggestions.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, list cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	suggestionRepo := repository.NewSuggestionRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, cfg.Redis.Namespace)

	auditSvc := service.NewAuditService(auditRepo, metricsSvc, logr.Named("audit"), jobs.QueueConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
		MaxRetries: cfg.Audit.MaxRetries,
		RetryDelay: 500 * time.Millisecond,
	})
	auditSvc.Start(context.WithoutCancel(ctx))
	defer auditSvc.Stop()

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Suggestions.CacheTTL, logr.Named("cache"), redisClient != nil)
	authSvc := service.NewAuthService(userRepo, auditSvc, validate, logr.Named("auth"), service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	suggestionSvc := service.NewSuggestionService(suggestionRepo, validate, logr.Named("suggestions"),
		service.WithSuggestionCache(cacheSvc, cfg.Suggestions.CacheTTL),
		service.WithSuggestionMetrics(metricsSvc),
		service.WithSuggestionAudit(auditSvc),
		service.WithSuggestionPageSize(cfg.Suggestions.PageSize),
	)
	exportSvc := service.NewExportService(suggestionSvc, export.NewCSVExporter(cfg.Export.CSVBOM), export.NewPDFExporter(cfg.Export.FontPath), logr.Named("export"))

	checks := map[string]handler.Pinger{"database": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	authHandler := handler.NewAuthHandler(authSvc)
	suggestionHandler := handler.NewSuggestionHandler(suggestionSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.RequestOrigin())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", internalmiddleware.JWT(authSvc), authHandler.Me)

	if cfg.Suggestions.Enabled {
		suggestions := api.Group("/suggestions", internalmiddleware.JWT(authSvc))
		suggestions.GET("", suggestionHandler.List)
		suggestions.POST("", suggestionHandler.Create)
		suggestions.GET("/export", internalmiddleware.RequireAdmin(), suggestionHandler.Export)
		suggestions.GET("/:id", suggestionHandler.Get)

		admin := suggestions.Group("", internalmiddleware.RequireAdmin())
		admin.POST("/:id/approve", suggestionHandler.Approve)
		admin.POST("/:id/reject", suggestionHandler.Reject)
		admin.DELETE("/:id", suggestionHandler.Delete)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
