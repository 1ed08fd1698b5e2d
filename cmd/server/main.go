package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Murilo2811/relm-care-plus/internal/config"
	"github.com/Murilo2811/relm-care-plus/internal/identity"
	"github.com/Murilo2811/relm-care-plus/internal/middleware"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/handler"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/repository"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/service"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/sse"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// load .env in dev; production uses real environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting relm-care-plus service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.Store{},
		&entity.User{},
		&entity.Claim{},
		&entity.ClaimEvent{},
		&entity.ClaimAttachment{},
	); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	minioClient, err := initMinIO(cfg.MinIO)
	if err != nil {
		zapLogger.Warn("MinIO unavailable, attachments disabled", zap.Error(err))
	}

	hub := sse.NewHub(zapLogger)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, minioClient, hub, cfg, zapLogger)

	if cfg.Identity.VerifyURL != "" {
		services.Auth.SetCredentialVerifier(identity.NewHTTPVerifier(cfg.Identity.VerifyURL, cfg.Identity.Timeout))
	} else {
		zapLogger.Warn("identity verify URL not configured, staff logins disabled")
	}
	handlers := handler.NewHandlers(services, handler.NewSSEHandler(hub))

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/events/stream"})))

	registerRoutes(router, handlers, cfg, rdb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // disabled for SSE long-lived connections
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func initMinIO(cfg config.MinIOConfig) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint not configured")
	}
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config, rdb *redis.Client) {
	// health probes
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
	})

	api := r.Group("/api/v1")

	// public surface: warranty form + protocol tracking
	public := api.Group("/public")
	public.Use(middleware.RateLimit(rdb, cfg.Public.RateLimit, cfg.Public.RateLimitWindow))
	{
		public.POST("/claims", h.Public.CreateClaim)
		public.GET("/claims/:protocol", h.Public.TrackClaim)
	}

	// auth
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)

	// authenticated surface
	authed := api.Group("")
	authed.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		authed.GET("/claims", h.Claim.ListClaims)
		authed.GET("/claims/:id", h.Claim.GetClaim)
		authed.POST("/claims/:id/status", h.Claim.UpdateStatus)
		authed.GET("/claims/:id/events", h.Claim.GetHistory)
		authed.POST("/claims/:id/comments", h.Claim.AddComment)
		authed.GET("/claims/:id/transitions", h.Claim.GetTransitions)

		authed.POST("/claims/:id/attachments", h.Attachment.Upload)
		authed.GET("/claims/:id/attachments", h.Attachment.List)
		authed.GET("/claims/:id/attachments/:attachmentId/download", h.Attachment.Download)

		authed.GET("/events/stream", h.SSE.Stream)

		staff := authed.Group("")
		staff.Use(middleware.RequireRole("admin_relm", "gerente_relm"))
		{
			staff.POST("/claims/:id/store-link", h.Claim.LinkStore)
			staff.GET("/stores", h.Store.ListStores)
			staff.GET("/stores/:id", h.Store.GetStore)
			staff.POST("/stores", h.Store.CreateStore)
			staff.PUT("/stores/:id", h.Store.UpdateStore)
		}

		admin := authed.Group("")
		admin.Use(middleware.RequireRole("admin_relm"))
		{
			admin.GET("/users", h.User.ListUsers)
			admin.POST("/users", h.User.CreateUser)
			admin.PUT("/users/:id", h.User.UpdateUser)
			admin.POST("/users/:id/toggle", h.User.ToggleUser)
		}
	}
}
