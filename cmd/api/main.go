package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/learnhub-io/learnhub-api/api/swagger"
	"github.com/learnhub-io/learnhub-api/internal/handler"
	"github.com/learnhub-io/learnhub-api/internal/middleware"
	"github.com/learnhub-io/learnhub-api/internal/repository"
	"github.com/learnhub-io/learnhub-api/internal/service"
	"github.com/learnhub-io/learnhub-api/pkg/cache"
	"github.com/learnhub-io/learnhub-api/pkg/config"
	"github.com/learnhub-io/learnhub-api/pkg/database"
	"github.com/learnhub-io/learnhub-api/pkg/logger"
	corsmiddleware "github.com/learnhub-io/learnhub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/learnhub-io/learnhub-api/pkg/middleware/requestid"
	"github.com/learnhub-io/learnhub-api/pkg/storage"
)

// @title LearnHub API
// @version 0.1.0
// @description Marketing catalog and instructor course management API
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, catalog caching disabled", "error", err)
		redisClient = nil
	}

	blobStore, err := storage.NewBlobStore(cfg.Storage.BaseDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		logr.Sugar().Fatalw("failed to init blob store", "error", err)
	}

	var signer *storage.SignedURLSigner
	if cfg.Storage.SignedURLSecret != "" {
		signer = storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)
	}

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Catalog.CacheTTL, logr, redisClient != nil)

	broker := service.NewAuthBroker()
	authSvc := service.NewAuthService(userRepo, broker, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	profileSvc := service.NewProfileService(profileRepo, logr)

	sessionMgr := service.NewSessionManager(broker, profileRepo, authSvc, logr, cfg.Jobs)
	sessionMgr.Start(context.Background(), nil)
	defer sessionMgr.Close()

	catalogSvc := service.NewCatalogService(courseRepo, profileRepo, cacheSvc, cfg.Catalog.CacheTTL, logr)
	courseSvc := service.NewCourseService(courseRepo, catalogSvc, validate, logr)

	var materialSvc *service.MaterialService
	if signer != nil {
		materialSvc = service.NewMaterialService(materialRepo, courseRepo, blobStore, signer, validate, logr)
	} else {
		materialSvc = service.NewMaterialService(materialRepo, courseRepo, blobStore, nil, validate, logr)
	}

	exportSvc := service.NewExportService(courseRepo, materialRepo, nil, nil, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, exportSvc)
	materialHandler := handler.NewMaterialHandler(materialSvc, cfg.Storage.MaxFileSizeBytes)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(503, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.Static("/files", cfg.Storage.BaseDir)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	catalog := api.Group("/catalog")
	catalog.GET("/featured", catalogHandler.Featured)
	catalog.GET("/courses", catalogHandler.Published)
	catalog.GET("/stats", catalogHandler.Stats)

	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/signin", authHandler.SignIn)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/signout", authHandler.SignOut)
	auth.POST("/session", authHandler.Session)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	authed.GET("/me", authHandler.Me)
	authed.GET("/me/profile", profileHandler.Me)
	authed.GET("/materials/:id/download", materialHandler.Download)

	instructor := authed.Group("/instructor")
	instructor.Use(middleware.RequireInstructor(profileSvc))
	instructor.GET("/courses", courseHandler.List)
	instructor.POST("/courses", courseHandler.Create)
	instructor.GET("/courses/export", courseHandler.Export)
	instructor.PUT("/courses/:id", courseHandler.Update)
	instructor.POST("/courses/:id/publish", courseHandler.TogglePublish)
	instructor.DELETE("/courses/:id", courseHandler.Delete)
	instructor.GET("/courses/:id/materials", materialHandler.List)
	instructor.POST("/courses/:id/materials", materialHandler.Create)
	instructor.DELETE("/materials/:id", materialHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
