package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	identityapp "github.com/mfg/backend/internal/application/identity"
	productionapp "github.com/mfg/backend/internal/application/production"
	workflowapp "github.com/mfg/backend/internal/application/workflow"
	"github.com/mfg/backend/internal/infrastructure/auth"
	"github.com/mfg/backend/internal/infrastructure/config"
	"github.com/mfg/backend/internal/infrastructure/logger"
	"github.com/mfg/backend/internal/infrastructure/persistence"
	"github.com/mfg/backend/internal/infrastructure/persistence/tenant"
	"github.com/mfg/backend/internal/interfaces/http/handler"
	"github.com/mfg/backend/internal/interfaces/http/middleware"
	"github.com/mfg/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting MFG Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with a GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Defense in depth: the automatic filter catches scoped queries that
	// would otherwise slip past TenantDB. Not required, so unscoped
	// internal queries (login, health) still work.
	tenant.EnableAutoCompanyFilter(db.DB, false)
	tenantDB := tenant.NewTenantDB(db.DB)

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	apiKeyRepo := persistence.NewGormAPIKeyRepository(db.DB)
	workstationRepo := persistence.NewGormWorkstationRepository(db.DB)
	workflowRepo := persistence.NewGormWorkflowRepository(tenantDB)
	productionRepo := persistence.NewGormProductionRepository(tenantDB)

	// Token infrastructure. Redis backs the blacklist in real
	// deployments; a single-instance dev setup falls back to memory.
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
	if err != nil {
		if cfg.App.Env == "production" {
			log.Fatal("Failed to connect to Redis for token blacklist", zap.Error(err))
		}
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
		defer func() {
			if err := redisBlacklist.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
	}

	// Application services
	authService := identityapp.NewAuthService(userRepo, companyRepo, workflowRepo, jwtService, blacklist, log)
	companyService := identityapp.NewCompanyService(companyRepo)
	queryService := productionapp.NewQueryService(productionRepo)
	cascadeService := productionapp.NewCascadeService(tenantDB)
	syncService := productionapp.NewSyncService(tenantDB, cfg.Sync.BatchLimit)
	workflowService := workflowapp.NewWorkflowService(workflowRepo)

	// HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	companyHandler := handler.NewCompanyHandler(companyService)
	productionHandler := handler.NewProductionHandler(queryService, cascadeService)
	syncHandler := handler.NewSyncHandler(syncService)
	workflowHandler := handler.NewWorkflowHandler(workflowService)
	systemHandler := handler.NewSystemHandler(db.DB, version)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	r := router.New(engine, router.WithAPIVersion("v1"))
	r.Register(
		authHandler,
		companyHandler,
		productionHandler,
		syncHandler,
		workflowHandler,
		systemHandler,
	)

	// Authentication chain on the API group: API keys first, then JWT
	// for everyone else, then tenant identity derivation
	r.Setup(
		middleware.APIKeyAuth(apiKeyRepo, log),
		middleware.JWTAuth(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			SkipPaths: []string{
				"/api/v1/auth/login",
				"/api/v1/auth/refresh",
				"/api/v1/health",
			},
			Logger: log,
		}),
		middleware.TenantIdentity(middleware.TenantConfig{
			Users:        userRepo,
			Workstations: workstationRepo,
			Logger:       log,
		}),
	)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
