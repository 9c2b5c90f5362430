package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	identityapp "github.com/resto/backend/internal/application/identity"
	inventoryapp "github.com/resto/backend/internal/application/inventory"
	menuapp "github.com/resto/backend/internal/application/menu"
	"github.com/resto/backend/internal/infrastructure/auth"
	"github.com/resto/backend/internal/infrastructure/cache"
	"github.com/resto/backend/internal/infrastructure/config"
	"github.com/resto/backend/internal/infrastructure/event"
	"github.com/resto/backend/internal/infrastructure/logger"
	"github.com/resto/backend/internal/infrastructure/persistence"
	"github.com/resto/backend/internal/interfaces/http/handler"
	"github.com/resto/backend/internal/interfaces/http/middleware"
	"github.com/resto/backend/internal/interfaces/http/router"
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
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting POS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
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

	// Database query tracing (if enabled)
	if cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	organizationRepo := persistence.NewGormOrganizationRepository(db.DB)
	ingredientRepo := persistence.NewGormIngredientRepository(db.DB)
	batchRepo := persistence.NewGormIngredientBatchRepository(db.DB)
	entryRepo := persistence.NewGormStockEntryRepository(db.DB)
	recipeRepo := persistence.NewGormRecipeRepository(db.DB)
	menuItemRepo := persistence.NewGormMenuItemRepository(db.DB)

	// Transaction scope for ledger mutations
	txScope := persistence.NewGormTransactionScope(db.DB, cfg.Transaction.Timeout)

	// Redis-backed stock read cache
	stockCache, err := cache.NewRedisStockCache(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CacheTTL)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := stockCache.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()
	log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))

	// Initialize application services
	stockService := inventoryapp.NewStockService(ingredientRepo, batchRepo, entryRepo, txScope, log)
	stockService.SetCache(stockCache)
	menuService := menuapp.NewMenuService(recipeRepo, menuItemRepo, ingredientRepo, organizationRepo, log)
	organizationService := identityapp.NewOrganizationService(organizationRepo, log)

	// JWT service for tenant-scoped authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Ingredient cost changes -> recipe and menu item cost propagation
	costChangedHandler := menuapp.NewIngredientCostChangedHandler(menuService, log)
	eventBus.Subscribe(costChangedHandler)

	// Stock below threshold -> reorder alerting
	lowStockHandler := inventoryapp.NewLowStockHandler(nil, log)
	eventBus.Subscribe(lowStockHandler)

	log.Info("Event handlers registered",
		zap.Strings("cost_changed_events", costChangedHandler.EventTypes()),
		zap.Strings("low_stock_events", lowStockHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	stockService.SetEventPublisher(eventBus)
	menuService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	ingredientHandler := handler.NewIngredientHandler(stockService, stockCache)
	stockHandler := handler.NewStockHandler(stockService)
	menuHandler := handler.NewMenuHandler(menuService)
	organizationHandler := handler.NewOrganizationHandler(organizationService)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes; organization
	// registration is the only unauthenticated business endpoint
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/organizations",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Inventory domain (ingredients, batch ledger, stock operations)
	inventoryRoutes := router.NewDomainGroup("inventory", "/inventory")
	inventoryRoutes.POST("/ingredients", ingredientHandler.Create)
	inventoryRoutes.GET("/ingredients", ingredientHandler.List)
	inventoryRoutes.GET("/ingredients/alerts/low-stock", ingredientHandler.LowStockAlerts)
	inventoryRoutes.GET("/ingredients/:id", ingredientHandler.GetByID)
	inventoryRoutes.PUT("/ingredients/:id", ingredientHandler.Update)
	inventoryRoutes.DELETE("/ingredients/:id", ingredientHandler.Deactivate)
	inventoryRoutes.GET("/ingredients/:id/batches", ingredientHandler.ListBatches)
	inventoryRoutes.GET("/ingredients/:id/entries", ingredientHandler.ListEntries)

	// Stock operations
	inventoryRoutes.POST("/stock/entries", stockHandler.RecordEntry)
	inventoryRoutes.POST("/stock/deduct", stockHandler.Deduct)
	inventoryRoutes.POST("/stock/adjust", stockHandler.Adjust)

	// Menu domain (recipes, menu items, costing)
	menuRoutes := router.NewDomainGroup("menu", "/menu")
	menuRoutes.POST("/recipes", menuHandler.CreateRecipe)
	menuRoutes.GET("/recipes", menuHandler.ListRecipes)
	menuRoutes.GET("/recipes/:id", menuHandler.GetRecipe)
	menuRoutes.POST("/recipes/:id/recalculate", menuHandler.RecalculateRecipeCost)
	menuRoutes.POST("/items", menuHandler.CreateMenuItem)
	menuRoutes.GET("/items", menuHandler.ListMenuItems)
	menuRoutes.GET("/items/:id", menuHandler.GetMenuItem)
	menuRoutes.PUT("/items/:id", menuHandler.UpdateMenuItem)
	menuRoutes.POST("/items/:id/recalculate", menuHandler.RecalculateMenuItemCost)

	// Organization (tenant) routes
	organizationRoutes := router.NewDomainGroup("organizations", "/organizations")
	organizationRoutes.POST("", organizationHandler.Create)
	organizationRoutes.GET("/current", organizationHandler.Get)
	organizationRoutes.PUT("/current/settings", organizationHandler.UpdateSettings)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/info", systemHandler.Info)

	r.Register(inventoryRoutes).
		Register(menuRoutes).
		Register(organizationRoutes).
		Register(systemRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
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

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
