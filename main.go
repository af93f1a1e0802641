package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loja-backend/cache"
	"loja-backend/config"
	"loja-backend/database"
	"loja-backend/middleware"
	"loja-backend/routes"
	"loja-backend/services"
	"loja-backend/store"
	"loja-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := config.ValidateEnv(cfg, logger); err != nil {
		logger.Fatal("environment validation failed", zap.Error(err))
	}

	ctx := context.Background()

	s, newID, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	// Products fall back to memory while the primary store is unavailable.
	var products store.ProductStore = s
	var fallback *store.FallbackProductStore
	if cfg.StoreDriver != config.DriverMemory {
		fallback = store.NewFallbackProductStore(s, store.NewMemoryStore(newID), store.FallbackConfig{}, logger)
		products = fallback
	}

	var cartCache cache.CartCache
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, cart cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		} else {
			cartCache = cache.NewRedisCache(redisClient)
		}
		cancel()
	}

	svc := routes.Services{
		Carts: services.NewCartService(services.CartServiceDeps{
			Carts:    s,
			Products: products,
			Cache:    cartCache,
			Logger:   logger,
		}),
		Products: services.NewProductService(products, logger),
		Users:    services.NewUserService(services.UserServiceDeps{Users: s, Logger: logger}),
	}
	if fallback != nil {
		svc.Fallback = fallback
	}

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	defer loginLimiter.Stop()
	svc.LoginLimiter = loginLimiter

	if err := database.CreateDefaultAdmin(ctx, svc.Users, cfg.AdminEmail, cfg.AdminPassword, logger); err != nil {
		logger.Warn("could not create default admin", zap.Error(err))
	}

	if cfg.AppEnv != "dev" && cfg.AppEnv != "development" && cfg.AppEnv != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Retry-After"},
	}
	if cfg.FrontendOrigin != "" {
		corsCfg.AllowOrigins = []string{cfg.FrontendOrigin}
		corsCfg.AllowCredentials = true
	} else {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	routes.SetupRoutes(r, svc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("driver", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if fallback != nil && fallback.Pending() > 0 {
		logger.Warn("products still pending reconciliation are lost on exit", zap.Int("pending", fallback.Pending()))
	}
	if err := s.Close(shutdownCtx); err != nil {
		logger.Error("error closing store", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("server exited gracefully")
}

// openStore connects the configured driver. newID generates ids in the
// driver's format for products buffered by the fallback store.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Store, func() string, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		s := store.NewGormStore(db)
		if err := s.Migrate(); err != nil {
			return nil, nil, err
		}
		return s, nil, nil

	case config.DriverMemory:
		return store.NewMemoryStore(nil), nil, nil

	default:
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		db, err := database.ConnectMongo(connectCtx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		s := store.NewMongoStore(db)
		if err := s.EnsureIndexes(connectCtx); err != nil {
			logger.Warn("could not create indexes", zap.Error(err))
		}
		return s, s.NewID, nil
	}
}
