package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"rentride/internal/config"
	"rentride/internal/handlers"
	"rentride/internal/metrics"
	"rentride/internal/middleware"
	"rentride/internal/repositories/interfaces"
	"rentride/internal/repositories/memory"
	"rentride/internal/repositories/mongodb"
	"rentride/internal/services"
	"rentride/internal/utils"
	"rentride/pkg/cache"
	"rentride/pkg/database"
	"rentride/pkg/logger"
	"rentride/pkg/notify"
	"rentride/pkg/payment"
	"rentride/pkg/storage"
	"rentride/routes"
)

const shutdownTimeout = 15 * time.Second

type repositories struct {
	vehicles interfaces.VehicleRepository
	users    interfaces.UserRepository
	reviews  interfaces.ReviewRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  "stdout",
		Caller:  cfg.App.Debug,
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.WithError(err).Fatal("Server stopped")
	}
}

func run(cfg *config.Config, appLogger *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()
	checks := map[string]handlers.HealthCheck{}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(ctx, &cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			KeyPrefix:    strings.ToLower(cfg.App.Name) + ":",
		})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rc.Close()

		redisCache = rc
		checks["redis"] = rc.Ping
		appLogger.Info("Connected to Redis")
	}

	repos, closeStore, err := openStore(ctx, cfg, redisCache, appLogger, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	provider, err := newPaymentProvider(cfg.Payment)
	if err != nil {
		return err
	}

	store, err := newStorageProvider(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	publisher, err := newPublisher(ctx, cfg.Notification, appLogger)
	if err != nil {
		return err
	}

	// Keep the interfaces nil rather than typed-nil when Redis is off.
	var cacheService services.CacheService
	var loginLimiter, apiLimiter middleware.Limiter
	if redisCache != nil {
		cacheService = redisCache
		loginLimiter = middleware.NewRedisLimiter(redisCache, cfg.Security.MaxLoginAttempts, cfg.Security.LoginLockoutTime)
		apiLimiter = middleware.NewRedisLimiter(redisCache, cfg.Security.RateLimitPerMinute, time.Minute)
	} else {
		loginLimiter = middleware.NewLocalLimiter(cfg.Security.MaxLoginAttempts, cfg.Security.LoginLockoutTime)
		apiLimiter = middleware.NewLocalLimiter(cfg.Security.RateLimitPerMinute, time.Minute)
	}

	tokens := utils.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.JWTAccessTokenTTL)

	bookingService := services.NewBookingService(repos.vehicles, publisher, appLogger)
	paymentService := services.NewPaymentService(provider, repos.vehicles, bookingService, cacheService, publisher, services.PaymentConfig{
		Currency:   cfg.Payment.Currency,
		SuccessURL: cfg.App.FrontendURL + cfg.Payment.SuccessPath,
		CancelURL:  cfg.App.FrontendURL + cfg.Payment.CancelPath,
		WebhookTTL: cfg.Redis.WebhookTTL,
	}, appLogger)
	authService := services.NewAuthService(repos.users, tokens, cacheService, services.AuthConfig{
		MaxLoginAttempts: cfg.Security.MaxLoginAttempts,
		LoginLockoutTime: cfg.Security.LoginLockoutTime,
	}, appLogger)
	vehicleService := services.NewVehicleService(repos.vehicles, store, cfg.Storage.MaxImageSize, appLogger)
	reviewService := services.NewReviewService(repos.reviews, repos.vehicles, repos.users, bookingService, appLogger)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	routerConfig := &routes.RouterConfig{
		Tokens:       tokens,
		Logger:       appLogger,
		CORSOrigins:  cfg.Security.CORSAllowedOrigins,
		LoginLimiter: loginLimiter,
		APILimiter:   apiLimiter,
	}
	if cfg.Storage.Provider == "local" {
		routerConfig.UploadsDir = cfg.Storage.Local.BasePath
	}

	router := routes.SetupRouter(routerConfig, &routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		Vehicle: handlers.NewVehicleHandler(vehicleService, cfg.Storage.MaxImageSize),
		Booking: handlers.NewBookingHandler(bookingService),
		Payment: handlers.NewPaymentHandler(paymentService),
		Review:  handlers.NewReviewHandler(reviewService),
		Health:  handlers.NewHealthHandler(cfg.App.Version, checks),
	})
	if len(cfg.Security.TrustedProxies) > 0 {
		if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			return fmt.Errorf("invalid trusted proxies: %w", err)
		}
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.WithFields(map[string]interface{}{
			"port":     cfg.App.Port,
			"store":    cfg.App.StoreDriver,
			"payments": provider.Name(),
			"storage":  cfg.Storage.Provider,
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, redisCache *cache.RedisCache, appLogger *logger.Logger, checks map[string]handlers.HealthCheck) (*repositories, func(), error) {
	if cfg.App.StoreDriver == "memory" {
		appLogger.Warn("Using in-memory store; data is lost on restart")
		return &repositories{
			vehicles: memory.NewVehicleRepository(),
			users:    memory.NewUserRepository(),
			reviews:  memory.NewReviewRepository(),
		}, func() {}, nil
	}

	db, err := database.NewMongoDB(ctx, &database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	closeDB := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			appLogger.WithError(err).Error("Failed to close mongodb connection")
		}
	}
	checks["mongodb"] = db.Ping
	appLogger.Info("Connected to MongoDB")

	if cfg.Database.RunMigrations {
		if err := database.NewMigrator(db.Database, appLogger).Up(ctx); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	var vehicleCache interfaces.Cache
	if redisCache != nil {
		vehicleCache = redisCache
	}

	return &repositories{
		vehicles: mongodb.NewVehicleRepository(db.Database, vehicleCache),
		users:    mongodb.NewUserRepository(db.Database),
		reviews:  mongodb.NewReviewRepository(db.Database),
	}, closeDB, nil
}

func newPaymentProvider(cfg *config.PaymentConfig) (payment.CheckoutProvider, error) {
	switch cfg.DefaultProvider {
	case "stripe":
		return payment.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret), nil
	case "razorpay":
		return payment.NewRazorpayProvider(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.Webhook), nil
	default:
		return nil, fmt.Errorf("unsupported payment provider %q", cfg.DefaultProvider)
	}
}

func newStorageProvider(ctx context.Context, cfg *config.StorageConfig) (storage.StorageProvider, error) {
	switch cfg.Provider {
	case "local":
		return storage.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
	case "aws":
		return storage.NewAWSS3Storage(ctx, cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.CDNDomain)
	case "gcp":
		return storage.NewGCPStorage(ctx, cfg.GCP.Bucket, cfg.GCP.CredentialsFile, cfg.GCP.CDNDomain)
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}

func newPublisher(ctx context.Context, cfg *config.NotificationConfig, appLogger *logger.Logger) (notify.Publisher, error) {
	if cfg.Provider == "sns" {
		return notify.NewSNSPublisher(ctx, cfg.AWS.Region, cfg.AWS.TopicARN)
	}
	return notify.NewLogPublisher(appLogger), nil
}
