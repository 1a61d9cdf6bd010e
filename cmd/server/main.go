package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	appexport "github.com/malnatis/order-export/internal/application/export"
	"github.com/malnatis/order-export/internal/domain/export"
	"github.com/malnatis/order-export/internal/infrastructure/auth"
	"github.com/malnatis/order-export/internal/infrastructure/cache"
	"github.com/malnatis/order-export/internal/infrastructure/commerce"
	"github.com/malnatis/order-export/internal/infrastructure/config"
	"github.com/malnatis/order-export/internal/infrastructure/configsource"
	"github.com/malnatis/order-export/internal/infrastructure/logger"
	"github.com/malnatis/order-export/internal/infrastructure/storage"
	"github.com/malnatis/order-export/internal/infrastructure/telemetry"
	"github.com/malnatis/order-export/internal/infrastructure/transfer"
	"github.com/malnatis/order-export/internal/interfaces/http/handler"
	"github.com/malnatis/order-export/internal/interfaces/http/middleware"
	"github.com/malnatis/order-export/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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
		_ = log.Sync()
	}()

	log.Info("Starting order export service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Processed-order records. Falls back to an in-memory store outside
	// production so the service runs without Redis.
	storeFactory := cache.NewProcessedStoreFactory(cfg.Redis, cfg.Export.ProcessedRetention,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	processedStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize processed-order store", zap.Error(err))
	}
	defer func() {
		if err := processedStore.Close(); err != nil {
			log.Error("Error closing processed-order store", zap.Error(err))
		}
	}()

	settings := newSettingsSource(cfg, log)

	commerceClient, err := commerce.NewClient(&commerce.BigCommerceConfig{
		StoreHash:      cfg.BigCommerce.StoreHash,
		AccessToken:    cfg.BigCommerce.AccessToken,
		ClientID:       cfg.BigCommerce.ClientID,
		APIBaseURL:     cfg.BigCommerce.APIBaseURL,
		TimeoutSeconds: cfg.BigCommerce.Timeout,
	})
	if err != nil {
		log.Fatal("Failed to initialize commerce client", zap.Error(err))
	}

	documentStore := newDocumentStore(ctx, cfg, log)

	transferClient, err := transfer.NewEPortalClient(&transfer.EPortalConfig{
		Endpoint:       cfg.EPortal.Endpoint,
		Login:          cfg.EPortal.Login,
		Password:       cfg.EPortal.Password,
		TimeoutSeconds: cfg.EPortal.Timeout,
	})
	if err != nil {
		log.Fatal("Failed to initialize ePortal client", zap.Error(err))
	}

	exportService := appexport.NewService(commerceClient, settings, processedStore,
		documentStore, transferClient, appexport.Config{
			Window: cfg.Export.SuppressionWindow,
			EBridge: export.EBridgeOptions{
				BuyerIdent:  cfg.EBridge.BuyerIdent,
				SellerIdent: cfg.EBridge.SellerIdent,
			},
		}, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if tracerProvider.IsEnabled() {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		MaxAge:       12 * time.Hour,
	}))

	healthHandler := handler.NewHealthHandler(version)
	healthHandler.RegisterHealthRoute(engine)

	exportHandler := handler.NewExportHandler(exportService, cfg.BigCommerce.StoreHash)

	// Webhook intake is called by the commerce platform directly and
	// carries no bearer token.
	webhookGroup := engine.Group("/api/v1")
	exportHandler.RegisterWebhookRoutes(webhookGroup)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuth(jwtService))
	r.Register(exportHandler)
	r.Setup()

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newSettingsSource connects the Redis-backed settings store. A connection
// failure is not fatal; the pipeline falls back to built-in defaults for
// every setting.
func newSettingsSource(cfg *config.Config, log *zap.Logger) appexport.SettingsSource {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Settings store unreachable, using built-in defaults", zap.Error(err))
	}

	return configsource.NewRedisSettingsSource(client, "")
}

// newDocumentStore builds the S3 document archive, or an in-memory stub
// outside production when object storage is not configured.
func newDocumentStore(ctx context.Context, cfg *config.Config, log *zap.Logger) appexport.DocumentStore {
	s3Store, err := storage.NewS3DocumentStorage(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		if cfg.App.Env == "production" {
			log.Fatal("Failed to initialize document storage", zap.Error(err))
		}
		log.Warn("Document storage not configured, using in-memory stub", zap.Error(err))
		return storage.NewStubDocumentStorage()
	}

	if err := s3Store.EnsureBucket(ctx); err != nil {
		log.Warn("Could not verify document bucket", zap.Error(err))
	}
	log.Info("Document storage ready", zap.String("bucket", s3Store.GetBucket()))
	return s3Store
}
