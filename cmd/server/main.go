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

	"go.uber.org/zap"

	"github.com/khoahotran/devprofiles/adapters/event"
	httpAdapter "github.com/khoahotran/devprofiles/adapters/http"
	"github.com/khoahotran/devprofiles/adapters/persistence"
	"github.com/khoahotran/devprofiles/internal/application/service"
	profileUC "github.com/khoahotran/devprofiles/internal/application/usecase/profile"
	"github.com/khoahotran/devprofiles/internal/config"
	"github.com/khoahotran/devprofiles/pkg/auth"
	"github.com/khoahotran/devprofiles/pkg/logger"
	"github.com/khoahotran/devprofiles/pkg/tracing"
)

const serviceName = "devprofiles-api"

func main() {
	fmt.Println("Start DevProfiles API Server...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer logger.Sync(appLogger)

	// Tracing
	if cfg.Jaeger.OTLPEndpoint != "" {
		tp, err := tracing.NewTracerProvider(cfg, appLogger, serviceName)
		if err != nil {
			appLogger.Fatal("cannot init tracer", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				appLogger.Error("tracer shutdown failed", err)
			}
		}()
	}

	// Repositories
	profileRepo, accountRepo, closeStore, err := persistence.OpenStores(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot open store", err, zap.String("driver", cfg.DB.Driver))
	}
	defer closeStore()

	// Cache
	profileCache := service.NopProfileCache()
	if cfg.Redis.Addr != "" {
		redisClient, err := persistence.NewRedisClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("cannot connect Redis", err)
		}
		defer redisClient.Close()
		profileCache = persistence.NewRedisProfileCache(redisClient, cfg.Redis.CacheTTL)
	}

	// Events
	var publisher service.EventPublisher = event.NewNopPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	}

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)

	// Use Cases
	upsertProfileUseCase := profileUC.NewUpsertProfileUseCase(profileRepo, profileCache, publisher, appLogger)
	profileQueryUseCase := profileUC.NewProfileQueryUseCase(profileRepo, profileCache, appLogger)
	deleteAccountUseCase := profileUC.NewDeleteAccountUseCase(profileRepo, accountRepo, profileCache, publisher, appLogger)

	// HTTP Handlers
	profileHandler := httpAdapter.NewProfileHandler(
		upsertProfileUseCase,
		profileQueryUseCase,
		deleteAccountUseCase,
		httpAdapter.NewRequestValidator(),
		appLogger,
	)
	router := httpAdapter.NewRouter(profileHandler, jwtSvc, appLogger)

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port), zap.String("driver", cfg.DB.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
