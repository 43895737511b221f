package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-api/internal/auth"
	"github.com/yukikurage/kanban-api/internal/config"
	"github.com/yukikurage/kanban-api/internal/database"
	"github.com/yukikurage/kanban-api/internal/logger"
	"github.com/yukikurage/kanban-api/internal/repository"
	"github.com/yukikurage/kanban-api/internal/routes"
	"github.com/yukikurage/kanban-api/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := openStore(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to open store", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer cleanup()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	resolver := services.NewUserResolver(store.Users)

	router := routes.Setup(routes.Dependencies{
		Auth:     services.NewAuthService(store.Users, tokens),
		Projects: services.NewProjectService(store, resolver, zl),
		Tasks: services.NewTaskService(store, resolver, services.TaskServiceConfig{
			PurgePolicy:      cfg.PurgePolicy(),
			PurgeConcurrency: cfg.PurgeConcurrency,
		}, zl),
		Log:        zl,
		CORSOrigin: cfg.CORSOrigin,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		zl.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("driver", cfg.DBDriver),
			zap.String("purge_policy", cfg.PermanentDeletePolicy),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore connects the configured backend and returns its repositories
// with a function releasing the connection.
func openStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (repository.Store, func(), error) {
	if cfg.DBDriver == config.DriverMongo {
		client, db, err := database.ConnectMongo(ctx, cfg, zl)
		if err != nil {
			return repository.Store{}, nil, err
		}
		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			disconnect(client, zl)
			return repository.Store{}, nil, err
		}
		return repository.NewMongoStore(db), func() { disconnect(client, zl) }, nil
	}

	db, err := database.Connect(cfg, zl)
	if err != nil {
		return repository.Store{}, nil, err
	}
	if err := database.Migrate(db, zl); err != nil {
		return repository.Store{}, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return repository.NewGormStore(db), cleanup, nil
}

func disconnect(client *mongo.Client, zl *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	zl.Info("disconnecting MongoDB client")
	if err := client.Disconnect(ctx); err != nil {
		zl.Error("MongoDB disconnect failed", zap.Error(err))
	}
}
