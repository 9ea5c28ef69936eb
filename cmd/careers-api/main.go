// Package main runs the careers HTTP API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	app "github.com/talenthub/careers-api/internal/app"
	"github.com/talenthub/careers-api/internal/app/httpapi"
	"github.com/talenthub/careers-api/internal/app/storage/postgres"
	s3store "github.com/talenthub/careers-api/internal/app/storage/s3"
	"github.com/talenthub/careers-api/internal/config"
	"github.com/talenthub/careers-api/internal/platform/migrations"
	"github.com/talenthub/careers-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault("careers-api").WithError(err).Error("configuration invalid")
		os.Exit(1)
	}

	log := logger.New("careers-api", cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, closeDB, err := buildStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("storage initialisation failed")
		os.Exit(1)
	}
	if closeDB != nil {
		defer closeDB()
	}

	application := app.New(stores, app.Config{JWTSecret: cfg.JWTSecret}, log)

	handler := httpapi.NewHandler(application, httpapi.Options{
		JWTSecret:         cfg.JWTSecret,
		AllowedOrigins:    cfg.AllowedOrigins,
		Logger:            log,
		AuthRatePerSecond: cfg.AuthRatePerSecond,
		AuthRateBurst:     cfg.AuthRateBurst,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("careers API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
	}
}

// buildStores picks postgres and S3 when configured, with in-memory
// fallbacks for local runs.
func buildStores(ctx context.Context, cfg config.Config, log *logger.Logger) (app.Stores, func() error, error) {
	var stores app.Stores
	var closeDB func() error

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return app.Stores{}, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return app.Stores{}, nil, err
		}
		if err := migrations.Apply(ctx, db); err != nil {
			db.Close()
			return app.Stores{}, nil, err
		}

		pg := postgres.New(db)
		stores.Users = pg
		stores.JobRoles = pg
		stores.Applications = pg
		closeDB = db.Close
	} else {
		log.Warn("DATABASE_URL not set; using in-memory store")
	}

	if cfg.S3Bucket != "" {
		files, err := s3store.New(ctx, cfg.S3Bucket)
		if err != nil {
			return app.Stores{}, nil, err
		}
		stores.Files = files
	} else {
		log.Warn("S3_BUCKET not set; holding CV uploads in memory")
	}

	return stores, closeDB, nil
}
