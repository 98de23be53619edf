// Package app assembles the lead service from configuration: database,
// migrations, email notifier, replay store and the Gin engine. The HTTP
// server and the Lambda entrypoint both start from Build.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/heptiolabs/healthcheck"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-lead-backend/internal/config"
	httpapi "github.com/tbourn/go-lead-backend/internal/http"
	"github.com/tbourn/go-lead-backend/internal/notify"
	"github.com/tbourn/go-lead-backend/internal/repo"
	"github.com/tbourn/go-lead-backend/internal/services"
)

// App is a ready-to-serve lead service.
type App struct {
	Engine *gin.Engine
	DB     *gorm.DB

	closers []func() error
}

// Build opens every dependency cfg names and registers the routes. A
// database that cannot be opened is fatal; a missing email configuration
// only disables notifications.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	gin.SetMode(cfg.GinMode)

	db, err := repo.Open(cfg.DB, cfg.OTEL.Enabled)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := repo.AutoMigrate(db, cfg.DB.UniqueEmail); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	a := &App{DB: db}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	deps := httpapi.Deps{DB: db, ReadyChecks: map[string]healthcheck.Check{}}

	n, err := notify.NewNotifier(ctx, cfg.Email)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("provider", cfg.Email.Provider).Msg("email notifier unavailable; leads will be stored without notification")
	case n == nil:
		log.Info().Msg("email notification disabled")
	default:
		deps.Notifier = n
		log.Info().Str("provider", n.Provider()).Msg("email notification enabled")
	}

	if cfg.IdempotencyBackend == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, rdb.Close)
		deps.Replays = services.NewRedisReplayStore(rdb)
		deps.ReadyChecks["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return rdb.Ping(ctx).Err()
		}
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, deps, cfg)
	a.Engine = r
	return a, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
