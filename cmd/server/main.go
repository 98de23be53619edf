// Command server runs the lead ingestion API over HTTP.
//
// @title                      Lead Capture API
// @version                    1.0
// @description                Stores contact-form leads and notifies the operator by email.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @securityDefinitions.apikey APIKey
// @in                         header
// @name                       apikey
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	_ "github.com/tbourn/go-lead-backend/docs"
	"github.com/tbourn/go-lead-backend/internal/app"
	"github.com/tbourn/go-lead-backend/internal/config"
	"github.com/tbourn/go-lead-backend/internal/observability"
	"github.com/tbourn/go-lead-backend/internal/sysutil"
)

var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	logCloser := sysutil.InitLogger(cfg.Log, cfg.OTEL.ServiceName)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel := observability.Shutdown(func(context.Context) error { return nil })
	if cfg.OTEL.Enabled {
		s, err := observability.SetupOTel(ctx, cfg.OTEL, version)
		if err != nil {
			log.Warn().Err(err).Msg("tracing disabled")
		} else {
			shutdownOTel = s
		}
	}

	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return err
		}
		return shutdownOTel(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}
}
