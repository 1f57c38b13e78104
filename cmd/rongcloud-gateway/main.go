package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/yangxing-star/rongyun/internal/config"
	"github.com/yangxing-star/rongyun/internal/gateway"
	"github.com/yangxing-star/rongyun/internal/logger"
	"github.com/yangxing-star/rongyun/internal/rongcloud"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fail("config load", err)
	}

	baseLogger, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		fail("logger init", err)
	}
	log := baseLogger.With().Str("service", "rongcloud-gateway").Logger()

	client, err := rongcloud.NewClient(cfg.RongCloud, logger.Component(log, "rongcloud-client"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create rongcloud client")
	}

	server, err := gateway.NewServer(client, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway")
	}

	httpServer := &http.Server{
		Addr:              cfg.Gateway.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Gateway.HTTPAddr).
			Str("api_host", cfg.RongCloud.APIHost).
			Msg("rongcloud gateway starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	<-signalCh

	log.Info().Msg("shutdown requested")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func fail(stage string, err error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	logger.Fatal().Err(err).Str("stage", stage).Msg("rongcloud gateway init failed")
}
