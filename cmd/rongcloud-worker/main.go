package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	rcadapter "github.com/yangxing-star/rongyun/internal/adapters/rongcloud"
	"github.com/yangxing-star/rongyun/internal/config"
	"github.com/yangxing-star/rongyun/internal/kafka/consumer"
	"github.com/yangxing-star/rongyun/internal/kafka/producer"
	kafkapublisher "github.com/yangxing-star/rongyun/internal/kafka/publisher"
	"github.com/yangxing-star/rongyun/internal/logger"
	"github.com/yangxing-star/rongyun/internal/rongcloud"
	"github.com/yangxing-star/rongyun/internal/worker"
	"github.com/yangxing-star/rongyun/internal/worker/validator"
)

const drainTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fail("config load", err)
	}

	baseLogger, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		fail("logger init", err)
	}
	log := baseLogger.With().Str("service", "rongcloud-worker").Logger()

	client, err := rongcloud.NewClient(cfg.RongCloud, logger.Component(log, "rongcloud-client"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create rongcloud client")
	}

	prod, err := producer.New(cfg.Kafka.Brokers, logger.Component(log, "kafka"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create kafka producer")
	}
	defer func() {
		if err := prod.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close kafka producer")
		}
	}()

	cons, err := consumer.New(cfg.Kafka.Brokers, cfg.Worker.ConsumerGroup, logger.Component(log, "consumer"), cfg.Worker.CommitOnSuccessOnly)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create kafka consumer")
	}
	defer func() {
		if err := cons.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close kafka consumer")
		}
	}()

	resultPublisher := kafkapublisher.NewResultPublisher(prod, cfg.Topics.Result, logger.Component(log, "result-publisher"))
	if resultPublisher == nil {
		log.Fatal().Msg("failed to create result publisher")
	}
	dlqPublisher := kafkapublisher.NewDLQPublisher(prod, cfg.Topics.DLQ, logger.Component(log, "dlq-publisher"))
	if dlqPublisher == nil {
		log.Fatal().Msg("failed to create dlq publisher")
	}

	adapter, err := rcadapter.NewAdapter(client, logger.Component(log, "rongcloud-adapter"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise rongcloud adapter")
	}

	engine, err := worker.NewEngine(worker.Config{
		MsgMaxBytes:       cfg.Worker.MsgMaxBytes,
		WorkerConcurrency: cfg.Worker.Concurrency,
	}, worker.Dependencies{
		Adapter:         adapter,
		Validator:       validator.New(validator.DefaultConfig(), logger.Component(log, "action-validator")),
		ResultPublisher: resultPublisher,
		DLQPublisher:    dlqPublisher,
		Logger:          log,
		Now:             time.Now,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise worker engine")
	}

	topics := []string{cfg.Topics.Request}
	handler := worker.KafkaHandler(engine, cons)

	errCh := make(chan error, 1)
	go func() {
		if err := cons.Consume(ctx, topics, handler); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Info().
		Str("request_topic", cfg.Topics.Request).
		Str("api_host", cfg.RongCloud.APIHost).
		Int("concurrency", cfg.Worker.Concurrency).
		Msg("rongcloud worker started")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("consumer terminated with error")
		}
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := engine.Wait(drainCtx); err != nil {
		log.Warn().Err(err).Msg("in-flight dispatches did not finish before shutdown")
	}
}

func fail(stage string, err error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	logger.Fatal().Err(err).Str("stage", stage).Msg("rongcloud worker init failed")
}
