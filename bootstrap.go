package main

import (
	"context"
	"fmt"

	"proshop/internal/config"
	"proshop/internal/database"
	"proshop/internal/logger"
	"proshop/internal/middleware"
	"proshop/internal/payment"
	"proshop/internal/repositories"
	"proshop/internal/server"
	"proshop/internal/services"
	"proshop/internal/storage"
	"proshop/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// runtime is what every command needs: configuration, a logger and the database.
type runtime struct {
	cfg   *config.Config
	log   *zap.Logger
	store *repositories.Store
}

// boot loads the configuration, builds the logger and connects to the database.
func boot(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(envFileFlag)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Config{Development: cfg.IsDevelopment(), Level: cfg.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	store, err := database.Open(ctx, database.Config{
		Driver:   cfg.DBDriver,
		MongoURI: cfg.MongoURI,
		MongoDB:  cfg.MongoDB,
		DSN:      cfg.DatabaseDSN,
		Debug:    cfg.IsDevelopment(),
	}, log)
	if err != nil {
		log.Error("database unavailable", zap.Error(err))
		_ = log.Sync()
		return nil, err
	}
	return &runtime{cfg: cfg, log: log, store: store}, nil
}

// newApp wires storage, the event publisher, payment verification and the login limiter
// into the fiber application. cleanup releases what newApp opened.
func newApp(ctx context.Context, rt *runtime) (app *fiber.App, cleanup func(), err error) {
	cfg := rt.cfg
	var closers []func()
	cleanup = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	disk, err := storage.New(ctx, storage.Config{
		Driver:     cfg.StorageDriver,
		LocalRoot:  cfg.UploadDir,
		URLPrefix:  "/uploads",
		S3Bucket:   cfg.S3Bucket,
		S3Region:   cfg.S3Region,
		S3Key:      cfg.S3Key,
		S3Secret:   cfg.S3Secret,
		S3Endpoint: cfg.S3Endpoint,
		S3URL:      cfg.S3URL,
	})
	if err != nil {
		return nil, cleanup, err
	}

	deps := server.Deps{
		Config: cfg,
		Logger: rt.log,
		Store:  rt.store,
		Disk:   disk,
	}

	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange}, rt.log)
		switch {
		case err == nil:
			deps.Publisher = mq
			closers = append(closers, func() {
				if err := mq.Close(); err != nil {
					rt.log.Warn("failed to close RabbitMQ client", zap.Error(err))
				}
			})
		case cfg.IsProduction():
			return nil, cleanup, err
		default:
			rt.log.Warn("RabbitMQ unavailable, order events disabled", zap.Error(err))
		}
	}

	paypal := payment.NewClient(payment.Config{
		ClientID:  cfg.PayPalClientID,
		AppSecret: cfg.PayPalAppSecret,
		APIURL:    cfg.PayPalAPIURL,
	}, rt.log)
	if paypal.IsConfigured() {
		deps.Verifier = services.PaymentVerifier(paypal)
	} else {
		rt.log.Warn("PayPal secret not configured, payments are not verified")
	}

	limiterCtx, stopLimiter := context.WithCancel(context.Background())
	closers = append(closers, stopLimiter)
	deps.LoginLimiter = middleware.NewIPRateLimiter(limiterCtx, cfg.LoginRatePerMinute, rt.log)

	return server.New(deps), cleanup, nil
}
