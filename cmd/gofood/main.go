package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/VladKvetkin/gofood/internal/auth"
	"github.com/VladKvetkin/gofood/internal/config"
	"github.com/VladKvetkin/gofood/internal/events"
	"github.com/VladKvetkin/gofood/internal/handler"
	"github.com/VladKvetkin/gofood/internal/lifecycle"
	"github.com/VladKvetkin/gofood/internal/logger"
	"github.com/VladKvetkin/gofood/internal/mailer"
	"github.com/VladKvetkin/gofood/internal/notify"
	"github.com/VladKvetkin/gofood/internal/server"
	"github.com/VladKvetkin/gofood/internal/services/jwttoken"
	"github.com/VladKvetkin/gofood/internal/storage"
)

func main() {
	os.Exit(start())
}

func start() int {
	config, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error create config: %v\n", err)
		return 1
	}

	if _, err := logger.Initialize(config.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "error initialize logger: %v\n", err)
		return 1
	}

	defer zap.L().Sync()

	db, err := sqlx.Connect("postgres", config.DatabaseURI)
	if err != nil {
		zap.L().Error("error failed to connect to db", zap.Error(err))
		return 1
	}

	defer db.Close()

	postgresStorage := storage.NewPostgresStorage(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := postgresStorage.RunMigrations(ctx); err != nil {
		zap.L().Error("error run migrations", zap.Error(err))
		return 1
	}

	if err := handler.SeedSuperAdmin(ctx, postgresStorage, config.SuperAdminLogin, config.SuperAdminPassword); err != nil {
		zap.L().Error("error seed super admin", zap.Error(err))
		return 1
	}

	publisher := events.NewPublisher(config.KafkaBrokers, config.KafkaTopic)
	defer publisher.Close()

	var (
		tokens     = jwttoken.NewManager(config.JWTSecret, config.TokenTTL)
		dispatcher = notify.NewDispatcher(postgresStorage, publisher)
		service    = lifecycle.NewService(postgresStorage, dispatcher)
		worker     = mailer.NewWorker(postgresStorage, newSender(config), mailer.WorkerConfig{
			PollInterval: config.EmailPollInterval,
			BatchSize:    config.EmailBatchSize,
			Workers:      config.EmailWorkers,
			MaxAttempts:  config.EmailMaxAttempts,
		})
	)

	server := server.NewServer(
		config,
		handler.NewHandler(postgresStorage, service, tokens),
		auth.NewGuard(tokens),
	)

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := server.Start(); err != nil {
			zap.L().Error("error starting server", zap.Error(err))
			return err
		}

		return nil
	})

	eg.Go(func() error {
		if err := worker.Start(ctx); err != nil {
			zap.L().Error("error starting email worker", zap.Error(err))
			return err
		}

		return nil
	})

	<-ctx.Done()

	eg.Go(func() error {
		if err := server.Stop(); err != nil {
			zap.L().Error("error stopping server", zap.Error(err))
			return err
		}

		return nil
	})

	if err := eg.Wait(); err != nil {
		return 1
	}

	return 0
}

func newSender(config config.Config) mailer.Sender {
	if config.EmailProviderURL == "" {
		return mailer.LogSender{}
	}

	return mailer.NewHTTPSender(mailer.HTTPSenderConfig{
		URL:              config.EmailProviderURL,
		APIKey:           config.EmailAPIKey,
		From:             config.EmailFrom,
		Timeout:          10 * time.Second,
		RetryCount:       3,
		RetryWaitTime:    500 * time.Millisecond,
		RetryMaxWaitTime: 5 * time.Second,
	})
}
