package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campaigner/internal/config"
	"campaigner/internal/constants"
	"campaigner/internal/database"
	"campaigner/internal/models"
	"campaigner/internal/retry"
	"campaigner/internal/service"
	"campaigner/internal/tracing"
	"campaigner/internal/versioning"
	"campaigner/pkg/channel"
	channeltypes "campaigner/pkg/channel/types"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	// CLI flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging (includes sensitive information)")
	configPath = flag.String("config", "config.json", "Path to configuration file")
	version    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println(versioning.Get().String())
		os.Exit(0)
	}

	// Missing .env is fine, environment may be set by the service manager
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	build := versioning.Get()
	logger.WithFields(logrus.Fields{
		"version": build.Version,
		"commit":  build.GitCommit,
	}).Info("Starting campaigner")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
		logger.Info("Verbose logging enabled - sensitive information will be logged")
	} else {
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logger.Warnf("Invalid log level %q, defaulting to info", cfg.LogLevel)
			level = logrus.InfoLevel
		}
		logger.SetLevel(level)
	}

	tracingManager := tracing.NewManager(cfg.Tracing, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	// Initialize database with exponential backoff retry
	var db *database.Database
	backoff := retry.NewBackoff(retry.BackoffConfig{
		InitialDelay: time.Duration(cfg.Retry.InitialBackoffMs) * time.Millisecond,
		MaxDelay:     time.Duration(cfg.Retry.MaxBackoffMs) * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  constants.DefaultDatabaseRetryAttempts,
		Jitter:       true,
	})

	err = backoff.Retry(ctx, func() error {
		var initErr error
		db, initErr = database.New(cfg.Database.Path)
		if initErr != nil {
			logger.Warnf("Failed to initialize database: %v", initErr)
		}
		return initErr
	})
	if err != nil {
		return fmt.Errorf("failed to initialize database after retries: %w", err)
	}
	defer db.Close()

	chClient := channel.NewClient(channeltypes.ClientConfig{
		BaseURL:    cfg.Channel.APIBaseURL,
		APIKey:     cfg.Channel.APIKey,
		Timeout:    cfg.Channel.Timeout,
		RetryCount: cfg.Channel.RetryCount,
	})

	healthCtx, healthCancel := context.WithTimeout(ctx, cfg.Channel.Timeout)
	if err := chClient.HealthCheck(healthCtx); err != nil {
		logger.Warnf("Channel API health check failed: %v. Dispatch may not work until the channel recovers.", err)
	}
	healthCancel()

	contactService := service.NewContactService(db, logger)
	templateService := service.NewTemplateService(db, logger)
	settingsService := service.NewSettingsService(db, logger)

	messageService := service.NewMessageService(db, logger)
	if err := messageService.Reload(ctx); err != nil {
		return fmt.Errorf("failed to load scheduled messages: %w", err)
	}

	reconciler := service.NewReconciler(messageService,
		time.Duration(constants.DefaultReconcileDebounceMs)*time.Millisecond, logger)
	defer reconciler.Stop()

	dispatcher := service.NewDispatcher(
		messageService,
		contactService,
		chClient,
		settingsService,
		time.Duration(cfg.Server.DispatchIntervalSec)*time.Second,
		constants.DefaultDispatchBatchSize,
		logger,
	)
	go dispatcher.Start(ctx)
	defer dispatcher.Stop()

	if cfg.Channel.EventsURL != "" {
		listener := channel.NewEventListener(cfg.Channel.EventsURL, cfg.Channel.APIKey,
			func(ctx context.Context, ev channeltypes.StatusEvent) error {
				return reconciler.HandleEvent(ctx, toStatusEvent(ev))
			}, logger)
		listener.Start(ctx)
		defer listener.Stop()
		logger.WithField("url", cfg.Channel.EventsURL).Info("Channel event listener started")
	} else {
		logger.Info("Channel events URL not configured, relying on webhook delivery only")
	}

	server := NewServer(cfg, logger, contactService, templateService, messageService, settingsService, reconciler)
	serverErrCh := make(chan error, constants.ServerErrorChannelSize)
	go func() {
		if err := server.Start(); err != nil {
			serverErrCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serverErrCh:
		logger.Error(err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(constants.DefaultGracefulShutdownSec)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	logger.Info("Server shutdown completed")
	return nil
}

// toStatusEvent maps a wire-level event to the domain representation.
func toStatusEvent(ev channeltypes.StatusEvent) *models.StatusEvent {
	return &models.StatusEvent{
		ExternalID:    ev.ExternalID,
		Status:        models.MessageStatus(ev.Status),
		Timestamp:     ev.Timestamp,
		SentTime:      ev.SentTime,
		DeliveredTime: ev.DeliveredTime,
		ReadTime:      ev.ReadTime,
		Error:         ev.Error,
	}
}
