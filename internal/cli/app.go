// Package cli holds the start-up wiring shared by the fliptrack commands:
// configuration, logging, the backend gateway and the optional journal and
// refresh-event publisher.
package cli

import (
	"context"
	"errors"
	"io"

	"fliptrack/internal/amqp"
	"fliptrack/internal/backend"
	"fliptrack/internal/config"
	"fliptrack/internal/log"
	"fliptrack/internal/storage"
	"fliptrack/internal/workflow"
)

// SetupLogger builds the process logger from the configuration and makes it
// the slog default.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel, cfg.Debug),
		Component: log.ComponentCLI,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from .env and the environment.
// A non-empty backendOverride replaces FLIPTRACK_BACKEND.
func LoadAndValidateConfig(backendOverride string) (*config.Config, error) {
	cfg := config.Load()
	if backendOverride != "" {
		cfg.Backend = backendOverride
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// App is everything a command needs once start-up succeeded.
type App struct {
	Config   *config.Config
	Logger   *log.Logger
	Gateway  backend.Gateway
	Journal  *storage.Journal
	Notifier workflow.Notifier

	closers []func() error
}

// Start creates the gateway and, when configured, opens the journal and
// connects the publisher. An unreachable broker is logged and skipped; the
// commands work without refresh events.
func Start(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Discard()
	}
	app := &App{Config: cfg, Logger: logger}

	bcfg, err := backend.ConfigFromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	app.Gateway = result.Gateway
	if result.Cleanup != nil {
		app.closers = append(app.closers, result.Cleanup)
	}

	if cfg.JournalPath != "" {
		journal, err := storage.Open(cfg.JournalPath)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Journal = journal
		app.closers = append(app.closers, journal.Close)
		logger.Debug("Submission journal opened", "path", cfg.JournalPath)
	}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without refresh events",
				log.FieldError, err)
		} else {
			app.Notifier = amqp.NewNotifier(client, logger)
			app.closers = append(app.closers, client.Close)
		}
	}

	return app, nil
}

// Workflow returns an expense entry workflow wired to the app's gateway,
// journal, publisher and logger.
func (a *App) Workflow(opts ...workflow.Option) *workflow.Controller {
	base := []workflow.Option{workflow.WithTracer(workflow.LogTracer(a.Logger))}
	if a.Journal != nil {
		base = append(base, workflow.WithJournal(a.Journal))
	}
	if a.Notifier != nil {
		base = append(base, workflow.WithNotifier(a.Notifier))
	}
	return workflow.New(a.Gateway, append(base, opts...)...)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
