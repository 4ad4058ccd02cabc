package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/snippetrunner/internal/application/execution"
	"github.com/alexisbeaulieu97/snippetrunner/internal/config"
	"github.com/alexisbeaulieu97/snippetrunner/internal/infrastructure/events"
	"github.com/alexisbeaulieu97/snippetrunner/internal/infrastructure/kafka"
	"github.com/alexisbeaulieu97/snippetrunner/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/snippetrunner/internal/infrastructure/store"
	"github.com/alexisbeaulieu97/snippetrunner/internal/infrastructure/transport"
	"github.com/alexisbeaulieu97/snippetrunner/internal/logger"
	"github.com/alexisbeaulieu97/snippetrunner/internal/ports"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve interactive and test executions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, root)
		},
	}

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, root *rootFlags) error {
	cfg, log, err := loadConfig(ctx, root, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	server, cleanup, err := buildServer(cfg, log, cmd)
	if err != nil {
		log.Error(ctx, "failed to assemble server", "error", err)
		return err
	}
	defer cleanup()

	return server.Run(ctx)
}

// buildServer wires the store, engine, publishers and transport described by
// cfg. cleanup waits for running sessions and closes the verdict stream.
func buildServer(cfg *config.Config, log *logging.Logger, cmd *cobra.Command) (*transport.Server, func(), error) {
	access, err := logger.New(logger.Options{
		Level:         cfg.Log.Level,
		HumanReadable: cfg.Log.Format == "text",
		Writer:        cmd.OutOrStdout(),
	})
	if err != nil {
		return nil, nil, err
	}

	programs, err := newProgramStore(cfg.Store, log)
	if err != nil {
		return nil, nil, err
	}

	driver, err := newDriver(cfg, log.Layer("application"))
	if err != nil {
		return nil, nil, err
	}

	opts := []execution.Option{
		execution.WithLogger(log.Layer("application")),
		execution.WithEventPublisher(events.NewLoggingPublisher(log.Layer("events"))),
	}

	var reports *kafka.Publisher
	if cfg.Kafka.Enabled() {
		reports, err = kafka.NewPublisher(kafka.PublisherConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, execution.WithVerdictPublisher(reports))
		access.WithFields(map[string]any{"topic": cfg.Kafka.Topic, "brokers": cfg.Kafka.Brokers}).Info("verdict stream enabled")
	}

	svc := execution.NewService(programs, driver, opts...)
	server := transport.NewServer(transport.Config{
		Address:         cfg.Server.Address,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		WebSocketPath:   cfg.Server.WebSocket.Path,
		ReadLimit:       cfg.Server.WebSocket.ReadLimit,
		AllowedOrigins:  cfg.Server.WebSocket.AllowedOrigins,
	}, svc, transport.WithLogger(log.Layer("transport")), transport.WithAccessLog(access))

	cleanup := func() {
		svc.Wait()
		if reports != nil {
			if err := reports.Close(); err != nil {
				access.Error(err, "failed to close verdict stream")
			}
		}
	}
	return server, cleanup, nil
}

func newProgramStore(cfg config.StoreConfig, log *logging.Logger) (ports.ProgramStore, error) {
	if cfg.Dir != "" {
		return store.NewFileStore(cfg.Dir), nil
	}
	return store.NewHTTPStore(cfg.BaseURL,
		store.WithTimeout(cfg.Timeout),
		store.WithStoreLogger(log.Layer("infrastructure").With("adapter", "store")),
	)
}
