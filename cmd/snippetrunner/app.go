package main

import (
	"context"
	"io"
	"os"

	"github.com/alexisbeaulieu97/snippetrunner/internal/application/execution"
	"github.com/alexisbeaulieu97/snippetrunner/internal/config"
	"github.com/alexisbeaulieu97/snippetrunner/internal/engine"
	"github.com/alexisbeaulieu97/snippetrunner/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/snippetrunner/internal/ports"
)

// loadConfig reads configuration while buffering log entries until the real
// logger exists. On failure the buffered entries are flushed to w.
func loadConfig(ctx context.Context, flags *rootFlags, w io.Writer) (*config.Config, *logging.Logger, error) {
	boot := logging.NewBootstrapLogger(0)
	boot.Debug(ctx, "loading configuration", "path", flags.configPath, "env_file", flags.envFile)

	cfg, err := config.NewLoader(config.WithEnvFile(flags.envFile)).Load(flags.configPath)
	if err != nil {
		boot.Error(ctx, "configuration rejected", "path", flags.configPath, "error", err)
		if fallback, logErr := logging.New(logging.Options{Writer: w, Component: "snippetrunner"}); logErr == nil {
			boot.Replay(fallback)
		}
		return nil, nil, err
	}
	if flags.verbose {
		cfg.Log.Level = "debug"
	}

	log, err := logging.New(logging.Options{
		Writer:    w,
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Component: "snippetrunner",
	})
	if err != nil {
		return nil, nil, err
	}
	boot.Info(ctx, "configuration loaded", "engine_version", cfg.Engine.Version, "max_steps", cfg.Engine.MaxSteps)
	if dropped := boot.Replay(log); dropped > 0 {
		log.Warn(ctx, "bootstrap log entries dropped", "count", dropped)
	}
	return cfg, log, nil
}

// newDriver wires the engine selected by cfg into a step driver.
func newDriver(cfg *config.Config, log ports.Logger) (*execution.Driver, error) {
	version, err := engine.ParseVersion(cfg.Engine.Version)
	if err != nil {
		return nil, err
	}
	eng := engine.New(engine.WithVersion(version), engine.WithEnvLookup(os.Getenv))
	return execution.NewDriver(eng,
		execution.WithMaxSteps(cfg.Engine.MaxSteps),
		execution.WithDriverLogger(log),
	), nil
}
