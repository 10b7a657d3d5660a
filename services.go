package main

import (
	"context"
	"fmt"

	"github.com/sammcj/mcp-sheets/internal/config"
	"github.com/sammcj/mcp-sheets/internal/dispatch"
	"github.com/sammcj/mcp-sheets/internal/errorlog"
	"github.com/sammcj/mcp-sheets/internal/gateway/gsheets"
	"github.com/sammcj/mcp-sheets/internal/registry"
	"github.com/sammcj/mcp-sheets/internal/telemetry"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

// services is everything a tool call needs, built once at startup.
type services struct {
	config     *config.Config
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
}

// loadConfig reads the config file and applies flag and env overrides. An
// explicit --config must exist; the default path is optional.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	path := cmd.String("config")
	required := path != ""
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, err
	}

	if v := cmd.String("credentials-file"); v != "" {
		cfg.CredentialsFile = config.ExpandPath(v)
	}
	if cmd.IsSet("requests-per-minute") {
		cfg.RequestsPerMinute = int(cmd.Int("requests-per-minute"))
	}
	if cmd.IsSet("request-timeout") {
		cfg.RequestTimeout = cmd.Duration("request-timeout")
	}
	if cmd.IsSet("log-tool-errors") {
		cfg.LogToolErrors = cmd.Bool("log-tool-errors")
	}
	cfg.DisabledTools = append(cfg.DisabledTools, registry.ParseDisabledTools(cmd.String("disabled-tools"))...)

	return cfg, nil
}

// newRegistry builds the registry without touching credentials, for commands
// that only describe tools.
func newRegistry(cmd *cli.Command, logger *logrus.Logger) (*registry.Registry, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return registry.New(logger, cfg.DisabledTools), nil
}

// newServices validates configuration, starts telemetry and the error log,
// authenticates against Google and builds the dispatcher.
func newServices(ctx context.Context, cmd *cli.Command, logger *logrus.Logger, transport string) (*services, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tracerShutdown, err := telemetry.InitTracer(logger, Version)
	if err != nil {
		logger.WithError(err).Warn("Failed to initialise tracing")
	}
	registerCleanup("tracer", tracerShutdown)

	metricsShutdown, err := telemetry.InitMetrics(logger, Version)
	if err != nil {
		logger.WithError(err).Warn("Failed to initialise metrics")
	}
	registerCleanup("metrics", metricsShutdown)

	errLog := errorlog.Disabled()
	if cfg.LogToolErrors {
		logDir, err := config.LogDir()
		if err == nil {
			errLog, err = errorlog.New(logger, errorlog.Options{Enabled: true, Dir: logDir})
		}
		if err != nil {
			logger.WithError(err).Warn("Failed to initialise tool error logger")
			errLog = errorlog.Disabled()
		}
	}
	registerCleanup("tool error log", errLog.Close)

	gw, err := gsheets.New(ctx, gsheets.Options{
		CredentialsFile:   cfg.CredentialsFile,
		RequestsPerMinute: cfg.RequestsPerMinute,
		Timeout:           cfg.RequestTimeout,
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Google Sheets: %w", err)
	}

	reg := registry.New(logger, cfg.DisabledTools)
	d, err := dispatch.New(reg, gw, dispatch.Options{
		Logger:    logger,
		ErrorLog:  errLog,
		Transport: transport,
	})
	if err != nil {
		return nil, err
	}

	logger.WithField("tool_count", len(reg.Names())).Debug("Tools ready")
	return &services{config: cfg, registry: reg, dispatcher: d}, nil
}
