package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sammcj/mcp-sheets/internal/config"
	"github.com/sammcj/mcp-sheets/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

// Version information (set during build)
var (
	Version   = "0.1.0"
	Commit    = "none"
	BuildDate = "unknown"
)

// Global resources that need cleanup
var (
	debugLogFile atomic.Pointer[os.File]
	isStdioMode  atomic.Bool

	cleanupMu    sync.Mutex
	cleanupFuncs []namedCleanup
)

type namedCleanup struct {
	name string
	fn   func() error
}

const (
	// DefaultMemoryLimit is the default soft memory limit (1GB)
	DefaultMemoryLimit = 1024 * 1024 * 1024

	logFileName = "mcp-sheets.log"
)

// parseLogLevel parses LOG_LEVEL. Defaults to InfoLevel if not set or invalid.
func parseLogLevel() logrus.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

// setMemoryLimit configures the Go runtime soft memory limit
func setMemoryLimit() {
	var memLimit int64 = DefaultMemoryLimit
	if v := os.Getenv("MCP_SHEETS_MEMORY_LIMIT"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			memLimit = parsed
		}
	}
	debug.SetMemoryLimit(memLimit)
}

func main() {
	// A missing .env is normal
	_ = godotenv.Load()

	setMemoryLimit()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Output is discarded until the transport is known
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(parseLogLevel())
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	defer performCleanup(logger)

	app := &cli.Command{
		Name:    "mcp-sheets",
		Usage:   "MCP server for Google Sheets",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		Flags:   rootFlags(),
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Printf("mcp-sheets version %s\n", Version)
					fmt.Printf("Commit: %s\n", Commit)
					fmt.Printf("Built: %s\n", BuildDate)
					return nil
				},
			},
			toolsCommand(logger),
		},
		Action: func(cliCtx context.Context, cmd *cli.Command) error {
			transport := cmd.String("transport")
			isStdioMode.Store(transport == server.TransportStdio)
			configureLogging(logger, transport)

			if transport != server.TransportStdio {
				logger.Infof("Starting mcp-sheets version %s (commit: %s, built: %s)", Version, Commit, BuildDate)
			}

			svc, err := newServices(cliCtx, cmd, logger, transport)
			if err != nil {
				return err
			}

			mcpSrv := server.New(svc.registry, svc.dispatcher, Version, logger)
			return server.Serve(cliCtx, mcpSrv, server.Options{
				Transport:      transport,
				Port:           cmd.String("port"),
				BaseURL:        cmd.String("base-url"),
				AuthToken:      cmd.String("auth-token"),
				EndpointPath:   cmd.String("endpoint-path"),
				SessionTimeout: cmd.Duration("session-timeout"),
			}, logger)
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		// stdout and stderr belong to the MCP protocol in stdio mode
		if isStdioMode.Load() {
			logger.WithError(err).Error("Server exited")
			performCleanup(logger)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		performCleanup(logger)
		os.Exit(1)
	}
}

// rootFlags are shared by the server and the tools subcommands.
func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "transport",
			Aliases: []string{"t"},
			Value:   server.TransportStdio,
			Usage:   "Transport type (stdio, sse, or http)",
		},
		&cli.StringFlag{
			Name:  "port",
			Value: "18080",
			Usage: "Port to use for HTTP transports (SSE and Streamable HTTP)",
		},
		&cli.StringFlag{
			Name:  "base-url",
			Value: "http://localhost",
			Usage: "Base URL for HTTP transports",
		},
		&cli.StringFlag{
			Name:    "auth-token",
			Usage:   "Bearer token required by the Streamable HTTP transport (optional)",
			Sources: cli.EnvVars("MCP_AUTH_TOKEN"),
		},
		&cli.StringFlag{
			Name:  "endpoint-path",
			Value: "/mcp",
			Usage: "Endpoint path for Streamable HTTP transport",
		},
		&cli.DurationFlag{
			Name:  "session-timeout",
			Value: 30 * time.Minute,
			Usage: "Idle session timeout for Streamable HTTP transport",
		},
		&cli.StringFlag{
			Name:    "credentials-file",
			Usage:   "Path to the Google service account JSON key",
			Sources: cli.EnvVars("GOOGLE_SHEETS_CREDENTIALS_FILE"),
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path to config file (default: ~/.mcp-sheets/config.yaml)",
			Sources: cli.EnvVars("MCP_SHEETS_CONFIG"),
		},
		&cli.DurationFlag{
			Name:    "request-timeout",
			Usage:   "Timeout for each Google API request (0 disables)",
			Sources: cli.EnvVars("MCP_SHEETS_REQUEST_TIMEOUT"),
		},
		&cli.IntFlag{
			Name:    "requests-per-minute",
			Usage:   "Google API request budget per minute",
			Sources: cli.EnvVars("MCP_SHEETS_REQUESTS_PER_MINUTE"),
		},
		&cli.StringFlag{
			Name:    "disabled-tools",
			Usage:   "Comma separated list of tools to hide",
			Sources: cli.EnvVars("DISABLED_TOOLS"),
		},
		&cli.BoolFlag{
			Name:    "log-tool-errors",
			Usage:   "Append failed tool calls to ~/.mcp-sheets/logs/tool-errors.log",
			Sources: cli.EnvVars("LOG_TOOL_ERRORS"),
		},
	}
}

// configureLogging points the logger at ~/.mcp-sheets/logs/mcp-sheets.log.
// If the file cannot be opened stdio mode discards logs and the other modes
// fall back to stderr.
func configureLogging(logger *logrus.Logger, transport string) {
	logLevel := parseLogLevel()
	logger.SetLevel(logLevel)

	file, err := openLogFile()
	if err != nil {
		if transport == server.TransportStdio {
			logger.SetOutput(io.Discard)
		} else {
			logger.SetOutput(os.Stderr)
			logger.WithError(err).Warn("Failed to open log file, logging to stderr")
		}
		return
	}

	debugLogFile.Store(file)
	logger.SetOutput(file)
	logger.WithField("level", logLevel.String()).Debug("Logging configured")
}

func openLogFile() (*os.File, error) {
	logDir, err := config.LogDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return os.OpenFile(filepath.Join(logDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
}

// registerCleanup queues fn to run on shutdown, last registered first.
func registerCleanup(name string, fn func() error) {
	cleanupMu.Lock()
	defer cleanupMu.Unlock()
	cleanupFuncs = append(cleanupFuncs, namedCleanup{name: name, fn: fn})
}

// performCleanup handles cleanup of resources on shutdown. Safe to call more
// than once.
func performCleanup(logger *logrus.Logger) {
	cleanupMu.Lock()
	funcs := cleanupFuncs
	cleanupFuncs = nil
	cleanupMu.Unlock()

	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i].fn(); err != nil {
			logger.WithError(err).Warnf("Failed to close %s", funcs[i].name)
		}
	}

	if file := debugLogFile.Swap(nil); file != nil {
		_ = file.Close()
	}
}
