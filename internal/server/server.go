// Package server exposes the dispatcher over MCP using stdio, SSE or
// streamable HTTP.
package server

import (
	"context"
	"fmt"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sammcj/mcp-sheets/internal/dispatch"
	"github.com/sammcj/mcp-sheets/internal/registry"
	"github.com/sirupsen/logrus"
)

// Name is the server name reported to MCP clients.
const Name = "sheet_mcp"

// Transports accepted by Serve.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// Options configures the network transports. Stdio ignores everything but
// Transport.
type Options struct {
	Transport      string
	Port           string
	BaseURL        string
	AuthToken      string
	EndpointPath   string
	SessionTimeout time.Duration
}

// New creates the MCP server and registers every enabled tool against the
// dispatcher.
func New(reg *registry.Registry, d *dispatch.Dispatcher, version string, logger *logrus.Logger) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(Name, version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)

	for _, tool := range reg.Definitions() {
		logger.WithField("tool", tool.Name).Debug("Registering tool")
		s.AddTool(tool, d.Handle)
	}
	return s
}

// Serve runs s on the configured transport until ctx is cancelled or the
// transport fails.
func Serve(ctx context.Context, s *mcpserver.MCPServer, opts Options, logger *logrus.Logger) error {
	logger.WithField("transport", opts.Transport).Debug("Starting server")

	switch opts.Transport {
	case TransportStdio, "":
		return mcpserver.ServeStdio(s)
	case TransportSSE:
		return serveSSE(ctx, s, opts, logger)
	case TransportHTTP:
		return serveStreamableHTTP(ctx, s, opts, logger)
	default:
		return fmt.Errorf("unsupported transport: %s", opts.Transport)
	}
}

func serveSSE(ctx context.Context, s *mcpserver.MCPServer, opts Options, logger *logrus.Logger) error {
	sseServer := mcpserver.NewSSEServer(s, mcpserver.WithBaseURL(fmt.Sprintf("%s:%s", opts.BaseURL, opts.Port)))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- sseServer.Start(":" + opts.Port)
	}()
	logger.WithField("port", opts.Port).Info("SSE server started")

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping SSE server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return sseServer.Shutdown(shutdownCtx)
}

// logrusAdapter adapts logrus.Logger to the mcp-go util.Logger interface
type logrusAdapter struct {
	logger *logrus.Logger
}

func (l *logrusAdapter) Debugf(format string, args ...any) {
	l.logger.Debugf(format, args...)
}

func (l *logrusAdapter) Infof(format string, args ...any) {
	l.logger.Infof(format, args...)
}

func (l *logrusAdapter) Warnf(format string, args ...any) {
	l.logger.Warnf(format, args...)
}

func (l *logrusAdapter) Errorf(format string, args ...any) {
	l.logger.Errorf(format, args...)
}
