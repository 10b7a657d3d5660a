package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sammcj/mcp-sheets/internal/telemetry"
	"github.com/sirupsen/logrus"
)

const (
	defaultEndpointPath      = "/mcp"
	defaultHeartbeatInterval = 30 * time.Second
	shutdownTimeout          = 30 * time.Second
)

// serveStreamableHTTP runs the streamable HTTP transport behind the auth
// middleware until ctx is cancelled.
func serveStreamableHTTP(ctx context.Context, s *mcpserver.MCPServer, opts Options, logger *logrus.Logger) error {
	endpointPath := opts.EndpointPath
	if endpointPath == "" {
		endpointPath = defaultEndpointPath
	}

	logger.Infof("Starting Streamable HTTP server on port %s with endpoint %s", opts.Port, endpointPath)

	srv := &http.Server{
		Addr:           ":" + opts.Port,
		Handler:        NewHTTPHandler(s, opts, logger),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}

// NewHTTPHandler routes the MCP endpoint (behind AuthMiddleware) plus
// unauthenticated /health and /metrics.
func NewHTTPHandler(s *mcpserver.MCPServer, opts Options, logger *logrus.Logger) http.Handler {
	endpointPath := opts.EndpointPath
	if endpointPath == "" {
		endpointPath = defaultEndpointPath
	}

	heartbeatInterval := defaultHeartbeatInterval
	if opts.SessionTimeout > 0 {
		heartbeatInterval = opts.SessionTimeout / 4
	}

	httpOpts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(endpointPath),
		mcpserver.WithHTTPContextFunc(sessionContext),
		mcpserver.WithHeartbeatInterval(heartbeatInterval),
		mcpserver.WithLogger(&logrusAdapter{logger: logger}),
	}
	if opts.SessionTimeout > 0 {
		httpOpts = append(httpOpts, mcpserver.WithSessionIdManager(NewSessionManager(opts.SessionTimeout, logger)))
	}

	streamable := mcpserver.NewStreamableHTTPServer(s, httpOpts...)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", healthHandler)
	r.Handle("/metrics", telemetry.PrometheusHandler())
	r.With(AuthMiddleware(opts.AuthToken, logger)).Handle(endpointPath, streamable)

	if opts.AuthToken != "" {
		logger.Info("Bearer token authentication enabled")
	}
	logger.Debugf("Heartbeat interval: %v", heartbeatInterval)

	return telemetry.WrapHandler(r, "mcp.http")
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// sessionContext copies the MCP session header into the request context so
// tool spans can carry it.
func sessionContext(ctx context.Context, r *http.Request) context.Context {
	if id := r.Header.Get("Mcp-Session-Id"); id != "" {
		return telemetry.ContextWithSessionID(ctx, id)
	}
	return ctx
}

// AuthMiddleware rejects cross-origin requests with 403 and, when a token is
// configured, requests without a matching bearer token with 401.
func AuthMiddleware(expectedToken string, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			protocolVersion := r.Header.Get("MCP-Protocol-Version")
			switch {
			case protocolVersion == "":
				logger.Debug("No MCP-Protocol-Version header, assuming 2025-06-18")
			case !isValidProtocolVersion(protocolVersion):
				logger.Warnf("Unsupported MCP Protocol Version: %s", protocolVersion)
			}

			// DNS rebinding protection
			if origin := r.Header.Get("Origin"); origin != "" && !isValidOrigin(origin) {
				logger.Warnf("Invalid Origin header: %s", origin)
				http.Error(w, "forbidden origin", http.StatusForbidden)
				return
			}

			if expectedToken != "" {
				token, ok := bearerToken(r.Header.Get("Authorization"))
				if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
					logger.Warn("Rejected request with missing or invalid bearer token")
					w.Header().Set("WWW-Authenticate", `Bearer realm="mcp-sheets"`)
					http.Error(w, "unauthorised", http.StatusUnauthorized)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	return token, token != ""
}

// isValidProtocolVersion checks if the MCP protocol version is supported
func isValidProtocolVersion(version string) bool {
	return slices.Contains([]string{"2025-06-18", "2025-03-26", "2024-11-05"}, version)
}

// isValidOrigin allows loopback origins only.
func isValidOrigin(origin string) bool {
	allowedOrigins := []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
		"https://127.0.0.1",
	}

	for _, allowed := range allowedOrigins {
		if origin == allowed || strings.HasPrefix(origin, allowed+":") {
			return true
		}
	}
	return false
}
