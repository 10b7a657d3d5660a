// Package gsheets implements gateway.Gateway on the Google Sheets v4 and
// Drive v3 REST APIs using a service account.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sammcj/mcp-sheets/internal/gateway"
	"github.com/sammcj/mcp-sheets/internal/utils/httpclient"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	// DefaultRequestsPerMinute matches the per-user Sheets read quota.
	DefaultRequestsPerMinute = 60
	DefaultBurst             = 10
)

// Options configures New.
type Options struct {
	// CredentialsFile is the path to a service account JSON key.
	CredentialsFile   string
	RequestsPerMinute int
	Burst             int
	// Timeout bounds each HTTP request. Zero means no timeout.
	Timeout time.Duration
	Logger  *logrus.Logger
	// ClientOptions are appended after the authenticated HTTP client.
	ClientOptions []option.ClientOption
}

// Client is safe for concurrent use. It holds no per-spreadsheet state.
type Client struct {
	sheets  *sheets.Service
	drive   *drive.Service
	limiter *rate.Limiter
	logger  *logrus.Logger
}

var _ gateway.Gateway = (*Client)(nil)

// New authenticates with the service account in opts.CredentialsFile and
// builds the Sheets and Drive services.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.CredentialsFile == "" {
		return nil, errors.New("credentials file is required")
	}
	logger := loggerOrDefault(opts.Logger)

	data, err := os.ReadFile(opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	httpClient := httpclient.NewHTTPClientWithProxyAndLogger(opts.Timeout, logger)
	httpClient.Transport = &oauth2.Transport{Source: creds.TokenSource, Base: httpClient.Transport}

	clientOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts.ClientOptions...)
	c, err := NewWithClientOptions(ctx, opts, clientOpts...)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"project_id": creds.ProjectID,
		"proxy":      httpclient.IsProxyConfigured(),
	}).Info("Successfully authenticated with Google Sheets API")
	return c, nil
}

// NewWithClientOptions builds a client from explicit API options and skips
// credential loading. Tests point it at a fake server.
func NewWithClientOptions(ctx context.Context, opts Options, clientOpts ...option.ClientOption) (*Client, error) {
	sheetsSvc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	rpm := opts.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = DefaultBurst
	}

	return &Client{
		sheets:  sheetsSvc,
		drive:   driveSvc,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
		logger:  loggerOrDefault(opts.Logger),
	}, nil
}

// wait blocks until the limiter allows another request.
func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

func loggerOrDefault(logger *logrus.Logger) *logrus.Logger {
	if logger != nil {
		return logger
	}
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}
