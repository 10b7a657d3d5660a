package telemetry

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"google.golang.org/api/googleapi"
)

const defaultMetricExportInterval = 60 * time.Second

// Error categories reported on mcp.tool.errors.
const (
	ErrorCategoryValidation = "validation"
	ErrorCategoryNotFound   = "not_found"
	ErrorCategoryAuth       = "auth"
	ErrorCategoryRateLimit  = "rate_limited"
	ErrorCategoryTimeout    = "timeout"
	ErrorCategoryNetwork    = "network"
	ErrorCategoryAPI        = "external_api"
	ErrorCategoryInternal   = "internal"
)

var (
	metricsMutex        sync.RWMutex
	globalMeterProvider *sdkmetric.MeterProvider
	globalMeter         metric.Meter
	metricsEnabled      bool

	toolCallsCounter      metric.Int64Counter
	toolDurationHistogram metric.Float64Histogram
	toolErrorsCounter     metric.Int64Counter
)

// InitMetrics initialises the meter provider. Call it after InitTracer.
func InitMetrics(logger *logrus.Logger, version string) (func() error, error) {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" || os.Getenv("OTEL_SDK_DISABLED") == "true" {
		logger.Debug("OTEL Metrics: Not configured, using noop meter")
		metricsEnabled = false
		globalMeter = otel.GetMeterProvider().Meter(instrumentationName)
		return func() error { return nil }, nil
	}

	logger.WithField("endpoint", endpoint).Info("OTEL Metrics: Initialising meter")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var exporter sdkmetric.Exporter
	var err error
	switch protocol := getOTLPProtocol(); protocol {
	case "grpc":
		exporter, err = otlpmetricgrpc.New(ctx)
	case "http/protobuf", "http":
		exporter, err = otlpmetrichttp.New(ctx)
	default:
		logger.WithField("protocol", protocol).Warn("OTEL Metrics: Unknown protocol, defaulting to http")
		exporter, err = otlpmetrichttp.New(ctx)
	}
	if err != nil {
		logger.WithError(err).Warn("OTEL Metrics: Failed to create exporter, falling back to noop meter")
		metricsEnabled = false
		globalMeter = otel.GetMeterProvider().Meter(instrumentationName)
		return func() error { return nil }, err
	}

	res, err := serviceResource(ctx, version)
	if err != nil {
		logger.WithError(err).Warn("OTEL Metrics: Failed to create resource, using default")
		res = nil
	}

	opts := []sdkmetric.Option{
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(getMetricExportInterval(logger)),
		)),
	}
	if res != nil {
		opts = append(opts, sdkmetric.WithResource(res))
	}
	meterProvider := sdkmetric.NewMeterProvider(opts...)

	otel.SetMeterProvider(meterProvider)
	globalMeterProvider = meterProvider
	globalMeter = meterProvider.Meter(instrumentationName)

	if err := initMetricInstruments(globalMeter); err != nil {
		logger.WithError(err).Error("OTEL Metrics: Failed to create instruments")
		return func() error { return nil }, err
	}
	metricsEnabled = true

	logger.Info("OTEL Metrics: Meter initialised successfully")

	return func() error {
		metricsMutex.Lock()
		defer metricsMutex.Unlock()

		if globalMeterProvider == nil {
			return nil
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		err := globalMeterProvider.Shutdown(shutdownCtx)
		globalMeterProvider = nil
		metricsEnabled = false
		return err
	}, nil
}

func initMetricInstruments(meter metric.Meter) error {
	var err error

	toolCallsCounter, err = meter.Int64Counter(
		"mcp.tool.calls",
		metric.WithDescription("Total number of tool invocations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return err
	}

	toolDurationHistogram, err = meter.Float64Histogram(
		"mcp.tool.duration",
		metric.WithDescription("Tool execution duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000),
	)
	if err != nil {
		return err
	}

	toolErrorsCounter, err = meter.Int64Counter(
		"mcp.tool.errors",
		metric.WithDescription("Total number of tool errors by category"),
		metric.WithUnit("{error}"),
	)
	return err
}

// IsMetricsEnabled returns true if metrics collection is enabled
func IsMetricsEnabled() bool {
	metricsMutex.RLock()
	defer metricsMutex.RUnlock()
	return metricsEnabled
}

// RecordToolCall records one finished tool invocation and its duration in
// Prometheus and, when configured, OTLP.
func RecordToolCall(ctx context.Context, toolName, transport, outcome string, durationMs float64) {
	tool := toolLabel(toolName)
	promToolCalls.WithLabelValues(tool, transport, outcome).Inc()
	promToolDuration.WithLabelValues(tool, outcome).Observe(durationMs / 1000)

	if !IsMetricsEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(AttrMCPToolName, tool),
		attribute.String(AttrMCPTransport, transport),
		attribute.String(AttrMCPToolOutcome, outcome),
	)
	toolCallsCounter.Add(ctx, 1, attrs)
	toolDurationHistogram.Record(ctx, durationMs, attrs)
}

// RecordToolError increments the error counter for a tool and category.
func RecordToolError(ctx context.Context, toolName, category string) {
	if category == "" {
		return
	}
	promToolErrors.WithLabelValues(toolLabel(toolName), category).Inc()

	if !IsMetricsEnabled() {
		return
	}

	toolErrorsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrMCPToolName, toolName),
		attribute.String("error.category", category),
	))
}

// CategoriseToolError maps an error returned from the Sheets or Drive APIs to
// a low cardinality category.
func CategoriseToolError(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 404:
			return ErrorCategoryNotFound
		case apiErr.Code == 401 || apiErr.Code == 403:
			return ErrorCategoryAuth
		case apiErr.Code == 429:
			return ErrorCategoryRateLimit
		case apiErr.Code == 400:
			return ErrorCategoryValidation
		default:
			return ErrorCategoryAPI
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCategoryTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrorCategoryTimeout
		}
		return ErrorCategoryNetwork
	}

	return ErrorCategoryInternal
}

func getMetricExportInterval(logger *logrus.Logger) time.Duration {
	intervalStr := os.Getenv("OTEL_METRIC_EXPORT_INTERVAL")
	if intervalStr == "" {
		return defaultMetricExportInterval
	}

	duration, err := time.ParseDuration(intervalStr + "ms")
	if err != nil || duration <= 0 {
		logger.WithField("value", intervalStr).Warn("OTEL Metrics: Invalid OTEL_METRIC_EXPORT_INTERVAL, using default")
		return defaultMetricExportInterval
	}
	return duration
}
