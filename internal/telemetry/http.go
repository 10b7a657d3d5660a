package telemetry

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// WrapHTTPTransport adds OTEL client spans to a transport when tracing is on.
// Proxy and timeout settings of the wrapped transport are kept.
func WrapHTTPTransport(transport http.RoundTripper) http.RoundTripper {
	if !IsEnabled() {
		return transport
	}
	if transport == nil {
		transport = http.DefaultTransport
	}
	return otelhttp.NewTransport(transport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "sheets.api " + r.Method
		}),
	)
}

// WrapHandler adds OTEL server spans to the streamable HTTP endpoint.
func WrapHandler(handler http.Handler, operation string) http.Handler {
	if !IsEnabled() {
		return handler
	}
	return otelhttp.NewHandler(handler, operation)
}
