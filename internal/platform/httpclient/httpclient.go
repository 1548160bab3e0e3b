// Package httpclient builds the instrumented HTTP client shared by the
// chart index and GitHub adapters.
package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// UserAgent returns the User-Agent header value for version.
func UserAgent(version string) string {
	return fmt.Sprintf("chart-pin/%s", version)
}

// New returns a client with the given timeout whose transport records a
// client span per request.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Host
			}),
		),
	}
}
