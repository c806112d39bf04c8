package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all the metric instruments for the content backend
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter
	// content
	UploadsTotal      metric.Int64Counter
	UploadBytesTotal  metric.Int64Counter
	AssetDeletesTotal metric.Int64Counter
	// gate
	GateRedirectsTotal metric.Int64Counter
	// limiter
	RateLimitHitsTotal metric.Int64Counter
	// middlewares
	AuthWorkDuration metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests: %w", err)
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration",
		metric.WithDescription("HTTP request latency in ms"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration: %w", err)
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of in-flight requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_active_requests: %w", err)
	}

	uploadsTotal, err := meter.Int64Counter(
		"uploads",
		metric.WithDescription("Total number of stored image uploads"),
		metric.WithUnit("{upload}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create uploads: %w", err)
	}

	uploadBytesTotal, err := meter.Int64Counter(
		"upload_bytes",
		metric.WithDescription("Total bytes of stored image uploads"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload_bytes: %w", err)
	}

	assetDeletesTotal, err := meter.Int64Counter(
		"asset_deletes",
		metric.WithDescription("Total number of asset deletions"),
		metric.WithUnit("{delete}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset_deletes: %w", err)
	}

	gateRedirectsTotal, err := meter.Int64Counter(
		"gate_redirects",
		metric.WithDescription("Requests redirected by the access gate"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gate_redirects: %w", err)
	}

	rateLimitHitsTotal, err := meter.Int64Counter(
		"rate_limit_hits",
		metric.WithDescription("Number of rate limiter blocked requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate_limit_hits: %w", err)
	}

	authWorkDuration, err := meter.Float64Histogram(
		"auth_work_duration",
		metric.WithDescription("real time spent on DB/Bcrypt"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth_work_duration: %w", err)
	}

	return &Metrics{
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		HTTPActiveRequests:  httpActiveRequests,
		UploadsTotal:        uploadsTotal,
		UploadBytesTotal:    uploadBytesTotal,
		AssetDeletesTotal:   assetDeletesTotal,
		GateRedirectsTotal:  gateRedirectsTotal,
		RateLimitHitsTotal:  rateLimitHitsTotal,
		AuthWorkDuration:    authWorkDuration,
	}, nil
}
