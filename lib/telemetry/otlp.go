package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const defaultMetricInterval = 5 * time.Second

// OtlpConnConfig points one signal at a collector, leaving both endpoints
// empty turns the signal off.
type OtlpConnConfig struct {
	GrpcEndpoint string            `json:"grpc_endpoint" yaml:"grpc_endpoint"`
	HttpEndpoint string            `json:"http_endpoint" yaml:"http_endpoint"`
	Headers      map[string]string `json:"headers" yaml:"headers"`
}

type otlpProtocol string

const (
	otlpOff  otlpProtocol = ""
	otlpGrpc otlpProtocol = "grpc"
	otlpHttp otlpProtocol = "http"
)

func (c OtlpConnConfig) protocol() (otlpProtocol, error) {
	switch {
	case c.GrpcEndpoint != "" && c.HttpEndpoint != "":
		return otlpOff, fmt.Errorf("only one of grpc_endpoint and http_endpoint may be set")
	case c.GrpcEndpoint != "":
		return otlpGrpc, nil
	case c.HttpEndpoint != "":
		return otlpHttp, nil
	}
	return otlpOff, nil
}

func (c OtlpConnConfig) endpoint() string {
	if c.GrpcEndpoint != "" {
		return c.GrpcEndpoint
	}
	return c.HttpEndpoint
}

type OtlpConfig struct {
	Traces  OtlpConnConfig `json:"traces" yaml:"traces"`
	Metrics OtlpConnConfig `json:"metrics" yaml:"metrics"`
	// MetricIntervalSeconds is the push period of the metric reader, a
	// scrape usually exits before the first tick and relies on the push
	// done by Shutdown.
	MetricIntervalSeconds int `json:"metric_interval_seconds" yaml:"metric_interval_seconds"`
}

func (c OtlpConfig) metricInterval() time.Duration {
	if c.MetricIntervalSeconds <= 0 {
		return defaultMetricInterval
	}
	return time.Duration(c.MetricIntervalSeconds) * time.Second
}

type Config struct {
	Otlp OtlpConfig `json:"otlp" yaml:"otlp"`
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

// newTraceProvider returns nil if traces are turned off.
func newTraceProvider(ctx context.Context, r *resource.Resource, c OtlpConnConfig) (*trace.TracerProvider, error) {
	protocol, err := c.protocol()
	if err != nil {
		return nil, fmt.Errorf("traces: %w", err)
	}
	if protocol == otlpOff {
		slog.Debug("trace export disabled")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	var exporter trace.SpanExporter
	switch protocol {
	case otlpGrpc:
		exporter, err = otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(c.GrpcEndpoint),
			otlptracegrpc.WithHeaders(c.Headers),
		)
	case otlpHttp:
		exporter, err = otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpointURL(c.HttpEndpoint),
			otlptracehttp.WithHeaders(c.Headers),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("traces: %w", err)
	}
	slog.Info(
		"trace export initialized",
		"type", protocol,
		"endpoint", c.endpoint(),
		"headers", len(c.Headers) > 0,
	)

	// batch jobs are short lived, Shutdown flushes whatever is left in the batcher.
	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	), nil
}

// newMetricProvider returns nil if metrics are turned off.
func newMetricProvider(ctx context.Context, r *resource.Resource, c OtlpConnConfig, interval time.Duration) (*metric.MeterProvider, error) {
	protocol, err := c.protocol()
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if protocol == otlpOff {
		slog.Debug("metric export disabled")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	var exporter metric.Exporter
	switch protocol {
	case otlpGrpc:
		exporter, err = otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(c.GrpcEndpoint),
			otlpmetricgrpc.WithHeaders(c.Headers),
		)
	case otlpHttp:
		exporter, err = otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpointURL(c.HttpEndpoint),
			otlpmetrichttp.WithHeaders(c.Headers),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	slog.Info(
		"metric export initialized",
		"type", protocol,
		"endpoint", c.endpoint(),
		"interval", interval,
	)

	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(interval))),
		metric.WithResource(r),
	), nil
}
