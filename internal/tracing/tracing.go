// Package tracing configures the OpenTelemetry trace exporter.
package tracing

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
)

const defaultServiceName = "resume-scorer"

// Config selects the OTLP/gRPC collector. An empty Endpoint disables tracing.
type Config struct {
	Endpoint    string  `mapstructure:"otlp-endpoint"`
	ServiceName string  `mapstructure:"service-name"`
	SampleRatio float64 `mapstructure:"sample-ratio" validate:"gte=0,lte=1"`
}

// Shutdown flushes and stops the tracer provider.
type Shutdown func(context.Context) error

// Setup installs a global tracer provider exporting to cfg.Endpoint. When
// tracing is disabled it returns a no-op shutdown.
func Setup(ctx context.Context, cfg Config, logger *zap.Logger) (Shutdown, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		logger.Debug("otlp endpoint not set, tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating otlp exporter: %w", err)
	}

	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = defaultServiceName
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String(name)))
	if err != nil {
		return nil, fmt.Errorf("creating trace resource: %w", err)
	}

	ratio := cfg.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)
	otel.SetTracerProvider(tp)

	logger.Info("tracing configured",
		zap.String("endpoint", endpoint),
		zap.String("service", name),
		zap.Float64("sampling_ratio", ratio),
	)

	return tp.Shutdown, nil
}
