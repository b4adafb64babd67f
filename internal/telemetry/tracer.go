// Package telemetry настраивает OpenTelemetry: глобальный TracerProvider с OTLP gRPC
// экспортёром и W3C-пропагаторы.
//
//	shutdown, err := telemetry.SetupTracer(ctx, telemetry.Config{ServiceName: "order-service", Endpoint: endpoint})
//	if err != nil { ... }
//	defer shutdown(context.Background())
package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ShutdownFunc сбрасывает накопленные span'ы и закрывает экспортёр.
type ShutdownFunc func(ctx context.Context) error

// Config описывает экспорт трасс.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint — адрес OTLP gRPC коллектора (host:port, схема http:// отбрасывается).
	// Пустое значение отключает экспорт.
	Endpoint string
	// SampleRatio — доля сэмплируемых трасс; значения вне (0, 1) означают «все».
	SampleRatio float64
}

// SetupTracer регистрирует глобальные TracerProvider и TextMapPropagator.
// Без Endpoint остаётся no-op provider, пропагаторы всё равно регистрируются.
func SetupTracer(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if strings.TrimSpace(cfg.Endpoint) == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(stripScheme(cfg.Endpoint)),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create OTLP trace exporter: %w", err)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: shutdown tracer provider: %w", err)
		}
		return nil
	}, nil
}

func newResource(cfg Config) (*resource.Resource, error) {
	env := cfg.Environment
	if env == "" {
		env = "local"
	}
	res, err := resource.Merge(
		resource.Default(),
		// Пустая schema URL не конфликтует со схемой resource.Default при Merge.
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}
	return res, nil
}

func sampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

func stripScheme(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	for _, prefix := range []string{"http://", "https://"} {
		if trimmed, ok := strings.CutPrefix(endpoint, prefix); ok {
			return trimmed
		}
	}
	return endpoint
}
