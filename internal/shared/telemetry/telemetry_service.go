// Copyright (c) 2025 Justin Cranford
//
//

// Package telemetry wires structured logging, tracing, and metrics into a
// single TelemetryService shared by the rest of the module.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Settings configures a TelemetryService. DevMode selects stdout exporters
// suitable for local runs and tests; production wiring swaps in the OTLP gRPC
// exporter by setting DevMode false and OTLPEndpoint.
type Settings struct {
	ServiceName  string
	DevMode      bool
	LogLevel     string
	OTLPEndpoint string
}

// NewTestTelemetrySettings returns dev-mode settings suitable for tests:
// stdout exporters, debug logging, no external collector required.
func NewTestTelemetrySettings(serviceName string) *Settings {
	return &Settings{
		ServiceName: serviceName,
		DevMode:     true,
		LogLevel:    "DEBUG",
	}
}

// TelemetryService bundles the logger and the trace/metric providers built
// from Settings.
type TelemetryService struct {
	Slogger         *slog.Logger
	TracesProvider  trace.TracerProvider
	MetricsProvider metric.MeterProvider
	StartTime       time.Time

	shutdownFuncs []func(context.Context) error
}

// NewTelemetryService builds a TelemetryService from settings. Callers must
// call Shutdown when done to flush exporters and release resources.
func NewTelemetryService(ctx context.Context, settings *Settings) (*TelemetryService, error) {
	if settings == nil {
		return nil, fmt.Errorf("telemetry settings can't be nil")
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(settings.ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry resource: %w", err)
	}

	svc := &TelemetryService{StartTime: time.Now(), shutdownFuncs: nil}

	traceExporter, err := newTraceExporter(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to build trace exporter: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	svc.TracesProvider = tracerProvider
	svc.shutdownFuncs = append(svc.shutdownFuncs, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))
	svc.MetricsProvider = meterProvider
	svc.shutdownFuncs = append(svc.shutdownFuncs, meterProvider.Shutdown)
	otel.SetMeterProvider(meterProvider)

	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(settings.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	stdoutHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	otelHandler := otelslog.NewHandler(settings.ServiceName)
	svc.Slogger = slog.New(slogmulti.Fanout(stdoutHandler, otelHandler))

	return svc, nil
}

// RequireNewForTest is NewTelemetryService for tests, panicking on error so
// call sites stay single-line.
func RequireNewForTest(ctx context.Context, settings *Settings) *TelemetryService {
	svc, err := NewTelemetryService(ctx, settings)
	if err != nil {
		panic(err)
	}

	return svc
}

// Shutdown flushes exporters and releases resources. Safe to call once;
// subsequent calls are no-ops since the underlying providers tolerate it.
func (s *TelemetryService) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, fn := range s.shutdownFuncs {
		_ = fn(ctx)
	}
}

func newTraceExporter(ctx context.Context, settings *Settings) (sdktrace.SpanExporter, error) {
	if settings.DevMode || settings.OTLPEndpoint == "" {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}

	return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(settings.OTLPEndpoint), otlptracegrpc.WithInsecure())
}
