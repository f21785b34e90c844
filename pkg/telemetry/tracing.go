package telemetry

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/inskhq/insk-go/telemetry"

// Config drives how telemetry is initialized.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// OTLPEndpoint enables span export over OTLP/HTTP when non-empty,
	// e.g. "localhost:4318".
	OTLPEndpoint   string
	Resource       *resource.Resource
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Filter         FilterConfig
}

// Manager coordinates tracing, metrics and credential masking for the client.
type Manager struct {
	tracer trace.Tracer

	metrics        *metrics
	filter         *Filter
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

var globalManager atomic.Pointer[Manager]

// NewManager builds a fully wired telemetry manager.
func NewManager(cfg Config) (*Manager, error) {
	filter, err := NewFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}
	tp := cfg.TracerProvider
	if tp == nil {
		res := cfg.Resource
		if res == nil {
			res, err = buildResource(cfg)
			if err != nil {
				return nil, err
			}
		}
		opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
		if endpoint := strings.TrimSpace(cfg.OTLPEndpoint); endpoint != "" {
			exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(
				otlptracehttp.WithEndpoint(endpoint),
				otlptracehttp.WithInsecure(),
			))
			if err != nil {
				return nil, err
			}
			opts = append(opts, sdktrace.WithBatcher(exporter))
		}
		tp = sdktrace.NewTracerProvider(opts...)
	}
	mp := cfg.MeterProvider
	if mp == nil {
		mp = sdkmetric.NewMeterProvider()
	}
	meter := mp.Meter(instrumentationName)
	recorder, err := newMetrics(meter)
	if err != nil {
		return nil, err
	}
	return &Manager{
		tracer:         tp.Tracer(instrumentationName),
		metrics:        recorder,
		filter:         filter,
		tracerProvider: tp,
		meterProvider:  mp,
	}, nil
}

// StartSpan proxies trace creation through the configured tracer.
func (m *Manager) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if m == nil || m.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return m.tracer.Start(ctx, name, opts...)
}

// RecordCall forwards per-request gateway metrics.
func (m *Manager) RecordCall(ctx context.Context, data CallData) {
	if m == nil || m.metrics == nil {
		return
	}
	if m.filter != nil {
		data.Message = m.filter.MaskText(data.Message)
	}
	m.metrics.RecordCall(ctx, data)
}

// RecordPoll increments poll-attempt counters for a tracked job.
func (m *Manager) RecordPoll(ctx context.Context, data PollData) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.RecordPoll(ctx, data)
}

// RecordRun records the terminal outcome and duration of a tracked job run.
func (m *Manager) RecordRun(ctx context.Context, data RunData) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.RecordRun(ctx, data)
}

// SanitizeAttributes masks credential material before it reaches OTEL.
func (m *Manager) SanitizeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	if m == nil || m.filter == nil {
		return attrs
	}
	return m.filter.MaskAttributes(attrs...)
}

// MaskText removes credential material from the provided value.
func (m *Manager) MaskText(value string) string {
	if m == nil || m.filter == nil {
		return value
	}
	return m.filter.MaskText(value)
}

// Shutdown gracefully stops the configured providers.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	var result error
	if closer, ok := m.tracerProvider.(interface {
		Shutdown(context.Context) error
	}); ok && closer != nil {
		if err := closer.Shutdown(ctx); err != nil {
			result = errors.Join(result, err)
		}
	}
	if closer, ok := m.meterProvider.(interface {
		Shutdown(context.Context) error
	}); ok && closer != nil {
		if err := closer.Shutdown(ctx); err != nil {
			result = errors.Join(result, err)
		}
	}
	return result
}

// SetDefault swaps the global telemetry manager used by helper functions.
func SetDefault(mgr *Manager) {
	globalManager.Store(mgr)
}

// Default returns the process-wide telemetry manager when registered.
func Default() *Manager {
	return globalManager.Load()
}

// StartSpan starts a span using the global manager when available.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if mgr := Default(); mgr != nil {
		return mgr.StartSpan(ctx, name, opts...)
	}
	return ctx, trace.SpanFromContext(ctx)
}

// RecordCall publishes gateway metrics through the global manager.
func RecordCall(ctx context.Context, data CallData) {
	if mgr := Default(); mgr != nil {
		mgr.RecordCall(ctx, data)
	}
}

// RecordPoll publishes poll metrics through the global manager.
func RecordPoll(ctx context.Context, data PollData) {
	if mgr := Default(); mgr != nil {
		mgr.RecordPoll(ctx, data)
	}
}

// RecordRun publishes terminal run metrics through the global manager.
func RecordRun(ctx context.Context, data RunData) {
	if mgr := Default(); mgr != nil {
		mgr.RecordRun(ctx, data)
	}
}

// EndSpan finalizes span state while standardizing error recording.
func EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "ok")
	}
	span.End()
}

func buildResource(cfg Config) (*resource.Resource, error) {
	service := strings.TrimSpace(cfg.ServiceName)
	if service == "" {
		service = "insk-go"
	}
	attrs := []attribute.KeyValue{semconv.ServiceName(service)}
	if version := strings.TrimSpace(cfg.ServiceVersion); version != "" {
		attrs = append(attrs, semconv.ServiceVersion(version))
	}
	if env := strings.TrimSpace(cfg.Environment); env != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(env))
	}
	base := resource.Default()
	schema := base.SchemaURL()
	if schema == "" {
		schema = semconv.SchemaURL
	}
	custom := resource.NewWithAttributes(schema, attrs...)
	return resource.Merge(base, custom)
}
