package telemetry

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	attrCallMethod  = attribute.Key("gateway.method")
	attrCallPath    = attribute.Key("gateway.path")
	attrCallKind    = attribute.Key("gateway.error_kind")
	attrCallStatus  = attribute.Key("gateway.status")
	attrCallErr     = attribute.Key("gateway.error")
	attrJobKind     = attribute.Key("job.kind")
	attrJobState    = attribute.Key("job.state")
	attrPollAttempt = attribute.Key("job.poll.attempt")
	attrPollOutcome = attribute.Key("job.poll.outcome")
)

type metrics struct {
	calls       metric.Int64Counter
	latency     metric.Float64Histogram
	polls       metric.Int64Counter
	runDuration metric.Float64Histogram
}

// CallData captures the metadata recorded for each gateway request.
type CallData struct {
	Method   string
	Path     string
	Status   int
	Kind     string
	Message  string
	Duration time.Duration
	Error    error
}

// PollData captures metrics for a single job-tracker poll attempt.
type PollData struct {
	Kind    string
	Attempt int
	Outcome string
}

// RunData captures the terminal record of one tracked job run.
type RunData struct {
	Kind     string
	State    string
	Attempts int
	Duration time.Duration
}

func newMetrics(m meterProvider) (*metrics, error) {
	if m == nil {
		return &metrics{}, nil
	}
	calls, err := m.Int64Counter("gateway.calls.total", metric.WithDescription("Total number of outbound API calls."))
	if err != nil {
		return nil, err
	}
	latency, err := m.Float64Histogram("gateway.latency.ms", metric.WithDescription("Outbound call latency in milliseconds."), metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	polls, err := m.Int64Counter("job.polls.total", metric.WithDescription("Total number of job-tracker poll attempts."))
	if err != nil {
		return nil, err
	}
	runDuration, err := m.Float64Histogram("job.run.duration.ms", metric.WithDescription("Wall-clock duration of tracked job runs in milliseconds."), metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return &metrics{
		calls:       calls,
		latency:     latency,
		polls:       polls,
		runDuration: runDuration,
	}, nil
}

func (m *metrics) RecordCall(ctx context.Context, data CallData) {
	if m == nil || m.calls == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, 5)
	if data.Method != "" {
		attrs = append(attrs, attrCallMethod.String(data.Method))
	}
	if data.Path != "" {
		attrs = append(attrs, attrCallPath.String(data.Path))
	}
	if data.Status > 0 {
		attrs = append(attrs, attrCallStatus.Int(data.Status))
	}
	if kind := strings.TrimSpace(data.Kind); kind != "" {
		attrs = append(attrs, attrCallKind.String(kind))
	}
	attrs = append(attrs, attrCallErr.Bool(data.Error != nil))

	m.calls.Add(ctx, 1, metric.WithAttributes(attrs...))
	if data.Duration > 0 && m.latency != nil {
		m.latency.Record(ctx, float64(data.Duration.Milliseconds()), metric.WithAttributes(attrs...))
	}
}

func (m *metrics) RecordPoll(ctx context.Context, data PollData) {
	if m == nil || m.polls == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attrJobKind.String(strings.TrimSpace(data.Kind)),
		attrPollAttempt.Int(data.Attempt),
		attrPollOutcome.String(data.Outcome),
	}
	m.polls.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metrics) RecordRun(ctx context.Context, data RunData) {
	if m == nil || m.runDuration == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attrJobKind.String(strings.TrimSpace(data.Kind)),
		attrJobState.String(data.State),
		attrPollAttempt.Int(data.Attempts),
	}
	m.runDuration.Record(ctx, float64(data.Duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// meterProvider is the subset of metric.Meter we rely on, which makes
// dependency injection straightforward in tests.
type meterProvider interface {
	Int64Counter(name string, opts ...metric.Int64CounterOption) (metric.Int64Counter, error)
	Float64Histogram(name string, opts ...metric.Float64HistogramOption) (metric.Float64Histogram, error)
}
