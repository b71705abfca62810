package tts

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/dgnsrekt/voicebox/internal/tts"

// engineMetrics records engine activity on the global meter provider. With
// no provider installed every instrument is a no-op.
type engineMetrics struct {
	requests  metric.Int64Counter
	results   metric.Int64Counter
	cacheHits metric.Int64Counter
	duration  metric.Float64Histogram

	registration metric.Registration
}

// newEngineMetrics falls back to no-op instruments if the global provider
// rejects any of them; the error is returned for logging only.
func newEngineMetrics(e *Engine) (*engineMetrics, error) {
	m, err := buildMetrics(otel.Meter(meterName), e)
	if err != nil {
		m, _ = buildMetrics(noop.NewMeterProvider().Meter(meterName), e)
	}
	return m, err
}

func buildMetrics(meter metric.Meter, e *Engine) (*engineMetrics, error) {
	m := &engineMetrics{}

	var errs []error
	var err error

	m.requests, err = meter.Int64Counter("voicebox.tts.requests",
		metric.WithDescription("Speak calls that reached the engine"))
	errs = append(errs, err)

	m.results, err = meter.Int64Counter("voicebox.tts.results",
		metric.WithDescription("Completed synthesis results by outcome"))
	errs = append(errs, err)

	m.cacheHits, err = meter.Int64Counter("voicebox.tts.cache.hits",
		metric.WithDescription("Speak calls answered from the cache"))
	errs = append(errs, err)

	m.duration, err = meter.Float64Histogram("voicebox.tts.synthesis.duration",
		metric.WithDescription("Wall time of one Piper run"),
		metric.WithUnit("s"))
	errs = append(errs, err)

	queued, err := meter.Int64ObservableGauge("voicebox.tts.queue.depth",
		metric.WithDescription("Requests waiting for the worker"))
	errs = append(errs, err)

	if err == nil {
		m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			o.ObserveInt64(queued, int64(e.pending.Len()))
			return nil
		}, queued)
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		m.close()
		return nil, err
	}
	return m, nil
}

func (m *engineMetrics) request(ctx context.Context) {
	m.requests.Add(ctx, 1)
}

func (m *engineMetrics) cacheHit(ctx context.Context, level string) {
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("level", level)))
}

func (m *engineMetrics) result(ctx context.Context, err error, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("reason", reason(err)))
	m.results.Add(ctx, 1, attrs)
	if elapsed > 0 {
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

func (m *engineMetrics) close() {
	if m.registration != nil {
		_ = m.registration.Unregister()
	}
}
