package tracing_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/lllypuk/regroup/internal/infrastructure/tracing"
)

func TestSetup_DisabledKeepsGlobalProvider(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := tracing.Setup(context.Background(), tracing.Config{}, slog.New(slog.DiscardHandler))

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestNewProvider_TagsService(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp, err := tracing.NewProvider(context.Background(), tracing.Config{
		Enabled:        true,
		SampleRatio:    1,
		ServiceName:    "regroup",
		ServiceVersion: "test",
	}, sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Resource().Attributes(), attribute.String("service.name", "regroup"))
	assert.Contains(t, spans[0].Resource().Attributes(), attribute.String("service.version", "test"))
}

func TestNewProvider_ZeroRatioDropsRootSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp, err := tracing.NewProvider(context.Background(), tracing.Config{
		Enabled:     true,
		SampleRatio: 0,
		ServiceName: "regroup",
	}, sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	assert.False(t, span.IsRecording())
	span.End()

	assert.Empty(t, recorder.Ended())
}
