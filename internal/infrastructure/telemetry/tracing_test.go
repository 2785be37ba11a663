package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kanban/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newRecordingTracer installs an in-memory span recorder as the global
// tracer provider for the duration of the test.
func newRecordingTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
	})

	return recorder
}

func TestStartSpan_RecordsNameAndAttributes(t *testing.T) {
	recorder := newRecordingTracer(t)

	ctx, span := telemetry.StartSpan(context.Background(), "card.move",
		telemetry.WithAttribute(telemetry.SpanAttrCardID, "c-1"),
		telemetry.WithAttribute(telemetry.SpanAttrPosition, 1024),
	)
	require.NotNil(t, ctx)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "card.move", spans[0].Name())

	attrs := spans[0].Attributes()
	found := map[string]bool{}
	for _, a := range attrs {
		found[string(a.Key)] = true
	}
	assert.True(t, found[telemetry.SpanAttrCardID])
	assert.True(t, found[telemetry.SpanAttrPosition])
}

func TestStartServiceSpan_NamingConvention(t *testing.T) {
	recorder := newRecordingTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "column", "reorder")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "column.reorder", spans[0].Name())
}

func TestRecordError_SetsErrorStatus(t *testing.T) {
	recorder := newRecordingTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "card.save")
	telemetry.RecordError(span, errors.New("version conflict"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "version conflict", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestRecordError_NilArgsAreSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.RecordError(nil, errors.New("x"))

		_, span := telemetry.StartSpan(context.Background(), "noop")
		telemetry.RecordError(span, nil)
		span.End()
	})
}

func TestAddEvent_AlternatingPairs(t *testing.T) {
	recorder := newRecordingTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "card.reorder")
	telemetry.AddEvent(span, "rebalanced",
		telemetry.SpanAttrBoardID, "b-1",
		"sibling_count", 42,
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "rebalanced", events[0].Name)
	assert.Len(t, events[0].Attributes, 2)
}

func TestGetTraceID_AndSpanID(t *testing.T) {
	newRecordingTracer(t)

	// No span in a bare context
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.Empty(t, telemetry.GetSpanID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "card.get")
	defer span.End()

	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	assert.NotEmpty(t, telemetry.GetSpanID(ctx))
}

func TestSetAttributes_SkipsMalformedPairs(t *testing.T) {
	recorder := newRecordingTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "card.update")
	telemetry.SetAttributes(span,
		"valid_key", "value",
		42, "non-string key is skipped",
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Len(t, spans[0].Attributes(), 1)
}
