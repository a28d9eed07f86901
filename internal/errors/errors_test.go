package errors

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTransport captures Sentry events in memory
type mockTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (t *mockTransport) Configure(sentry.ClientOptions) {}

func (t *mockTransport) SendEvent(event *sentry.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func (t *mockTransport) Flush(time.Duration) bool { return true }

func (t *mockTransport) FlushWithContext(context.Context) bool { return true }

func (t *mockTransport) Close() {}

func (t *mockTransport) captured() []*sentry.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*sentry.Event(nil), t.events...)
}

type stubReporter struct {
	mu       sync.Mutex
	reported []*EnhancedError
}

func (r *stubReporter) IsEnabled() bool { return true }

func (r *stubReporter) ReportError(ee *EnhancedError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reported = append(r.reported, ee)
}

func TestFastPathNoTelemetry(t *testing.T) {
	SetTelemetryReporter(nil)

	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.GetComponent())
	assert.Equal(t, CategoryGeneric, ee.Category)
}

func TestBuilderKeepsExplicitMetadata(t *testing.T) {
	SetTelemetryReporter(nil)

	ee := Newf("pssm has %d rows, sequence has %d residues", 10, 12).
		Component("protein").
		Category(CategoryProteinInput).
		ProteinContext("sp|P12345", 12).
		FileContext("/data/P12345.pssm").
		Build()

	assert.Equal(t, "protein", ee.GetComponent())
	assert.Equal(t, CategoryProteinInput, ee.Category)

	ctx := ee.GetContext()
	assert.Equal(t, "sp|P12345", ctx["protein"])
	assert.Equal(t, 12, ctx["sequence_length"])
	assert.Equal(t, "absolute-path", ctx["file_type"])
	assert.Equal(t, "pssm", ctx["file_extension"])
}

func TestIsCategoryThroughWrapping(t *testing.T) {
	SetTelemetryReporter(nil)

	base := New(NewStd("oracle unavailable")).Category(CategoryOracle).Build()
	wrapped := fmt.Errorf("refine: %w", base)

	assert.True(t, IsCategory(wrapped, CategoryOracle))
	assert.False(t, IsCategory(wrapped, CategoryDatabase))
	assert.True(t, Is(wrapped, &EnhancedError{Category: CategoryOracle}))
	assert.False(t, IsCategory(NewStd("plain"), CategoryOracle))
}

func TestDetectCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  string
		want ErrorCategory
	}{
		{"malformed PSSM header", CategoryFileParsing},
		{"failed to load model", CategoryModelLoad},
		{"connection refused", CategoryNetwork},
		{"cannot open input", CategoryFileIO},
		{"length mismatch", CategoryValidation},
		{"something odd", CategoryGeneric},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, detectCategory(NewStd(tt.msg)), tt.msg)
	}
}

func TestSlowPathReportsToTelemetry(t *testing.T) {
	reporter := &stubReporter{}
	SetTelemetryReporter(reporter)
	t.Cleanup(func() { SetTelemetryReporter(nil) })

	ee := New(NewStd("invalid label")).Build()

	require.Len(t, reporter.reported, 1)
	assert.Same(t, ee, reporter.reported[0])
	assert.Equal(t, CategoryValidation, ee.Category)
}

func TestSentryReporterSendsScrubbedEvent(t *testing.T) {
	transport := &mockTransport{}
	require.NoError(t, sentry.Init(sentry.ClientOptions{
		Dsn:       "https://public@example.com/1",
		Transport: transport,
	}))
	t.Cleanup(func() { _ = sentry.Init(sentry.ClientOptions{}) })

	SetTelemetryReporter(NewSentryReporter(true))
	t.Cleanup(func() { SetTelemetryReporter(nil) })

	ee := New(NewStd("remote oracle failed: https://oracle.local/score?token=abc")).
		Component("oracle").
		Category(CategoryOracle).
		Context("operation", "score_segment").
		Build()

	assert.True(t, ee.IsReported())

	events := transport.captured()
	require.Len(t, events, 1)
	assert.NotContains(t, events[0].Message, "token=abc")
	assert.NotContains(t, events[0].Message, "oracle.local")
	assert.Equal(t, "oracle", events[0].Tags["component"])
	assert.Equal(t, "Oracle Oracle Error Score Segment", events[0].Tags["error_title"])
}

func TestSentryReporterDisabled(t *testing.T) {
	reporter := NewSentryReporter(false)
	SetTelemetryReporter(reporter)
	t.Cleanup(func() { SetTelemetryReporter(nil) })

	assert.False(t, hasActiveReporting.Load())
}
