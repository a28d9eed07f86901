// Package telemetry provides opt-in, privacy-filtered error reporting to
// Sentry.
package telemetry

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tmseg/tmseg-go/internal/conf"
	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
	"github.com/tmseg/tmseg-go/internal/privacy"
)

var sentryInitialized atomic.Bool

// Options tune Init. Transport replaces the HTTP transport, which tests use
// to capture events.
type Options struct {
	Release   string
	Transport sentry.Transport
}

// InitSentry initializes Sentry and routes enhanced errors to it. It does
// nothing unless s.Enabled is set.
func InitSentry(s conf.TelemetrySettings, opts Options) error {
	log := GetLogger()
	if !s.Enabled {
		log.Debug("telemetry disabled")
		return nil
	}
	if s.DSN == "" && opts.Transport == nil {
		return errors.Newf("telemetry enabled without a DSN").
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	env := s.Environment
	if env == "" {
		env = "production"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              s.DSN,
		Transport:        opts.Transport,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      env,
		ServerName:       "",
		Release:          opts.Release,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return errors.New(err).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Context("operation", "sentry_init").
			Build()
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
		scope.SetContext("platform", map[string]any{
			"num_cpu":    runtime.NumCPU(),
			"go_version": runtime.Version(),
		})
	})

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	sentryInitialized.Store(true)

	log.Info("telemetry enabled",
		logger.String("environment", env),
		logger.String("release", opts.Release))
	return nil
}

// IsEnabled reports whether Sentry has been initialized.
func IsEnabled() bool { return sentryInitialized.Load() }

// Flush waits up to timeout for buffered events and detaches the error
// reporter.
func Flush(timeout time.Duration) bool {
	if !sentryInitialized.Load() {
		return true
	}
	errors.SetTelemetryReporter(nil)
	sentryInitialized.Store(false)
	return sentry.Flush(timeout)
}

// applyPrivacyFilters strips host and user identifying data from an event.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""
	event.Message = privacy.ScrubMessage(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = privacy.ScrubMessage(event.Exception[i].Value)
	}

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}

	for k := range event.Extra {
		if k != "error_type" && k != "component" {
			delete(event.Extra, k)
		}
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}
	return event
}

// GetLogger returns the telemetry package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("telemetry")
}
