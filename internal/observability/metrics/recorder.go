// Package metrics provides Prometheus collectors for the prediction pipeline
// and its output sinks.
package metrics

// Recorder is the small surface the pipeline records through. It lets the
// engine depend on an abstraction instead of the concrete collectors.
type Recorder interface {
	// RecordOperation counts an operation outcome, e.g. ("predict", "success").
	RecordOperation(operation, status string)

	// RecordDuration records the duration of an operation or stage in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError counts a failure of operation by error category.
	RecordError(operation, errorType string)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordOperation(string, string) {}
func (NopRecorder) RecordDuration(string, float64) {}
func (NopRecorder) RecordError(string, string)     {}
