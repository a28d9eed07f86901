// Package analysis runs predictions for single files and whole folders,
// writes their outputs and hands every result to the configured sinks.
package analysis

import (
	"context"

	"github.com/spf13/afero"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
	"github.com/tmseg/tmseg-go/internal/observability/metrics"
	"github.com/tmseg/tmseg-go/internal/output"
	"github.com/tmseg/tmseg-go/internal/pipeline"
)

// ErrAnalysisCanceled is returned when a batch is interrupted.
var ErrAnalysisCanceled = errors.NewStd("analysis canceled")

// Sink receives every successful prediction. A failing sink is logged and
// counted but never fails the protein.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, runID string, r *pipeline.Result) error
}

// CacheStats exposes segment cache counters.
type CacheStats interface {
	Stats() (hits, misses uint64)
}

// Options are the optional collaborators of a Runner.
type Options struct {
	Sinks   []Sink
	Metrics *metrics.PipelineMetrics
	Cache   CacheStats
}

// Runner loads inputs, runs the engine and dispatches the results.
type Runner struct {
	engine  *pipeline.Engine
	fs      afero.Fs
	files   *output.Files
	sinks   []Sink
	metrics *metrics.PipelineMetrics
	cache   CacheStats
}

// NewRunner returns a runner reading and writing through fs.
func NewRunner(engine *pipeline.Engine, fs afero.Fs, opts Options) *Runner {
	return &Runner{
		engine:  engine,
		fs:      fs,
		files:   output.NewFiles(fs),
		sinks:   opts.Sinks,
		metrics: opts.Metrics,
		cache:   opts.Cache,
	}
}

func (r *Runner) recorder() metrics.Recorder {
	if r.metrics == nil {
		return metrics.NopRecorder{}
	}
	return r.metrics
}

// deliver hands res to every sink.
func (r *Runner) deliver(ctx context.Context, runID string, res *pipeline.Result) {
	for _, sink := range r.sinks {
		if err := sink.Deliver(ctx, runID, res); err != nil {
			r.recorder().RecordOperation(sink.Name(), metrics.StatusError)
			r.recorder().RecordError(sink.Name(), metrics.ErrorType(err))
			GetLogger().WithContext(ctx).Warn("result sink failed",
				logger.String("sink", sink.Name()),
				logger.String("protein", res.Name),
				logger.Error(err))
			continue
		}
		r.recorder().RecordOperation(sink.Name(), metrics.StatusSuccess)
	}
}

// publishCacheStats copies the segment cache counters into the metrics.
func (r *Runner) publishCacheStats() {
	if r.cache == nil {
		return
	}
	hits, misses := r.cache.Stats()
	if r.metrics != nil {
		r.metrics.SetCacheStats(hits, misses)
	}
	GetLogger().Debug("segment cache",
		logger.Uint64("hits", hits),
		logger.Uint64("misses", misses))
}

// GetLogger returns the analysis package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("analysis")
}
