package analysis

import (
	"context"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
	"github.com/tmseg/tmseg-go/internal/observability/metrics"
	"github.com/tmseg/tmseg-go/internal/output"
	"github.com/tmseg/tmseg-go/internal/pipeline"
)

// Extensions are the file name suffixes used in directory mode.
type Extensions struct {
	Fasta  string
	PSSM   string
	Report string
	Raw    string
}

// DefaultExtensions returns .fasta, .pssm, .tmseg and .tmseg-raw.
func DefaultExtensions() Extensions {
	return Extensions{Fasta: ".fasta", PSSM: ".pssm", Report: ".tmseg", Raw: ".tmseg-raw"}
}

// DirectoryJob maps every <name><Fasta> in FastaDir to <PSSMDir>/<name><PSSM>
// and writes <name><Report> to ReportDir and <name><Raw> to RawDir. An empty
// output directory disables that output.
type DirectoryJob struct {
	FastaDir  string
	PSSMDir   string
	ReportDir string
	RawDir    string
	Mode      pipeline.Mode
	Workers   int // 0 = number of CPUs
	Ext       Extensions
}

// Failure is a protein that was excluded from the output.
type Failure struct {
	File string
	Err  error
}

// Summary describes a finished batch.
type Summary struct {
	RunID     string
	Total     int
	Succeeded int
	Failures  []Failure
	Duration  time.Duration
}

// jobs lists the per-protein jobs of d in file name order.
func (d DirectoryJob) jobs(fs afero.Fs, runID string) ([]Job, error) {
	entries, err := afero.ReadDir(fs, d.FastaDir)
	if err != nil {
		return nil, errors.New(err).
			Component("analysis").
			Category(errors.CategoryFileIO).
			Context("operation", "read_fasta_dir").
			Build()
	}

	ext := strings.ToLower(d.Ext.Fasta)
	var jobs []Job
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(name), ext) {
			continue
		}
		base := name[:len(name)-len(ext)]

		job := Job{
			FastaPath: filepath.Join(d.FastaDir, name),
			PSSMPath:  filepath.Join(d.PSSMDir, base+d.Ext.PSSM),
			Mode:      d.Mode,
			RunID:     runID,
			Output:    d.Ext.Paths(d.ReportDir, d.RawDir, base),
		}
		jobs = append(jobs, job)
	}

	slices.SortFunc(jobs, func(a, b Job) int { return strings.Compare(a.FastaPath, b.FastaPath) })
	return jobs, nil
}

// DirectoryAnalysis processes every protein of d concurrently. A failing
// protein is logged and listed in the summary; the batch continues.
// Cancelling ctx stops scheduling new proteins and returns
// ErrAnalysisCanceled.
func (r *Runner) DirectoryAnalysis(ctx context.Context, d DirectoryJob) (*Summary, error) {
	start := time.Now()
	summary := &Summary{RunID: uuid.NewString()}
	ctx = logger.WithRunID(ctx, summary.RunID)
	log := GetLogger().WithContext(ctx)

	jobs, err := d.jobs(r.fs, summary.RunID)
	if err != nil {
		return nil, err
	}
	summary.Total = len(jobs)
	if len(jobs) == 0 {
		log.Warn("no input files found",
			logger.String("dir", d.FastaDir),
			logger.String("extension", d.Ext.Fasta))
		return summary, nil
	}

	workers := d.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log.Info("starting batch",
		logger.Int("proteins", len(jobs)),
		logger.Int("workers", workers),
		logger.String("mode", string(d.Mode)))
	logMemoryUsage(log, "start")

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(workers)

	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if r.metrics != nil {
				r.metrics.WorkerStarted()
				defer r.metrics.WorkerDone()
			}

			_, err := r.FileAnalysis(ctx, job)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failures = append(summary.Failures, Failure{File: job.FastaPath, Err: err})
				log.Error("protein failed",
					logger.String("file", filepath.Base(job.FastaPath)),
					logger.Error(err))
				return nil
			}
			summary.Succeeded++
			return nil
		})
	}
	_ = g.Wait()

	summary.Duration = time.Since(start)
	slices.SortFunc(summary.Failures, func(a, b Failure) int { return strings.Compare(a.File, b.File) })

	r.publishCacheStats()
	logMemoryUsage(log, "end")
	r.recorder().RecordDuration(metrics.OpBatch, summary.Duration.Seconds())

	if err := ctx.Err(); err != nil {
		r.recorder().RecordOperation(metrics.OpBatch, metrics.StatusError)
		log.Warn("batch interrupted",
			logger.Int("succeeded", summary.Succeeded),
			logger.Int("failed", len(summary.Failures)))
		return summary, errors.New(ErrAnalysisCanceled).
			Component("analysis").
			Category(errors.CategoryCancellation).
			Context("succeeded", summary.Succeeded).
			Build()
	}

	r.recorder().RecordOperation(metrics.OpBatch, metrics.StatusSuccess)
	log.Info("batch finished",
		logger.Int("succeeded", summary.Succeeded),
		logger.Int("failed", len(summary.Failures)),
		logger.Duration("duration", summary.Duration))
	return summary, nil
}

// Paths returns the report and raw paths of base. An empty directory
// leaves that path unset.
func (e Extensions) Paths(reportDir, rawDir, base string) output.Paths {
	var p output.Paths
	if reportDir != "" {
		p.Report = filepath.Join(reportDir, base+e.Report)
	}
	if rawDir != "" {
		p.Raw = filepath.Join(rawDir, base+e.Raw)
	}
	return p
}
