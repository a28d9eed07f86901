package analysis

import (
	"context"

	"github.com/google/uuid"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
	"github.com/tmseg/tmseg-go/internal/observability/metrics"
	"github.com/tmseg/tmseg-go/internal/output"
	"github.com/tmseg/tmseg-go/internal/pipeline"
	"github.com/tmseg/tmseg-go/internal/protein"
)

// Job describes the inputs and outputs of one protein.
type Job struct {
	FastaPath string // FASTA, or structure file outside predict mode
	PSSMPath  string
	Output    output.Paths
	Mode      pipeline.Mode
	RunID     string // generated when empty
}

// FileAnalysis predicts the first protein of job.FastaPath and writes the
// requested outputs.
func (r *Runner) FileAnalysis(ctx context.Context, job Job) (*pipeline.Result, error) {
	if job.RunID == "" {
		job.RunID = uuid.NewString()
	}
	ctx = logger.WithRunID(ctx, job.RunID)

	p, err := r.load(ctx, job)
	if err != nil {
		r.recorder().RecordOperation(metrics.OpLoad, metrics.StatusError)
		r.recorder().RecordError(metrics.OpLoad, metrics.ErrorType(err))
		return nil, err
	}

	var res *pipeline.Result
	switch job.Mode {
	case pipeline.ModeRefine:
		res, err = r.engine.Refine(ctx, p, false)
	case pipeline.ModeTopologyOnly:
		res, err = r.engine.Refine(ctx, p, true)
	default:
		res, err = r.engine.Predict(ctx, p)
	}
	if err != nil {
		return nil, err
	}

	if r.metrics != nil {
		r.metrics.RecordPrediction(res.Transmembrane, res.SignalPeptide, len(res.Helices()))
	}

	if !job.Output.Empty() {
		if err := r.files.Write(res, job.Output); err != nil {
			r.recorder().RecordOperation(metrics.OpWriteFile, metrics.StatusError)
			return nil, err
		}
		r.recorder().RecordOperation(metrics.OpWriteFile, metrics.StatusSuccess)
	}

	r.deliver(ctx, job.RunID, res)
	return res, nil
}

// load reads the sequence record and attaches its profile.
func (r *Runner) load(ctx context.Context, job Job) (*protein.Protein, error) {
	withStructure := job.Mode == pipeline.ModeRefine || job.Mode == pipeline.ModeTopologyOnly

	p, err := protein.LoadFirst(r.fs, job.FastaPath, withStructure)
	if err != nil {
		return nil, err
	}

	pssm, err := protein.LoadPSSM(r.fs, job.PSSMPath, p.Len())
	if err != nil {
		return nil, errors.New(err).
			Component("analysis").
			Category(categoryOf(err)).
			ProteinContext(p.Name, p.Len()).
			FileContext(job.PSSMPath).
			Build()
	}
	p.Profile = pssm

	GetLogger().WithContext(ctx).Debug("loaded protein",
		logger.String("protein", p.Name),
		logger.Int("length", p.Len()),
		logger.Bool("annotated", p.Annotated))
	return p, nil
}

func categoryOf(err error) errors.ErrorCategory {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		return ee.Category
	}
	return errors.CategoryGeneric
}
