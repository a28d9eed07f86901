// Package pipeline runs the refinement stages for one protein: residue
// scoring, smoothing, arbitration, filtering, boundary refinement, side
// assignment and confidence.
package pipeline

import (
	"context"
	"time"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
	"github.com/tmseg/tmseg-go/internal/observability/metrics"
	"github.com/tmseg/tmseg-go/internal/protein"
	"github.com/tmseg/tmseg-go/internal/topology"
)

// Engine is safe for concurrent use when its scorers are.
type Engine struct {
	Residue  topology.ResidueScorer
	Segment  topology.SegmentScorer
	Topology topology.TopologyScorer
	Params   topology.Params
	Recorder metrics.Recorder
}

// New returns an engine that records nothing until Recorder is set.
func New(residue topology.ResidueScorer, segment topology.SegmentScorer, topo topology.TopologyScorer, params topology.Params) *Engine {
	return &Engine{
		Residue:  residue,
		Segment:  segment,
		Topology: topo,
		Params:   params,
		Recorder: metrics.NopRecorder{},
	}
}

// stage runs fn and records its duration under name.
func (e *Engine) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	e.Recorder.RecordDuration(name, time.Since(start).Seconds())
	return err
}

// finish records the outcome of one protein.
func (e *Engine) finish(op string, p *protein.Protein, res *Result, start time.Time, err error) (*Result, error) {
	elapsed := time.Since(start)
	e.Recorder.RecordDuration(op, elapsed.Seconds())

	if err != nil {
		e.Recorder.RecordOperation(op, metrics.StatusError)
		e.Recorder.RecordError(op, metrics.ErrorType(err))
		GetLogger().Warn("prediction failed",
			logger.String("protein", p.Name),
			logger.String("mode", op),
			logger.Error(err))
		return nil, err
	}

	res.Duration = elapsed
	e.Recorder.RecordOperation(op, metrics.StatusSuccess)
	GetLogger().Debug("prediction finished",
		logger.String("protein", p.Name),
		logger.String("mode", op),
		logger.Int("helices", len(res.Helices())),
		logger.Bool("signal_peptide", res.SignalPeptide),
		logger.Duration("duration", elapsed))
	return res, nil
}

func validate(p *protein.Protein) error {
	switch {
	case p.Profile == nil:
		return errors.Newf("protein %s has no profile", p.Name).
			Component("pipeline").
			Category(errors.CategoryProteinInput).
			ProteinContext(p.Name, p.Len()).
			Build()
	case p.Profile.Len() != p.Len():
		return errors.Newf("profile length %d does not match sequence length %d", p.Profile.Len(), p.Len()).
			Component("pipeline").
			Category(errors.CategoryProteinInput).
			ProteinContext(p.Name, p.Len()).
			Build()
	}
	return nil
}

func newResult(p *protein.Protein, mode Mode) *Result {
	return &Result{
		Name:        p.Name,
		Header:      p.Header,
		Sequence:    p.Sequence,
		Mode:        mode,
		TopologyRaw: -1,
	}
}

// Predict runs the full prediction for p.
func (e *Engine) Predict(ctx context.Context, p *protein.Protein) (*Result, error) {
	start := time.Now()
	res, err := e.predict(ctx, p)
	return e.finish(metrics.OpPredict, p, res, start, err)
}

func (e *Engine) predict(ctx context.Context, p *protein.Protein) (*Result, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	res := newResult(p, ModePredict)
	params := e.Params
	length := p.Len()

	err := e.stage(metrics.StageResidue, func() error {
		var err error
		res.Sol, res.TMH, res.Sig, err = e.Residue.ScoreResidues(ctx, p.Sequence, p.Profile)
		if err != nil {
			return errors.New(err).
				Component("pipeline").
				Category(errors.CategoryOracle).
				ProteinContext(p.Name, length).
				Context("operation", "score_residues").
				Build()
		}
		if len(res.Sol) != length || len(res.TMH) != length || len(res.Sig) != length {
			return errors.Newf("residue scorer returned %d/%d/%d scores for %d residues",
				len(res.Sol), len(res.TMH), len(res.Sig), length).
				Component("pipeline").
				Category(errors.CategoryOracle).
				ProteinContext(p.Name, length).
				Build()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var sol, tmh, sig []int
	_ = e.stage(metrics.StageSmooth, func() error {
		sol = topology.MedianFilter(res.Sol, params.SmoothWindow)
		tmh = topology.MedianFilter(res.TMH, params.SmoothWindow)
		sig = topology.MedianFilter(res.Sig, params.SmoothWindow)
		return nil
	})

	var labels topology.Labels
	_ = e.stage(metrics.StageArbitrate, func() error {
		var lastSignal int
		labels, lastSignal = topology.Arbitrate(sol, tmh, sig, params.Weights)
		res.Transmembrane = topology.FilterShortHelices(labels, params.MinHelixLength)
		if lastSignal >= 0 {
			res.SignalPeptide = topology.ValidateSignalPeptide(labels, lastSignal, params.SignalMinRun)
		}
		return nil
	})

	if res.Transmembrane {
		if err := e.refine(ctx, p, labels, res); err != nil {
			return nil, err
		}
		res.Transmembrane = topology.IsTransmembrane(labels)
	}

	if res.Transmembrane {
		if err := e.assignSides(ctx, p, labels, res.SignalPeptide, res); err != nil {
			return nil, err
		}
	}

	_ = e.stage(metrics.StageConfidence, func() error {
		res.Confidence = topology.AssignConfidence(tmh, sol, res.SegmentScores, labels)
		return nil
	})

	res.Labels = labels
	return res, nil
}

// Refine post-processes the annotation carried by p. With topologyOnly the
// helices are kept as given and only the sides are assigned.
func (e *Engine) Refine(ctx context.Context, p *protein.Protein, topologyOnly bool) (*Result, error) {
	start := time.Now()
	op := metrics.OpRefine
	if topologyOnly {
		op = metrics.OpTopology
	}
	res, err := e.refineOnly(ctx, p, topologyOnly)
	return e.finish(op, p, res, start, err)
}

func (e *Engine) refineOnly(ctx context.Context, p *protein.Protein, topologyOnly bool) (*Result, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	mode := ModeRefine
	if topologyOnly {
		mode = ModeTopologyOnly
	}
	res := newResult(p, mode)

	labels := topology.ParseLabels(p.Structure).Clone()
	res.SignalPeptide = labels.Contains(topology.Signal)
	res.Transmembrane = topology.IsTransmembrane(labels)

	if !topologyOnly && res.Transmembrane {
		if err := e.refine(ctx, p, labels, res); err != nil {
			return nil, err
		}
		res.Transmembrane = topology.IsTransmembrane(labels)
	}

	if res.Transmembrane {
		if err := e.assignSides(ctx, p, labels, res.SignalPeptide, res); err != nil {
			return nil, err
		}
	}

	res.Labels = labels
	return res, nil
}

func (e *Engine) refine(ctx context.Context, p *protein.Protein, labels topology.Labels, res *Result) error {
	return e.stage(metrics.StageRefine, func() error {
		scores, err := topology.NewRefiner(e.Segment, e.Params).Refine(ctx, p.Profile, labels)
		if err != nil {
			return annotate(err, p)
		}
		res.SegmentScores = scores
		return nil
	})
}

func (e *Engine) assignSides(ctx context.Context, p *protein.Protein, labels topology.Labels, hasSignal bool, res *Result) error {
	return e.stage(metrics.StageSides, func() error {
		raw, err := topology.AssignSides(ctx, e.Topology, p.Profile, labels, hasSignal, e.Params)
		if err != nil {
			return annotate(err, p)
		}
		res.TopologyRaw = raw
		return nil
	})
}

// annotate attaches the protein identity to an error from a stage.
func annotate(err error, p *protein.Protein) error {
	category := errors.CategoryGeneric
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		category = ee.Category
	}
	return errors.New(err).
		Component("pipeline").
		Category(category).
		ProteinContext(p.Name, p.Len()).
		Build()
}

// GetLogger returns the pipeline package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("pipeline")
}
