package oracle

import (
	"context"
	"fmt"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/features"
	"github.com/tmseg/tmseg-go/internal/protein"
	"github.com/tmseg/tmseg-go/internal/topology"
)

// Output class indices of the bundled models.
const (
	residueSol = 0
	residueTMH = 1
	residueSig = 2

	segmentTMH = 1

	sidesInside = 0
)

// signalRegion is the number of N-terminal residues that may score as
// signal peptide.
const signalRegion = 40

// ResidueOracle scores every residue as soluble, helix or signal peptide.
type ResidueOracle struct {
	model Predictor
}

// NewResidueOracle wraps model, which must accept features.ResidueSize inputs.
func NewResidueOracle(model Predictor) (*ResidueOracle, error) {
	if err := checkInputSize("residue", model, features.ResidueSize); err != nil {
		return nil, err
	}
	return &ResidueOracle{model: model}, nil
}

// ScoreResidues implements topology.ResidueScorer. Scores are probabilities
// scaled by 1000 and truncated.
func (o *ResidueOracle) ScoreResidues(ctx context.Context, seq string, p protein.Profile) (sol, tmh, sig []int, err error) {
	n := len(seq)
	if p.Len() != n {
		return nil, nil, nil, errors.New(fmt.Errorf("profile length %d does not match sequence length %d", p.Len(), n)).
			Component("oracle").
			Category(errors.CategoryProteinInput).
			Context("profile_length", p.Len()).
			Context("sequence_length", n).
			Build()
	}

	global := features.GlobalComposition(p)
	sol, tmh, sig = make([]int, n), make([]int, n), make([]int, n)

	for i := range n {
		out, err := predict(ctx, "residue", o.model, features.Residue(p, i, global), 3)
		if err != nil {
			return nil, nil, nil, wrapOracleError(err, "score_residues", i)
		}
		sol[i] = int(1000 * out[residueSol])
		tmh[i] = int(1000 * out[residueTMH])
		if i < signalRegion {
			sig[i] = int(1000 * out[residueSig])
		}
	}

	return sol, tmh, sig, nil
}

// SegmentOracle scores a candidate helix as a whole.
type SegmentOracle struct {
	model Predictor
}

// NewSegmentOracle wraps model, which must accept features.SegmentSize inputs.
func NewSegmentOracle(model Predictor) (*SegmentOracle, error) {
	if err := checkInputSize("segment", model, features.SegmentSize); err != nil {
		return nil, err
	}
	return &SegmentOracle{model: model}, nil
}

// ScoreSegment implements topology.SegmentScorer.
func (o *SegmentOracle) ScoreSegment(ctx context.Context, p protein.Profile, start, end int) (float64, error) {
	if start < 0 || end >= p.Len() || start > end {
		return 0, errors.New(fmt.Errorf("segment [%d,%d] outside profile of length %d", start, end, p.Len())).
			Component("oracle").
			Category(errors.CategoryValidation).
			Build()
	}
	out, err := predict(ctx, "segment", o.model, features.Segment(p, start, end), segmentTMH+1)
	if err != nil {
		return 0, wrapOracleError(err, "score_segment", start)
	}
	return float64(out[segmentTMH]), nil
}

// SidesOracle predicts which membrane side the first soluble window faces.
type SidesOracle struct {
	model Predictor
}

// NewSidesOracle wraps model, which must accept features.SidesSize inputs.
func NewSidesOracle(model Predictor) (*SidesOracle, error) {
	if err := checkInputSize("topology", model, features.SidesSize); err != nil {
		return nil, err
	}
	return &SidesOracle{model: model}, nil
}

// ScoreSides implements topology.TopologyScorer.
func (o *SidesOracle) ScoreSides(ctx context.Context, _ protein.Profile, a, b topology.SideFeatures) (float64, error) {
	out, err := predict(ctx, "topology", o.model, features.Sides(a, b), sidesInside+1)
	if err != nil {
		return 0, wrapOracleError(err, "score_sides", -1)
	}
	return float64(out[sidesInside]), nil
}

func wrapOracleError(err error, operation string, position int) error {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		return err
	}
	return errors.New(err).
		Component("oracle").
		Category(errors.CategoryOracle).
		Context("operation", operation).
		Context("position", position).
		Build()
}

var (
	_ topology.ResidueScorer  = (*ResidueOracle)(nil)
	_ topology.SegmentScorer  = (*SegmentOracle)(nil)
	_ topology.TopologyScorer = (*SidesOracle)(nil)
)
