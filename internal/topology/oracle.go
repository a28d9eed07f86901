package topology

import (
	"context"

	"github.com/tmseg/tmseg-go/internal/protein"
)

// ResidueScorer produces per-residue class scores in [0,1000].
type ResidueScorer interface {
	ScoreResidues(ctx context.Context, seq string, p protein.Profile) (sol, tmh, sig []int, err error)
}

// SegmentScorer returns P(TMH) in [0,1] for the candidate helix [start, end].
type SegmentScorer interface {
	ScoreSegment(ctx context.Context, p protein.Profile, start, end int) (float64, error)
}

// TopologyScorer returns P(Inside) in [0,1] for side A of the membrane.
type TopologyScorer interface {
	ScoreSides(ctx context.Context, p protein.Profile, a, b SideFeatures) (float64, error)
}
