package topology

import (
	"context"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
	"github.com/tmseg/tmseg-go/internal/protein"
)

// SideFeatures are raw residue counts gathered from the soluble windows on
// one side of the membrane. Conserved means a positive profile score,
// non-conserved a negative one.
type SideFeatures struct {
	ConsComp        [protein.NumAminoAcids]int
	NonConsComp     [protein.NumAminoAcids]int
	Conserved       int
	NonConserved    int
	ConsPositive    int
	NonConsPositive int
}

// SideWindows builds the soluble flank windows around every TMH run. Each
// window carries a parity tag in Side; windows on the same membrane side
// share the tag.
func SideWindows(labels Labels, near, far int) []Segment {
	helices := Runs(labels, TMH)
	last := len(labels) - 1
	side := 0

	var windows []Segment
	for i, seg := range helices {
		if i == 0 {
			windows = append(windows, Segment{
				Start: max(seg.Start-far, 0),
				End:   min(seg.Start+near, last, seg.End),
				Label: NotTMH,
				Side:  side,
			})
		} else {
			prev := helices[i-1]
			windows = append(windows,
				Segment{
					Start: max(prev.Start, prev.End-near, 0),
					End:   min(seg.End, seg.Start+near, prev.End+far, last),
					Label: NotTMH,
					Side:  side,
				},
				Segment{
					Start: max(prev.Start, prev.End-near, seg.Start-far, 0),
					End:   min(seg.End, seg.Start+near, last),
					Label: NotTMH,
					Side:  side,
				})
		}

		side = 1 - side

		if i == len(helices)-1 {
			windows = append(windows, Segment{
				Start: max(seg.Start, seg.End-near, 0),
				End:   min(seg.End+far, last),
				Label: NotTMH,
				Side:  side,
			})
		}
	}

	return windows
}

// CollectSideFeatures counts profile evidence inside windows from startPos
// onwards. Side A is the side of the first window that reaches startPos.
func CollectSideFeatures(p protein.Profile, labels Labels, windows []Segment, startPos int) (a, b SideFeatures) {
	firstSide := -1

	for _, w := range windows {
		if w.End < startPos {
			continue
		}
		if firstSide < 0 {
			firstSide = w.Side
		}
		target := &b
		if w.Side == firstSide {
			target = &a
		}

		for i := max(w.Start, startPos); i <= w.End; i++ {
			if labels[i] == Unknown {
				continue
			}
			for j := range protein.NumAminoAcids {
				positive := protein.Charge(j) > 0
				switch score := p.Score(i, j); {
				case score > 0:
					target.ConsComp[j]++
					target.Conserved++
					if positive {
						target.ConsPositive++
					}
				case score < 0:
					target.NonConsComp[j]++
					target.NonConserved++
					if positive {
						target.NonConsPositive++
					}
				}
			}
		}
	}

	return a, b
}

// AssignSides predicts the N-terminal side of a transmembrane protein and
// propagates alternating sides across the labels. It returns the topology
// raw score, round(1000 * P(Inside)).
func AssignSides(ctx context.Context, scorer TopologyScorer, p protein.Profile, labels Labels, hasSignal bool, params Params) (int, error) {
	windows := SideWindows(labels, params.NearOffset, params.FarOffset)
	a, b := CollectSideFeatures(p, labels, windows, 0)

	prob, err := scorer.ScoreSides(ctx, p, a, b)
	if err != nil {
		return -1, errors.New(err).
			Component("topology").
			Category(errors.CategoryOracle).
			Context("operation", "score_sides").
			Context("windows", len(windows)).
			Build()
	}

	start := Outside
	if !hasSignal && prob >= params.TopologyCutoff {
		start = Inside
	}

	GetLogger().Debug("assigned N-terminal side",
		logger.Float64("p_inside", prob),
		logger.String("side", start.String()),
		logger.Bool("signal_peptide", hasSignal))

	PropagateSides(labels, start)
	return scaled(prob), nil
}

// PropagateSides relabels every soluble residue with the current side,
// flipping the side after each TMH run. Signal, Loop and Unknown residues
// keep their label.
func PropagateSides(labels Labels, start Label) {
	side := start
	for i := 0; i < len(labels); i++ {
		switch l := labels[i]; {
		case l.IsNotTMHClass():
			labels[i] = side
		case l == TMH:
			side = side.Opposite()
			i = runEnd(labels, i)
		}
	}
}
