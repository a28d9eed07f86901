package topology

import (
	"context"
	"math"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
	"github.com/tmseg/tmseg-go/internal/protein"
)

// Refiner splits over-long helices and shifts helix boundaries using a
// segment-level classifier.
type Refiner struct {
	Scorer SegmentScorer
	Params Params
}

// NewRefiner returns a Refiner bound to scorer.
func NewRefiner(scorer SegmentScorer, params Params) *Refiner {
	return &Refiner{Scorer: scorer, Params: params}
}

func (r *Refiner) score(ctx context.Context, p protein.Profile, start, end int) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.New(err).
			Component("topology").
			Category(errors.CategoryCancellation).
			Build()
	}
	prob, err := r.Scorer.ScoreSegment(ctx, p, start, end)
	if err != nil {
		return 0, errors.New(err).
			Component("topology").
			Category(errors.CategoryOracle).
			Context("operation", "score_segment").
			Context("start", start).
			Context("end", end).
			Build()
	}
	return prob, nil
}

func scaled(p float64) int {
	return int(math.Round(1000 * p))
}

func stamp(labels Labels, scores []int, start, end int, label Label, score int) {
	for j := start; j <= end; j++ {
		labels[j] = label
		scores[j] = score
	}
}

// Split breaks each sufficiently long TMH run into two helices separated by
// a gap when both halves clear the cutoff and their mean probability beats
// the whole run. It reports whether any run was split.
func (r *Refiner) Split(ctx context.Context, p protein.Profile, labels Labels, scores []int) (bool, error) {
	params := r.Params
	minLength := params.splitMinLength()
	split := false

	for i := 0; i < len(labels); i++ {
		if labels[i] != TMH {
			continue
		}
		start := i
		end := runEnd(labels, i)
		i = end

		if end-start+1 < minLength {
			continue
		}

		best, err := r.score(ctx, p, start, end)
		if err != nil {
			return split, err
		}

		var bestProb1, bestProb2 float64
		bestBreak1, bestBreak2 := -1, -1

		for b1 := start + params.HelixMinSize - 1; b1 < end; b1++ {
			for b2 := b1 + params.GapMinSize; b2 < end-(params.HelixMinSize-1); b2++ {
				if b2 == b1 {
					continue
				}
				prob1, err := r.score(ctx, p, start, b1)
				if err != nil {
					return split, err
				}
				prob2, err := r.score(ctx, p, b2+1, end)
				if err != nil {
					return split, err
				}
				if prob1 < params.SegmentCutoff || prob2 < params.SegmentCutoff {
					continue
				}
				if avg := (prob1 + prob2) / 2; avg > best {
					best = avg
					bestProb1, bestProb2 = prob1, prob2
					bestBreak1, bestBreak2 = b1, b2
				}
			}
		}

		if bestBreak1 < 0 {
			continue
		}

		stamp(labels, scores, start, bestBreak1, TMH, scaled(bestProb1))
		stamp(labels, scores, bestBreak1+1, bestBreak2, NotTMH, 0)
		stamp(labels, scores, bestBreak2+1, end, TMH, scaled(bestProb2))
		split = true

		GetLogger().Debug("split helix",
			logger.Int("start", start),
			logger.Int("end", end),
			logger.Int("break1", bestBreak1),
			logger.Int("break2", bestBreak2))
	}

	return split, nil
}

// Adjust shifts both ends of every TMH run by up to MaxShift residues and
// keeps the best-scoring window. Runs whose best probability falls below
// the cutoff are deleted. It reports whether any boundary moved.
func (r *Refiner) Adjust(ctx context.Context, p protein.Profile, labels Labels, scores []int) (bool, error) {
	params := r.Params
	adjusted := false

	for i := 0; i < len(labels); i++ {
		if labels[i] != TMH {
			scores[i] = 0
			continue
		}
		start := i
		end := runEnd(labels, i)
		i = end

		bestProb, err := r.score(ctx, p, start, end)
		if err != nil {
			return adjusted, err
		}
		bestStart, bestEnd := -1, -1

		for newStart := start - params.MaxShift; newStart <= start+params.MaxShift; newStart++ {
			if newStart < 0 {
				continue
			}
			for newEnd := end - params.MaxShift; newEnd <= end+params.MaxShift; newEnd++ {
				if newEnd >= len(labels) {
					break
				}
				if newEnd < newStart {
					continue
				}
				prob, err := r.score(ctx, p, newStart, newEnd)
				if err != nil {
					return adjusted, err
				}
				if prob > bestProb {
					bestProb = prob
					bestStart, bestEnd = newStart, newEnd
				}
			}
		}

		switch {
		case bestProb < params.SegmentCutoff:
			stamp(labels, scores, start, end, NotTMH, 0)
		case bestStart >= 0:
			unionStart := min(start, bestStart)
			unionEnd := max(end, bestEnd)
			stamp(labels, scores, unionStart, unionEnd, NotTMH, 0)
			stamp(labels, scores, bestStart, bestEnd, TMH, scaled(bestProb))
			adjusted = true
			i = unionEnd
		default:
			for j := start; j <= end; j++ {
				scores[j] = scaled(bestProb)
			}
		}
	}

	return adjusted, nil
}

// Refine runs the split/adjust schedule over labels and returns the
// per-residue segment scores.
func (r *Refiner) Refine(ctx context.Context, p protein.Profile, labels Labels) ([]int, error) {
	scores := make([]int, len(labels))

	if _, err := r.Split(ctx, p, labels, scores); err != nil {
		return nil, err
	}
	if _, err := r.Adjust(ctx, p, labels, scores); err != nil {
		return nil, err
	}

	for round := 0; round < r.Params.MaxRefineRounds; round++ {
		split, err := r.Split(ctx, p, labels, scores)
		if err != nil {
			return nil, err
		}
		if !split {
			break
		}
		adjusted, err := r.Adjust(ctx, p, labels, scores)
		if err != nil {
			return nil, err
		}
		if !adjusted {
			break
		}
	}

	if _, err := r.Split(ctx, p, labels, scores); err != nil {
		return nil, err
	}

	return scores, nil
}

// GetLogger returns the topology package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("topology")
}
