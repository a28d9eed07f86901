package topology

import (
	"context"
	"sync/atomic"

	"github.com/tmseg/tmseg-go/internal/protein"
)

type segmentKey struct{ start, end int }

// tableScorer returns a fixed probability per window and fallback otherwise.
type tableScorer struct {
	table    map[segmentKey]float64
	fallback float64
	err      error
	calls    atomic.Int64
}

func (s *tableScorer) ScoreSegment(_ context.Context, _ protein.Profile, start, end int) (float64, error) {
	s.calls.Add(1)
	if s.err != nil {
		return 0, s.err
	}
	if p, ok := s.table[segmentKey{start, end}]; ok {
		return p, nil
	}
	return s.fallback, nil
}

// lengthScorer scores a window by its length alone.
type lengthScorer func(n int) float64

func (f lengthScorer) ScoreSegment(_ context.Context, _ protein.Profile, start, end int) (float64, error) {
	return f(end - start + 1), nil
}

func perMille(n int) float64 { return float64(n) / 1000 }

type sidesScorer struct {
	prob float64
	err  error
	a, b SideFeatures
}

func (s *sidesScorer) ScoreSides(_ context.Context, _ protein.Profile, a, b SideFeatures) (float64, error) {
	s.a, s.b = a, b
	return s.prob, s.err
}

// uniformProfile builds a profile where every row has the same scores.
func uniformProfile(length int, row [protein.NumAminoAcids]int) *protein.PSSM {
	rows := make([][protein.NumAminoAcids]int, length)
	for i := range rows {
		rows[i] = row
	}
	return protein.NewPSSM(rows)
}

func fill(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}
