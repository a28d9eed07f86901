// Package features turns a conservation profile into the fixed-length
// vectors consumed by the residue, segment and topology classifiers.
//
// A profile entry is "conserved" when its score is positive and
// "non-conserved" when negative; zero scores count as neither.
package features

import (
	"github.com/tmseg/tmseg-go/internal/protein"
	"github.com/tmseg/tmseg-go/internal/topology"
)

const (
	// ResidueWindow is the half width of the residue window.
	ResidueWindow = 9
	// InnerWindow is the half width used for the physico-chemical summary.
	InnerWindow = 4

	windowPositions = 2*ResidueWindow + 1

	inRangeFlag    = -10
	outOfRangeFlag = 10
)

// Vector sizes expected by the bundled models.
const (
	ResidueSize = windowPositions*(protein.NumAminoAcids+1) + 10 + 3 + 2*protein.NumAminoAcids
	SegmentSize = 2*protein.NumAminoAcids + 1 + 6
	SidesSize   = 4*protein.NumAminoAcids + 6
)

// Composition is the profile-wide fraction of conserved and non-conserved
// entries per amino acid.
type Composition struct {
	Cons    [protein.NumAminoAcids]float64
	NonCons [protein.NumAminoAcids]float64
}

// GlobalComposition summarizes the whole profile.
func GlobalComposition(p protein.Profile) Composition {
	var c Composition
	conserved, nonConserved := 0, 0

	for i := range p.Len() {
		for j := range protein.NumAminoAcids {
			switch score := p.Score(i, j); {
			case score > 0:
				c.Cons[j]++
				conserved++
			case score < 0:
				c.NonCons[j]++
				nonConserved++
			}
		}
	}

	cons, nonCons := float64(max(conserved, 1)), float64(max(nonConserved, 1))
	for j := range protein.NumAminoAcids {
		c.Cons[j] /= cons
		c.NonCons[j] /= nonCons
	}
	return c
}

// physChem accumulates hydrophobicity and charge statistics over conserved
// and non-conserved profile entries.
type physChem struct {
	cons, nonCons                       int
	consHydro, nonConsHydro             float64
	consHydrophobic, nonConsHydrophobic int
	consPos, nonConsPos                 int
	consNeg, nonConsNeg                 int
	consPolar, nonConsPolar             int
	consCharged, nonConsCharged         int
}

func (s *physChem) add(aa, score int) {
	h := protein.Hydrophobicity(aa)
	ch := protein.Charge(aa)
	switch {
	case score > 0:
		s.cons++
		s.consHydro += h
		if h > 0 {
			s.consHydrophobic++
		}
		if ch > 0 {
			s.consPos++
		}
		if ch < 0 {
			s.consNeg++
		}
		if ch != 0 {
			s.consCharged++
		}
		if protein.IsPolar(aa) {
			s.consPolar++
		}
	case score < 0:
		s.nonCons++
		s.nonConsHydro += h
		if h > 0 {
			s.nonConsHydrophobic++
		}
		if ch > 0 {
			s.nonConsPos++
		}
		if ch < 0 {
			s.nonConsNeg++
		}
		if ch != 0 {
			s.nonConsCharged++
		}
		if protein.IsPolar(aa) {
			s.nonConsPolar++
		}
	}
}

// denominators returns the conserved and non-conserved counts floored at 1.
func (s *physChem) denominators() (float32, float32) {
	return float32(max(s.cons, 1)), float32(max(s.nonCons, 1))
}

// bucket maps a distance or length onto 0..4 using thresholds in ascending
// order.
func bucket(v int, thresholds [4]int) float32 {
	for i := len(thresholds) - 1; i >= 0; i-- {
		if v > thresholds[i] {
			return float32(i + 1)
		}
	}
	return 0
}

var (
	terminalBuckets = [4]int{10, 20, 30, 40}
	lengthBuckets   = [4]int{60, 120, 180, 240}
)

// Residue builds the window vector centred on position center.
func Residue(p protein.Profile, center int, global Composition) []float32 {
	length := p.Len()
	v := make([]float32, 0, ResidueSize)
	var inner physChem

	for i := center - ResidueWindow; i <= center+ResidueWindow; i++ {
		if i < 0 || i >= length {
			for range protein.NumAminoAcids {
				v = append(v, 0)
			}
			v = append(v, outOfRangeFlag)
			continue
		}
		nearCenter := i-center <= InnerWindow && center-i <= InnerWindow
		for j := range protein.NumAminoAcids {
			score := p.Score(i, j)
			if nearCenter {
				inner.add(j, score)
			}
			v = append(v, float32(score))
		}
		v = append(v, inRangeFlag)
	}

	c, n := inner.denominators()
	v = append(v,
		float32(inner.consHydro)/c, float32(inner.nonConsHydro)/n,
		float32(inner.consHydrophobic)/c, float32(inner.nonConsHydrophobic)/n,
		float32(inner.consPos)/c, float32(inner.nonConsPos)/n,
		float32(inner.consNeg)/c, float32(inner.nonConsNeg)/n,
		float32(inner.consPolar)/c, float32(inner.nonConsPolar)/n,
	)

	v = append(v,
		bucket(center+1, terminalBuckets),
		bucket(length-center, terminalBuckets),
		bucket(length, lengthBuckets),
	)

	for j := range protein.NumAminoAcids {
		v = append(v, float32(global.Cons[j]), float32(global.NonCons[j]))
	}

	return v
}

// Segment builds the vector describing candidate helix [start, end].
func Segment(p protein.Profile, start, end int) []float32 {
	var consComp, nonConsComp [protein.NumAminoAcids]int
	var stats physChem

	for i := start; i <= end; i++ {
		for j := range protein.NumAminoAcids {
			score := p.Score(i, j)
			stats.add(j, score)
			switch {
			case score > 0:
				consComp[j]++
			case score < 0:
				nonConsComp[j]++
			}
		}
	}

	c, n := stats.denominators()
	v := make([]float32, 0, SegmentSize)
	for j := range protein.NumAminoAcids {
		v = append(v, float32(consComp[j])/c)
	}
	for j := range protein.NumAminoAcids {
		v = append(v, float32(nonConsComp[j])/n)
	}

	return append(v,
		float32(end-start+1),
		float32(stats.consHydro)/c, float32(stats.nonConsHydro)/n,
		float32(stats.consHydrophobic)/c, float32(stats.nonConsHydrophobic)/n,
		float32(stats.consCharged)/c, float32(stats.nonConsCharged)/n,
	)
}

// Sides builds the topology vector from the raw counts of both sides.
func Sides(a, b topology.SideFeatures) []float32 {
	ca, na := float32(max(a.Conserved, 1)), float32(max(a.NonConserved, 1))
	cb, nb := float32(max(b.Conserved, 1)), float32(max(b.NonConserved, 1))

	v := make([]float32, 0, SidesSize)
	for _, part := range []struct {
		counts *[protein.NumAminoAcids]int
		denom  float32
	}{
		{&a.ConsComp, ca},
		{&a.NonConsComp, na},
		{&b.ConsComp, cb},
		{&b.NonConsComp, nb},
	} {
		for _, n := range part.counts {
			v = append(v, float32(n)/part.denom)
		}
	}

	return append(v,
		float32(a.ConsPositive)/ca, float32(a.NonConsPositive)/na,
		float32(b.ConsPositive)/cb, float32(b.NonConsPositive)/nb,
		float32(a.ConsPositive-b.ConsPositive),
		float32(a.NonConsPositive-b.NonConsPositive),
	)
}
