package topology

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/protein"
)

func TestSideWindows(t *testing.T) {
	t.Parallel()

	labels := ParseLabels(repeat('N', 10) + repeat('H', 20) + repeat('N', 10) + repeat('H', 16) + repeat('N', 4))
	require.Len(t, labels, 60)

	windows := SideWindows(labels, 8, 15)
	want := []Segment{
		{Start: 0, End: 18, Label: NotTMH, Side: 0},
		{Start: 21, End: 44, Label: NotTMH, Side: 1},
		{Start: 25, End: 48, Label: NotTMH, Side: 1},
		{Start: 47, End: 59, Label: NotTMH, Side: 0},
	}
	assert.Equal(t, want, windows)
}

func TestSideWindowsWithoutHelices(t *testing.T) {
	t.Parallel()
	assert.Empty(t, SideWindows(ParseLabels("NNNN"), 8, 15))
}

func TestCollectSideFeatures(t *testing.T) {
	t.Parallel()

	var row [protein.NumAminoAcids]int
	row[protein.AAIndex('A')] = 3
	row[protein.AAIndex('K')] = -2
	p := uniformProfile(10, row)

	labels := ParseLabels("NNUNNNNNNN")
	windows := []Segment{
		{Start: 0, End: 4, Side: 0},
		{Start: 6, End: 9, Side: 1},
	}

	a, b := CollectSideFeatures(p, labels, windows, 0)

	assert.Equal(t, 4, a.ConsComp[protein.AAIndex('A')])
	assert.Equal(t, 4, a.Conserved)
	assert.Equal(t, 4, a.NonConsComp[protein.AAIndex('K')])
	assert.Equal(t, 4, a.NonConserved)
	assert.Equal(t, 0, a.ConsPositive)
	assert.Equal(t, 4, a.NonConsPositive)

	assert.Equal(t, 4, b.Conserved)
	assert.Equal(t, 4, b.NonConsPositive)

	// Starting past the first window makes the second one side A.
	a, b = CollectSideFeatures(p, labels, windows, 5)
	assert.Equal(t, 4, a.Conserved)
	assert.Equal(t, SideFeatures{}, b)
}

func TestPropagateSides(t *testing.T) {
	t.Parallel()

	labels := ParseLabels("NNHHHNNLNHHHNSU")
	PropagateSides(labels, Inside)
	assert.Equal(t, "11HHH22L2HHH1SU", labels.String())
}

func TestAssignSides(t *testing.T) {
	t.Parallel()

	base := repeat('N', 10) + repeat('H', 20) + repeat('N', 10) + repeat('H', 16) + repeat('N', 4)
	var row [protein.NumAminoAcids]int
	row[protein.AAIndex('R')] = 1
	p := uniformProfile(60, row)

	tests := []struct {
		name      string
		prob      float64
		hasSignal bool
		first     Label
		raw       int
	}{
		{"inside above cutoff", 0.8, false, Inside, 800},
		{"outside below cutoff", 0.3, false, Outside, 300},
		{"signal forces outside", 0.9, true, Outside, 900},
		{"cutoff inclusive", 0.45, false, Inside, 450},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			labels := ParseLabels(base)
			scorer := &sidesScorer{prob: tt.prob}
			raw, err := AssignSides(context.Background(), scorer, p, labels, tt.hasSignal, DefaultParams())
			require.NoError(t, err)

			assert.Equal(t, tt.raw, raw)
			assert.Equal(t, tt.first, labels[0])
			assert.Equal(t, tt.first.Opposite(), labels[35])
			assert.Equal(t, tt.first, labels[59])
			assert.True(t, CheckTopology(labels))
			assert.Positive(t, scorer.a.ConsPositive)
		})
	}
}

func TestAssignSidesAlternates(t *testing.T) {
	t.Parallel()

	labels := ParseLabels("NNN" + repeat('H', 8) + "NNNN" + repeat('H', 8) + "NN" + repeat('H', 8) + "N")
	_, err := AssignSides(context.Background(), &sidesScorer{prob: 1}, uniformProfile(len(labels), zeroRow), labels, false, DefaultParams())
	require.NoError(t, err)

	var sides []Label
	for _, run := range AllRuns(labels) {
		if run.Label != TMH {
			sides = append(sides, run.Label)
		}
	}
	require.Len(t, sides, 4)
	for i := 1; i < len(sides); i++ {
		assert.NotEqual(t, sides[i-1], sides[i])
	}
}

func TestAssignSidesOracleFailure(t *testing.T) {
	t.Parallel()

	labels := ParseLabels("NN" + repeat('H', 10) + "NN")
	before := labels.Clone()
	_, err := AssignSides(context.Background(), &sidesScorer{err: errors.NewStd("boom")}, uniformProfile(len(labels), zeroRow), labels, false, DefaultParams())

	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryOracle))
	assert.Equal(t, before, labels)
}
