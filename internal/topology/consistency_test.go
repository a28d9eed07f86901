package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckTopology(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		labels string
		want   bool
	}{
		{"consistent crossings", "11HHH22HHH11", true},
		{"second side mislabeled", "11HHH22HHH22", false},
		{"same side across helix", "11HHH11", false},
		{"helix before anchor ignored", "HHH11HHH22", true},
		{"no side annotation", "NNHHHNN", true},
		{"unknown ignored", "1UUHHHU2", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CheckTopology(ParseLabels(tt.labels)))
		})
	}
}

func TestExtrapolateTopology(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		labels string
		want   string
	}{
		{"both directions", "NNHHH2NNHHHNN", "11HHH222HHH11"},
		{"unknown preserved", "UNHHH2", "U1HHH2"},
		{"signal preserved", "SSN1HHHN", "SS11HHH2"},
		{"no anchor", "NNHHHNN", "NNHHHNN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := ParseLabels(tt.labels)
			out := ExtrapolateTopology(in)
			assert.Equal(t, tt.want, out.String())
			assert.Equal(t, tt.labels, in.String(), "input must not be mutated")
		})
	}
}

func TestFirstSide(t *testing.T) {
	t.Parallel()

	side, pos, ok := FirstSide(ParseLabels("NH2N1"))
	assert.True(t, ok)
	assert.Equal(t, Outside, side)
	assert.Equal(t, 2, pos)

	_, _, ok = FirstSide(ParseLabels("NHN"))
	assert.False(t, ok)
}

func TestAssignConfidence(t *testing.T) {
	t.Parallel()

	labels := ParseLabels("NHHHNHHN")
	tmh := []int{0, 900, 900, 900, 0, 100, 100, 0}
	sol := []int{900, 0, 0, 0, 900, 300, 300, 900}
	seg := []int{0, 0, 0, 0, 0, 250, 250, 0}

	got := AssignConfidence(tmh, sol, seg, labels)
	assert.Equal(t, []int{0, 9, 9, 9, 0, 2, 2, 0}, got)
	for _, c := range got {
		assert.GreaterOrEqual(t, c, 0)
		assert.LessOrEqual(t, c, 9)
	}
}

func TestLabelsRoundTrip(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "NHLSU12N", ParseLabels("nhlsu12x").String())
	assert.Equal(t, Unknown, ParseLabel(' '))
	assert.True(t, Inside.IsNotTMHClass())
	assert.False(t, Signal.IsNotTMHClass())
	assert.Equal(t, Inside, Outside.Opposite())
	assert.Equal(t, Loop, Loop.Opposite())
}
