package topology

// Weights are the arbiter biases subtracted from each smoothed score stream.
type Weights struct {
	Sol int
	TMH int
	Sig int
}

// Params holds every tunable of the refinement stages. It is passed by
// value and never mutated by a stage.
type Params struct {
	SmoothWindow    int
	Weights         Weights
	MinHelixLength  int
	SignalMinRun    int
	HelixMinSize    int
	GapMinSize      int
	MaxShift        int
	MaxRefineRounds int
	SegmentCutoff   float64
	TopologyCutoff  float64
	NearOffset      int
	FarOffset       int
}

// DefaultParams returns the thresholds the classifiers were trained with.
func DefaultParams() Params {
	return Params{
		SmoothWindow:    5,
		Weights:         Weights{Sol: 185, TMH: 60, Sig: 0},
		MinHelixLength:  7,
		SignalMinRun:    4,
		HelixMinSize:    17,
		GapMinSize:      1,
		MaxShift:        3,
		MaxRefineRounds: 5,
		SegmentCutoff:   0.0,
		TopologyCutoff:  0.45,
		NearOffset:      8,
		FarOffset:       15,
	}
}

// splitMinLength is the shortest run Split will consider.
func (p Params) splitMinLength() int {
	return 2*p.HelixMinSize + p.GapMinSize
}
