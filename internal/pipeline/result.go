package pipeline

import (
	"time"

	"github.com/tmseg/tmseg-go/internal/topology"
)

// Mode names the way a Result was produced.
type Mode string

const (
	ModePredict      Mode = "predict"
	ModeRefine       Mode = "refine"
	ModeTopologyOnly Mode = "topology_only"
)

// Result is the final annotation of one protein plus the scores the
// output writers need.
type Result struct {
	Name     string
	Header   string
	Sequence string
	Mode     Mode

	Labels topology.Labels

	// Confidence is nil when no reliability index was computed.
	Confidence []int

	// Oracle scores in [0,1000] as returned by the residue classifier,
	// nil when it was not queried.
	Sol, TMH, Sig []int

	// SegmentScores are the refiner's per-residue helix scores, nil when
	// refinement did not run.
	SegmentScores []int

	// TopologyRaw is round(1000 * P(Inside)), -1 when sides were not assigned.
	TopologyRaw int

	Transmembrane bool
	SignalPeptide bool

	Duration time.Duration
}

// Helices returns the TMH runs of the final labels.
func (r *Result) Helices() []topology.Segment {
	return topology.Runs(r.Labels, topology.TMH)
}

// Segments returns every maximal label run of the final labels.
func (r *Result) Segments() []topology.Segment {
	return topology.AllRuns(r.Labels)
}

// Reliability returns the reliability index of a run, or -1 without
// confidence.
func (r *Result) Reliability(run topology.Segment) int {
	if r.Confidence == nil || run.Start >= len(r.Confidence) {
		return -1
	}
	return r.Confidence[run.Start]
}
