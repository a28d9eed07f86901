// Package output renders prediction results as segment reports and raw
// per-residue score tables.
package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tmseg/tmseg-go/internal/pipeline"
	"github.com/tmseg/tmseg-go/internal/topology"
)

// SegmentName returns the report keyword of a run label.
func SegmentName(l topology.Label) string {
	switch l {
	case topology.TMH:
		return "TRANSMEM"
	case topology.Loop:
		return "REENTRANT"
	case topology.Signal:
		return "SIGNAL"
	case topology.Inside:
		return "INSIDE"
	case topology.Outside:
		return "OUTSIDE"
	case topology.NotTMH:
		return "NON-MEM"
	default:
		return "UNKNOWN"
	}
}

// WriteReport writes the segment report of r to w. Bounds are 1-based and
// inclusive; TRANSMEM lines carry the reliability index of the run.
func WriteReport(w io.Writer, r *pipeline.Result) error {
	bw := bufio.NewWriter(w)

	fmt.Fprint(bw, "# SEGMENT\tSTART\tEND\tRI\n##\n")
	for _, run := range r.Segments() {
		fmt.Fprintf(bw, "# %s\t%d\t%d", SegmentName(run.Label), run.Start+1, run.End+1)
		if run.Label == topology.TMH {
			fmt.Fprintf(bw, "\t%d", r.Reliability(run))
		}
		bw.WriteByte('\n')
	}
	fmt.Fprintf(bw, "##\n%s\n%s\n%s\n", r.Header, r.Sequence, r.Labels.String())

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write segment report: %w", err)
	}
	return nil
}
