package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tmseg/tmseg-go/internal/pipeline"
)

// score formats a [0,1000] score as a probability, or "." when absent.
func score(values []int, i int) string {
	if values == nil || i >= len(values) || values[i] < 0 {
		return "."
	}
	return fmt.Sprintf("%.3f", float64(values[i])/1000)
}

// WriteRaw writes one row per residue with the oracle scores, the segment
// score, the topology score (first row only) and the final label.
func WriteRaw(w io.Writer, r *pipeline.Result) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %s\n# SEQ\tSOL\tTMH\tSIG\tSEG\tTOP\tPRED\n", r.Header)
	for i := range len(r.Sequence) {
		top := "."
		if i == 0 && r.TopologyRaw >= 0 {
			top = fmt.Sprintf("%.3f", float64(r.TopologyRaw)/1000)
		}
		fmt.Fprintf(bw, "%c\t%s\t%s\t%s\t%s\t%s\t%c\n",
			r.Sequence[i],
			score(r.Sol, i), score(r.TMH, i), score(r.Sig, i), score(r.SegmentScores, i),
			top, r.Labels[i].Byte())
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write raw table: %w", err)
	}
	return nil
}
