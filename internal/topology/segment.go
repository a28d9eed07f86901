package topology

// Segment is a maximal run [Start, End] (inclusive, 0-based) of one label.
type Segment struct {
	Start int
	End   int
	Label Label
	Score float64 // optional oracle probability
	Side  int     // side parity tag used by the side windows
}

// Len returns the number of residues in the segment.
func (s Segment) Len() int { return s.End - s.Start + 1 }

// runEnd returns the last index of the run of labels[start].
func runEnd(labels Labels, start int) int {
	end := start
	for end+1 < len(labels) && labels[end+1] == labels[start] {
		end++
	}
	return end
}

// Runs returns every maximal run of label in order.
func Runs(labels Labels, label Label) []Segment {
	var runs []Segment
	for i := 0; i < len(labels); i++ {
		if labels[i] != label {
			continue
		}
		end := runEnd(labels, i)
		runs = append(runs, Segment{Start: i, End: end, Label: label})
		i = end
	}
	return runs
}

// AllRuns partitions labels into maximal runs of identical labels.
func AllRuns(labels Labels) []Segment {
	var runs []Segment
	for i := 0; i < len(labels); i++ {
		end := runEnd(labels, i)
		runs = append(runs, Segment{Start: i, End: end, Label: labels[i]})
		i = end
	}
	return runs
}
