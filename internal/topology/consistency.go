package topology

// FirstSide returns the first Inside/Outside label and its position, or
// ok=false when labels carry no side.
func FirstSide(labels Labels) (side Label, pos int, ok bool) {
	for i, l := range labels {
		if l.IsSide() {
			return l, i, true
		}
	}
	return NotTMH, -1, false
}

// CheckTopology reports whether the side annotation alternates across every
// TMH run after the first annotated side. Labels without any side are
// trivially consistent; empty labels are not.
func CheckTopology(labels Labels) bool {
	// An empty annotation is rejected, not treated as trivially consistent.
	if len(labels) == 0 {
		return false
	}

	anchor, pos, ok := FirstSide(labels)
	if !ok {
		return true
	}

	switched := false
	for i := pos + 1; i < len(labels); i++ {
		switch l := labels[i]; {
		case l == TMH:
			switched = !switched
			i = runEnd(labels, i)
		case l.IsSide():
			want := anchor
			if switched {
				want = anchor.Opposite()
			}
			if l != want {
				return false
			}
		}
	}

	return true
}

// ExtrapolateTopology returns a copy of labels in which every unannotated
// NotTMH residue receives the side implied by the first annotated side and
// the number of TMH runs in between. Unknown residues are left alone.
func ExtrapolateTopology(labels Labels) Labels {
	out := labels.Clone()

	anchor, pos, ok := FirstSide(out)
	if !ok {
		return out
	}

	sideFor := func(switched bool) Label {
		if switched {
			return anchor.Opposite()
		}
		return anchor
	}

	switched := false
	for i := pos; i >= 0; i-- {
		switch out[i] {
		case TMH:
			switched = !switched
			for i > 0 && out[i-1] == TMH {
				i--
			}
		case NotTMH:
			out[i] = sideFor(switched)
		}
	}

	switched = false
	for i := pos; i < len(out); i++ {
		switch out[i] {
		case TMH:
			switched = !switched
			i = runEnd(out, i)
		case NotTMH:
			out[i] = sideFor(switched)
		}
	}

	return out
}
