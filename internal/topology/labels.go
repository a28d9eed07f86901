// Package topology is the deterministic refinement engine that turns noisy
// per-residue scores into a physically consistent membrane topology.
//
// Stages take exclusive ownership of the Labels they are given and mutate
// them in place; ExtrapolateTopology is the exception and returns a clone.
package topology

import "strings"

// Label is the structural state of one residue.
type Label uint8

const (
	NotTMH Label = iota
	TMH
	Loop // reentrant loop
	Signal
	Unknown
	Inside
	Outside
)

var labelChars = [...]byte{
	NotTMH:  'N',
	TMH:     'H',
	Loop:    'L',
	Signal:  'S',
	Unknown: 'U',
	Inside:  '1',
	Outside: '2',
}

// Byte returns the output character of l.
func (l Label) Byte() byte {
	if int(l) < len(labelChars) {
		return labelChars[l]
	}
	return 'X'
}

func (l Label) String() string { return string(l.Byte()) }

// IsNotTMHClass reports whether l is a soluble state: NotTMH, Inside or Outside.
func (l Label) IsNotTMHClass() bool {
	return l == NotTMH || l == Inside || l == Outside
}

// IsSide reports whether l is Inside or Outside.
func (l Label) IsSide() bool { return l == Inside || l == Outside }

// Opposite returns the other membrane side. Non-side labels are returned unchanged.
func (l Label) Opposite() Label {
	switch l {
	case Inside:
		return Outside
	case Outside:
		return Inside
	default:
		return l
	}
}

// ParseLabel maps an annotation character to a Label, case-insensitively.
// Unrecognized characters are NotTMH.
func ParseLabel(c byte) Label {
	switch c {
	case '1':
		return Inside
	case '2':
		return Outside
	case 'H', 'h':
		return TMH
	case 'L', 'l':
		return Loop
	case 'S', 's':
		return Signal
	case 'U', 'u', ' ':
		return Unknown
	default:
		return NotTMH
	}
}

// Labels is one label per residue.
type Labels []Label

// ParseLabels converts an annotation string.
func ParseLabels(s string) Labels {
	labels := make(Labels, len(s))
	for i := 0; i < len(s); i++ {
		labels[i] = ParseLabel(s[i])
	}
	return labels
}

// Uniform returns n copies of l.
func Uniform(n int, l Label) Labels {
	labels := make(Labels, n)
	for i := range labels {
		labels[i] = l
	}
	return labels
}

func (ls Labels) String() string {
	var b strings.Builder
	b.Grow(len(ls))
	for _, l := range ls {
		b.WriteByte(l.Byte())
	}
	return b.String()
}

// Clone returns a copy the caller owns.
func (ls Labels) Clone() Labels {
	return append(Labels(nil), ls...)
}

// Contains reports whether any residue carries l.
func (ls Labels) Contains(l Label) bool {
	for _, x := range ls {
		if x == l {
			return true
		}
	}
	return false
}
