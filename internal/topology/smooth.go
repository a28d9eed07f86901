package topology

import "slices"

// MedianFilter returns the symmetric running median of scores. The window
// shrinks near both ends so that radius(i) = min(window/2, i, L-1-i); the
// end positions are copied unchanged.
func MedianFilter(scores []int, window int) []int {
	out := make([]int, len(scores))
	half := window / 2
	buf := make([]int, 0, 2*half+1)

	for i := range scores {
		r := min(half, i, len(scores)-1-i)
		if r <= 0 {
			out[i] = scores[i]
			continue
		}
		buf = append(buf[:0], scores[i-r:i+r+1]...)
		slices.Sort(buf)
		out[i] = buf[r]
	}

	return out
}
