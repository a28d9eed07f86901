package topology

// maxConfidence caps the reliability index.
const maxConfidence = 9

// AssignConfidence computes a 0-9 reliability index per residue. Every
// residue of a TMH run gets the run mean of max(tmh-sol+125, seg) divided
// by 100; all other residues get 0.
func AssignConfidence(tmh, sol, segScores []int, labels Labels) []int {
	confidence := make([]int, len(labels))

	for _, run := range Runs(labels, TMH) {
		sum := 0
		for i := run.Start; i <= run.End; i++ {
			sum += max(tmh[i]-sol[i]+125, segScores[i])
		}
		conf := min(sum/run.Len()/100, maxConfidence)
		for i := run.Start; i <= run.End; i++ {
			confidence[i] = conf
		}
	}

	return confidence
}
