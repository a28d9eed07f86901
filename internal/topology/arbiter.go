package topology

// Arbitrate assigns NotTMH, TMH or Signal per residue from the smoothed
// score streams. Ties resolve NotTMH > TMH > Signal. It also returns the
// index of the last Signal residue, or -1.
func Arbitrate(sol, tmh, sig []int, w Weights) (Labels, int) {
	labels := make(Labels, len(sol))
	lastSignal := -1

	for i := range labels {
		sSol := sol[i] - w.Sol
		sTmh := tmh[i] - w.TMH
		sSig := sig[i] - w.Sig

		switch {
		case sSol >= sTmh && sSol >= sSig:
			labels[i] = NotTMH
		case sTmh >= sSig:
			labels[i] = TMH
		default:
			labels[i] = Signal
			lastSignal = i
		}
	}

	return labels, lastSignal
}

// ValidateSignalPeptide confirms or discards the N-terminal signal peptide
// ending at lastSignal. A Signal run of at least minRun residues inside
// [0, lastSignal] promotes the whole prefix to Signal; otherwise every
// Signal in the prefix reverts to NotTMH.
func ValidateSignalPeptide(labels Labels, lastSignal, minRun int) bool {
	if lastSignal < 0 {
		return false
	}
	prefix := labels[:lastSignal+1]

	found := false
	for _, run := range Runs(prefix, Signal) {
		if run.Len() >= minRun {
			found = true
			break
		}
	}

	for i := range prefix {
		switch {
		case found:
			prefix[i] = Signal
		case prefix[i] == Signal:
			prefix[i] = NotTMH
		}
	}

	return found
}

// FilterShortHelices relabels TMH runs shorter than minLength as NotTMH and
// reports whether any helix survived.
func FilterShortHelices(labels Labels, minLength int) bool {
	transmembrane := false
	for _, run := range Runs(labels, TMH) {
		if run.Len() >= minLength {
			transmembrane = true
			continue
		}
		for i := run.Start; i <= run.End; i++ {
			labels[i] = NotTMH
		}
	}
	return transmembrane
}

// IsTransmembrane reports whether any residue is labeled TMH.
func IsTransmembrane(labels Labels) bool {
	return labels.Contains(TMH)
}
