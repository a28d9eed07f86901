package protein

// Alphabet is the canonical amino-acid column order used by profiles and features.
const Alphabet = "ACDEFGHIKLMNPQRSTVWY"

// NumAminoAcids is the number of standard amino acids.
const NumAminoAcids = len(Alphabet)

// Kyte-Doolittle hydrophobicity in Alphabet order.
var hydrophobicity = [NumAminoAcids]float64{
	1.8, 2.5, -3.5, -3.5, 2.8, -0.4, -3.2, 4.5, -3.9, 3.8,
	1.9, -3.5, -1.6, -3.5, -4.5, -0.8, -0.7, 4.2, -0.9, -1.3,
}

// Side-chain charge in Alphabet order: D, E negative; K, R positive.
var charge = [NumAminoAcids]int{
	0, 0, -1, -1, 0, 0, 0, 0, 1, 0,
	0, 0, 0, 0, 1, 0, 0, 0, 0, 0,
}

// Polar residues: C D E H K N Q R S T Y.
var polar = [NumAminoAcids]bool{
	false, true, true, true, false, false, true, false, true, false,
	false, true, false, true, true, true, true, false, false, true,
}

// AAIndex returns the Alphabet index of residue c (case-insensitive), or -1.
func AAIndex(c byte) int {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	for i := 0; i < NumAminoAcids; i++ {
		if Alphabet[i] == c {
			return i
		}
	}
	return -1
}

// Hydrophobicity returns the Kyte-Doolittle value of amino acid aa.
func Hydrophobicity(aa int) float64 { return hydrophobicity[aa] }

// Charge returns -1, 0 or +1 for amino acid aa.
func Charge(aa int) int { return charge[aa] }

// IsPolar reports whether amino acid aa is polar.
func IsPolar(aa int) bool { return polar[aa] }
