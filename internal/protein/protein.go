// Package protein holds protein records, their evolutionary profiles and
// the readers for FASTA, structure-annotated FASTA and PSI-BLAST PSSM files.
package protein

import (
	"strings"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
)

// Profile is an L x 20 conservation matrix indexed by position and Alphabet index.
type Profile interface {
	Len() int
	Score(pos, aa int) int
}

// Protein is one sequence record with an optional structure annotation.
type Protein struct {
	Name      string // first header token without '>' and cut at '|'
	Header    string // full trimmed header line including '>'
	Sequence  string
	Structure string // annotation string, all 'N' when the input carried none
	Annotated bool   // true when Structure came from the input
	Profile   Profile
}

// Len returns the sequence length.
func (p *Protein) Len() int { return len(p.Sequence) }

// New validates and builds a protein. An empty structure yields an all-N
// annotation; a supplied one is normalized ('.'→N, t→h, T→H) and must
// match the sequence length.
func New(name, header, sequence, structure string) (*Protein, error) {
	if name == "" || header == "" || sequence == "" {
		return nil, errors.Newf("insufficient information for protein %q", name).
			Component("protein").
			Category(errors.CategoryProteinInput).
			ProteinContext(name, len(sequence)).
			Build()
	}

	annotated := structure != ""
	if annotated {
		if len(structure) != len(sequence) {
			return nil, errors.Newf("sequence and structure lengths do not match for %s: %d != %d", name, len(sequence), len(structure)).
				Component("protein").
				Category(errors.CategoryProteinInput).
				ProteinContext(name, len(sequence)).
				Build()
		}
		structure = strings.NewReplacer(".", "N", "t", "h", "T", "H").Replace(structure)
	} else {
		structure = strings.Repeat("N", len(sequence))
	}

	return &Protein{
		Name:      name,
		Header:    header,
		Sequence:  sequence,
		Structure: structure,
		Annotated: annotated,
	}, nil
}

// GetLogger returns the protein package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("protein")
}
