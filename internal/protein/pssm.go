package protein

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/tmseg/tmseg-go/internal/errors"
)

const (
	pssmHeaderTokens = 40 // 20 log-odds + 20 weighted percentage column labels
	pssmRowTokens    = 44 // pos, residue, 20 scores, 20 percentages, 2 trailing stats
)

// fingerprintNamespace scopes PSSM fingerprints (UUID v5).
var fingerprintNamespace = uuid.MustParse("5b0e6a0c-3f0c-4f3e-9d0e-3a6c1f2b7d41")

// PSSM is a position-specific scoring matrix in Alphabet column order.
type PSSM struct {
	scores [][NumAminoAcids]int

	fingerprintOnce sync.Once
	fingerprint     uuid.UUID
}

// NewPSSM builds a PSSM from rows in Alphabet order.
func NewPSSM(scores [][NumAminoAcids]int) *PSSM {
	return &PSSM{scores: scores}
}

// Len returns the number of positions.
func (m *PSSM) Len() int { return len(m.scores) }

// Score returns the log-odds score of amino acid aa at pos.
func (m *PSSM) Score(pos, aa int) int { return m.scores[pos][aa] }

// Fingerprint returns a content hash of the scores, stable across runs.
func (m *PSSM) Fingerprint() uuid.UUID {
	m.fingerprintOnce.Do(func() {
		buf := make([]byte, 0, len(m.scores)*NumAminoAcids*2)
		for _, row := range m.scores {
			for _, s := range row {
				buf = binary.BigEndian.AppendUint16(buf, uint16(int16(s)))
			}
		}
		m.fingerprint = uuid.NewSHA1(fingerprintNamespace, buf)
	})
	return m.fingerprint
}

func pssmError(format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("protein").
		Category(errors.CategoryFileParsing).
		Build()
}

// ReadPSSM parses PSI-BLAST ASCII PSSM output. The 40-token header line
// defines the column order of the first 20 score columns; matrix rows have
// 44 tokens. The row count must equal length.
func ReadPSSM(r io.Reader, length int) (*PSSM, error) {
	scores := make([][NumAminoAcids]int, length)
	rows := 0

	scanner := newScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != pssmHeaderTokens {
			continue
		}

		var columns [NumAminoAcids]int
		for i := range NumAminoAcids {
			idx := -1
			if len(fields[i]) > 0 {
				idx = AAIndex(fields[i][0])
			}
			if idx < 0 {
				return nil, pssmError("malformed pssm matrix header: unknown residue %q", fields[i])
			}
			columns[i] = idx
		}

		for scanner.Scan() {
			fields = strings.Fields(scanner.Text())
			if len(fields) != pssmRowTokens {
				break
			}
			pos, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, pssmError("malformed pssm row position %q: %v", fields[0], err)
			}
			pos--
			if pos < 0 || pos >= length {
				return nil, pssmError("pssm row position %d outside sequence of length %d", pos+1, length)
			}
			for i := range NumAminoAcids {
				v, err := strconv.Atoi(fields[i+2])
				if err != nil {
					return nil, pssmError("malformed pssm score %q at row %d: %v", fields[i+2], pos+1, err)
				}
				scores[pos][columns[i]] = v
			}
			rows++
		}
		break
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.New(fmt.Errorf("reading pssm: %w", err)).
			Component("protein").
			Category(errors.CategoryFileParsing).
			Build()
	}

	if rows != length {
		return nil, errors.Newf("sequence length and pssm size do not match: %d != %d", length, rows).
			Component("protein").
			Category(errors.CategoryProteinInput).
			Context("sequence_length", length).
			Context("pssm_rows", rows).
			Build()
	}

	return NewPSSM(scores), nil
}

// LoadPSSM reads the profile at path for a sequence of the given length.
func LoadPSSM(fs afero.Fs, path string, length int) (*PSSM, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("could not open pssm file: %w", err)).
			Component("protein").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	defer f.Close()

	return ReadPSSM(f, length)
}
