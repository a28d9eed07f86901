package protein

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/spf13/afero"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
)

const maxLineSize = 16 * 1024 * 1024

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return scanner
}

// parseHeader returns the trimmed header line and the record name
func parseHeader(line string) (header, name string) {
	header = strings.TrimSpace(line)
	fields := strings.Fields(strings.TrimPrefix(header, ">"))
	if len(fields) == 0 {
		return header, ""
	}
	name, _, _ = strings.Cut(fields[0], "|")
	return header, strings.TrimSpace(name)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ReadFASTA reads (multi-line) FASTA records. Invalid records are logged and skipped.
func ReadFASTA(r io.Reader) ([]*Protein, error) {
	var (
		proteins []*Protein
		seq      strings.Builder
		header   string
		name     string
		inRecord bool
	)

	flush := func() {
		if !inRecord {
			return
		}
		p, err := New(name, header, stripSpace(seq.String()), "")
		if err != nil {
			GetLogger().Warn("skipping fasta record", logger.String("protein", name), logger.Error(err))
		} else {
			proteins = append(proteins, p)
		}
		seq.Reset()
	}

	scanner := newScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			header, name = parseHeader(line)
			inRecord = true
			continue
		}
		if inRecord {
			seq.WriteString(strings.TrimSpace(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.New(fmt.Errorf("reading fasta: %w", err)).
			Component("protein").
			Category(errors.CategoryFileParsing).
			Build()
	}
	flush()

	return proteins, nil
}

// ReadStructure reads structure files: a header line followed by exactly one
// sequence line and one annotation line per record.
func ReadStructure(r io.Reader) ([]*Protein, error) {
	var proteins []*Protein

	scanner := newScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, ">") {
			continue
		}
		header, name := parseHeader(line)

		var sequence, structure string
		if scanner.Scan() {
			sequence = stripSpace(scanner.Text())
			if scanner.Scan() {
				structure = stripSpace(scanner.Text())
			}
		}

		p, err := New(name, header, sequence, structure)
		if err != nil {
			GetLogger().Warn("skipping structure record", logger.String("protein", name), logger.Error(err))
			continue
		}
		proteins = append(proteins, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.New(fmt.Errorf("reading structure file: %w", err)).
			Component("protein").
			Category(errors.CategoryFileParsing).
			Build()
	}

	return proteins, nil
}

// LoadFirst opens path on fs and returns its first valid record.
// withStructure selects the structure-file reader.
func LoadFirst(fs afero.Fs, path string, withStructure bool) (*Protein, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("open sequence file: %w", err)).
			Component("protein").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	defer f.Close()

	var proteins []*Protein
	if withStructure {
		proteins, err = ReadStructure(f)
	} else {
		proteins, err = ReadFASTA(f)
	}
	if err != nil {
		return nil, err
	}
	if len(proteins) == 0 {
		return nil, errors.Newf("no valid protein record in %s", path).
			Component("protein").
			Category(errors.CategoryProteinInput).
			FileContext(path).
			Build()
	}

	return proteins[0], nil
}
