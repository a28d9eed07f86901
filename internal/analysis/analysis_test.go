package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/observability/metrics"
	"github.com/tmseg/tmseg-go/internal/output"
	"github.com/tmseg/tmseg-go/internal/pipeline"
	"github.com/tmseg/tmseg-go/internal/protein"
	"github.com/tmseg/tmseg-go/internal/topology"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// leucineScorer calls every L a helix residue and everything else soluble.
type leucineScorer struct{}

func (leucineScorer) ScoreResidues(_ context.Context, seq string, _ protein.Profile) (sol, tmh, sig []int, err error) {
	sol, tmh, sig = make([]int, len(seq)), make([]int, len(seq)), make([]int, len(seq))
	for i := range len(seq) {
		if seq[i] == 'L' {
			tmh[i] = 900
		} else {
			sol[i] = 900
		}
	}
	return sol, tmh, sig, nil
}

type constSegment struct{}

func (constSegment) ScoreSegment(context.Context, protein.Profile, int, int) (float64, error) {
	return 0.5, nil
}

type constSides struct{}

func (constSides) ScoreSides(context.Context, protein.Profile, topology.SideFeatures, topology.SideFeatures) (float64, error) {
	return 0.75, nil
}

type recordingSink struct {
	mu      sync.Mutex
	err     error
	runIDs  []string
	results []*pipeline.Result
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(_ context.Context, runID string, r *pipeline.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.runIDs = append(s.runIDs, runID)
	s.results = append(s.results, r)
	return nil
}

type fixedCache struct{}

func (fixedCache) Stats() (hits, misses uint64) { return 11, 4 }

// helixSeq is soluble-helix-soluble with a 17-residue leucine helix.
var helixSeq = "KK" + strings.Repeat("L", 17) + "KK"

func pssmText(seq string) string {
	const cols = "A   R   N   D   C   Q   E   G   H   I   L   K   M   F   P   S   T   W   Y   V"
	var b strings.Builder
	b.WriteString("\nLast position-specific scoring matrix computed\n")
	b.WriteString("           " + cols + "   " + cols + "\n")
	for i := range len(seq) {
		fmt.Fprintf(&b, "%5d %c ", i+1, seq[i])
		for range 40 {
			b.WriteString("   0")
		}
		b.WriteString("  0.00 0.00\n")
	}
	b.WriteString("\n                      K         Lambda\n")
	return b.String()
}

func writeProtein(t *testing.T, fs afero.Fs, dir, name, seq, structure string) {
	t.Helper()
	fasta := fmt.Sprintf(">%s test\n%s\n", name, seq)
	if structure != "" {
		fasta += structure + "\n"
	}
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, name+".fasta"), []byte(fasta), 0o644))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, name+".pssm"), []byte(pssmText(seq)), 0o644))
}

type fixture struct {
	fs      afero.Fs
	sink    *recordingSink
	metrics *metrics.PipelineMetrics
	runner  *Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m, err := metrics.NewPipelineMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	f := &fixture{fs: afero.NewMemMapFs(), sink: &recordingSink{}, metrics: m}
	engine := pipeline.New(leucineScorer{}, constSegment{}, constSides{}, topology.DefaultParams())
	engine.Recorder = m
	f.runner = NewRunner(engine, f.fs, Options{
		Sinks:   []Sink{f.sink},
		Metrics: m,
		Cache:   fixedCache{},
	})
	return f
}

func TestFileAnalysisPredict(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	writeProtein(t, f.fs, "in", "P1", helixSeq, "")

	res, err := f.runner.FileAnalysis(t.Context(), Job{
		FastaPath: "in/P1.fasta",
		PSSMPath:  "in/P1.pssm",
		Output:    output.Paths{Report: "out/P1.tmseg", Raw: "out/P1.tmseg-raw"},
		Mode:      pipeline.ModePredict,
		RunID:     "run-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "11"+strings.Repeat("H", 17)+"22", res.Labels.String())

	report, err := afero.ReadFile(f.fs, "out/P1.tmseg")
	require.NoError(t, err)
	assert.Contains(t, string(report), "# TRANSMEM\t3\t19\t9\n")
	assert.Contains(t, string(report), ">P1 test\n"+helixSeq+"\n")

	exists, err := afero.Exists(f.fs, "out/P1.tmseg-raw")
	require.NoError(t, err)
	assert.True(t, exists)

	require.Len(t, f.sink.results, 1)
	assert.Equal(t, []string{"run-1"}, f.sink.runIDs)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.HelicesPredicted), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.OperationsTotal.WithLabelValues("recording", metrics.StatusSuccess)), 0)
}

func TestFileAnalysisRefineMode(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	structure := "NN" + strings.Repeat("H", 17) + "NN"
	writeProtein(t, f.fs, "in", "P2", helixSeq, structure)

	res, err := f.runner.FileAnalysis(t.Context(), Job{
		FastaPath: "in/P2.fasta",
		PSSMPath:  "in/P2.pssm",
		Mode:      pipeline.ModeTopologyOnly,
	})
	require.NoError(t, err)

	assert.Equal(t, "11"+strings.Repeat("H", 17)+"22", res.Labels.String())
	assert.Nil(t, res.Confidence)
	require.Len(t, f.sink.runIDs, 1)
	assert.NotEmpty(t, f.sink.runIDs[0])
}

func TestFileAnalysisMissingPSSM(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, afero.WriteFile(f.fs, "in/P3.fasta", []byte(">P3\nACDEF\n"), 0o644))

	_, err := f.runner.FileAnalysis(t.Context(), Job{FastaPath: "in/P3.fasta", PSSMPath: "in/P3.pssm"})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
	assert.Empty(t, f.sink.results)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.OperationErrors.WithLabelValues(metrics.OpLoad, "file-io")), 0)
}

func TestFileAnalysisSinkFailureDoesNotFailProtein(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.sink.err = fmt.Errorf("database locked")
	writeProtein(t, f.fs, "in", "P4", helixSeq, "")

	res, err := f.runner.FileAnalysis(t.Context(), Job{FastaPath: "in/P4.fasta", PSSMPath: "in/P4.pssm"})
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.OperationsTotal.WithLabelValues("recording", metrics.StatusError)), 0)
}

func TestDirectoryAnalysis(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	writeProtein(t, f.fs, "seqs", "A1", helixSeq, "")
	writeProtein(t, f.fs, "seqs", "B2", "KKKKKKKKKK", "")
	require.NoError(t, afero.WriteFile(f.fs, "seqs/C3.fasta", []byte(">C3\nACDEF\n"), 0o644))
	require.NoError(t, afero.WriteFile(f.fs, "seqs/notes.txt", []byte("ignored"), 0o644))
	// PSSMs live next to the sequences in this layout.

	summary, err := f.runner.DirectoryAnalysis(t.Context(), DirectoryJob{
		FastaDir:  "seqs",
		PSSMDir:   "seqs",
		ReportDir: "out",
		RawDir:    "raw",
		Mode:      pipeline.ModePredict,
		Workers:   2,
		Ext:       DefaultExtensions(),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, filepath.Join("seqs", "C3.fasta"), summary.Failures[0].File)
	assert.NotEmpty(t, summary.RunID)

	for _, path := range []string{"out/A1.tmseg", "raw/A1.tmseg-raw", "out/B2.tmseg", "raw/B2.tmseg-raw"} {
		exists, err := afero.Exists(f.fs, path)
		require.NoError(t, err)
		assert.True(t, exists, path)
	}
	exists, err := afero.Exists(f.fs, "out/C3.tmseg")
	require.NoError(t, err)
	assert.False(t, exists)

	require.Len(t, f.sink.runIDs, 2)
	assert.Equal(t, summary.RunID, f.sink.runIDs[0])
	assert.Equal(t, summary.RunID, f.sink.runIDs[1])

	assert.InDelta(t, 11, testutil.ToFloat64(f.metrics.CacheHits), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(f.metrics.ActiveWorkers), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.OperationsTotal.WithLabelValues(metrics.OpBatch, metrics.StatusSuccess)), 0)
}

func TestDirectoryAnalysisCanceled(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	writeProtein(t, f.fs, "seqs", "A1", helixSeq, "")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	summary, err := f.runner.DirectoryAnalysis(ctx, DirectoryJob{
		FastaDir: "seqs", PSSMDir: "seqs", ReportDir: "out", Ext: DefaultExtensions(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAnalysisCanceled)
	assert.True(t, errors.IsCategory(err, errors.CategoryCancellation))
	assert.Zero(t, summary.Succeeded)
	assert.Empty(t, f.sink.results)
}

func TestDirectoryAnalysisEmpty(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.fs.MkdirAll("seqs", 0o755))

	summary, err := f.runner.DirectoryAnalysis(t.Context(), DirectoryJob{FastaDir: "seqs", Ext: DefaultExtensions()})
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
}

func TestDirectoryAnalysisMissingDir(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.runner.DirectoryAnalysis(t.Context(), DirectoryJob{FastaDir: "nope", Ext: DefaultExtensions()})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
}

func TestDirectoryJobsMapping(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	for _, name := range []string{"b.fasta", "a.FASTA", "c.fa", "sub.fasta/x"} {
		require.NoError(t, afero.WriteFile(fs, filepath.Join("in", name), nil, 0o644))
	}

	d := DirectoryJob{FastaDir: "in", PSSMDir: "profiles", ReportDir: "out", Ext: DefaultExtensions()}
	jobs, err := d.jobs(fs, "run")
	require.NoError(t, err)

	require.Len(t, jobs, 2)
	assert.Equal(t, filepath.Join("in", "a.FASTA"), jobs[0].FastaPath)
	assert.Equal(t, filepath.Join("profiles", "a.pssm"), jobs[0].PSSMPath)
	assert.Equal(t, output.Paths{Report: filepath.Join("out", "b.tmseg")}, jobs[1].Output)
	assert.Equal(t, "run", jobs[1].RunID)
}
