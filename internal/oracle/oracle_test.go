package oracle

import (
	"context"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/features"
	"github.com/tmseg/tmseg-go/internal/protein"
	"github.com/tmseg/tmseg-go/internal/topology"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
	)
}

// fakePredictor returns a fixed output and records the inputs it saw.
type fakePredictor struct {
	size   int
	output []float32
	err    error
	calls  atomic.Int64
	last   []float32
	closed bool
}

func (f *fakePredictor) Predict(_ context.Context, input []float32) ([]float32, error) {
	f.calls.Add(1)
	f.last = input
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

func (f *fakePredictor) Close() error {
	f.closed = true
	return nil
}

func (f *fakePredictor) InputSize() int { return f.size }

// plainProfile is a Profile without a fingerprint.
type plainProfile struct{ n int }

func (p plainProfile) Len() int           { return p.n }
func (p plainProfile) Score(_, _ int) int { return 1 }

func testProfile(n int) *protein.PSSM {
	rows := make([][protein.NumAminoAcids]int, n)
	for i := range rows {
		rows[i][i%protein.NumAminoAcids] = 3
		rows[i][(i+5)%protein.NumAminoAcids] = -2
	}
	return protein.NewPSSM(rows)
}

func TestResidueOracleScores(t *testing.T) {
	t.Parallel()

	model := &fakePredictor{size: features.ResidueSize, output: []float32{0.25, 0.5, 0.125}}
	o, err := NewResidueOracle(model)
	require.NoError(t, err)

	n := 45
	seq := string(make([]byte, n))
	sol, tmh, sig, err := o.ScoreResidues(context.Background(), seq, testProfile(n))
	require.NoError(t, err)

	require.Len(t, sol, n)
	assert.Equal(t, 250, sol[0])
	assert.Equal(t, 500, tmh[0])
	assert.Equal(t, 125, sig[0])
	assert.Equal(t, 125, sig[signalRegion-1])
	assert.Zero(t, sig[signalRegion])
	assert.Equal(t, 500, tmh[n-1])
	assert.Equal(t, int64(n), model.calls.Load())
	assert.Len(t, model.last, features.ResidueSize)
}

func TestResidueOracleLengthMismatch(t *testing.T) {
	t.Parallel()

	o, err := NewResidueOracle(&fakePredictor{size: features.ResidueSize})
	require.NoError(t, err)

	_, _, _, err = o.ScoreResidues(context.Background(), "MKV", testProfile(5))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryProteinInput))
}

func TestResidueOracleFailures(t *testing.T) {
	t.Parallel()

	failing := &fakePredictor{size: features.ResidueSize, err: errors.NewStd("invoke failed")}
	o, err := NewResidueOracle(failing)
	require.NoError(t, err)
	_, _, _, err = o.ScoreResidues(context.Background(), "MK", testProfile(2))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryOracle))

	short := &fakePredictor{size: features.ResidueSize, output: []float32{1}}
	o, err = NewResidueOracle(short)
	require.NoError(t, err)
	_, _, _, err = o.ScoreResidues(context.Background(), "MK", testProfile(2))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryOracle))
}

func TestInputSizeChecked(t *testing.T) {
	t.Parallel()

	_, err := NewSegmentOracle(&fakePredictor{size: 12})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryModelInit))

	_, err = NewSidesOracle(&fakePredictor{size: features.ResidueSize})
	require.Error(t, err)
}

func TestSegmentOracle(t *testing.T) {
	t.Parallel()

	model := &fakePredictor{size: features.SegmentSize, output: []float32{0.25, 0.75}}
	o, err := NewSegmentOracle(model)
	require.NoError(t, err)

	p, err := o.ScoreSegment(context.Background(), testProfile(30), 3, 22)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, p, 1e-9)
	assert.Len(t, model.last, features.SegmentSize)
	assert.Equal(t, float32(20), model.last[2*protein.NumAminoAcids])

	_, err = o.ScoreSegment(context.Background(), testProfile(30), 25, 30)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestSidesOracle(t *testing.T) {
	t.Parallel()

	model := &fakePredictor{size: features.SidesSize, output: []float32{0.625, 0.375}}
	o, err := NewSidesOracle(model)
	require.NoError(t, err)

	var a topology.SideFeatures
	a.ConsPositive = 2
	p, err := o.ScoreSides(context.Background(), testProfile(10), a, topology.SideFeatures{})
	require.NoError(t, err)
	assert.InDelta(t, 0.625, p, 1e-9)
	assert.Equal(t, float32(2), model.last[features.SidesSize-2])
}

type countingScorer struct {
	calls atomic.Int64
	err   error
}

func (c *countingScorer) ScoreSegment(_ context.Context, _ protein.Profile, start, end int) (float64, error) {
	c.calls.Add(1)
	if c.err != nil {
		return 0, c.err
	}
	return float64(end-start) / 100, nil
}

func TestCachedSegmentScorer(t *testing.T) {
	t.Parallel()

	next := &countingScorer{}
	c := NewCachedSegmentScorer(next, time.Minute, time.Minute)
	p := testProfile(40)
	ctx := context.Background()

	first, err := c.ScoreSegment(ctx, p, 2, 20)
	require.NoError(t, err)
	second, err := c.ScoreSegment(ctx, p, 2, 20)
	require.NoError(t, err)
	assert.InDelta(t, first, second, 1e-12)
	assert.Equal(t, int64(1), next.calls.Load())

	// Identical content shares entries.
	_, err = c.ScoreSegment(ctx, testProfile(40), 2, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next.calls.Load())

	hits, misses := c.Stats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 1, c.Len())

	c.Flush()
	assert.Zero(t, c.Len())
}

func TestCachedSegmentScorerBypass(t *testing.T) {
	t.Parallel()

	next := &countingScorer{}
	c := NewCachedSegmentScorer(next, time.Minute, time.Minute)

	for range 3 {
		_, err := c.ScoreSegment(context.Background(), plainProfile{n: 30}, 1, 10)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), next.calls.Load())
	assert.Zero(t, c.Len())
}

func TestCachedSegmentScorerDoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	next := &countingScorer{err: errors.NewStd("unavailable")}
	c := NewCachedSegmentScorer(next, time.Minute, time.Minute)

	_, err := c.ScoreSegment(context.Background(), testProfile(30), 1, 10)
	require.Error(t, err)
	assert.Zero(t, c.Len())
}

func TestOptimalThreadCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, OptimalThreadCount(1))
	assert.Equal(t, runtime.NumCPU(), OptimalThreadCount(runtime.NumCPU()+64))

	auto := OptimalThreadCount(0)
	assert.GreaterOrEqual(t, auto, 1)
	assert.LessOrEqual(t, auto, runtime.NumCPU())
}

func TestOpenMissingModel(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	_, err := Open(fs, Config{
		ResiduePath:  "models/residue.tflite",
		SegmentPath:  "models/segment.tflite",
		TopologyPath: "models/topology.tflite",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryModelLoad))
}

func TestOpenRemote(t *testing.T) {
	t.Parallel()

	set, err := Open(afero.NewMemMapFs(), Config{
		Remote:       &RemoteConfig{URL: "http://scoring.local", Timeout: time.Second},
		CacheTTL:     time.Minute,
		CacheCleanup: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = set.Close() })

	assert.IsType(t, &ResidueOracle{}, set.Residue)
	assert.IsType(t, &SidesOracle{}, set.Topology)
	require.NotNil(t, set.Cache)
	assert.Same(t, set.Cache, set.Segment)
}

func TestSetCloseClosesPredictors(t *testing.T) {
	t.Parallel()

	a, b := &fakePredictor{}, &fakePredictor{}
	s := &Set{predictors: []Predictor{a, b}}
	require.NoError(t, s.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}
