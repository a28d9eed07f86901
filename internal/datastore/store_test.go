package datastore

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmseg/tmseg-go/internal/conf"
	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/observability/metrics"
	"github.com/tmseg/tmseg-go/internal/pipeline"
	"github.com/tmseg/tmseg-go/internal/topology"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "tmseg.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func helixResult(name string) *pipeline.Result {
	labels := topology.ParseLabels("1111HHHHHHHHHHHHHHHHHHH2222")
	ri := make([]int, len(labels))
	for i := range ri {
		ri[i] = 7
	}
	return &pipeline.Result{
		Name:          name,
		Header:        ">" + name,
		Sequence:      "MKKKLLLLLLLLLLLLLLLLLLLKKKK",
		Mode:          pipeline.ModePredict,
		Labels:        labels,
		Confidence:    ri,
		TopologyRaw:   620,
		Transmembrane: true,
		Duration:      15 * time.Millisecond,
	}
}

func TestSaveAndGetPrediction(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	s.Instance = "lab-1"

	row, err := s.SavePrediction(t.Context(), "run-1", helixResult("P1"))
	require.NoError(t, err)
	require.NotZero(t, row.ID)

	got, err := s.GetPrediction(t.Context(), row.ID)
	require.NoError(t, err)

	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "P1", got.Name)
	assert.Equal(t, "1111HHHHHHHHHHHHHHHHHHH2222", got.Labels)
	assert.Equal(t, "predict", got.Mode)
	assert.True(t, got.Transmembrane)
	assert.Equal(t, 1, got.Helices)
	assert.Equal(t, 620, got.TopologyRaw)
	assert.Equal(t, int64(15), got.DurationMs)
	assert.Equal(t, "lab-1", got.Instance)

	require.Len(t, got.Segments, 3)
	assert.Equal(t, Segment{ID: got.Segments[0].ID, PredictionID: row.ID, Kind: "INSIDE", Start: 1, End: 4, RI: 7}, got.Segments[0])
	assert.Equal(t, "TRANSMEM", got.Segments[1].Kind)
	assert.Equal(t, 5, got.Segments[1].Start)
	assert.Equal(t, 23, got.Segments[1].End)
	assert.Equal(t, "OUTSIDE", got.Segments[2].Kind)
}

func TestSaveWithoutConfidence(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	r := helixResult("P2")
	r.Confidence = nil
	r.Mode = pipeline.ModeRefine

	row, err := s.SavePrediction(t.Context(), "run-1", r)
	require.NoError(t, err)
	for _, seg := range row.Segments {
		assert.Equal(t, -1, seg.RI)
	}
}

func TestGetPredictionNotFound(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	_, err := s.GetPrediction(t.Context(), 42)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))
}

func TestListByRun(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	for _, name := range []string{"Q2", "Q1"} {
		require.NoError(t, s.Deliver(t.Context(), "run-a", helixResult(name)))
	}
	require.NoError(t, s.Deliver(t.Context(), "run-b", helixResult("Q3")))

	rows, err := s.ListByRun(t.Context(), "run-a")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Q1", rows[0].Name)
	assert.Equal(t, "Q2", rows[1].Name)
	assert.Len(t, rows[0].Segments, 3)

	rows, err = s.ListByRun(t.Context(), "missing")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStoreMetrics(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	reg := prometheus.NewRegistry()
	m, err := metrics.NewDatastoreMetrics(reg)
	require.NoError(t, err)
	s.SetMetrics(m)

	require.NoError(t, s.Deliver(t.Context(), "run", helixResult("M1")))
	_, err = s.GetPrediction(t.Context(), 999)
	require.Error(t, err)

	expected := `
# HELP tmseg_db_segments_stored_total Total number of segment rows written
# TYPE tmseg_db_segments_stored_total counter
tmseg_db_segments_stored_total 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "tmseg_db_segments_stored_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m, "tmseg_db_operation_errors_total"))
}

func TestSaveCanceledContext(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := s.SavePrediction(ctx, "run", helixResult("C1"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDatabase))
}

func TestOpenValidation(t *testing.T) {
	t.Parallel()

	_, err := OpenSQLite("")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))

	_, err = OpenMySQL(conf.MySQLSettings{Username: "tmseg"})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestStoreIsSink(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	assert.Equal(t, metrics.OpSave, s.Name())
}

func TestCloseUninitialized(t *testing.T) {
	t.Parallel()
	var s Store
	require.Error(t, s.Close())
}
