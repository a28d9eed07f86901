package observability

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmseg/tmseg-go/internal/observability/metrics"
)

// Each call owns its registry, so concurrent construction must not collide.
func TestNewMetricsConcurrency(t *testing.T) {
	t.Parallel()

	const numGoroutines = 50

	var wg sync.WaitGroup
	for range numGoroutines {
		wg.Go(func() {
			m, err := NewMetrics()
			if !assert.NoError(t, err) {
				return
			}
			assert.NotNil(t, m.Registry())
			assert.NotNil(t, m.Pipeline)
			assert.NotNil(t, m.MQTT)
			assert.NotNil(t, m.Datastore)
		})
	}
	wg.Wait()
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)

	m.Pipeline.RecordOperation(metrics.OpPredict, metrics.StatusSuccess)
	m.Pipeline.RecordPrediction(true, false, 3)

	path := filepath.Join(t.TempDir(), "tmseg.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `tmseg_operations_total{operation="predict",status="success"} 1`)
	assert.Contains(t, string(data), "tmseg_helices_predicted_total 3")
}
