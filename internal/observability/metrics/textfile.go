package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
)

// WriteTextfile exports every metric gathered from g in the node_exporter
// textfile format. The file is replaced atomically.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return errors.New(err).
			Component("metrics").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	GetLogger().Debug("wrote metrics textfile", logger.String("path", path))
	return nil
}
