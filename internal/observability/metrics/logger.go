package metrics

import "github.com/tmseg/tmseg-go/internal/logger"

// GetLogger returns the metrics package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("metrics")
}
