package analysis

import (
	"os"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/tmseg/tmseg-go/internal/logger"
)

const bytesPerMB = 1024 * 1024

// logMemoryUsage logs system and process memory at a batch phase. Failures
// to read the statistics are logged at debug level only.
func logMemoryUsage(log logger.Logger, phase string) {
	fields := []logger.Field{logger.String("phase", phase)}

	if vm, err := mem.VirtualMemory(); err == nil {
		fields = append(fields,
			logger.Uint64("system_available_mb", vm.Available/bytesPerMB),
			logger.Float64("system_used_percent", vm.UsedPercent))
	} else {
		log.Debug("virtual memory stats unavailable", logger.Error(err))
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil { //nolint:gosec // pid fits in int32
		if info, err := proc.MemoryInfo(); err == nil {
			fields = append(fields, logger.Uint64("process_rss_mb", info.RSS/bytesPerMB))
		}
	}

	log.Info("memory usage", fields...)
}
