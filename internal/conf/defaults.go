// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/tmseg/tmseg-go/internal/logger"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "tmseg")
	viper.SetDefault("main.log.default_level", logger.DefaultLogLevel)
	viper.SetDefault("main.log.timezone", "Local")
	viper.SetDefault("main.log.console.enabled", logger.DefaultConsoleEnabled)
	viper.SetDefault("main.log.console.level", logger.DefaultLogLevel)
	viper.SetDefault("main.log.file_output.enabled", logger.DefaultFileEnabled)
	viper.SetDefault("main.log.file_output.path", logger.DefaultLogPath)
	viper.SetDefault("main.log.file_output.level", logger.DefaultLogLevel)

	viper.SetDefault("refine.smoothwindow", 5)
	viper.SetDefault("refine.weightsol", 185)
	viper.SetDefault("refine.weighttmh", 60)
	viper.SetDefault("refine.weightsig", 0)
	viper.SetDefault("refine.minhelixlength", 7)
	viper.SetDefault("refine.signalminrun", 4)
	viper.SetDefault("refine.helixminsize", 17)
	viper.SetDefault("refine.gapminsize", 1)
	viper.SetDefault("refine.maxshift", 3)
	viper.SetDefault("refine.maxrefinerounds", 5)
	viper.SetDefault("refine.segmentcutoff", 0.0)
	viper.SetDefault("refine.topologycutoff", 0.45)
	viper.SetDefault("refine.nearoffset", 8)
	viper.SetDefault("refine.faroffset", 15)

	viper.SetDefault("models.residuepath", "models/residue.tflite")
	viper.SetDefault("models.segmentpath", "models/segment.tflite")
	viper.SetDefault("models.topologypath", "models/topology.tflite")
	viper.SetDefault("models.threads", 0)
	viper.SetDefault("models.usexnnpack", false)

	viper.SetDefault("remote.enabled", false)
	viper.SetDefault("remote.url", "")
	viper.SetDefault("remote.apikey", "")
	viper.SetDefault("remote.ratelimit", 20.0)
	viper.SetDefault("remote.burst", 5)
	viper.SetDefault("remote.timeout", 30*time.Second)

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.ttl", 10*time.Minute)
	viper.SetDefault("cache.cleanupinterval", 15*time.Minute)

	viper.SetDefault("output.report", true)
	viper.SetDefault("output.raw", false)
	viper.SetDefault("output.dir", "")
	viper.SetDefault("output.sqlite.enabled", false)
	viper.SetDefault("output.sqlite.path", "tmseg.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "tmseg")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "tmseg")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic", "tmseg/predictions")
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
	viper.SetDefault("mqtt.retain", false)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.dsn", "")
	viper.SetDefault("telemetry.environment", "production")

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.textfilepath", "")

	viper.SetDefault("batch.workers", 0)
	viper.SetDefault("batch.fastaext", ".fasta")
	viper.SetDefault("batch.pssmext", ".pssm")
	viper.SetDefault("batch.reportext", ".tmseg")
	viper.SetDefault("batch.rawext", ".tmseg-raw")
}
