// config.go: settings struct for tmseg and functions to load and save it.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tmseg/tmseg-go/internal/logger"
	"github.com/tmseg/tmseg-go/internal/topology"
)

//go:embed config.yaml
var configFiles embed.FS

// MainSettings contains general application settings.
type MainSettings struct {
	Name string               // instance name, tagged on persisted and published results
	Log  logger.LoggingConfig // central logger configuration
}

// RefineSettings mirrors topology.Params so every stage threshold can be tuned from config.
type RefineSettings struct {
	SmoothWindow    int     // median filter window
	WeightSol       int     // arbiter bias subtracted from soluble scores
	WeightTMH       int     // arbiter bias subtracted from helix scores
	WeightSig       int     // arbiter bias subtracted from signal scores
	MinHelixLength  int     // helices shorter than this are dropped
	SignalMinRun    int     // minimum signal run accepted by the signal validator
	HelixMinSize    int     // minimum helix length produced by a split
	GapMinSize      int     // minimum gap between split halves
	MaxShift        int     // boundary shift range for adjust
	MaxRefineRounds int     // split/adjust rounds before the final split
	SegmentCutoff   float64 // minimum segment probability
	TopologyCutoff  float64 // P(inside) threshold for the first side
	NearOffset      int     // side window reach into the helix
	FarOffset       int     // side window reach into the loop
}

// ModelSettings contains paths to the three classifier models.
type ModelSettings struct {
	ResiduePath  string // per-residue classifier (sol, tmh, sig)
	SegmentPath  string // whole-segment helix classifier
	TopologyPath string // N-terminal side classifier
	Threads      int    // interpreter threads per model, 0 = auto
	UseXNNPACK   bool   // true to run the models through the XNNPACK delegate
}

// RemoteSettings configures the HTTP scoring service back-end.
type RemoteSettings struct {
	Enabled   bool          // true to score through the remote service instead of local models
	URL       string        // service base URL
	APIKey    string        // optional bearer token
	RateLimit float64       // requests per second, 0 = unlimited
	Burst     int           // rate limiter burst
	Timeout   time.Duration // per request timeout
}

// CacheSettings configures memoization of segment oracle calls.
type CacheSettings struct {
	Enabled         bool
	TTL             time.Duration // expiry of cached segment probabilities
	CleanupInterval time.Duration // go-cache janitor interval
}

// SQLiteSettings contains settings for SQLite persistence.
type SQLiteSettings struct {
	Enabled bool   // true to enable sqlite output
	Path    string // path to sqlite database
}

// MySQLSettings contains settings for MySQL persistence.
type MySQLSettings struct {
	Enabled  bool   // true to enable mysql output
	Username string // username for mysql database
	Password string // password for mysql database
	Database string // database name for mysql database
	Host     string // host for mysql database
	Port     string // port for mysql database
}

// OutputSettings controls what is written for each protein.
type OutputSettings struct {
	Report bool   // write the segment report (.tmseg)
	Raw    bool   // write the raw per-residue table (.tmseg-raw)
	Dir    string // output directory for directory mode
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// MQTTSettings contains settings for MQTT publishing.
type MQTTSettings struct {
	Enabled  bool   // true to enable MQTT
	Broker   string // MQTT (tcp://host:port)
	Topic    string // MQTT topic
	Username string // MQTT username
	Password string // MQTT password
	Retain   bool   // retain published messages
}

// TelemetrySettings configures Sentry error reporting.
type TelemetrySettings struct {
	Enabled     bool
	DSN         string
	Environment string
}

// MetricsSettings configures Prometheus metrics export.
type MetricsSettings struct {
	Enabled      bool
	TextfilePath string // node_exporter textfile collector target
}

// BatchSettings configures directory mode.
type BatchSettings struct {
	Workers   int    // concurrent proteins, 0 = number of CPUs
	FastaExt  string // extension of sequence files
	PSSMExt   string // extension of profile files
	ReportExt string // extension of segment reports
	RawExt    string // extension of raw tables
}

// Settings contains all configuration options for tmseg.
type Settings struct {
	Debug bool // true to enable debug mode

	Main      MainSettings
	Refine    RefineSettings
	Models    ModelSettings
	Remote    RemoteSettings
	Cache     CacheSettings
	Output    OutputSettings
	MQTT      MQTTSettings
	Telemetry TelemetrySettings
	Metrics   MetricsSettings
	Batch     BatchSettings
}

// Params converts refine settings into the immutable stage parameters.
func (r *RefineSettings) Params() topology.Params {
	return topology.Params{
		SmoothWindow: r.SmoothWindow,
		Weights: topology.Weights{
			Sol: r.WeightSol,
			TMH: r.WeightTMH,
			Sig: r.WeightSig,
		},
		MinHelixLength:  r.MinHelixLength,
		SignalMinRun:    r.SignalMinRun,
		HelixMinSize:    r.HelixMinSize,
		GapMinSize:      r.GapMinSize,
		MaxShift:        r.MaxShift,
		MaxRefineRounds: r.MaxRefineRounds,
		SegmentCutoff:   r.SegmentCutoff,
		TopologyCutoff:  r.TopologyCutoff,
		NearOffset:      r.NearOffset,
		FarOffset:       r.FarOffset,
	}
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
// An empty configFile searches the default config paths and creates a
// default config.yaml when none exists.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(configFile); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper(configFile string) error {
	viper.SetConfigType("yaml")

	// Set default values for each configuration parameter
	// function defined in defaults.go
	setDefaultConfig()

	if err := bindEnvVars(); err != nil {
		GetLogger().Warn("environment configuration problems", logger.Error(err))
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		return nil
	}

	viper.SetConfigName("config")
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config into dir and reads it back
func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")

	defaultConfig, err := getDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, defaultConfig, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	GetLogger().Info("created default config file", logger.String("path", configPath))
	viper.SetConfigFile(configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() ([]byte, error) {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return nil, fmt.Errorf("error reading embedded config: %w", err)
	}
	return data, nil
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// DumpYAML renders the effective settings as YAML.
func DumpYAML(settings *Settings) ([]byte, error) {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("error marshaling settings to YAML: %w", err)
	}
	return yamlData, nil
}

// SaveYAMLConfig writes settings to configPath through a temporary file.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := DumpYAML(settings)
	if err != nil {
		return err
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		// cross-device rename, fall back to copy
		if err := moveFile(tempFileName, configPath); err != nil {
			return fmt.Errorf("error copying config file: %w", err)
		}
	}

	return nil
}
