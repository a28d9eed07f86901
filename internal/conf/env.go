// env.go - Environment variable configuration and validation for tmseg
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "TMSEG_DEBUG", validateEnvBool},

		// Models
		{"models.residuepath", "TMSEG_MODELS_RESIDUE", nil},
		{"models.segmentpath", "TMSEG_MODELS_SEGMENT", nil},
		{"models.topologypath", "TMSEG_MODELS_TOPOLOGY", nil},
		{"models.threads", "TMSEG_THREADS", validateEnvThreads},
		{"models.usexnnpack", "TMSEG_XNNPACK", validateEnvBool},

		// Remote scoring service
		{"remote.enabled", "TMSEG_REMOTE_ENABLED", validateEnvBool},
		{"remote.url", "TMSEG_REMOTE_URL", validateEnvURL},
		{"remote.apikey", "TMSEG_REMOTE_APIKEY", nil},

		// Batch
		{"batch.workers", "TMSEG_WORKERS", validateEnvThreads},

		// Integrations with secrets that should not live in config.yaml
		{"output.mysql.password", "TMSEG_MYSQL_PASSWORD", nil},
		{"mqtt.password", "TMSEG_MQTT_PASSWORD", nil},
		{"telemetry.dsn", "TMSEG_SENTRY_DSN", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	bindings := getEnvBindings()
	var warnings []string

	for _, binding := range bindings {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

func validateEnvBool(value string) error {
	_, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvThreads(value string) error {
	threads, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid thread count: %w", err)
	}
	if threads < 0 {
		return fmt.Errorf("thread count must be >= 0, got %d", threads)
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}
