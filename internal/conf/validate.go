// conf/validate.go

package conf

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validators := []func(*Settings) error{
		func(s *Settings) error { return validateRefineSettings(&s.Refine) },
		func(s *Settings) error { return validateModelSettings(&s.Models, &s.Remote) },
		func(s *Settings) error { return validateRemoteSettings(&s.Remote) },
		func(s *Settings) error { return validateOutputSettings(&s.Output) },
		func(s *Settings) error { return validateMQTTSettings(&s.MQTT) },
		func(s *Settings) error { return validateTelemetrySettings(&s.Telemetry) },
		func(s *Settings) error { return validateBatchSettings(&s.Batch) },
	}

	for _, validate := range validators {
		if err := validate(settings); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateRefineSettings checks the stage thresholds
func validateRefineSettings(settings *RefineSettings) error {
	var errs []string

	if settings.SmoothWindow < 1 {
		errs = append(errs, "refine.smoothwindow must be at least 1")
	}
	if settings.MinHelixLength < 1 {
		errs = append(errs, "refine.minhelixlength must be at least 1")
	}
	if settings.SignalMinRun < 1 {
		errs = append(errs, "refine.signalminrun must be at least 1")
	}
	if settings.HelixMinSize < 1 {
		errs = append(errs, "refine.helixminsize must be at least 1")
	}
	if settings.GapMinSize < 1 {
		errs = append(errs, "refine.gapminsize must be at least 1")
	}
	if settings.MaxShift < 0 {
		errs = append(errs, "refine.maxshift must not be negative")
	}
	if settings.MaxRefineRounds < 0 {
		errs = append(errs, "refine.maxrefinerounds must not be negative")
	}
	if settings.SegmentCutoff < 0 || settings.SegmentCutoff > 1 {
		errs = append(errs, "refine.segmentcutoff must be between 0 and 1")
	}
	if settings.TopologyCutoff < 0 || settings.TopologyCutoff > 1 {
		errs = append(errs, "refine.topologycutoff must be between 0 and 1")
	}
	if settings.NearOffset < 0 || settings.FarOffset < 0 {
		errs = append(errs, "refine.nearoffset and refine.faroffset must not be negative")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// validateModelSettings requires model paths unless the remote service replaces them
func validateModelSettings(models *ModelSettings, remote *RemoteSettings) error {
	if models.Threads < 0 {
		return errors.New("models.threads must not be negative")
	}
	if remote.Enabled {
		return nil
	}
	if models.ResiduePath == "" || models.SegmentPath == "" || models.TopologyPath == "" {
		return errors.New("models.residuepath, models.segmentpath and models.topologypath are required when remote scoring is disabled")
	}
	return nil
}

func validateRemoteSettings(settings *RemoteSettings) error {
	if !settings.Enabled {
		return nil
	}

	var errs []string
	u, err := url.Parse(settings.URL)
	if settings.URL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, "remote.url must be an http(s) URL when remote scoring is enabled")
	}
	if settings.RateLimit < 0 {
		errs = append(errs, "remote.ratelimit must not be negative")
	}
	if settings.RateLimit > 0 && settings.Burst < 1 {
		errs = append(errs, "remote.burst must be at least 1 when rate limiting")
	}
	if settings.Timeout <= 0 {
		errs = append(errs, "remote.timeout must be positive")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateOutputSettings(settings *OutputSettings) error {
	var errs []string

	if settings.SQLite.Enabled && settings.SQLite.Path == "" {
		errs = append(errs, "output.sqlite.path is required when sqlite is enabled")
	}
	if settings.MySQL.Enabled && (settings.MySQL.Host == "" || settings.MySQL.Database == "") {
		errs = append(errs, "output.mysql.host and output.mysql.database are required when mysql is enabled")
	}
	if settings.SQLite.Enabled && settings.MySQL.Enabled {
		errs = append(errs, "only one of output.sqlite and output.mysql can be enabled")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateMQTTSettings(settings *MQTTSettings) error {
	if !settings.Enabled {
		return nil
	}
	if settings.Broker == "" {
		return errors.New("mqtt.broker is required when mqtt is enabled")
	}
	if settings.Topic == "" {
		return errors.New("mqtt.topic is required when mqtt is enabled")
	}
	return nil
}

func validateTelemetrySettings(settings *TelemetrySettings) error {
	if settings.Enabled && settings.DSN == "" {
		return errors.New("telemetry.dsn is required when telemetry is enabled")
	}
	return nil
}

func validateBatchSettings(settings *BatchSettings) error {
	var errs []string

	if settings.Workers < 0 {
		errs = append(errs, "batch.workers must not be negative")
	}
	for key, ext := range map[string]string{
		"batch.fastaext":  settings.FastaExt,
		"batch.pssmext":   settings.PSSMExt,
		"batch.reportext": settings.ReportExt,
		"batch.rawext":    settings.RawExt,
	} {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("%s must start with a dot, got %q", key, ext))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
