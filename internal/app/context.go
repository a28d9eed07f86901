// Package app holds the application context shared by the CLI commands:
// loaded settings, logging and telemetry setup, and the construction of the
// prediction services from configuration.
package app

import (
	"time"

	"github.com/spf13/afero"

	"github.com/tmseg/tmseg-go/internal/buildinfo"
	"github.com/tmseg/tmseg-go/internal/conf"
	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
	"github.com/tmseg/tmseg-go/internal/telemetry"
)

const telemetryFlushTimeout = 2 * time.Second

// Context is created once in main and passed to every command.
type Context struct {
	Build      *buildinfo.Context
	ConfigFile string // set by --config before Load
	Settings   *conf.Settings
	Fs         afero.Fs

	central *logger.CentralLogger
}

// NewContext returns a context reading and writing the OS filesystem.
func NewContext(build *buildinfo.Context) *Context {
	return &Context{Build: build, Fs: afero.NewOsFs()}
}

// Load reads the configuration, installs the global logger and enables
// telemetry when configured.
func (c *Context) Load() error {
	settings, err := conf.Load(c.ConfigFile)
	if err != nil {
		return errors.New(err).
			Component("app").
			Category(errors.CategoryConfiguration).
			Context("config_file", c.ConfigFile).
			Build()
	}
	c.Settings = settings

	if err := c.initLogging(); err != nil {
		return err
	}

	return telemetry.InitSentry(settings.Telemetry, telemetry.Options{
		Release: buildinfo.Release(c.Build),
	})
}

func (c *Context) initLogging() error {
	cfg := c.Settings.Main.Log
	if c.Settings.Debug {
		cfg.DefaultLevel = "debug"
		if cfg.Console != nil {
			console := *cfg.Console
			console.Level = "debug"
			cfg.Console = &console
		}
	}

	central, err := logger.NewCentralLogger(&cfg)
	if err != nil {
		return errors.New(err).
			Component("app").
			Category(errors.CategoryConfiguration).
			Context("operation", "init_logging").
			Build()
	}
	logger.SetGlobal(central)
	c.central = central

	GetLogger().Debug("configuration loaded",
		logger.String("version", c.Build.GetVersion()),
		logger.String("instance", c.Settings.Main.Name))
	return nil
}

// Shutdown flushes telemetry and the log file.
func (c *Context) Shutdown() {
	telemetry.Flush(telemetryFlushTimeout)
	if c.central != nil {
		_ = c.central.Flush()
		_ = c.central.Close()
	}
}

// GetLogger returns the app package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("app")
}
