package app

import (
	"github.com/tmseg/tmseg-go/internal/analysis"
	"github.com/tmseg/tmseg-go/internal/conf"
	"github.com/tmseg/tmseg-go/internal/datastore"
	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
	"github.com/tmseg/tmseg-go/internal/mqtt"
	"github.com/tmseg/tmseg-go/internal/observability"
	"github.com/tmseg/tmseg-go/internal/observability/metrics"
	"github.com/tmseg/tmseg-go/internal/oracle"
	"github.com/tmseg/tmseg-go/internal/pipeline"
)

// Services are the prediction engine, its scorers and the result sinks
// built from the settings.
type Services struct {
	Engine  *pipeline.Engine
	Runner  *analysis.Runner
	Metrics *observability.Metrics // nil when metrics are disabled

	oracles      *oracle.Set
	closers      []func() error
	textfilePath string
}

// OracleConfig maps the model, remote and cache settings onto the oracle
// configuration.
func OracleConfig(s *conf.Settings) oracle.Config {
	cfg := oracle.Config{
		ResiduePath:  s.Models.ResiduePath,
		SegmentPath:  s.Models.SegmentPath,
		TopologyPath: s.Models.TopologyPath,
		Model: oracle.ModelOptions{
			Threads:    s.Models.Threads,
			UseXNNPACK: s.Models.UseXNNPACK,
		},
	}
	if s.Remote.Enabled {
		cfg.Remote = &oracle.RemoteConfig{
			URL:       s.Remote.URL,
			APIKey:    s.Remote.APIKey,
			RateLimit: s.Remote.RateLimit,
			Burst:     s.Remote.Burst,
			Timeout:   s.Remote.Timeout,
		}
	}
	if s.Cache.Enabled {
		cfg.CacheTTL = s.Cache.TTL
		cfg.CacheCleanup = s.Cache.CleanupInterval
	}
	return cfg
}

// MQTTConfig maps the MQTT settings onto the client configuration.
func MQTTConfig(s *conf.Settings) mqtt.Config {
	cfg := mqtt.DefaultConfig()
	cfg.Broker = s.MQTT.Broker
	cfg.ClientID = s.Main.Name
	cfg.Username = s.MQTT.Username
	cfg.Password = s.MQTT.Password
	cfg.Retain = s.MQTT.Retain
	if s.MQTT.Topic != "" {
		cfg.Topic = s.MQTT.Topic
	}
	return cfg
}

// Start opens the scorers and sinks. The caller must Close the services.
func (c *Context) Start() (*Services, error) {
	s := c.Settings
	svc := &Services{}

	if s.Metrics.Enabled {
		m, err := observability.NewMetrics()
		if err != nil {
			return nil, errors.New(err).
				Component("app").
				Category(errors.CategorySystem).
				Context("operation", "init_metrics").
				Build()
		}
		svc.Metrics = m
		svc.textfilePath = s.Metrics.TextfilePath
	}

	oracles, err := oracle.Open(c.Fs, OracleConfig(s))
	if err != nil {
		return nil, err
	}
	svc.oracles = oracles

	svc.Engine = pipeline.New(oracles.Residue, oracles.Segment, oracles.Topology, s.Refine.Params())

	sinks, err := svc.openSinks(s)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}

	opts := analysis.Options{Sinks: sinks}
	if svc.Metrics != nil {
		svc.Engine.Recorder = svc.Metrics.Pipeline
		opts.Metrics = svc.Metrics.Pipeline
	}
	if oracles.Cache != nil {
		opts.Cache = oracles.Cache
	}
	svc.Runner = analysis.NewRunner(svc.Engine, c.Fs, opts)

	GetLogger().Info("services started",
		logger.Bool("remote_oracle", s.Remote.Enabled),
		logger.Int("sinks", len(sinks)),
		logger.Bool("metrics", svc.Metrics != nil))
	return svc, nil
}

func (svc *Services) openSinks(s *conf.Settings) ([]analysis.Sink, error) {
	var sinks []analysis.Sink

	addStore := func(store *datastore.Store) {
		store.Instance = s.Main.Name
		if svc.Metrics != nil {
			store.SetMetrics(svc.Metrics.Datastore)
		}
		sinks = append(sinks, store)
		svc.closers = append(svc.closers, store.Close)
	}

	if s.Output.SQLite.Enabled {
		store, err := datastore.OpenSQLite(s.Output.SQLite.Path)
		if err != nil {
			return nil, err
		}
		addStore(store)
	}
	if s.Output.MySQL.Enabled {
		store, err := datastore.OpenMySQL(s.Output.MySQL)
		if err != nil {
			return nil, err
		}
		addStore(store)
	}

	if s.MQTT.Enabled {
		cfg := MQTTConfig(s)
		var m *metrics.MQTTMetrics
		if svc.Metrics != nil {
			m = svc.Metrics.MQTT
		}
		publisher := mqtt.NewPublisher(mqtt.NewClient(cfg, m), cfg.Topic, s.Main.Name)
		sinks = append(sinks, publisher)
		svc.closers = append(svc.closers, func() error {
			publisher.Close()
			return nil
		})
	}

	return sinks, nil
}

// Close releases the sinks and scorers and exports the metrics textfile.
func (svc *Services) Close() error {
	var errs []error
	for _, closeFn := range svc.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	svc.closers = nil

	if svc.oracles != nil {
		if err := svc.oracles.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if svc.Metrics != nil && svc.textfilePath != "" {
		if err := svc.Metrics.WriteTextfile(svc.textfilePath); err != nil {
			errs = append(errs, err)
		} else {
			GetLogger().Debug("metrics written", logger.String("path", svc.textfilePath))
		}
	}
	return errors.Join(errs...)
}

// WithServices starts the services, runs fn and closes them.
func (c *Context) WithServices(fn func(*Services) error) error {
	svc, err := c.Start()
	if err != nil {
		return err
	}
	runErr := fn(svc)
	return errors.Join(runErr, svc.Close())
}
