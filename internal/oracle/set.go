package oracle

import (
	"time"

	"github.com/spf13/afero"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
	"github.com/tmseg/tmseg-go/internal/topology"
)

// Model names, also used as remote model identifiers.
const (
	ModelResidue  = "residue"
	ModelSegment  = "segment"
	ModelTopology = "topology"
)

// Config selects and configures the three classifiers.
type Config struct {
	ResiduePath  string
	SegmentPath  string
	TopologyPath string
	Model        ModelOptions

	Remote *RemoteConfig // non-nil scores through the remote service

	CacheTTL     time.Duration // 0 disables the segment cache
	CacheCleanup time.Duration
}

// Set bundles the scorers used by one engine.
type Set struct {
	Residue  topology.ResidueScorer
	Segment  topology.SegmentScorer
	Topology topology.TopologyScorer

	// Cache is the segment cache, nil when disabled.
	Cache *CachedSegmentScorer

	predictors []Predictor
}

// Open loads or connects the classifiers described by cfg.
func Open(fs afero.Fs, cfg Config) (*Set, error) {
	s := &Set{}
	residue, segment, topo, err := s.openPredictors(fs, cfg)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	ro, err := NewResidueOracle(residue)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	so, err := NewSegmentOracle(segment)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	to, err := NewSidesOracle(topo)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	s.Residue = ro
	s.Segment = so
	s.Topology = to
	if cfg.CacheTTL > 0 {
		s.Cache = NewCachedSegmentScorer(so, cfg.CacheTTL, cfg.CacheCleanup)
		s.Segment = s.Cache
	}

	GetLogger().Debug("scorers ready",
		logger.Bool("remote", cfg.Remote != nil),
		logger.Bool("segment_cache", s.Cache != nil))

	return s, nil
}

func (s *Set) openPredictors(fs afero.Fs, cfg Config) (residue, segment, topo Predictor, err error) {
	if cfg.Remote != nil {
		client := NewRemoteClient(*cfg.Remote)
		residue = client.Model(ModelResidue)
		segment = client.Model(ModelSegment)
		topo = client.Model(ModelTopology)
		s.predictors = append(s.predictors, residue, segment, topo)
		return residue, segment, topo, nil
	}

	load := func(name, path string) (Predictor, error) {
		m, err := LoadTFLiteModel(fs, name, path, cfg.Model)
		if err != nil {
			return nil, err
		}
		s.predictors = append(s.predictors, m)
		return m, nil
	}

	if residue, err = load(ModelResidue, cfg.ResiduePath); err != nil {
		return nil, nil, nil, err
	}
	if segment, err = load(ModelSegment, cfg.SegmentPath); err != nil {
		return nil, nil, nil, err
	}
	if topo, err = load(ModelTopology, cfg.TopologyPath); err != nil {
		return nil, nil, nil, err
	}
	return residue, segment, topo, nil
}

// Close releases every predictor.
func (s *Set) Close() error {
	var errs []error
	for _, p := range s.predictors {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.predictors = nil
	return errors.Join(errs...)
}
