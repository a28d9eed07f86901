// Package datastore persists prediction results to SQLite or MySQL through
// gorm.
package datastore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tmseg/tmseg-go/internal/conf"
	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
	"github.com/tmseg/tmseg-go/internal/observability/metrics"
	"github.com/tmseg/tmseg-go/internal/output"
	"github.com/tmseg/tmseg-go/internal/pipeline"
)

const (
	tablePredictions = "predictions"
	slowQuery        = 200 * time.Millisecond
)

// Store writes predictions to a relational database.
type Store struct {
	DB       *gorm.DB
	Instance string // stamped on every stored prediction
	dbType   string
	metrics  *metrics.DatastoreMetrics
}

// OpenSQLite opens or creates the SQLite database at path.
func OpenSQLite(path string) (*Store, error) {
	if path == "" {
		return nil, errors.Newf("sqlite path is empty").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return open(sqlite.Open(path), "sqlite", path)
}

// OpenMySQL connects to the MySQL database described by s.
func OpenMySQL(s conf.MySQLSettings) (*Store, error) {
	if s.Host == "" || s.Database == "" {
		return nil, errors.Newf("mysql host and database are required").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Context("host", s.Host).
			Build()
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		s.Username, s.Password, s.Host, s.Port, s.Database)
	return open(mysql.Open(dsn), "mysql", fmt.Sprintf("%s:%s/%s", s.Host, s.Port, s.Database))
}

func open(dialector gorm.Dialector, dbType, location string) (*Store, error) {
	log := GetLogger().With(logger.String("db_type", dbType))

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(log, slowQuery),
	})
	if err != nil {
		log.Error("failed to open database", logger.String("location", location), logger.Error(err))
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("db_type", dbType).
			Context("operation", "open").
			Build()
	}

	if err := db.AutoMigrate(&Prediction{}, &Segment{}); err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("db_type", dbType).
			Context("operation", "auto_migrate").
			Build()
	}

	log.Debug("database ready", logger.String("location", location))
	return &Store{DB: db, dbType: dbType}, nil
}

// SetMetrics enables database metrics.
func (s *Store) SetMetrics(m *metrics.DatastoreMetrics) { s.metrics = m }

// SavePrediction stores r and its label runs in one transaction and returns
// the new row.
func (s *Store) SavePrediction(ctx context.Context, runID string, r *pipeline.Result) (*Prediction, error) {
	start := time.Now()
	row := s.toRow(runID, r)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(row).Error
	})
	s.record("save", start, err)
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			ProteinContext(r.Name, len(r.Sequence)).
			Context("operation", "save_prediction").
			Context("db_type", s.dbType).
			Build()
	}

	if s.metrics != nil {
		s.metrics.AddSegmentsStored(len(row.Segments))
	}
	return row, nil
}

// GetPrediction loads one prediction with its segments.
func (s *Store) GetPrediction(ctx context.Context, id uint) (*Prediction, error) {
	start := time.Now()
	var p Prediction
	err := s.DB.WithContext(ctx).
		Preload("Segments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&p, id).Error
	s.record("get", start, err)
	if err != nil {
		category := errors.CategoryDatabase
		if errors.Is(err, gorm.ErrRecordNotFound) {
			category = errors.CategoryNotFound
		}
		return nil, errors.New(err).
			Component("datastore").
			Category(category).
			Context("operation", "get_prediction").
			Context("id", id).
			Build()
	}
	return &p, nil
}

// ListByRun returns the predictions of one batch ordered by protein name.
func (s *Store) ListByRun(ctx context.Context, runID string) ([]Prediction, error) {
	start := time.Now()
	var rows []Prediction
	err := s.DB.WithContext(ctx).
		Preload("Segments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("run_id = ?", runID).
		Order("name").
		Find(&rows).Error
	s.record("list", start, err)
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "list_by_run").
			Context("run_id", runID).
			Build()
	}
	return rows, nil
}

// Name identifies the store as a result sink.
func (s *Store) Name() string { return metrics.OpSave }

// Deliver stores r; it makes the store a result sink.
func (s *Store) Deliver(ctx context.Context, runID string, r *pipeline.Result) error {
	_, err := s.SavePrediction(ctx, runID, r)
	return err
}

// Close releases the database connections.
func (s *Store) Close() error {
	if s.DB == nil {
		return errors.Newf("database connection is not initialized").
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "close").
			Build()
	}
	return sqlDB.Close()
}

func (s *Store) toRow(runID string, r *pipeline.Result) *Prediction {
	row := &Prediction{
		RunID:         runID,
		Name:          r.Name,
		Header:        r.Header,
		Sequence:      r.Sequence,
		Labels:        r.Labels.String(),
		Mode:          string(r.Mode),
		Transmembrane: r.Transmembrane,
		SignalPeptide: r.SignalPeptide,
		Helices:       len(r.Helices()),
		TopologyRaw:   r.TopologyRaw,
		DurationMs:    r.Duration.Milliseconds(),
		Instance:      s.Instance,
	}
	for _, run := range r.Segments() {
		row.Segments = append(row.Segments, Segment{
			Kind:  output.SegmentName(run.Label),
			Start: run.Start + 1,
			End:   run.End + 1,
			RI:    r.Reliability(run),
		})
	}
	return row
}

func (s *Store) record(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
		s.metrics.RecordDbOperationError(op, tablePredictions, metrics.ErrorType(err))
	}
	s.metrics.RecordDbOperation(op, tablePredictions, status, time.Since(start).Seconds())
}

// GetLogger returns the datastore package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("datastore")
}
