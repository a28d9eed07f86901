package datastore

import "time"

// Prediction is one stored protein result.
type Prediction struct {
	ID            uint   `gorm:"primaryKey"`
	RunID         string `gorm:"index:idx_predictions_run;type:varchar(36)"`
	Name          string `gorm:"index:idx_predictions_name"`
	Header        string
	Sequence      string `gorm:"type:text"`
	Labels        string `gorm:"type:text"`
	Mode          string `gorm:"type:varchar(20)"`
	Transmembrane bool
	SignalPeptide bool
	Helices       int
	TopologyRaw   int
	DurationMs    int64
	Instance      string
	CreatedAt     time.Time `gorm:"index"`
	Segments      []Segment `gorm:"foreignKey:PredictionID;constraint:OnDelete:CASCADE"`
}

// Segment is one label run of a prediction. Start and End are 1-based,
// as in the report.
type Segment struct {
	ID           uint   `gorm:"primaryKey"`
	PredictionID uint   `gorm:"index;not null"`
	Kind         string `gorm:"type:varchar(20)"`
	Start        int    `gorm:"column:start_residue"`
	End          int    `gorm:"column:end_residue"`
	RI           int // -1 when unknown
}
