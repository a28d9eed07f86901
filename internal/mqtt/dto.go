package mqtt

import (
	"time"

	"github.com/tmseg/tmseg-go/internal/output"
	"github.com/tmseg/tmseg-go/internal/pipeline"
	"github.com/tmseg/tmseg-go/internal/topology"
)

// PredictionDTO is the payload published for every prediction.
// Field names are part of the consumer contract.
type PredictionDTO struct {
	RunID         string       `json:"runId"`
	Instance      string       `json:"instance,omitempty"`
	Name          string       `json:"name"`
	Length        int          `json:"length"`
	Mode          string       `json:"mode"`
	Transmembrane bool         `json:"transmembrane"`
	SignalPeptide bool         `json:"signalPeptide"`
	NTerminus     string       `json:"nTerminus,omitempty"` // "inside" or "outside"
	Helices       []SegmentDTO `json:"helices"`
	Labels        string       `json:"labels"`
	Timestamp     string       `json:"timestamp"`
}

// SegmentDTO is one helix, 1-based and inclusive.
type SegmentDTO struct {
	Kind  string `json:"kind"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	RI    int    `json:"ri"`
}

// NewPredictionDTO summarizes r.
func NewPredictionDTO(runID, instance string, r *pipeline.Result, now time.Time) PredictionDTO {
	dto := PredictionDTO{
		RunID:         runID,
		Instance:      instance,
		Name:          r.Name,
		Length:        len(r.Labels),
		Mode:          string(r.Mode),
		Transmembrane: r.Transmembrane,
		SignalPeptide: r.SignalPeptide,
		NTerminus:     nTerminus(r.Labels),
		Helices:       []SegmentDTO{},
		Labels:        r.Labels.String(),
		Timestamp:     now.UTC().Format(time.RFC3339),
	}
	for _, h := range r.Helices() {
		dto.Helices = append(dto.Helices, SegmentDTO{
			Kind:  output.SegmentName(h.Label),
			Start: h.Start + 1,
			End:   h.End + 1,
			RI:    r.Reliability(h),
		})
	}
	return dto
}

// nTerminus returns the side of the first side-labelled residue.
func nTerminus(labels topology.Labels) string {
	for _, l := range labels {
		switch l {
		case topology.Inside:
			return "inside"
		case topology.Outside:
			return "outside"
		}
	}
	return ""
}
