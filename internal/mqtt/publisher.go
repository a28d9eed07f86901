package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
	"github.com/tmseg/tmseg-go/internal/observability/metrics"
	"github.com/tmseg/tmseg-go/internal/pipeline"
)

// Publisher sends prediction summaries to one topic. It is a result sink
// and connects on first use.
type Publisher struct {
	client   Client
	topic    string
	instance string
	now      func() time.Time
}

// NewPublisher returns a publisher writing to topic through c.
func NewPublisher(c Client, topic, instance string) *Publisher {
	return &Publisher{client: c, topic: topic, instance: instance, now: time.Now}
}

// Name identifies the publisher as a result sink.
func (p *Publisher) Name() string { return metrics.OpPublish }

// Deliver publishes the summary of r.
func (p *Publisher) Deliver(ctx context.Context, runID string, r *pipeline.Result) error {
	if !p.client.IsConnected() {
		if err := p.client.Connect(ctx); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(NewPredictionDTO(runID, p.instance, r, p.now()))
	if err != nil {
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			ProteinContext(r.Name, len(r.Labels)).
			Build()
	}

	if err := p.client.Publish(ctx, p.topic, string(payload)); err != nil {
		return err
	}
	GetLogger().Debug("published prediction",
		logger.String("topic", p.topic),
		logger.String("protein", r.Name),
		logger.Int("bytes", len(payload)))
	return nil
}

// Close disconnects the underlying client.
func (p *Publisher) Close() {
	p.client.Disconnect()
}
