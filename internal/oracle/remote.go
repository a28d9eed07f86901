package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/antonholmquist/jason"
	"golang.org/x/time/rate"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
)

const (
	remoteUserAgent    = "tmseg-go"
	maxErrorBodyPrefix = 256
)

// RemoteConfig configures the HTTP scoring service.
type RemoteConfig struct {
	URL       string
	APIKey    string
	RateLimit float64 // requests per second, 0 = unlimited
	Burst     int
	Timeout   time.Duration
}

// RemoteClient is shared by the per-model remote predictors so that they
// draw from one rate limit.
type RemoteClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewRemoteClient creates a client for the scoring service at cfg.URL.
func NewRemoteClient(cfg RemoteConfig) *RemoteClient {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return &RemoteClient{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, max(cfg.Burst, 1)),
	}
}

// Model returns a Predictor that scores through the named remote model.
func (c *RemoteClient) Model(name string) *RemoteOracle {
	return &RemoteOracle{name: name, client: c}
}

// RemoteOracle is a Predictor backed by the scoring service. Requests are
// POSTed as {"model": name, "features": [...]} to <url>/predict and the
// service answers {"probabilities": [...]}.
type RemoteOracle struct {
	name   string
	client *RemoteClient
}

type predictRequest struct {
	Model    string    `json:"model"`
	Features []float32 `json:"features"`
}

func (o *RemoteOracle) networkError(err error, operation string) error {
	return errors.New(err).
		Component("oracle").
		Category(errors.CategoryNetwork).
		Context("model", o.name).
		Context("operation", operation).
		Build()
}

// Predict implements Predictor.
func (o *RemoteOracle) Predict(ctx context.Context, input []float32) ([]float32, error) {
	c := o.client

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, o.networkError(err, "rate_limiter_wait")
	}

	body, err := json.Marshal(predictRequest{Model: o.name, Features: input})
	if err != nil {
		return nil, errors.New(err).
			Component("oracle").
			Category(errors.CategoryOracle).
			Context("model", o.name).
			Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, o.networkError(err, "build_request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", remoteUserAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, o.networkError(err, "post_predict")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			GetLogger().Debug("failed to close response body", logger.Error(cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		prefix, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyPrefix))
		return nil, errors.New(fmt.Errorf("scoring service returned %s", resp.Status)).
			Component("oracle").
			Category(errors.CategoryNetwork).
			Context("model", o.name).
			Context("status_code", resp.StatusCode).
			Context("response", string(prefix)).
			Timing("remote-predict", time.Since(start)).
			Build()
	}

	obj, err := jason.NewObjectFromReader(resp.Body)
	if err != nil {
		return nil, errors.New(err).
			Component("oracle").
			Category(errors.CategoryOracle).
			Context("model", o.name).
			Context("operation", "decode_response").
			Build()
	}

	probs, err := obj.GetFloat64Array("probabilities")
	if err != nil {
		return nil, errors.New(err).
			Component("oracle").
			Category(errors.CategoryOracle).
			Context("model", o.name).
			Context("operation", "read_probabilities").
			Build()
	}

	out := make([]float32, len(probs))
	for i, p := range probs {
		out[i] = float32(p)
	}
	return out, nil
}

// Close implements Predictor.
func (o *RemoteOracle) Close() error { return nil }
