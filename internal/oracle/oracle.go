// Package oracle provides the trained classifiers behind the topology
// scoring interfaces. Each classifier turns a feature vector into class
// probabilities through a Predictor, which is either a local TensorFlow
// Lite model or a remote scoring service.
package oracle

import (
	"context"
	"fmt"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
)

// Predictor maps one feature vector to class probabilities.
type Predictor interface {
	Predict(ctx context.Context, input []float32) ([]float32, error)
	Close() error
}

// sized is implemented by predictors that know their input width.
type sized interface {
	InputSize() int
}

// checkInputSize verifies that a sized predictor accepts want features.
func checkInputSize(name string, p Predictor, want int) error {
	s, ok := p.(sized)
	if !ok {
		return nil
	}
	if got := s.InputSize(); got != want {
		return errors.New(fmt.Errorf("%s model expects %d features, got %d", name, got, want)).
			Component("oracle").
			Category(errors.CategoryModelInit).
			Context("model", name).
			Context("expected_features", want).
			Context("model_features", got).
			Build()
	}
	return nil
}

// predict runs p and checks that at least classes outputs came back.
func predict(ctx context.Context, name string, p Predictor, input []float32, classes int) ([]float32, error) {
	out, err := p.Predict(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(out) < classes {
		return nil, errors.New(fmt.Errorf("%s model returned %d outputs, need %d", name, len(out), classes)).
			Component("oracle").
			Category(errors.CategoryOracle).
			Context("model", name).
			Build()
	}
	return out, nil
}

// GetLogger returns the oracle package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("oracle")
}
