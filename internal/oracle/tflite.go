package oracle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/afero"
	tflite "github.com/tphakala/go-tflite"
	"github.com/tphakala/go-tflite/delegates/xnnpack"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
)

// ModelOptions configures a TensorFlow Lite interpreter.
type ModelOptions struct {
	Threads    int  // 0 selects OptimalThreadCount
	UseXNNPACK bool // run through the XNNPACK delegate when available
}

// TFLiteModel is a mutex-guarded TensorFlow Lite interpreter. The
// interpreter is not safe for concurrent use, so Predict serializes calls.
type TFLiteModel struct {
	name        string
	mu          sync.Mutex
	model       *tflite.Model
	interpreter *tflite.Interpreter
	inputSize   int
	outputSize  int
}

// LoadTFLiteModel reads a .tflite file from fs and allocates its interpreter.
func LoadTFLiteModel(fs afero.Fs, name, path string, opts ModelOptions) (*TFLiteModel, error) {
	start := time.Now()
	log := GetLogger()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.New(err).
			Component("oracle").
			Category(errors.CategoryModelLoad).
			Context("model", name).
			FileContext(path).
			Build()
	}

	model := tflite.NewModel(data)
	if model == nil {
		return nil, errors.New(fmt.Errorf("cannot load TensorFlow Lite model %s", name)).
			Component("oracle").
			Category(errors.CategoryModelInit).
			Context("model", name).
			Context("model_size_kb", len(data)/1024).
			FileContext(path).
			Timing("model-init", time.Since(start)).
			Build()
	}

	threads := OptimalThreadCount(opts.Threads)
	options := tflite.NewInterpreterOptions()
	defer options.Delete()

	if opts.UseXNNPACK {
		delegate := xnnpack.New(xnnpack.DelegateOptions{NumThreads: int32(max(1, threads-1))}) //nolint:gosec // G115: bounded by CPU count
		if delegate == nil {
			log.Warn("failed to create XNNPACK delegate, falling back to default CPU",
				logger.String("model", name))
			options.SetNumThread(threads)
		} else {
			options.AddDelegate(delegate)
			options.SetNumThread(1)
		}
	} else {
		options.SetNumThread(threads)
	}

	options.SetErrorReporter(func(msg string, _ any) {
		GetLogger().Error("TFLite error", logger.String("model", name), logger.String("message", msg))
	}, nil)

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		model.Delete()
		return nil, errors.New(fmt.Errorf("cannot create interpreter for %s", name)).
			Component("oracle").
			Category(errors.CategoryModelInit).
			Context("model", name).
			Build()
	}
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		model.Delete()
		return nil, errors.New(fmt.Errorf("tensor allocation failed for %s: %v", name, status)).
			Component("oracle").
			Category(errors.CategoryModelInit).
			Context("model", name).
			Build()
	}

	input := interpreter.GetInputTensor(0)
	output := interpreter.GetOutputTensor(0)
	m := &TFLiteModel{
		name:        name,
		model:       model,
		interpreter: interpreter,
		inputSize:   input.Dim(input.NumDims() - 1),
		outputSize:  output.Dim(output.NumDims() - 1),
	}

	log.Info("model initialized",
		logger.String("model", name),
		logger.String("path", path),
		logger.Int("threads", threads),
		logger.String("cpu", CPUBrand()),
		logger.Bool("xnnpack", opts.UseXNNPACK),
		logger.Int("inputs", m.inputSize),
		logger.Int("outputs", m.outputSize),
		logger.Duration("load_time", time.Since(start)))

	return m, nil
}

// InputSize returns the number of features the model expects.
func (m *TFLiteModel) InputSize() int { return m.inputSize }

// Predict copies input into the interpreter and returns a copy of the
// output probabilities.
func (m *TFLiteModel) Predict(ctx context.Context, input []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(input) != m.inputSize {
		return nil, errors.New(fmt.Errorf("%s: got %d features, want %d", m.name, len(input), m.inputSize)).
			Component("oracle").
			Category(errors.CategoryOracle).
			Context("model", m.name).
			Build()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.interpreter == nil {
		return nil, errors.New(fmt.Errorf("%s: model closed", m.name)).
			Component("oracle").
			Category(errors.CategoryOracle).
			Build()
	}

	copy(m.interpreter.GetInputTensor(0).Float32s(), input)
	if status := m.interpreter.Invoke(); status != tflite.OK {
		return nil, errors.New(fmt.Errorf("%s: tensor invoke failed: %v", m.name, status)).
			Component("oracle").
			Category(errors.CategoryOracle).
			Context("model", m.name).
			Build()
	}

	out := make([]float32, m.outputSize)
	copy(out, m.interpreter.GetOutputTensor(0).Float32s())
	return out, nil
}

// Close releases the interpreter and model.
func (m *TFLiteModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.interpreter != nil {
		m.interpreter.Delete()
		m.interpreter = nil
	}
	if m.model != nil {
		m.model.Delete()
		m.model = nil
	}
	return nil
}
