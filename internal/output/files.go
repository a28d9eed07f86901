package output

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/logger"
	"github.com/tmseg/tmseg-go/internal/pipeline"
)

const filePermissions = 0o644

// Paths names the files written for one protein. An empty path skips that
// output.
type Paths struct {
	Report string
	Raw    string
}

// Empty reports whether no output was requested.
func (p Paths) Empty() bool { return p.Report == "" && p.Raw == "" }

// Files writes results through an afero filesystem.
type Files struct {
	fs afero.Fs
}

// NewFiles returns a writer on fs.
func NewFiles(fs afero.Fs) *Files {
	return &Files{fs: fs}
}

// Write renders r into every path set in paths.
func (f *Files) Write(r *pipeline.Result, paths Paths) error {
	if paths.Empty() {
		return errors.Newf("no output file requested for %s", r.Name).
			Component("output").
			Category(errors.CategoryValidation).
			Build()
	}
	if paths.Report != "" {
		if err := f.writeFile(paths.Report, r, WriteReport); err != nil {
			return err
		}
	}
	if paths.Raw != "" {
		if err := f.writeFile(paths.Raw, r, WriteRaw); err != nil {
			return err
		}
	}
	return nil
}

func (f *Files) writeFile(path string, r *pipeline.Result, render func(io.Writer, *pipeline.Result) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return fileError(err, path, "mkdir")
		}
	}

	file, err := f.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions)
	if err != nil {
		return fileError(err, path, "create")
	}

	if err := render(file, r); err != nil {
		_ = file.Close()
		return fileError(err, path, "write")
	}
	if err := file.Close(); err != nil {
		return fileError(err, path, "close")
	}

	GetLogger().Debug("wrote prediction",
		logger.String("protein", r.Name),
		logger.String("path", path))
	return nil
}

func fileError(err error, path, op string) error {
	return errors.New(err).
		Component("output").
		Category(errors.CategoryFileIO).
		FileContext(path).
		Context("operation", op).
		Build()
}

// GetLogger returns the output package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("output")
}
