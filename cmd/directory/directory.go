package directory

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tmseg/tmseg-go/internal/analysis"
	"github.com/tmseg/tmseg-go/internal/app"
	"github.com/tmseg/tmseg-go/internal/conf"
	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/pipeline"
)

// Options are the directory command flags that are not settings.
type Options struct {
	FastaDir     string
	PSSMDir      string
	RawDir       string
	Refine       bool
	TopologyOnly bool
}

// Command creates the directory command for batch prediction.
func Command(ctx *app.Context) *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Predict every protein of a directory",
		Long: `Predict every <name>.fasta of the input directory with the profile
<pssm dir>/<name>.pssm, writing <name>.tmseg to the output directory and,
when enabled, <name>.tmseg-raw to the raw directory. A failing protein is
reported and the batch continues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job := Job(ctx.Settings, opts)
			return ctx.WithServices(func(svc *app.Services) error {
				summary, err := svc.Runner.DirectoryAnalysis(cmd.Context(), job)
				if summary != nil {
					printSummary(cmd, summary)
				}
				if err != nil {
					return err
				}
				if n := len(summary.Failures); n > 0 {
					return errors.Newf("%d of %d proteins failed", n, summary.Total).
						Component("cmd").
						Category(errors.CategoryWorker).
						Context("run_id", summary.RunID).
						Build()
				}
				return nil
			})
		},
	}

	setupFlags(cmd, &opts)
	return cmd
}

// setupFlags defines flags specific to the directory command.
func setupFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.FastaDir, "input", "i", "", "Directory of FASTA or structure files")
	cmd.Flags().StringVarP(&opts.PSSMDir, "pssm", "p", "", "Directory of PSI-BLAST profiles")
	cmd.Flags().StringP("output", "o", "", "Directory for segment reports")
	cmd.Flags().StringVarP(&opts.RawDir, "raw", "r", "", "Directory for raw score tables")
	cmd.Flags().IntP("workers", "w", 0, "Concurrent proteins, 0 = number of CPUs")
	cmd.Flags().BoolVarP(&opts.Refine, "refine", "x", false, "Refine the annotation of structure files instead of predicting")
	cmd.Flags().BoolVarP(&opts.TopologyOnly, "topology-only", "t", false, "With --refine, only assign membrane sides")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("pssm")
	_ = viper.BindPFlag("output.dir", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("batch.workers", cmd.Flags().Lookup("workers"))
}

// Job maps the settings and flags onto a batch job. Outputs default to the
// input directory; with raw output enabled and no raw directory, raw tables
// are written next to the reports.
func Job(s *conf.Settings, opts Options) analysis.DirectoryJob {
	ext := analysis.DefaultExtensions()
	if s.Batch.FastaExt != "" {
		ext.Fasta = s.Batch.FastaExt
	}
	if s.Batch.PSSMExt != "" {
		ext.PSSM = s.Batch.PSSMExt
	}
	if s.Batch.ReportExt != "" {
		ext.Report = s.Batch.ReportExt
	}
	if s.Batch.RawExt != "" {
		ext.Raw = s.Batch.RawExt
	}

	job := analysis.DirectoryJob{
		FastaDir: opts.FastaDir,
		PSSMDir:  opts.PSSMDir,
		RawDir:   opts.RawDir,
		Mode:     pipeline.ModePredict,
		Workers:  s.Batch.Workers,
		Ext:      ext,
	}
	outDir := s.Output.Dir
	if outDir == "" {
		outDir = opts.FastaDir
	}
	if s.Output.Report {
		job.ReportDir = outDir
	}
	if job.RawDir == "" && s.Output.Raw {
		job.RawDir = outDir
	}

	switch {
	case opts.Refine && opts.TopologyOnly:
		job.Mode = pipeline.ModeTopologyOnly
	case opts.Refine:
		job.Mode = pipeline.ModeRefine
	}
	return job
}

func printSummary(cmd *cobra.Command, s *analysis.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %d/%d proteins in %s\n", s.RunID, s.Succeeded, s.Total, s.Duration.Round(time.Millisecond))
	for _, f := range s.Failures {
		fmt.Fprintf(out, "  failed %s: %v\n", filepath.Base(f.File), f.Err)
	}
}
