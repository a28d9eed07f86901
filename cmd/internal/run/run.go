// Package run holds the flag set and execution shared by the single-protein
// commands.
package run

import (
	"github.com/spf13/cobra"

	"github.com/tmseg/tmseg-go/internal/analysis"
	"github.com/tmseg/tmseg-go/internal/app"
	"github.com/tmseg/tmseg-go/internal/output"
	"github.com/tmseg/tmseg-go/internal/pipeline"
)

// FileOptions are the paths of one single-protein run.
type FileOptions struct {
	Input  string
	PSSM   string
	Report string
	Raw    string
}

// FileFlags registers the input and output flags on cmd.
func FileFlags(cmd *cobra.Command, opts *FileOptions, inputUsage string) {
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", inputUsage)
	cmd.Flags().StringVarP(&opts.PSSM, "pssm", "p", "", "PSI-BLAST profile of the sequence")
	cmd.Flags().StringVarP(&opts.Report, "output", "o", "", "Segment report path")
	cmd.Flags().StringVarP(&opts.Raw, "raw", "r", "", "Raw per-residue score table path")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("pssm")
}

// File runs one protein in mode. Without output paths the report goes to
// the command's standard output.
func File(cmd *cobra.Command, ctx *app.Context, opts FileOptions, mode pipeline.Mode) error {
	job := analysis.Job{
		FastaPath: opts.Input,
		PSSMPath:  opts.PSSM,
		Output:    output.Paths{Report: opts.Report, Raw: opts.Raw},
		Mode:      mode,
	}

	return ctx.WithServices(func(svc *app.Services) error {
		res, err := svc.Runner.FileAnalysis(cmd.Context(), job)
		if err != nil {
			return err
		}
		if job.Output.Empty() {
			return output.WriteReport(cmd.OutOrStdout(), res)
		}
		return nil
	})
}
