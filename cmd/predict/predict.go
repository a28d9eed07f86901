package predict

import (
	"github.com/spf13/cobra"

	"github.com/tmseg/tmseg-go/cmd/internal/run"
	"github.com/tmseg/tmseg-go/internal/app"
	"github.com/tmseg/tmseg-go/internal/pipeline"
)

// Command creates the predict command for a single protein.
func Command(ctx *app.Context) *cobra.Command {
	var opts run.FileOptions

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict helices and topology of one protein",
		Long: `Predict transmembrane helices, signal peptide and membrane topology of the
first sequence in a FASTA file using its PSI-BLAST profile. Without -o or -r
the segment report is written to standard output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run.File(cmd, ctx, opts, pipeline.ModePredict)
		},
	}

	run.FileFlags(cmd, &opts, "Input FASTA file")
	return cmd
}
