package refine

import (
	"github.com/spf13/cobra"

	"github.com/tmseg/tmseg-go/cmd/internal/run"
	"github.com/tmseg/tmseg-go/internal/app"
	"github.com/tmseg/tmseg-go/internal/pipeline"
)

// Command creates the refine command, which post-processes a supplied
// helix annotation instead of predicting one.
func Command(ctx *app.Context) *cobra.Command {
	var (
		opts         run.FileOptions
		topologyOnly bool
	)

	cmd := &cobra.Command{
		Use:   "refine",
		Short: "Refine the helix boundaries and topology of an annotated protein",
		Long: `Read a structure file (header, sequence and annotation lines), refine the
annotated helix boundaries with the segment classifier and assign membrane
sides. With --topology-only the helices are kept as given and only the sides
are assigned.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := pipeline.ModeRefine
			if topologyOnly {
				mode = pipeline.ModeTopologyOnly
			}
			return run.File(cmd, ctx, opts, mode)
		},
	}

	run.FileFlags(cmd, &opts, "Input structure file")
	cmd.Flags().BoolVarP(&topologyOnly, "topology-only", "t", false, "Only assign membrane sides")
	return cmd
}
