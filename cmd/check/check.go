package check

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tmseg/tmseg-go/internal/app"
	"github.com/tmseg/tmseg-go/internal/errors"
	"github.com/tmseg/tmseg-go/internal/protein"
	"github.com/tmseg/tmseg-go/internal/topology"
)

// Command creates the check command, which validates the side annotation
// of structure files.
func Command(ctx *app.Context) *cobra.Command {
	var extrapolate bool

	cmd := &cobra.Command{
		Use:   "check [structure file...]",
		Short: "Check that annotated membrane sides alternate across helices",
		Long: `Check every record of the given structure files: the annotated sides
(1 inside, 2 outside) must switch across every helix. With --extrapolate the
annotation completed from the first annotated side is printed as well.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inconsistent := 0
			for _, path := range args {
				n, err := checkFile(cmd, ctx.Fs, path, extrapolate)
				if err != nil {
					return err
				}
				inconsistent += n
			}
			if inconsistent > 0 {
				return errors.Newf("%d records with inconsistent topology", inconsistent).
					Component("cmd").
					Category(errors.CategoryTopologyValidation).
					Build()
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&extrapolate, "extrapolate", "e", false, "Print the extrapolated topology")
	return cmd
}

// checkFile prints one line per record and returns the number of
// inconsistent records.
func checkFile(cmd *cobra.Command, fs afero.Fs, path string, extrapolate bool) (int, error) {
	f, err := fs.Open(path)
	if err != nil {
		return 0, errors.New(err).
			Component("cmd").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	defer f.Close()

	records, err := protein.ReadStructure(f)
	if err != nil {
		return 0, err
	}

	out := cmd.OutOrStdout()
	inconsistent := 0
	for _, p := range records {
		labels := topology.ParseLabels(p.Structure)
		status := "consistent"
		if !topology.CheckTopology(labels) {
			status = "inconsistent"
			inconsistent++
		}
		fmt.Fprintf(out, "%s\t%s\n", p.Name, status)
		if extrapolate {
			fmt.Fprintf(out, "%s\n", topology.ExtrapolateTopology(labels))
		}
	}
	return inconsistent, nil
}
