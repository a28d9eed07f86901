package config

import (
	"github.com/spf13/cobra"

	"github.com/tmseg/tmseg-go/internal/app"
	"github.com/tmseg/tmseg-go/internal/conf"
)

// Command creates the config command, which prints the effective settings.
func Command(ctx *app.Context) *cobra.Command {
	var savePath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if savePath != "" {
				return conf.SaveYAMLConfig(savePath, ctx.Settings)
			}
			data, err := conf.DumpYAML(ctx.Settings)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&savePath, "save", "", "Write the effective configuration to this file")
	return cmd
}
