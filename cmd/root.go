package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tmseg/tmseg-go/cmd/check"
	"github.com/tmseg/tmseg-go/cmd/config"
	"github.com/tmseg/tmseg-go/cmd/directory"
	"github.com/tmseg/tmseg-go/cmd/predict"
	"github.com/tmseg/tmseg-go/cmd/refine"
	"github.com/tmseg/tmseg-go/internal/app"
)

// RootCommand creates and returns the root command
func RootCommand(ctx *app.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tmseg",
		Short:         "Transmembrane helix and topology prediction",
		Version:       ctx.Build.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flagErr := setupFlags(rootCmd, ctx)

	rootCmd.AddCommand(
		predict.Command(ctx),
		refine.Command(ctx),
		directory.Command(ctx),
		check.Command(ctx),
		config.Command(ctx),
	)

	// Settings are loaded after flag parsing so that bound flags take
	// precedence over the config file.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if flagErr != nil {
			return flagErr
		}
		return ctx.Load()
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, ctx *app.Context) error {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVarP(&ctx.ConfigFile, "config", "c", "", "Path to config.yaml")

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
