package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	envFile    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "snippetrunner",
		Short:         "Snippetrunner executes PrintScript programs interactively or against fixtures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Environment file loaded before overrides")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newTestCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
