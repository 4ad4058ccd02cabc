package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/snippetrunner/internal/engine"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Snippetrunner %s\ncommit: %s\nbuilt: %s\nlanguage: %s\n", version, commit, date, engine.DefaultVersion)
			return nil
		},
	}

	return cmd
}
