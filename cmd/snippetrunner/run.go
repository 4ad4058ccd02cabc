package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/snippetrunner/internal/application/execution"
	domainexec "github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
	"github.com/alexisbeaulieu97/snippetrunner/internal/execctx"
)

const inputPrompt = "> "

type runOptions struct {
	Path   string
	Inputs []string
}

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run a program against the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			return runProgram(cmd.Context(), cmd, root, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Inputs, "input", "i", nil, "Input served before reading stdin (repeatable)")

	return cmd
}

func runProgram(ctx context.Context, cmd *cobra.Command, root *rootFlags, opts runOptions) error {
	source, err := os.ReadFile(opts.Path)
	if err != nil {
		return fmt.Errorf("read program: %w", err)
	}

	cfg, log, err := loadConfig(ctx, root, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	driver, err := newDriver(cfg, log)
	if err != nil {
		return err
	}
	svc := execution.NewService(nil, driver, execution.WithLogger(log.Layer("application")))

	prompt := ""
	if isTerminal(cmd.InOrStdin()) {
		prompt = inputPrompt
	}
	console := execctx.NewConsole(cmd.InOrStdin(), cmd.OutOrStdout(), prompt, opts.Inputs...)

	runErr := svc.RunSource(ctx, string(source), console)
	if err := console.Err(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if runErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", domainexec.MessageOf(runErr))
		return &exitError{code: 1}
	}
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
