package root

import (
	"github.com/hwclass/docker-beta-wasm-example/internal/greeting"
	"github.com/spf13/cobra"
)

const exitCodeWriteErr = 1

type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }
func (e exitError) Unwrap() error { return e.err }
func (e exitError) ExitCode() int { return e.code }

// NewRootCmd creates the hello command. It accepts any arguments and ignores
// them, including ones that look like flags.
func NewRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "hello",
		Short:              "Print a greeting from WASM in Docker",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := greeting.Write(cmd.OutOrStdout()); err != nil {
				return exitError{code: exitCodeWriteErr, err: err}
			}
			return nil
		},
	}
}

// Execute runs the hello command. args are accepted for symmetry with other
// entry points and never reach the command.
func Execute(args []string) error {
	_ = args
	cmd := NewRootCmd()
	cmd.SetArgs([]string{})
	return cmd.Execute()
}
