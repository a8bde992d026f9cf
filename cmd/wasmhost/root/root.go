package root

import (
	"github.com/hwclass/docker-beta-wasm-example/cmd/wasmhost/run"
	"github.com/hwclass/docker-beta-wasm-example/cmd/wasmhost/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for wasmhost.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wasmhost",
		Short: "Run WASI modules the way a container wasm runtime does",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(version.NewCmd())
	cmd.AddCommand(run.NewCmd())

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
