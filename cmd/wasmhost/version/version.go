package version

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/hwclass/docker-beta-wasm-example/internal/buildinfo"
	"github.com/spf13/cobra"
)

const wazeroModule = "github.com/tetratelabs/wazero"

// NewCmd creates the `wasmhost version` command.
func NewCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the wasmhost version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !asJSON {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "wasmhost %s\n", buildinfo.Summary())
				return err
			}
			// JSON goes to stdout, the human line to stderr.
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wasmhost version: %s\n", buildinfo.Summary())
			return encodeJSON(cmd.OutOrStdout(), details())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print detailed JSON version info")
	return cmd
}

func details() map[string]any {
	return map[string]any{
		"version":   buildinfo.Version,
		"commit":    buildinfo.Commit,
		"date":      buildinfo.Date,
		"built_by":  buildinfo.BuiltBy,
		"go":        runtime.Version(),
		"go_os":     runtime.GOOS,
		"go_arch":   runtime.GOARCH,
		"wazero":    dependencyVersion(wazeroModule),
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
}

func dependencyVersion(path string) string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, d := range bi.Deps {
		if d.Path == path {
			return d.Version
		}
	}
	return ""
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
