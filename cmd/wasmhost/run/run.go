package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hwclass/docker-beta-wasm-example/internal/config"
	"github.com/hwclass/docker-beta-wasm-example/internal/host"
	"github.com/hwclass/docker-beta-wasm-example/internal/logging"
	"github.com/hwclass/docker-beta-wasm-example/internal/report"
)

var errMissingModule = errors.New("missing module: pass a path or set module in --config")

type options struct {
	configPath string
	envFiles   []string
	timeout    time.Duration
	reportPath string
	verbose    bool
}

// invocation is a fully resolved run: flags, config and env files merged.
type invocation struct {
	module  string
	args    []string
	env     map[string]string
	timeout time.Duration
}

// NewCmd creates the `wasmhost run` command.
func NewCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:           "run [module.wasm] [-- guest-args...]",
		Short:         "Run a WASI module and mirror its output and exit status",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := o.resolve(args, cmd.ArgsLenAtDash())
			if err != nil {
				return err
			}
			return execute(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), inv, o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "Path to host config file (.cue)")
	f.StringArrayVar(&o.envFiles, "env-file", nil, "Dotenv file merged into the guest environment (repeatable)")
	f.DurationVar(&o.timeout, "timeout", 0, "Abort the module after this long (0 means no limit)")
	f.StringVar(&o.reportPath, "report", "", "Write a YAML run report to this path")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Log host diagnostics to stderr")
	return cmd
}

// resolve merges positional arguments, the config file and env files.
// Positional values win over the config; env files win over config env.
func (o options) resolve(args []string, dash int) (invocation, error) {
	var inv invocation
	before, after := args, []string(nil)
	if dash >= 0 && dash <= len(args) {
		before, after = args[:dash], args[dash:]
	}
	if len(before) > 0 {
		inv.module = before[0]
		inv.args = append(inv.args, before[1:]...)
	}
	inv.args = append(inv.args, after...)

	var cfg config.Host
	if o.configPath != "" {
		c, err := config.ParseHost(o.configPath)
		if err != nil {
			return invocation{}, err
		}
		cfg = c
	}
	if inv.module == "" {
		inv.module = cfg.ResolveModule(o.configPath)
	}
	if inv.module == "" {
		return invocation{}, errMissingModule
	}
	if len(inv.args) == 0 && cfg.HasArgs {
		inv.args = cfg.Args
	}

	inv.env = map[string]string{}
	maps.Copy(inv.env, cfg.Env)
	fileEnv, err := config.LoadEnvFiles(o.envFiles...)
	if err != nil {
		return invocation{}, err
	}
	maps.Copy(inv.env, fileEnv)

	if o.timeout < 0 {
		return invocation{}, fmt.Errorf("invalid value for --timeout: %s (expected >= 0)", o.timeout)
	}
	inv.timeout = o.timeout
	if inv.timeout == 0 && cfg.HasTimeout {
		inv.timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	return inv, nil
}

func execute(ctx context.Context, stdout, stderr io.Writer, inv invocation, o options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.New(o.verbose, stderr)
	defer func() { _ = logger.Sync() }()

	opts := host.Options{
		Args:    inv.args,
		Env:     inv.env,
		Stdout:  stdout,
		Stderr:  stderr,
		Timeout: inv.timeout,
		Logger:  logger,
	}
	logger.Info("running module",
		zap.String("module", inv.module),
		zap.Strings("args", inv.args),
		zap.Int("env", len(inv.env)),
		zap.Duration("timeout", inv.timeout))
	res, runErr := host.RunFile(ctx, inv.module, opts)

	if o.reportPath != "" {
		if err := report.Write(o.reportPath, report.FromResult(inv.module, opts, res, runErr)); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Info("report written", zap.String("path", o.reportPath))
	}
	return evaluateRunExit(res, runErr)
}
