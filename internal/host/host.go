// Package host runs WASI preview1 modules in-process with wazero, the way a
// container wasm runtime would: argv and environment in, stdout and stderr
// captured, exit status out.
package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/hwclass/docker-beta-wasm-example/internal/logging"
)

var (
	// ErrTrap reports that the module terminated abnormally, without proc_exit.
	ErrTrap = errors.New("trap")
	// ErrTimeout reports that Options.Timeout elapsed before the module exited.
	ErrTimeout = errors.New("timeout")
)

// Options configures a single module run.
type Options struct {
	// Name is argv[0] as seen by the module. Defaults to "module".
	Name string
	Args []string
	Env  map[string]string
	// Stdout and Stderr receive guest output as it is written, in addition
	// to the copies kept in Result.
	Stdout  io.Writer
	Stderr  io.Writer
	Timeout time.Duration
	Logger  *zap.Logger
}

// Result describes how a module run ended.
type Result struct {
	ExitCode uint32
	Trapped  bool
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// RunFile reads the module at path and runs it. Name defaults to the file's
// base name.
func RunFile(ctx context.Context, path string, opts Options) (Result, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read module: %w", err)
	}
	if opts.Name == "" {
		opts.Name = filepath.Base(path)
	}
	return Run(ctx, wasm, opts)
}

// Run compiles wasm and runs its _start function to completion. A non-zero
// guest exit code is reported in Result and is not an error.
func Run(ctx context.Context, wasm []byte, opts Options) (Result, error) {
	logger := logging.OrNop(opts.Logger)
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(true))
	defer func() { _ = rt.Close(context.Background()) }()

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		return Result{}, fmt.Errorf("instantiate wasi: %w", err)
	}
	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return Result{}, fmt.Errorf("compile module: %w", err)
	}
	name := opts.Name
	if name == "" {
		name = "module"
	}
	logger.Debug("module compiled", zap.String("module", name), zap.Int("bytes", len(wasm)))

	var stdout, stderr bytes.Buffer
	cfg := wazero.NewModuleConfig().
		WithName("").
		WithArgs(append([]string{name}, opts.Args...)...).
		WithStdout(tee(&stdout, opts.Stdout)).
		WithStderr(tee(&stderr, opts.Stderr))
	for _, k := range sortedKeys(opts.Env) {
		cfg = cfg.WithEnv(k, opts.Env[k])
	}

	start := time.Now()
	mod, err := rt.InstantiateModule(ctx, compiled, cfg)
	res := Result{Duration: time.Since(start)}
	if mod != nil {
		_ = mod.Close(context.Background())
	}
	res.Stdout = stdout.Bytes()
	res.Stderr = stderr.Bytes()

	if err == nil {
		logger.Info("module finished", zap.String("module", name), zap.Duration("duration", res.Duration))
		return res, nil
	}
	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) {
		switch exitErr.ExitCode() {
		case sys.ExitCodeDeadlineExceeded:
			logger.Warn("module timed out", zap.String("module", name), zap.Duration("timeout", opts.Timeout))
			return res, fmt.Errorf("%w after %s", ErrTimeout, opts.Timeout)
		case sys.ExitCodeContextCanceled:
			return res, context.Canceled
		}
		res.ExitCode = exitErr.ExitCode()
		logger.Info("module exited",
			zap.String("module", name),
			zap.Uint32("exit_code", res.ExitCode),
			zap.Duration("duration", res.Duration))
		return res, nil
	}
	res.Trapped = true
	logger.Warn("module trapped", zap.String("module", name), zap.Error(err))
	return res, fmt.Errorf("%w: %v", ErrTrap, err)
}

func tee(capture *bytes.Buffer, extra io.Writer) io.Writer {
	if extra == nil {
		return capture
	}
	return io.MultiWriter(capture, extra)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
