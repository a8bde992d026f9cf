package host

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hwclass/docker-beta-wasm-example/internal/testutil"
)

func TestRun_EmptyModule(t *testing.T) {
	res, err := Run(context.Background(), testutil.EmptyModule(), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.ExitCode != 0 || res.Trapped {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Stdout) != 0 || len(res.Stderr) != 0 {
		t.Fatalf("unexpected output: %q %q", res.Stdout, res.Stderr)
	}
}

func TestRun_CapturesStdout(t *testing.T) {
	var live bytes.Buffer
	res, err := Run(context.Background(), testutil.WriteModule(), Options{Stdout: &live})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if string(res.Stdout) != "hi\n" {
		t.Fatalf("unexpected captured stdout: %q", res.Stdout)
	}
	if live.String() != "hi\n" {
		t.Fatalf("unexpected streamed stdout: %q", live.String())
	}
}

func TestRun_ExitCodeIsNotAnError(t *testing.T) {
	res, err := Run(context.Background(), testutil.ExitModule(3), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.ExitCode != 3 || res.Trapped {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRun_ExitZero(t *testing.T) {
	res, err := Run(context.Background(), testutil.ExitModule(0), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("unexpected exit code: %d", res.ExitCode)
	}
}

func TestRun_Trap(t *testing.T) {
	res, err := Run(context.Background(), testutil.TrapModule(), Options{})
	if !errors.Is(err, ErrTrap) {
		t.Fatalf("expected trap, got %v", err)
	}
	if !res.Trapped {
		t.Fatalf("expected trapped result")
	}
}

func TestRun_Timeout(t *testing.T) {
	_, err := Run(context.Background(), testutil.LoopModule(), Options{Timeout: 50 * time.Millisecond})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if err.Error() != "timeout after 50ms" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRun_InvalidModule(t *testing.T) {
	_, err := Run(context.Background(), []byte("not wasm"), Options{})
	if err == nil || !strings.HasPrefix(err.Error(), "compile module: ") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunFile_Missing(t *testing.T) {
	_, err := RunFile(context.Background(), filepath.Join(t.TempDir(), "absent.wasm"), Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist, got %v", err)
	}
}

func TestRunFile_ReadsModule(t *testing.T) {
	p := testutil.WriteFile(t, "hi.wasm", testutil.WriteModule())
	res, err := RunFile(context.Background(), p, Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if string(res.Stdout) != "hi\n" {
		t.Fatalf("unexpected stdout: %q", res.Stdout)
	}
}

func TestSortedKeys(t *testing.T) {
	got := sortedKeys(map[string]string{"b": "2", "a": "1", "c": "3"})
	if strings.Join(got, ",") != "a,b,c" {
		t.Fatalf("unexpected order: %v", got)
	}
}
