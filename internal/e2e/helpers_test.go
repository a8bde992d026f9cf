package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

type runResult struct {
	code   int
	stdout []byte
	stderr []byte
}

type target struct {
	pkg    string
	goos   string
	goarch string
}

var (
	binMu    sync.Mutex
	binDir   string
	binCache = map[target]string{}
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "wasm-e2e-bin")
	if err != nil {
		panic(err)
	}
	binDir = dir
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// build compiles pkg (relative to the module root) once per target.
func build(t *testing.T, tg target) string {
	t.Helper()
	binMu.Lock()
	defer binMu.Unlock()
	if bin, ok := binCache[tg]; ok {
		return bin
	}
	name := filepath.Base(tg.pkg)
	if tg.goos != "" {
		name += "-" + tg.goos + "-" + tg.goarch
	}
	switch {
	case tg.goos == "wasip1":
		name += ".wasm"
	case tg.goos == "" && runtime.GOOS == "windows":
		name += ".exe"
	}
	bin := filepath.Join(binDir, name)
	cmd := exec.Command("go", "build", "-o", bin, tg.pkg)
	cmd.Dir = filepath.Join("..", "..")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	if tg.goos != "" {
		cmd.Env = append(cmd.Env, "GOOS="+tg.goos, "GOARCH="+tg.goarch)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("build %s failed: %v\n%s", tg.pkg, err, string(out))
	}
	binCache[tg] = bin
	return bin
}

func buildHello(t *testing.T) string {
	return build(t, target{pkg: "./cmd/hello"})
}

func buildHelloWasm(t *testing.T) string {
	return build(t, target{pkg: "./cmd/hello", goos: "wasip1", goarch: "wasm"})
}

func buildWasmHost(t *testing.T) string {
	return build(t, target{pkg: "./cmd/wasmhost"})
}

// runCmd runs bin with an empty environment. A nil stdout is captured.
func runCmd(t *testing.T, stdout *os.File, bin string, args ...string) runResult {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Env = []string{}
	var out, errOut bytes.Buffer
	if stdout != nil {
		cmd.Stdout = stdout
	} else {
		cmd.Stdout = &out
	}
	cmd.Stderr = &errOut
	err := cmd.Run()
	code := 0
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			code = ee.ExitCode()
		} else {
			t.Fatalf("run %s: %v", bin, err)
		}
	}
	return runResult{code: code, stdout: out.Bytes(), stderr: errOut.Bytes()}
}

func assertStable(t *testing.T, runs []runResult) {
	t.Helper()
	if len(runs) < 2 {
		t.Fatalf("need >=2 runs")
	}
	a := runs[0]
	for i, r := range runs[1:] {
		if r.code != a.code {
			t.Fatalf("exit code drift at run %d: %d vs %d", i+1, r.code, a.code)
		}
		if !bytes.Equal(r.stdout, a.stdout) {
			t.Fatalf("stdout drift at run %d", i+1)
		}
		if !bytes.Equal(r.stderr, a.stderr) {
			t.Fatalf("stderr drift at run %d", i+1)
		}
	}
}
