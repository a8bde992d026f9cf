// Package testutil provides hand-assembled WASI preview1 modules for tests.
// Section contents stay under 128 bytes so every length is a single LEB128
// byte.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// EmptyModule has no exports, so instantiating it runs nothing.
func EmptyModule() []byte {
	return module()
}

// ExitModule calls proc_exit(code) from _start. code must be below 64.
func ExitModule(code byte) []byte {
	return module(
		section(0x01, 0x02, 0x60, 0x01, 0x7f, 0x00, 0x60, 0x00, 0x00),
		section(0x02, concat([]byte{0x01}, name("wasi_snapshot_preview1"), name("proc_exit"), []byte{0x00, 0x00})...),
		section(0x03, 0x01, 0x01),
		section(0x07, concat([]byte{0x01}, name("_start"), []byte{0x00, 0x01})...),
		section(0x0a, 0x01, 0x06, 0x00, 0x41, code, 0x10, 0x00, 0x0b),
	)
}

// TrapModule executes unreachable from _start.
func TrapModule() []byte {
	return module(
		section(0x01, 0x01, 0x60, 0x00, 0x00),
		section(0x03, 0x01, 0x00),
		section(0x07, concat([]byte{0x01}, name("_start"), []byte{0x00, 0x00})...),
		section(0x0a, 0x01, 0x03, 0x00, 0x00, 0x0b),
	)
}

// LoopModule spins forever in _start.
func LoopModule() []byte {
	return module(
		section(0x01, 0x01, 0x60, 0x00, 0x00),
		section(0x03, 0x01, 0x00),
		section(0x07, concat([]byte{0x01}, name("_start"), []byte{0x00, 0x00})...),
		// loop (empty block type), br 0, end, end
		section(0x0a, 0x01, 0x07, 0x00, 0x03, 0x40, 0x0c, 0x00, 0x0b, 0x0b),
	)
}

// WriteModule writes "hi\n" to fd 1 with fd_write and returns from _start.
func WriteModule() []byte {
	data := []byte{
		0x08, 0x00, 0x00, 0x00, // iovec.buf
		0x03, 0x00, 0x00, 0x00, // iovec.len
		'h', 'i', '\n',
	}
	return module(
		section(0x01, 0x02,
			0x60, 0x04, 0x7f, 0x7f, 0x7f, 0x7f, 0x01, 0x7f,
			0x60, 0x00, 0x00),
		section(0x02, concat([]byte{0x01}, name("wasi_snapshot_preview1"), name("fd_write"), []byte{0x00, 0x00})...),
		section(0x03, 0x01, 0x01),
		section(0x05, 0x01, 0x00, 0x01),
		section(0x07, concat(
			[]byte{0x02},
			name("_start"), []byte{0x00, 0x01},
			name("memory"), []byte{0x02, 0x00},
		)...),
		section(0x0a, 0x01, 0x0d,
			0x00,
			0x41, 0x01, // fd
			0x41, 0x00, // iovs
			0x41, 0x01, // iovs_len
			0x41, 0x10, // nwritten
			0x10, 0x00, // call fd_write
			0x1a, // drop
			0x0b),
		section(0x0b, concat([]byte{0x01, 0x00, 0x41, 0x00, 0x0b, byte(len(data))}, data)...),
	)
}

// WriteFile stores wasm under a fresh temp dir and returns its path.
func WriteFile(t *testing.T, fileName string, wasm []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), fileName)
	if err := os.WriteFile(p, wasm, 0o644); err != nil {
		t.Fatalf("write module: %v", err)
	}
	return p
}

func module(sections ...[]byte) []byte {
	return concat(append([][]byte{{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}}, sections...)...)
}

func section(id byte, content ...byte) []byte {
	return append([]byte{id, byte(len(content))}, content...)
}

func name(s string) []byte {
	return append([]byte{byte(len(s))}, s...)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
