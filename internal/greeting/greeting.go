// Package greeting holds the one line the hello program prints and the write
// that prints it.
package greeting

import (
	"bufio"
	"fmt"
	"io"
)

// Message is the greeting text without a line terminator.
const Message = "Hello from WASM in Docker! 🚀"

// Line is the exact byte sequence written to standard output.
const Line = Message + "\n"

// Write writes Line to w in a single buffered write and flushes it before
// returning. A short write surfaces as io.ErrShortWrite.
func Write(w io.Writer) error {
	bw := bufio.NewWriterSize(w, len(Line))
	if _, err := bw.WriteString(Line); err != nil {
		return fmt.Errorf("write greeting: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write greeting: %w", err)
	}
	return nil
}
