// Package report writes the YAML summary of a wasmhost run.
package report

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hwclass/docker-beta-wasm-example/internal/buildinfo"
	"github.com/hwclass/docker-beta-wasm-example/internal/host"
)

// Report is the outcome of one module run.
type Report struct {
	Module      string
	Args        []string
	Env         map[string]string
	ExitCode    uint32
	Trapped     bool
	StdoutBytes int
	StderrBytes int
	Duration    time.Duration
	Version     string
	Error       string
}

// FromResult builds a Report for a finished run. runErr may be nil.
func FromResult(module string, opts host.Options, res host.Result, runErr error) Report {
	r := Report{
		Module:      module,
		Args:        opts.Args,
		Env:         opts.Env,
		ExitCode:    res.ExitCode,
		Trapped:     res.Trapped,
		StdoutBytes: len(res.Stdout),
		StderrBytes: len(res.Stderr),
		Duration:    res.Duration,
		Version:     buildinfo.Summary(),
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	return r
}

// Marshal returns canonical YAML: fixed key order, sorted env keys, two-space
// indent and exactly one trailing newline.
func Marshal(r Report) ([]byte, error) {
	top := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, v *yaml.Node) {
		top.Content = append(top.Content, scalarNode(key), v)
	}
	add("module", scalarFrom(r.Module))
	add("args", sequenceNode(r.Args))
	add("env", canonicalMapNode(r.Env))
	add("exitCode", scalarFrom(r.ExitCode))
	add("trapped", scalarFrom(r.Trapped))
	add("stdoutBytes", scalarFrom(r.StdoutBytes))
	add("stderrBytes", scalarFrom(r.StderrBytes))
	add("durationMs", scalarFrom(r.Duration.Milliseconds()))
	add("version", scalarFrom(r.Version))
	if r.Error != "" {
		add("error", scalarFrom(r.Error))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(top); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	out = append(out, '\n')
	return out, nil
}

// Write writes the canonical report to path, creating parent directories.
func Write(path string, r Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func scalarFrom(v any) *yaml.Node {
	n := &yaml.Node{}
	_ = n.Encode(v)
	return n
}

func sequenceNode(items []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, it := range items {
		n.Content = append(n.Content, scalarFrom(it))
	}
	return n
}

func canonicalMapNode(m map[string]string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	if len(m) == 0 {
		n.Style = yaml.FlowStyle
		return n
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Content = append(n.Content, scalarNode(k), scalarFrom(m[k]))
	}
	return n
}
