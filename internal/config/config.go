package config

import (
	"fmt"
	"path/filepath"

	"cuelang.org/go/cue"
)

// Host is the wasmhost run configuration.
type Host struct {
	ConfigVersion string
	Module        string
	Args          []string
	Env           map[string]string
	TimeoutMs     int
	HasModule     bool
	HasArgs       bool
	HasEnv        bool
	HasTimeout    bool
}

// ParseHost loads a CUE config and extracts the host runner settings.
// Required fields:
//   - configVersion: string, one of SupportedConfigVersions
//
// Optional fields: module, args, env, timeoutMs.
func ParseHost(path string) (Host, error) {
	v, err := compileCUE(path)
	if err != nil {
		return Host{}, err
	}
	if err := requireStringField(v, "configVersion"); err != nil {
		return Host{}, err
	}
	var h Host
	if err := v.LookupPath(cue.ParsePath("configVersion")).Decode(&h.ConfigVersion); err != nil {
		return Host{}, fmt.Errorf("invalid value for configVersion: %v", err)
	}
	if !IsSupportedConfigVersion(h.ConfigVersion) {
		return Host{}, fmt.Errorf("unsupported configVersion: %q (supported: %s)", h.ConfigVersion, SupportedConfigVersionsCSV())
	}
	if h.Module, h.HasModule, err = parseModule(v); err != nil {
		return Host{}, err
	}
	if h.Args, h.HasArgs, err = parseArgs(v); err != nil {
		return Host{}, err
	}
	if h.Env, h.HasEnv, err = parseEnv(v); err != nil {
		return Host{}, err
	}
	if h.TimeoutMs, h.HasTimeout, err = parseTimeout(v); err != nil {
		return Host{}, err
	}
	return h, nil
}

// ResolveModule returns the module path, relative paths being taken from the
// directory of the config file at cfgPath.
func (h Host) ResolveModule(cfgPath string) string {
	if !h.HasModule || h.Module == "" {
		return ""
	}
	if filepath.IsAbs(h.Module) || cfgPath == "" {
		return h.Module
	}
	return filepath.Join(filepath.Dir(cfgPath), h.Module)
}
