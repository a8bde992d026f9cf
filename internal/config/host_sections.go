package config

import (
	"fmt"

	"cuelang.org/go/cue"
)

func parseModule(v cue.Value) (string, bool, error) {
	f, ok, err := optionalField(v, "module", cue.StringKind, "string")
	if err != nil || !ok {
		return "", false, err
	}
	var s string
	if err := f.Decode(&s); err != nil {
		return "", false, fmt.Errorf("invalid value for module: %v", err)
	}
	return s, true, nil
}

func parseArgs(v cue.Value) ([]string, bool, error) {
	f, ok, err := optionalField(v, "args", cue.ListKind, "list of strings")
	if err != nil || !ok {
		return nil, false, err
	}
	var args []string
	if err := f.Decode(&args); err != nil {
		return nil, false, fmt.Errorf("invalid value for args: %v", err)
	}
	return args, true, nil
}

func parseEnv(v cue.Value) (map[string]string, bool, error) {
	f, ok, err := optionalField(v, "env", cue.StructKind, "struct of strings")
	if err != nil || !ok {
		return nil, false, err
	}
	env := map[string]string{}
	if err := f.Decode(&env); err != nil {
		return nil, false, fmt.Errorf("invalid value for env: %v", err)
	}
	return env, true, nil
}

func parseTimeout(v cue.Value) (int, bool, error) {
	f, ok, err := optionalField(v, "timeoutMs", cue.IntKind, "int")
	if err != nil || !ok {
		return 0, false, err
	}
	var ms int
	if err := f.Decode(&ms); err != nil {
		return 0, false, fmt.Errorf("invalid value for timeoutMs: %v", err)
	}
	if ms < 0 {
		return 0, false, fmt.Errorf("invalid value for timeoutMs: %d (expected >= 0)", ms)
	}
	return ms, true, nil
}
