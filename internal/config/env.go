package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

// LoadEnvFiles reads dotenv files in order and merges them. Later files win.
func LoadEnvFiles(paths ...string) (map[string]string, error) {
	out := map[string]string{}
	for _, p := range paths {
		m, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", p, err)
		}
		for k, v := range m {
			out[k] = v
		}
	}
	return out, nil
}
