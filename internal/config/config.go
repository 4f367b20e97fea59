// Package config reads the optimization run configuration from JSON.
// Semantic validation against the player pool happens in the optimizer; this
// package only decodes and rejects malformed or unknown fields.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hooplab/rosteropt/internal/types"
)

// Read decodes a run config from JSON. Unknown fields are rejected so typos
// fail loudly instead of silently falling back to defaults.
func Read(r io.Reader) (types.Config, error) {
	var cfg types.Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("parse config: %w", err)
	}
	// Anything after the config document is a mistake.
	if dec.More() {
		return types.Config{}, fmt.Errorf("parse config: trailing data after config object")
	}
	return cfg, nil
}

// Load reads a run config from a JSON file.
func Load(path string) (types.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Config{}, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()
	return Read(f)
}
