// Package buildconfig loads a project-level fscconfig.yaml: where to write
// generated C, what extra headers every translation unit should #include,
// and whether to carry doc comments through into the generated file.
//
// Grounded on the teacher's internal/ext/config.go: a yaml.v3-tagged struct
// loaded with a single Unmarshal call and defaulted field-by-field after.
package buildconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level fscconfig.yaml shape.
type Config struct {
	// OutDir is where generated .c files are written, relative to the
	// config file's directory. Defaults to "." when empty.
	OutDir string `yaml:"out_dir,omitempty"`

	// Includes lists extra `#include` directives (already bracketed or
	// quoted, e.g. "<gc.h>"). It is loaded but not applied: the code
	// generator does not read it, and generated output carries only the
	// compiler's own stdio.h/stdlib.h/string.h.
	Includes []string `yaml:"includes,omitempty"`

	// EmitComments is loaded but not applied: the code generator does not
	// read it and never annotates generated declarations with source names.
	EmitComments bool `yaml:"emit_comments,omitempty"`
}

// Default returns the configuration used when no fscconfig.yaml is found.
func Default() *Config {
	return &Config{OutDir: "."}
}

// Load reads and parses the config file at path. A missing file is not an
// error: callers get Default() back.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	return cfg, nil
}
