// Copyright 2026 The Pocket ASI Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variable names. EnvInterpreter keeps the original
// POCKET_ASI_PYTHON name even though any interpreter path is accepted:
// deployed payload images already set it.
const (
	EnvRoot        = "POCKET_ASI_ROOT"
	EnvLoader      = "POCKET_ASI_LOADER"
	EnvInterpreter = "POCKET_ASI_PYTHON"
	EnvConfigFile  = "POCKET_ASI_CONFIG"
)

// Config holds the resolved settings for one loader run.
type Config struct {
	// Root is the directory whose files are materialized into memory.
	Root string `yaml:"root"`

	// Loader is the base name of the file whose descriptor is handed
	// to the interpreter as its entry point.
	Loader string `yaml:"loader"`

	// Interpreter is the executable that replaces this process.
	Interpreter string `yaml:"interpreter"`
}

// Overrides carries explicit values from command-line flags. Empty
// fields defer to the environment and the config file.
type Overrides struct {
	Root        string
	Loader      string
	Interpreter string

	// File is an explicit config file path, taking precedence over
	// POCKET_ASI_CONFIG.
	File string
}

// MissingSettingError reports a setting that has no value from any
// source. Setting is the environment variable name, which is how the
// deployment documentation refers to settings.
type MissingSettingError struct {
	Setting string
}

func (e *MissingSettingError) Error() string {
	return fmt.Sprintf("%s is not set", e.Setting)
}

// Resolve merges the three sources and validates the result. The file
// layer is loaded only when a path is given explicitly or via
// POCKET_ASI_CONFIG; a named file that cannot be read or parsed is
// fatal, never skipped.
func Resolve(overrides Overrides) (Config, error) {
	var cfg Config

	file := overrides.File
	if file == "" {
		file = os.Getenv(EnvConfigFile)
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", file, err)
		}
	}

	applyEnv(&cfg.Root, EnvRoot)
	applyEnv(&cfg.Loader, EnvLoader)
	applyEnv(&cfg.Interpreter, EnvInterpreter)

	apply(&cfg.Root, overrides.Root)
	apply(&cfg.Loader, overrides.Loader)
	apply(&cfg.Interpreter, overrides.Interpreter)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Root == "" {
		return &MissingSettingError{Setting: EnvRoot}
	}
	if c.Loader == "" {
		return &MissingSettingError{Setting: EnvLoader}
	}
	if c.Interpreter == "" {
		return &MissingSettingError{Setting: EnvInterpreter}
	}
	return nil
}

func applyEnv(field *string, name string) {
	apply(field, os.Getenv(name))
}

func apply(field *string, value string) {
	if value != "" {
		*field = value
	}
}
