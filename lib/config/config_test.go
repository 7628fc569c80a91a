// Copyright 2026 The Pocket ASI Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv unsets all loader settings for the duration of the test.
// t.Setenv registers the restore; the explicit Unsetenv removes the
// value for the test body itself.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvRoot, EnvLoader, EnvInterpreter, EnvConfigFile} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestResolveFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRoot, "/srv/payload")
	t.Setenv(EnvLoader, "loader.py")
	t.Setenv(EnvInterpreter, "/usr/bin/python3")

	cfg, err := Resolve(Overrides{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Root != "/srv/payload" || cfg.Loader != "loader.py" || cfg.Interpreter != "/usr/bin/python3" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestResolveMissingSettings(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		missing string
	}{
		{
			name:    "nothing set",
			env:     nil,
			missing: EnvRoot,
		},
		{
			name:    "root only",
			env:     map[string]string{EnvRoot: "/srv/payload"},
			missing: EnvLoader,
		},
		{
			name: "interpreter missing",
			env: map[string]string{
				EnvRoot:   "/srv/payload",
				EnvLoader: "loader.py",
			},
			missing: EnvInterpreter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for name, value := range tt.env {
				t.Setenv(name, value)
			}

			_, err := Resolve(Overrides{})
			var missing *MissingSettingError
			if !errors.As(err, &missing) {
				t.Fatalf("Resolve error = %v, want MissingSettingError", err)
			}
			if missing.Setting != tt.missing {
				t.Errorf("missing setting = %s, want %s", missing.Setting, tt.missing)
			}
			if !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("error %q does not name %s", err.Error(), tt.missing)
			}
		})
	}
}

func TestResolveFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "loader.yaml")
	content := "root: /srv/payload\nloader: loader.py\ninterpreter: /usr/bin/python3\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigFile, path)

	cfg, err := Resolve(Overrides{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Root != "/srv/payload" || cfg.Loader != "loader.py" || cfg.Interpreter != "/usr/bin/python3" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestResolvePrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "loader.yaml")
	content := "root: /from/file\nloader: file.py\ninterpreter: /from/file/python\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvLoader, "env.py")
	t.Setenv(EnvInterpreter, "/from/env/python")

	cfg, err := Resolve(Overrides{Interpreter: "/from/flag/python"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Root != "/from/file" {
		t.Errorf("Root = %s, want file value", cfg.Root)
	}
	if cfg.Loader != "env.py" {
		t.Errorf("Loader = %s, want env value over file", cfg.Loader)
	}
	if cfg.Interpreter != "/from/flag/python" {
		t.Errorf("Interpreter = %s, want flag value over env and file", cfg.Interpreter)
	}
}

func TestResolveBadFileIsFatal(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRoot, "/srv/payload")
	t.Setenv(EnvLoader, "loader.py")
	t.Setenv(EnvInterpreter, "/usr/bin/python3")
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Resolve(Overrides{}); err == nil {
		t.Error("Resolve succeeded with unreadable config file")
	}
}

func TestResolveMalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "loader.yaml")
	if err := os.WriteFile(path, []byte("root: [unterminated"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Resolve(Overrides{File: path}); err == nil {
		t.Error("Resolve succeeded with malformed YAML")
	}
}
