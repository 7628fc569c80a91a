// Copyright 2026 The Pocket ASI Authors
// SPDX-License-Identifier: Apache-2.0

// pocket-loader bootstraps a payload whose files must not persist on
// disk. It moves every file in the payload root into an anonymous
// memory-backed descriptor, deletes the originals, publishes a
// name→descriptor registry through the environment, removes its own
// binary and the emptied root, and replaces itself with the configured
// interpreter, handing over the designated loader file by its
// /proc/self/fd reference.
//
// Usage:
//
//	POCKET_ASI_ROOT=/srv/payload \
//	POCKET_ASI_LOADER=loader.py \
//	POCKET_ASI_PYTHON=/usr/bin/python3 pocket-loader
//
// Flags (--root, --loader, --interpreter, --config) override the
// environment; see lib/config for the full precedence rules.
//
// The run is all-or-nothing. Any failure before the execve exits with
// status 1; exit status 0 is only ever observed as the exit of the
// successor process.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/pikaro/pocket-asi/lib/config"
	"github.com/pikaro/pocket-asi/lib/handoff"
	"github.com/pikaro/pocket-asi/lib/logline"
	"github.com/pikaro/pocket-asi/lib/memfile"
	"github.com/pikaro/pocket-asi/lib/process"
	"github.com/pikaro/pocket-asi/lib/registry"
	"github.com/pikaro/pocket-asi/lib/version"
)

func main() {
	if err := run(os.Args[0], os.Args[1:], nil); err != nil {
		process.Fatal(err)
	}
}

// run is the whole pipeline: resolve config, scan, materialize, hand
// off. selfPath is the launcher's own binary (removed during handoff)
// and execFunc overrides the real execve in tests.
func run(selfPath string, args []string, execFunc handoff.ExecFunc) error {
	var overrides config.Overrides
	var showVersion bool

	flagSet := pflag.NewFlagSet("pocket-loader", pflag.ContinueOnError)
	flagSet.StringVar(&overrides.Root, "root", "", "payload directory (overrides "+config.EnvRoot+")")
	flagSet.StringVar(&overrides.Loader, "loader", "", "loader base name (overrides "+config.EnvLoader+")")
	flagSet.StringVar(&overrides.Interpreter, "interpreter", "", "interpreter path (overrides "+config.EnvInterpreter+")")
	flagSet.StringVar(&overrides.File, "config", "", "YAML config file (overrides "+config.EnvConfigFile+")")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Printf("pocket-loader %s\n", version.Info())
		return nil
	}

	logger := slog.New(logline.New(os.Stderr, "loader"))
	slog.SetDefault(logger)

	logger.Info("starting pocket-loader", "version", version.Info())

	cfg, err := config.Resolve(overrides)
	if err != nil {
		return err
	}
	logger.Info("looking for loader", "name", cfg.Loader, "root", cfg.Root)

	paths, err := memfile.Scan(cfg.Root)
	if err != nil {
		return err
	}
	logger.Info("scanned payload directory", "root", cfg.Root, "files", len(paths))

	reg := make(registry.Registry, 0, len(paths))
	for _, path := range paths {
		file, err := memfile.Materialize(path)
		if err != nil {
			return err
		}
		logger.Info("moved file into memory",
			"path", path, "name", file.Name, "fd", file.FD, "bytes", file.Size)
		reg = append(reg, registry.Entry{Name: file.Name, FD: file.FD})
	}

	h := &handoff.Handoff{
		Config:   cfg,
		Registry: reg,
		Logger:   logger,
		SelfPath: selfPath,
		Exec:     execFunc,
	}
	return h.Run()
}
