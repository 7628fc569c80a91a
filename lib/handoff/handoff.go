// Copyright 2026 The Pocket ASI Authors
// SPDX-License-Identifier: Apache-2.0

package handoff

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"

	"github.com/pikaro/pocket-asi/lib/config"
	"github.com/pikaro/pocket-asi/lib/memfile"
	"github.com/pikaro/pocket-asi/lib/registry"
)

// ErrLoaderNotFound reports that no materialized file matched the
// configured loader name. By the time this surfaces the payload files
// have already been moved off disk; their content survives only in the
// still-open descriptors of this dying process.
var ErrLoaderNotFound = errors.New("loader not found among materialized files")

// ExecError reports that process-image replacement itself failed. It
// is distinct from ordinary pipeline errors because it happens after
// the registry is published and self-removal has run: the process is
// in a state it cannot recover from and must exit non-zero.
type ExecError struct {
	Path string
	Err  error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("replacing process image with %s: %v", e.Path, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// ExecFunc has the signature of unix.Exec. Injectable so tests can
// observe the handoff without losing their own process image.
type ExecFunc func(argv0 string, argv []string, envv []string) error

// Handoff performs the terminal phase of a loader run.
type Handoff struct {
	Config   config.Config
	Registry registry.Registry
	Logger   *slog.Logger

	// SelfPath is the launcher's own executable path (argv[0]),
	// removed during self-cleanup.
	SelfPath string

	// Exec replaces the process image. Nil means unix.Exec.
	Exec ExecFunc
}

// Run executes resolve → publish → self-remove → exec. On success it
// never returns: the process is the interpreter afterwards. Every
// returned error is fatal to the run.
func (h *Handoff) Run() error {
	loaderFD, ok := h.Registry.Lookup(h.Config.Loader)
	if !ok {
		return fmt.Errorf("%s: %w", h.Config.Loader, ErrLoaderNotFound)
	}
	h.Logger.Info("resolved loader", "name", h.Config.Loader, "fd", loaderFD)

	if err := h.Registry.Publish(); err != nil {
		return err
	}
	h.Logger.Info("published registry", "entries", len(h.Registry))

	h.removeSelf()

	loaderRef := memfile.ProcPath(loaderFD)
	argv := []string{h.Config.Interpreter, loaderRef}
	h.Logger.Info("replacing process image", "interpreter", h.Config.Interpreter, "loader", loaderRef)

	execFunc := h.Exec
	if execFunc == nil {
		execFunc = unix.Exec
	}
	if err := execFunc(h.Config.Interpreter, argv, os.Environ()); err != nil {
		return &ExecError{Path: h.Config.Interpreter, Err: err}
	}
	return nil
}

// removeSelf deletes the launcher binary and the payload directory,
// which materialization has already emptied. Both are best-effort: the
// handoff proceeds regardless, there is no path back from here.
func (h *Handoff) removeSelf() {
	if err := os.Remove(h.SelfPath); err != nil {
		h.Logger.Warn("removing launcher binary", "path", h.SelfPath, "error", err)
	}
	if err := os.Remove(h.Config.Root); err != nil {
		h.Logger.Warn("removing payload directory", "path", h.Config.Root, "error", err)
	}
	h.Logger.Info("removed launcher traces", "binary", h.SelfPath, "root", h.Config.Root)
}
