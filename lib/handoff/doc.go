// Copyright 2026 The Pocket ASI Authors
// SPDX-License-Identifier: Apache-2.0

// Package handoff implements the final protocol step: resolve the
// loader's descriptor from the registry, publish the registry into the
// environment, remove the launcher's own binary and the emptied
// payload directory, and replace the process image with the
// interpreter.
//
// Ordering is the contract. The registry must be fully published
// before execve, the loader must resolve before anything is published,
// and self-removal happens last because after it the launcher cannot
// be restarted. Self-removal is best-effort: at that point the process
// is committed to replacing itself, so removal failures are logged and
// ignored. An execve that returns is the one failure that can happen
// after the point of commitment, and it is fatal — the process exits
// non-zero rather than pretending the handoff happened.
package handoff
