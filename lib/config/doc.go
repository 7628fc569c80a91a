// Copyright 2026 The Pocket ASI Authors
// SPDX-License-Identifier: Apache-2.0

// Package config resolves the three settings the loader needs: the
// payload root directory, the base name of the loader file inside it,
// and the interpreter to hand off to.
//
// Settings come from, in order of precedence:
//
//  1. command-line flags (--root, --loader, --interpreter),
//  2. the POCKET_ASI_ROOT, POCKET_ASI_LOADER and POCKET_ASI_PYTHON
//     environment variables,
//  3. an optional YAML file named by POCKET_ASI_CONFIG or --config.
//
// There are no fallbacks, no file discovery and no defaults: a setting
// that remains empty after merging is a fatal error naming exactly that
// setting. Resolution happens once at startup; the resulting Config is
// passed by value and never mutated.
package config
