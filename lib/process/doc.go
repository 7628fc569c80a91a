// Copyright 2026 The Pocket ASI Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. Fatal is the
// standard error handler for main(): every failure path in the loader
// funnels through it, so a failed run always produces exactly one
// "error:" line on stderr and exit status 1.
package process
