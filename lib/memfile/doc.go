// Copyright 2026 The Pocket ASI Authors
// SPDX-License-Identifier: Apache-2.0

// Package memfile moves on-disk files into anonymous memory-backed
// file descriptors (memfd_create). A materialized file has no
// directory entry: its content lives in volatile memory, reachable
// only through the descriptor and its /proc/self/fd path, and the
// source file is unlinked as part of materialization.
//
// Descriptors are created without MFD_CLOEXEC and are deliberately
// never closed here. The whole point is that they survive the execve
// that replaces this process, so the successor can reopen them through
// the /proc/self/fd references published in the registry.
//
// Payload files may ship compressed: a source named *.zst or *.lz4
// (standard zstd/lz4 frame format, as produced by the zstd and lz4
// CLIs) is decompressed during materialization and registered under
// its name with the suffix stripped.
//
// Linux-only, like the rest of this module.
package memfile
