// Copyright 2026 The Pocket ASI Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry builds and publishes the name→descriptor mapping
// the successor process uses to resolve materialized files.
//
// The wire form is fixed by the Python loader on the other side of the
// execve: a single-line JSON object with entries in materialization
// order, no whitespace, integer descriptor values —
//
//	{"a.txt":3,"loader.py":4}
//
// Two accepted constraints of that format, documented rather than
// fixed, because the consumer is external:
//
//   - Keys are written without escaping. File names containing quotes
//     or control characters would corrupt the output; payload file
//     names are assumed to be safe identifiers.
//   - Duplicate base names produce duplicate keys. The encoder emits
//     both entries; which one a JSON consumer sees is up to that
//     consumer.
//
// The encoded string is published once through the environment, which
// is the one process-local channel that survives process-image
// replacement.
package registry
