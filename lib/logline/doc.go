// Copyright 2026 The Pocket ASI Authors
// SPDX-License-Identifier: Apache-2.0

// Package logline provides the slog.Handler used by pocket-asi
// launcher binaries. It renders one diagnostic line per record on the
// error stream, in the fixed column layout the Python side of the
// system uses for its own logs:
//
//	MM:SS.000 - LEVEL    - component - message key=value ...
//
// The timestamp is coarse (minute and second only). Logging is
// diagnostic output, not part of any protocol: consumers must never
// parse these lines.
package logline
