// Copyright 2026 The Pocket ASI Authors
// SPDX-License-Identifier: Apache-2.0

package logline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Handler is a slog.Handler that writes single fixed-layout diagnostic
// lines. It is safe for concurrent use; each record is written with one
// Write call so lines from multiple goroutines never interleave.
type Handler struct {
	mu        *sync.Mutex
	out       io.Writer
	component string
	level     slog.Leveler
	attrs     []slog.Attr
	groups    []string

	// now overrides the record timestamp when the record carries none.
	// Injectable for tests.
	now func() time.Time
}

// New returns a Handler writing to out, tagged with component (the
// third column of every line). Records below slog.LevelInfo are
// dropped.
func New(out io.Writer, component string) *Handler {
	return &Handler{
		mu:        &sync.Mutex{},
		out:       out,
		component: component,
		level:     slog.LevelInfo,
		now:       time.Now,
	}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler. The timestamp column is coarse on
// purpose: the launcher lives for well under a minute, and the Python
// logs it interleaves with use the same minute:second format.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	when := record.Time
	if when.IsZero() {
		when = h.now()
	}

	var line strings.Builder
	fmt.Fprintf(&line, "%-9s - %-8s - %-8s - %s",
		when.Format("04:05.000"), record.Level.String(), h.component, record.Message)

	for _, attr := range h.attrs {
		appendAttr(&line, "", attr)
	}
	prefix := strings.Join(h.groups, ".")
	record.Attrs(func(attr slog.Attr) bool {
		appendAttr(&line, prefix, attr)
		return true
	})
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line.String())
	return err
}

// WithAttrs implements slog.Handler. Attribute keys are qualified with
// the open groups at the time of the call, so later WithGroup calls do
// not retroactively rename them.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr(nil), h.attrs...)
	prefix := strings.Join(h.groups, ".")
	for _, attr := range attrs {
		if prefix != "" {
			attr.Key = prefix + "." + attr.Key
		}
		clone.attrs = append(clone.attrs, attr)
	}
	return &clone
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func appendAttr(line *strings.Builder, prefix string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	key := attr.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindString && strings.ContainsAny(value.String(), " \t") {
		fmt.Fprintf(line, " %s=%q", key, value.String())
		return
	}
	fmt.Fprintf(line, " %s=%v", key, value.Any())
}
