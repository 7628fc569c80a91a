// Copyright 2026 The Pocket ASI Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvFiles is the environment variable carrying the encoded registry
// across the execve.
const EnvFiles = "POCKET_ASI_FILES"

// Entry is one materialized file: its logical base name and the memfd
// descriptor holding its content. Name and descriptor travel together
// as one record; entries keep materialization order.
type Entry struct {
	Name string
	FD   int
}

// Registry is the ordered collection of materialized files. The zero
// value is an empty registry.
type Registry []Entry

// EncodedLen returns the exact byte length Encode will produce:
// braces, plus per entry two quotes, a colon and the decimal digits of
// the descriptor, plus one comma between entries. Kept as a separate
// computation so the sizing arithmetic stays testable against the
// encoder itself.
func (r Registry) EncodedLen() int {
	length := 2
	for i, entry := range r {
		if i > 0 {
			length++
		}
		length += len(entry.Name) + 3 + len(strconv.Itoa(entry.FD))
	}
	return length
}

// Encode serializes the registry. The buffer is pre-sized from
// EncodedLen but grows if that ever under-counts, so a sizing bug can
// only waste an allocation, never truncate or corrupt.
func (r Registry) Encode() string {
	var buf bytes.Buffer
	buf.Grow(r.EncodedLen())
	buf.WriteByte('{')
	for i, entry := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(entry.Name)
		buf.WriteString(`":`)
		buf.WriteString(strconv.Itoa(entry.FD))
	}
	buf.WriteByte('}')
	return buf.String()
}

// Lookup returns the descriptor of the first entry named name.
func (r Registry) Lookup(name string) (int, bool) {
	for _, entry := range r {
		if entry.Name == name {
			return entry.FD, true
		}
	}
	return 0, false
}

// Publish stores the encoded registry in the process environment under
// EnvFiles. Called exactly once per run, immediately before handoff;
// this process never reads it back.
func (r Registry) Publish() error {
	if err := os.Setenv(EnvFiles, r.Encode()); err != nil {
		return fmt.Errorf("publishing registry: %w", err)
	}
	return nil
}

// FromEnv decodes the registry published by a predecessor process.
// For successor-side tooling; the launcher itself never calls it.
func FromEnv() (Registry, error) {
	value, ok := os.LookupEnv(EnvFiles)
	if !ok {
		return nil, fmt.Errorf("%s is not set", EnvFiles)
	}
	return Decode(value)
}

// Decode parses the exact grammar Encode produces. It is deliberately
// strict: whitespace, escapes and non-integer values are rejected,
// since anything but Encode's output means the channel was tampered
// with or the protocol drifted.
func Decode(encoded string) (Registry, error) {
	if len(encoded) < 2 || encoded[0] != '{' || encoded[len(encoded)-1] != '}' {
		return nil, fmt.Errorf("registry %q: not a braced object", encoded)
	}
	body := encoded[1 : len(encoded)-1]
	if body == "" {
		return Registry{}, nil
	}

	var r Registry
	for _, field := range strings.Split(body, ",") {
		name, value, ok := strings.Cut(field, `":`)
		if !ok || len(name) == 0 || name[0] != '"' {
			return nil, fmt.Errorf("registry entry %q: malformed", field)
		}
		name = name[1:]
		if strings.ContainsRune(name, '"') {
			return nil, fmt.Errorf("registry entry %q: malformed key", field)
		}
		fd, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("registry entry %q: descriptor: %w", field, err)
		}
		if fd < 0 {
			return nil, fmt.Errorf("registry entry %q: negative descriptor", field)
		}
		r = append(r, Entry{Name: name, FD: fd})
	}
	return r, nil
}
