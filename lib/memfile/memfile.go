// Copyright 2026 The Pocket ASI Authors
// SPDX-License-Identifier: Apache-2.0

package memfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/sys/unix"
)

// zstdDecoder is reused across calls; zstd.Decoder is safe for
// concurrent use when created with nil reader.
var zstdDecoder *zstd.Decoder

func init() {
	var err error
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("memfile: zstd decoder initialization failed: " + err.Error())
	}
}

// MemFile describes one materialized file. The descriptor stays open
// for the life of the process and across its replacement.
type MemFile struct {
	// Name is the logical base name: the source's base name, with a
	// compression suffix stripped when the source was compressed.
	Name string

	// FD is the memfd descriptor number.
	FD int

	// Size is the number of content bytes written into the descriptor.
	Size int
}

// ProcPath returns the stable handle-path reference for fd, valid in
// any process that holds (or inherited) the descriptor.
func ProcPath(fd int) string {
	return "/proc/self/fd/" + strconv.Itoa(fd)
}

// ProcPath returns the stable handle-path reference for this file.
func (f MemFile) ProcPath() string {
	return ProcPath(f.FD)
}

// Bytes reopens the descriptor through its proc path and returns the
// full content. The memfd's own offset is left untouched.
func (f MemFile) Bytes() ([]byte, error) {
	data, err := os.ReadFile(f.ProcPath())
	if err != nil {
		return nil, fmt.Errorf("reading back %s: %w", f.Name, err)
	}
	return data, nil
}

// Scan expands root/* and returns the matched paths in glob order.
// Callers must not assume any particular ordering, only completeness.
// An empty directory yields an empty, valid slice.
func Scan(root string) ([]string, error) {
	pattern := filepath.Join(root, "*")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding %s: %w", pattern, err)
	}
	return paths, nil
}

// Materialize reads the file at path into memory, creates a memfd
// holding its content, and unlinks the source. The memfd name tag is
// the logical base name; the tag is diagnostic only (it shows up in
// /proc/PID/fd listings), lookup goes through the registry.
//
// Failure leaves any previously created descriptors open: callers
// treat a mid-run failure as fatal, and discarding descriptors the
// successor might need is never correct.
func Materialize(path string) (MemFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MemFile{}, fmt.Errorf("reading %s: %w", path, err)
	}

	name, data, err := decodePayload(filepath.Base(path), data)
	if err != nil {
		return MemFile{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	fd, err := unix.MemfdCreate(name, 0)
	if err != nil {
		return MemFile{}, fmt.Errorf("memfd_create %s: %w", name, err)
	}

	if err := writeFull(fd, data); err != nil {
		return MemFile{}, fmt.Errorf("writing %s into memfd %d: %w", name, fd, err)
	}

	if err := unix.Unlink(path); err != nil {
		return MemFile{}, fmt.Errorf("unlinking %s: %w", path, err)
	}

	return MemFile{Name: name, FD: fd, Size: len(data)}, nil
}

// decodePayload strips a recognized compression suffix and returns the
// decompressed content. Unrecognized names pass through untouched.
func decodePayload(name string, data []byte) (string, []byte, error) {
	switch {
	case strings.HasSuffix(name, ".zst"):
		decoded, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return "", nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return strings.TrimSuffix(name, ".zst"), decoded, nil

	case strings.HasSuffix(name, ".lz4"):
		decoded, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return "", nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return strings.TrimSuffix(name, ".lz4"), decoded, nil

	default:
		return name, data, nil
	}
}

// writeFull writes all of data into fd, looping on short writes. A
// zero-length file produces a valid empty memfd with no write at all.
func writeFull(fd int, data []byte) error {
	for len(data) > 0 {
		n, err := unix.Write(fd, data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
