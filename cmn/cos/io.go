// Package cos provides common low-level types and utilities for all ouch packages
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// POSIX permissions
const (
	PermRWRR    os.FileMode = 0o644
	PermRWXRX   os.FileMode = 0o750
	PermRWXRXRX os.FileMode = 0o755
)

const PathSeparator = string(filepath.Separator)

// prefix of all temporary files and directories created next to their destinations
const TmpPrefix = ".ouch-"

var errInvalidWrite = errors.New("invalid write result")

type (
	// WriterOnly hides `io.ReaderFrom` of the underlying writer (e.g. *os.File)
	// to always copy via the provided buffer
	WriterOnly struct{ io.Writer }

	// ProgressFunc receives the cumulative number of bytes
	ProgressFunc func(n int64)

	// CallbackReader reports bytes read as they go
	CallbackReader struct {
		r    io.Reader
		cb   ProgressFunc
		done int64
	}
)

func NewCallbackReader(r io.Reader, cb ProgressFunc) io.Reader {
	if cb == nil {
		return r
	}
	return &CallbackReader{r: r, cb: cb}
}

func (r *CallbackReader) Read(p []byte) (n int, err error) {
	n, err = r.r.Read(p)
	if n > 0 {
		r.done += int64(n)
		r.cb(r.done)
	}
	return n, err
}

// ExpandPath resolves leading `~` (current user's home) and cleans the result
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return filepath.Clean(path)
	}
	u, err := user.Current()
	if err != nil || u.HomeDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(u.HomeDir, strings.TrimPrefix(path, "~"))
}

// CreateTempNear creates a temporary file in the same directory as `dst`
// (same filesystem, so that the final rename is atomic)
func CreateTempNear(dst string) (*os.File, error) {
	dir, base := filepath.Split(dst)
	if dir == "" {
		dir = "."
	}
	return os.CreateTemp(dir, TmpPrefix+base+".*")
}

// IsTempName returns true for temporary files and directories named with TmpPrefix
func IsTempName(name string) bool { return strings.HasPrefix(filepath.Base(name), TmpPrefix) }

// SaveReaderSafe writes the reader into a temporary file next to `fqn`,
// applies `perm`, and renames the result into place; on error, nothing is left behind
func SaveReaderSafe(fqn string, reader io.Reader, buf []byte, perm os.FileMode) (written int64, err error) {
	fh, err := CreateTempNear(fqn)
	if err != nil {
		return 0, err
	}
	tmp := fh.Name()
	written, err = CopyBuffer(WriterOnly{fh}, reader, buf)
	if erc := FlushClose(fh); err == nil && erc != nil {
		err = fmt.Errorf("failed to close %q: %w", tmp, erc)
	}
	if err == nil {
		err = os.Chmod(tmp, perm)
	}
	if err == nil {
		err = os.Rename(tmp, fqn)
	}
	if err != nil {
		os.Remove(tmp)
	}
	return written, err
}

// CopyBuffer copies via the caller's buffer, never via `io.WriterTo` or
// `io.ReaderFrom` (see WriterOnly); the buffer is required
func CopyBuffer(dst io.Writer, src io.Reader, buf []byte) (written int64, err error) {
	for {
		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[:nr])
			if nw < 0 || nw > nr {
				return written, errInvalidWrite
			}
			written += int64(nw)
			switch {
			case ew != nil:
				return written, ew
			case nw != nr:
				return written, io.ErrShortWrite
			}
		}
		switch {
		case er == io.EOF:
			return written, nil
		case er != nil:
			return written, er
		}
	}
}

func FlushClose(file *os.File) (err error) {
	if fsyncEnabled {
		err = file.Sync()
	}
	if erc := file.Close(); err == nil {
		err = erc
	}
	return
}

// NOTE: file.Close() does not imply flushing dirty pages
// (see https://lwn.net/Articles/788938); enable via OUCH_FSYNC=true
var fsyncEnabled = os.Getenv("OUCH_FSYNC") == "true"
