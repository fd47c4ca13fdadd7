// Package archive: format chains, stream codecs, and container readers/writers
// across all supported formats
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package archive

import (
	"io/fs"
	"strconv"
	"strings"
	"time"
)

// Kind enumerates supported formats: single-stream compression codecs
// and (multi-entry) containers
type Kind uint8

const (
	KindNone Kind = iota
	Gzip
	Bzip2
	Bzip3
	Xz
	Lzma
	Lz4
	Snappy
	Zstd
	Brotli
	Tar
	Zip
	SevenZip
	Rar

	numKinds
)

// canonical (output) extensions
var kindExt = [numKinds]string{
	"", "gz", "bz2", "bz3", "xz", "lzma", "lz4", "sz", "zst", "br", "tar", "zip", "7z", "rar",
}

func (k Kind) String() string {
	if k >= numKinds {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindExt[k]
}

func (k Kind) IsContainer() bool { return k >= Tar && k < numKinds }
func (k Kind) valid() bool       { return k > KindNone && k < numKinds }

// Format is a single resolved layer: a kind and an optional compression level
type Format struct {
	Kind     Kind
	Level    int
	HasLevel bool
}

func (f Format) String() string {
	if !f.HasLevel {
		return f.Kind.String()
	}
	return f.Kind.String() + "(" + strconv.Itoa(f.Level) + ")"
}

// Chain is an ordered sequence of formats, outermost first:
// "a.tar.gz.xz" => [Xz, Gzip, Tar]
// A container, if present, is always the innermost (last) element.
type Chain []Format

func NewChain(kinds ...Kind) Chain {
	c := make(Chain, len(kinds))
	for i, k := range kinds {
		c[i] = Format{Kind: k}
	}
	return c
}

func (c Chain) Kinds() []Kind {
	kinds := make([]Kind, len(c))
	for i := range c {
		kinds[i] = c[i].Kind
	}
	return kinds
}

// Container returns the innermost container kind, if any
func (c Chain) Container() (Kind, bool) {
	if l := len(c); l > 0 && c[l-1].Kind.IsContainer() {
		return c[l-1].Kind, true
	}
	return KindNone, false
}

func (c Chain) IsArchive() bool {
	_, ok := c.Container()
	return ok
}

// Streams returns compression layers only (outermost first)
func (c Chain) Streams() Chain {
	if c.IsArchive() {
		return c[:len(c)-1]
	}
	return c
}

func (c Chain) Equal(other Chain) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i].Kind != other[i].Kind {
			return false
		}
	}
	return true
}

// Validate checks chain invariants (non-empty, container innermost)
func (c Chain) Validate() error {
	if len(c) == 0 {
		return ErrEmptyChain
	}
	for i, f := range c {
		if !f.Kind.valid() {
			return NewErrUnknownExt(f.Kind.String())
		}
		if f.Kind.IsContainer() && i != len(c)-1 {
			return ErrMisplacedContainer
		}
	}
	return nil
}

// String returns the chain in filename order, e.g. "tar.gz.xz"
func (c Chain) String() string {
	var sb strings.Builder
	for i := len(c) - 1; i >= 0; i-- {
		sb.WriteString(c[i].Kind.String())
		if i > 0 {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// Ext returns the chain as a filename suffix, e.g. ".tar.gz.xz"
func (c Chain) Ext() string {
	if len(c) == 0 {
		return ""
	}
	return "." + c.String()
}

//
// archived entries
//

type EntryKind uint8

const (
	EntryFile EntryKind = iota
	EntryDir
	EntrySymlink
	EntryHardlink
)

var entryKinds = [...]string{"file", "dir", "symlink", "hardlink"}

func (k EntryKind) String() string { return entryKinds[k] }

// Entry is a single archived item, produced and consumed in one pass.
// Name is slash-separated and relative (as recorded in the archive);
// Mode carries permission bits only.
type Entry struct {
	ModTime  time.Time
	Name     string
	Linkname string // symlink target or hardlink's (archived) name
	Size     int64
	Mode     fs.FileMode
	Kind     EntryKind
	HasMode  bool
}

func (e *Entry) IsDir() bool { return e.Kind == EntryDir }
