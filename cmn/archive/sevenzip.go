// Package archive: format chains, stream codecs, and container readers/writers
// across all supported formats
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package archive

import (
	"io"
	"io/fs"
	"strings"

	"github.com/bodgit/sevenzip"
)

// attributes: low 16 bits are Windows (msdos) flags; with the unix extension
// bit set, the high 16 bits carry st_mode
const (
	attrReadonly      = 0x01
	attrDirectory     = 0x10
	attrArchive       = 0x20
	attrUnixExtension = 0x8000

	unixTypeMask = 0o170000
	unixDir      = 0o040000
	unixReg      = 0o100000
	unixLink     = 0o120000
)

type sevenReader struct {
	r   *sevenzip.Reader
	f   *sevenzip.File
	cur io.ReadCloser
	idx int
}

// interface guard
var _ Reader = (*sevenReader)(nil)

func newSevenReader(ra io.ReaderAt, size int64, password string) (*sevenReader, error) {
	var (
		r   *sevenzip.Reader
		err error
	)
	if password != "" {
		r, err = sevenzip.NewReaderWithPassword(ra, size, password)
	} else {
		r, err = sevenzip.NewReader(ra, size)
	}
	if err != nil {
		return nil, classifyRA(SevenZip, err)
	}
	return &sevenReader{r: r}, nil
}

func decodeAttrs(attr uint32) (kind EntryKind, perm fs.FileMode, hasMode bool) {
	if attr&attrUnixExtension != 0 {
		mode := attr >> 16
		perm, hasMode = fs.FileMode(mode).Perm(), true
		switch mode & unixTypeMask {
		case unixDir:
			return EntryDir, perm, hasMode
		case unixLink:
			return EntrySymlink, perm, hasMode
		}
	}
	if attr&attrDirectory != 0 {
		kind = EntryDir
	}
	return kind, perm, hasMode
}

func (sr *sevenReader) Next() (*Entry, error) {
	if err := sr.closeCur(); err != nil {
		return nil, err
	}
	if sr.idx >= len(sr.r.File) {
		return nil, io.EOF
	}
	f := sr.r.File[sr.idx]
	sr.idx++
	sr.f = f

	kind, perm, hasMode := decodeAttrs(f.Attributes)
	e := &Entry{
		Name:    strings.TrimSuffix(f.Name, "/"),
		Size:    int64(f.UncompressedSize),
		ModTime: f.Modified,
		Mode:    perm,
		HasMode: hasMode,
		Kind:    kind,
	}
	switch kind {
	case EntryDir:
		e.Size = 0
		sr.f = nil
	case EntrySymlink:
		target, err := sr.readLink()
		if err != nil {
			return nil, err
		}
		e.Size, e.Linkname = 0, target
	}
	return e, nil
}

func (sr *sevenReader) readLink() (string, error) {
	rc, err := sr.f.Open()
	if err != nil {
		return "", classifyRA(SevenZip, err)
	}
	b, err := io.ReadAll(io.LimitReader(rc, maxLinkname))
	rc.Close()
	if err != nil {
		return "", classifyRA(SevenZip, err)
	}
	sr.f = nil
	return string(b), nil
}

func (sr *sevenReader) Read(p []byte) (int, error) {
	if sr.cur == nil {
		if sr.f == nil {
			return 0, io.EOF
		}
		rc, err := sr.f.Open()
		if err != nil {
			return 0, classifyRA(SevenZip, err)
		}
		sr.cur = rc
	}
	n, err := sr.cur.Read(p)
	if err != nil && err != io.EOF {
		err = classifyRA(SevenZip, err)
	}
	return n, err
}

func (sr *sevenReader) closeCur() (err error) {
	if sr.cur != nil {
		err = sr.cur.Close()
		sr.cur = nil
	}
	sr.f = nil
	return
}

func (sr *sevenReader) Close() error { return sr.closeCur() }
