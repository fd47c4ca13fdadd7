// Package archive: format chains, stream codecs, and container readers/writers
// across all supported formats
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package archive

import (
	"archive/tar"
	"errors"
	"io"
	"io/fs"
	"strings"

	"github.com/NVIDIA/ouch/cmn/debug"
	"github.com/NVIDIA/ouch/cmn/nlog"

	"github.com/klauspost/compress/zip"
)

// Reader iterates archived entries in a single pass (the sequence is not
// restartable); Read returns the content of the current entry
type Reader interface {
	// Next advances to the next entry, io.EOF when done
	Next() (*Entry, error)
	// Read reads the current entry
	io.Reader
	Close() error
}

// max symlink target stored as entry content (zip, 7z)
const maxLinkname = 4096

type (
	tarReader struct {
		tr  *tar.Reader
		src *srcTracker
	}
	zipReader struct {
		zr  *zip.Reader
		f   *zip.File
		cur io.ReadCloser
		idx int
	}
)

// interface guard
var (
	_ Reader = (*tarReader)(nil)
	_ Reader = (*zipReader)(nil)
)

///////////////
// tarReader //
///////////////

func newTarReader(r io.Reader) *tarReader {
	src := &srcTracker{r: r}
	return &tarReader{tr: tar.NewReader(src), src: src}
}

func (tr *tarReader) Next() (*Entry, error) {
	for {
		hdr, err := tr.tr.Next()
		if err != nil {
			return nil, tr.src.classify(Tar, err)
		}
		e := &Entry{
			Name:     hdr.Name,
			Size:     hdr.Size,
			ModTime:  hdr.ModTime,
			Mode:     fs.FileMode(hdr.Mode).Perm(),
			HasMode:  true,
			Linkname: hdr.Linkname,
		}
		switch hdr.Typeflag {
		case tar.TypeReg, tar.TypeCont, tar.TypeGNUSparse:
			e.Kind = EntryFile
		case tar.TypeDir:
			e.Kind, e.Size = EntryDir, 0
			e.Name = strings.TrimSuffix(e.Name, "/")
		case tar.TypeSymlink:
			e.Kind, e.Size = EntrySymlink, 0
		case tar.TypeLink:
			e.Kind, e.Size = EntryHardlink, 0
		case tar.TypeXGlobalHeader:
			continue
		default:
			nlog.Warningf("tar: skipping %q (unsupported type %q)", hdr.Name, hdr.Typeflag)
			continue
		}
		return e, nil
	}
}

func (tr *tarReader) Read(p []byte) (int, error) {
	n, err := tr.tr.Read(p)
	return n, tr.src.classify(Tar, err)
}

func (*tarReader) Close() error { return nil }

///////////////
// zipReader //
///////////////

// zip flag bit 0: encrypted entry
const zipFlagEncrypted = 0x1

// unix creator (upper byte of "version made by")
const (
	zipCreatorUnix   = 3
	zipCreatorDarwin = 19
)

func newZipReader(ra io.ReaderAt, size int64) (*zipReader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, classifyRA(Zip, err)
	}
	return &zipReader{zr: zr}, nil
}

func (zr *zipReader) Next() (*Entry, error) {
	if err := zr.closeCur(); err != nil {
		return nil, err
	}
	if zr.idx >= len(zr.zr.File) {
		return nil, io.EOF
	}
	f := zr.zr.File[zr.idx]
	zr.idx++
	zr.f = f

	if f.Flags&zipFlagEncrypted != 0 {
		return nil, NewErrUnsupportedOperation("reading encrypted entry "+f.Name, Zip)
	}
	var (
		mode    = f.Mode()
		creator = f.CreatorVersion >> 8
		e       = &Entry{
			Name:    strings.TrimSuffix(f.Name, "/"),
			Size:    int64(f.UncompressedSize64),
			ModTime: f.Modified,
			Mode:    mode.Perm(),
			HasMode: creator == zipCreatorUnix || creator == zipCreatorDarwin,
		}
	)
	switch {
	case mode.IsDir() || strings.HasSuffix(f.Name, "/"):
		e.Kind, e.Size = EntryDir, 0
	case mode&fs.ModeSymlink != 0:
		target, err := zr.readLink()
		if err != nil {
			return nil, err
		}
		e.Kind, e.Size, e.Linkname = EntrySymlink, 0, target
	default:
		e.Kind = EntryFile
	}
	return e, nil
}

func (zr *zipReader) readLink() (string, error) {
	rc, err := zr.f.Open()
	if err != nil {
		return "", classifyRA(Zip, err)
	}
	b, err := io.ReadAll(io.LimitReader(rc, maxLinkname))
	rc.Close()
	if err != nil {
		return "", classifyRA(Zip, err)
	}
	zr.f = nil // consumed
	return string(b), nil
}

// lazily open upon first read
func (zr *zipReader) Read(p []byte) (int, error) {
	if zr.cur == nil {
		if zr.f == nil {
			return 0, io.EOF
		}
		rc, err := zr.f.Open()
		if err != nil {
			return 0, classifyRA(Zip, err)
		}
		zr.cur = rc
	}
	n, err := zr.cur.Read(p)
	if err != nil && err != io.EOF {
		err = classifyRA(Zip, err)
	}
	return n, err
}

func (zr *zipReader) closeCur() (err error) {
	if zr.cur != nil {
		err = zr.cur.Close()
		zr.cur = nil
	}
	zr.f = nil
	return
}

func (zr *zipReader) Close() error { return zr.closeCur() }

// random-access (file-backed) containers: path errors are I/O, the rest is corruption
func classifyRA(layer Kind, err error) error {
	var (
		perr *fs.PathError
		cerr *ErrCorrupt
	)
	if errors.As(err, &perr) || errors.As(err, &cerr) || IsErrUnsupportedOperation(err) {
		return err
	}
	debug.Assert(err != io.EOF)
	return NewErrCorrupt(layer, err)
}
