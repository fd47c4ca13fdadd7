// Package archive: format chains, stream codecs, and container readers/writers
// across all supported formats
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package archive

import (
	"archive/tar"
	"io"
	"io/fs"
	"strings"

	"github.com/NVIDIA/ouch/cmn/cos"
	"github.com/NVIDIA/ouch/cmn/debug"

	"github.com/klauspost/compress/zip"
)

// Writer appends entries, one at a time; Close flushes the index/footer
// (but does not close the underlying writer)
type Writer interface {
	// r is nil for directories and links
	Append(e *Entry, r io.Reader) error
	// whether hardlink entries can be represented
	Hardlinks() bool
	Close() error
}

const copyBufSize = 32 * cos.KiB

type (
	baseW struct {
		buf []byte
	}
	tarWriter struct {
		tw *tar.Writer
		baseW
	}
	zipWriter struct {
		zw *zip.Writer
		baseW
	}
)

// interface guard
var (
	_ Writer = (*tarWriter)(nil)
	_ Writer = (*zipWriter)(nil)
)

func (bw *baseW) copy(dst io.Writer, r io.Reader) (int64, error) {
	if bw.buf == nil {
		bw.buf = make([]byte, copyBufSize)
	}
	return cos.CopyBuffer(dst, r, bw.buf)
}

// permission bits to archive: as is, or the common default
func permOf(e *Entry) fs.FileMode {
	switch {
	case e.HasMode:
		return e.Mode.Perm()
	case e.Kind == EntryDir:
		return cos.PermRWXRX
	default:
		return cos.PermRWRR
	}
}

///////////////
// tarWriter //
///////////////

func newTarWriter(w io.Writer) *tarWriter { return &tarWriter{tw: tar.NewWriter(w)} }

func (*tarWriter) Hardlinks() bool { return true }

func (tw *tarWriter) Append(e *Entry, r io.Reader) error {
	hdr := tar.Header{
		Name:    e.Name,
		ModTime: e.ModTime,
		Mode:    int64(permOf(e)),
	}
	switch e.Kind {
	case EntryDir:
		hdr.Typeflag = tar.TypeDir
		if !strings.HasSuffix(hdr.Name, "/") {
			hdr.Name += "/"
		}
	case EntrySymlink:
		hdr.Typeflag, hdr.Linkname = tar.TypeSymlink, e.Linkname
	case EntryHardlink:
		hdr.Typeflag, hdr.Linkname = tar.TypeLink, e.Linkname
	default:
		hdr.Typeflag, hdr.Size = tar.TypeReg, e.Size
	}
	if err := tw.tw.WriteHeader(&hdr); err != nil {
		return err
	}
	if hdr.Typeflag != tar.TypeReg {
		return nil
	}
	debug.Assert(r != nil, e.Name)
	n, err := tw.copy(tw.tw, r)
	if err == nil && n != e.Size {
		err = io.ErrShortWrite // file changed while being archived
	}
	return err
}

func (tw *tarWriter) Close() error { return tw.tw.Close() }

///////////////
// zipWriter //
///////////////

func newZipWriter(w io.Writer) *zipWriter { return &zipWriter{zw: zip.NewWriter(w)} }

func (*zipWriter) Hardlinks() bool { return false }

func (zw *zipWriter) Append(e *Entry, r io.Reader) error {
	hdr := zip.FileHeader{
		Name:     e.Name,
		Modified: e.ModTime,
		Method:   zip.Deflate,
	}
	perm := permOf(e)
	switch e.Kind {
	case EntryDir:
		if !strings.HasSuffix(hdr.Name, "/") {
			hdr.Name += "/"
		}
		hdr.Method = zip.Store
		hdr.SetMode(fs.ModeDir | perm)
	case EntrySymlink:
		hdr.Method = zip.Store
		hdr.SetMode(fs.ModeSymlink | 0o777)
		r = strings.NewReader(e.Linkname)
	case EntryHardlink:
		return NewErrUnsupportedOperation("hardlink entries", Zip)
	default:
		hdr.SetMode(perm)
		hdr.UncompressedSize64 = uint64(e.Size)
	}
	w, err := zw.zw.CreateHeader(&hdr)
	if err != nil || r == nil {
		return err
	}
	_, err = zw.copy(w, r)
	return err
}

func (zw *zipWriter) Close() error { return zw.zw.Close() }
