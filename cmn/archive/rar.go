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

	"github.com/nwaples/rardecode/v2"
)

// rar is read-only: there's no writer (see NewWriter)
type rarReader struct {
	rr  *rardecode.Reader
	src *srcTracker
}

// interface guard
var _ Reader = (*rarReader)(nil)

func newRarReader(r io.Reader, password string) (*rarReader, error) {
	var (
		src  = &srcTracker{r: r}
		opts []rardecode.Option
	)
	if password != "" {
		opts = append(opts, rardecode.Password(password))
	}
	rr, err := rardecode.NewReader(src, opts...)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, src.classify(Rar, err)
	}
	return &rarReader{rr: rr, src: src}, nil
}

func (rr *rarReader) Next() (*Entry, error) {
	hdr, err := rr.rr.Next()
	if err != nil {
		return nil, rr.src.classify(Rar, err)
	}
	mode := hdr.Mode()
	e := &Entry{
		Name:    strings.TrimSuffix(hdr.Name, "/"),
		Size:    hdr.UnPackedSize,
		ModTime: hdr.ModificationTime,
		Mode:    mode.Perm(),
		HasMode: true,
	}
	switch {
	case hdr.IsDir || mode.IsDir():
		e.Kind, e.Size = EntryDir, 0
	case mode&fs.ModeSymlink != 0:
		b, err := io.ReadAll(io.LimitReader(rr, maxLinkname))
		if err != nil {
			return nil, err
		}
		e.Kind, e.Size, e.Linkname = EntrySymlink, 0, string(b)
	default:
		e.Kind = EntryFile
	}
	return e, nil
}

func (rr *rarReader) Read(p []byte) (int, error) {
	n, err := rr.rr.Read(p)
	return n, rr.src.classify(Rar, err)
}

func (*rarReader) Close() error { return nil }
