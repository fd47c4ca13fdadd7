// Package archive: format chains, stream codecs, and container readers/writers
// across all supported formats
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package archive

import (
	"errors"
	"io"
	"sync"
)

// single-stream compression codec; one stateless implementation per kind
type codec interface {
	newReader(r io.Reader, threads int) (io.ReadCloser, error)
	newWriter(w io.Writer, f Format, threads int) (io.WriteCloser, error)
	// whether encoding can use more than one thread
	parallel() bool
	// supported range of compression levels
	levels() (lo, hi int)
}

// dispatch table (nil for containers)
var codecs = [numKinds]codec{
	Gzip:   gzipCodec{},
	Bzip2:  bzip2Codec{},
	Bzip3:  bzip3Codec{},
	Xz:     xzCodec{},
	Lzma:   lzmaCodec{},
	Lz4:    lz4Codec{},
	Snappy: snappyCodec{},
	Zstd:   zstdCodec{},
	Brotli: brotliCodec{},
}

func levelRange(kind Kind) (lo, hi int) {
	if c := codecs[kind]; c != nil {
		return c.levels()
	}
	return 0, 0
}

// IsParallel returns true for codecs that can encode using multiple threads
func IsParallel(kind Kind) bool {
	c := codecs[kind]
	return c != nil && c.parallel()
}

// LevelRange returns the supported compression levels of a given codec
func LevelRange(kind Kind) (lo, hi int) { return levelRange(kind) }

//
// source tracking and error classification
//

// srcTracker remembers the last (non-EOF) error returned by the underlying
// source, so that decoding failures can be told apart from read failures
type srcTracker struct {
	r   io.Reader
	err error
	mu  sync.Mutex // (some decoders read ahead in separate goroutines)
}

func (t *srcTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.mu.Lock()
		t.err = err
		t.mu.Unlock()
	}
	return n, err
}

func (t *srcTracker) failed() error {
	t.mu.Lock()
	err := t.err
	t.mu.Unlock()
	return err
}

// source (I/O or upstream layer) errors pass through as is;
// everything else is corruption at this layer
func (t *srcTracker) classify(layer Kind, err error) error {
	if err == nil || err == io.EOF {
		return err
	}
	if serr := t.failed(); serr != nil {
		return serr
	}
	var ce *ErrCorrupt
	if errors.As(err, &ce) {
		return err
	}
	return NewErrCorrupt(layer, err)
}

type decoder struct {
	rc    io.ReadCloser
	src   *srcTracker
	layer Kind
}

// interface guard
var _ io.ReadCloser = (*decoder)(nil)

func (d *decoder) Read(p []byte) (int, error) {
	n, err := d.rc.Read(p)
	return n, d.src.classify(d.layer, err)
}

func (d *decoder) Close() error { return d.rc.Close() }

func newDecoder(kind Kind, r io.Reader, threads int) (io.ReadCloser, error) {
	c := codecs[kind]
	if c == nil {
		return nil, NewErrUnsupportedFormat(kind, "not a compression format")
	}
	src := &srcTracker{r: r}
	rc, err := c.newReader(src, threads)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF // empty input is not a valid stream
		}
		return nil, src.classify(kind, err)
	}
	return &decoder{rc: rc, src: src, layer: kind}, nil
}

func newEncoder(f Format, w io.Writer, threads int) (io.WriteCloser, error) {
	c := codecs[f.Kind]
	if c == nil {
		return nil, NewErrUnsupportedFormat(f.Kind, "not a compression format")
	}
	return c.newWriter(w, f, threads)
}
