// Package archive: format chains, stream codecs, and container readers/writers
// across all supported formats
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package archive

import (
	"io"
	"os"
	"runtime"

	"github.com/NVIDIA/ouch/cmn/cos"
	"github.com/NVIDIA/ouch/cmn/debug"
	"github.com/NVIDIA/ouch/cmn/nlog"
)

// Pipelines are assembled from a chain, outermost layer first:
//
//   read:  src => [Xz] => [Gzip] => Tar reader
//   write: Tar writer => [Gzip] => [Xz] => dst
//
// All checks that do not require I/O (chain validity, levels, codec
// availability, thread combinations) are done upfront, in CheckRead and
// CheckWrite, and before any layer gets constructed.

const DefaultMaxThreads = 128

type Options struct {
	Password   string // 7z and rar (reading)
	TempDir    string // spooled streams; empty means os.TempDir()
	Threads    int    // 0: auto (all CPUs), 1: single-threaded
	MaxThreads int    // cap; 0: DefaultMaxThreads
}

type (
	// decoding pipeline: innermost decoder plus everything to close
	streamReader struct {
		io.Reader
		closers []io.Closer // innermost first
	}
	streamWriter struct {
		io.Writer
		closers []io.Closer // innermost first
	}
	// container writer on top of the (optional) encoding layers
	chainWriter struct {
		Writer
		sw *streamWriter
	}
	// container reader on top of the (optional) decoding layers
	chainReader struct {
		Reader
		sr    io.Closer
		spool *os.File
	}
)

// interface guard
var (
	_ io.ReadCloser  = (*streamReader)(nil)
	_ io.WriteCloser = (*streamWriter)(nil)
	_ Writer         = (*chainWriter)(nil)
	_ Reader         = (*chainReader)(nil)
)

// effective number of codec threads
func (o *Options) threads() int {
	maxt := o.MaxThreads
	if maxt <= 0 {
		maxt = DefaultMaxThreads
	}
	n := o.Threads
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return min(n, maxt)
}

//
// checks
//

// recognized (and sniffed) but cannot be built
func available(kind Kind) error {
	if kind == Bzip3 {
		return NewErrUnsupportedFormat(Bzip3, bzip3NA)
	}
	return nil
}

// CheckRead validates the chain for decoding
func CheckRead(chain Chain, _ *Options) error {
	if err := chain.Validate(); err != nil {
		return err
	}
	for _, f := range chain {
		if err := available(f.Kind); err != nil {
			return err
		}
	}
	return nil
}

// CheckWrite validates the chain for encoding; in particular, explicitly
// requesting more than one thread from a single-threaded codec is an error.
// (When reading, the number of threads is merely a hint.)
func CheckWrite(chain Chain, opts *Options) error {
	if err := CheckRead(chain, opts); err != nil {
		return err
	}
	if kind, ok := chain.Container(); ok && kind == Rar {
		return NewErrUnsupportedOperation("creating archives", Rar)
	}
	for _, f := range chain.Streams() {
		lo, hi := levelRange(f.Kind)
		if f.HasLevel && (f.Level < lo || f.Level > hi) {
			return NewErrLevelOutOfRange(f.Kind, f.Level, lo, hi)
		}
		if opts != nil && opts.Threads > 1 && !IsParallel(f.Kind) {
			return NewErrUnsupportedCombination(chain, f.Kind.String()+" does not support multi-threaded compression")
		}
	}
	return nil
}

//
// decoding
//

// NewStreamReader returns the decoded bytes of a compression-only chain
func NewStreamReader(chain Chain, src io.Reader, opts *Options) (io.ReadCloser, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := CheckRead(chain, opts); err != nil {
		return nil, err
	}
	if chain.IsArchive() {
		return nil, NewErrUnsupportedCombination(chain, "expecting compression layers only")
	}
	return newStreamReader(chain, src, opts.threads())
}

func newStreamReader(streams Chain, src io.Reader, threads int) (*streamReader, error) {
	sr := &streamReader{Reader: src}
	for _, f := range streams {
		rc, err := newDecoder(f.Kind, sr.Reader, threads)
		if err != nil {
			sr.Close()
			return nil, err
		}
		sr.Reader = rc
		sr.closers = append([]io.Closer{rc}, sr.closers...)
	}
	return sr, nil
}

func (sr *streamReader) Close() error {
	errs := cos.NewErrs()
	for _, c := range sr.closers {
		if err := c.Close(); err != nil {
			errs.Add(err)
		}
	}
	sr.closers = nil
	_, err := errs.JoinErr()
	return err
}

// OpenReader returns the container reader of an archive chain
func OpenReader(chain Chain, src io.Reader, opts *Options) (Reader, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := CheckRead(chain, opts); err != nil {
		return nil, err
	}
	kind, ok := chain.Container()
	if !ok {
		return nil, NewErrUnsupportedCombination(chain, "not an archive")
	}
	sr, err := newStreamReader(chain.Streams(), src, opts.threads())
	if err != nil {
		return nil, err
	}
	cr := &chainReader{sr: sr}
	switch kind {
	case Tar:
		cr.Reader = newTarReader(sr)
	case Rar:
		cr.Reader, err = newRarReader(sr, opts.Password)
	case Zip, SevenZip:
		var (
			ra   io.ReaderAt
			size int64
		)
		ra, size, cr.spool, err = randomAccess(sr, len(sr.closers) == 0, opts.TempDir)
		if err == nil {
			if kind == Zip {
				cr.Reader, err = newZipReader(ra, size)
			} else {
				cr.Reader, err = newSevenReader(ra, size, opts.Password)
			}
		}
	default:
		debug.Assert(false, kind.String())
	}
	if err != nil {
		cr.cleanup()
		return nil, err
	}
	return cr, nil
}

type sizer interface{ Size() int64 }

// random access to the (decoded) bytes: the source itself, if possible,
// or else a temporary spool file
func randomAccess(sr *streamReader, bare bool, tmpDir string) (io.ReaderAt, int64, *os.File, error) {
	if bare {
		switch v := sr.Reader.(type) {
		case *os.File:
			if finfo, err := v.Stat(); err == nil && finfo.Mode().IsRegular() {
				return v, finfo.Size(), nil, nil
			}
		case interface {
			io.ReaderAt
			sizer
		}:
			return v, v.Size(), nil, nil
		}
	}
	spool, err := os.CreateTemp(tmpDir, cos.TmpPrefix+"spool-*")
	if err != nil {
		return nil, 0, nil, err
	}
	size, err := io.Copy(spool, sr)
	if err != nil {
		removeSpool(spool)
		return nil, 0, nil, err
	}
	return spool, size, spool, nil
}

func removeSpool(spool *os.File) {
	name := spool.Name()
	spool.Close()
	if err := os.Remove(name); err != nil {
		nlog.Warningln("failed to remove spool file:", err)
	}
}

func (cr *chainReader) cleanup() {
	if cr.spool != nil {
		removeSpool(cr.spool)
		cr.spool = nil
	}
	cr.sr.Close()
}

func (cr *chainReader) Close() error {
	err := cr.Reader.Close()
	cr.cleanup()
	return err
}

//
// encoding
//

// NewStreamWriter returns the encoder of a compression-only chain;
// Close flushes all layers (but does not close dst)
func NewStreamWriter(chain Chain, dst io.Writer, opts *Options) (io.WriteCloser, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := CheckWrite(chain, opts); err != nil {
		return nil, err
	}
	if chain.IsArchive() {
		return nil, NewErrUnsupportedCombination(chain, "expecting compression layers only")
	}
	return newStreamWriter(chain, dst, opts.threads())
}

// build from the outermost: each encoder writes into the one before it
func newStreamWriter(streams Chain, dst io.Writer, threads int) (*streamWriter, error) {
	sw := &streamWriter{Writer: dst}
	for _, f := range streams {
		wc, err := newEncoder(f, sw.Writer, threads)
		if err != nil {
			sw.Close()
			return nil, err
		}
		sw.Writer = wc
		sw.closers = append([]io.Closer{wc}, sw.closers...)
	}
	return sw, nil
}

// innermost first: each Close flushes into the next (outer) layer
func (sw *streamWriter) Close() error {
	for _, c := range sw.closers {
		if err := c.Close(); err != nil {
			sw.closers = nil
			return err
		}
	}
	sw.closers = nil
	return nil
}

// NewWriter returns the container writer of an archive chain;
// closing it finalizes the container and then flushes all encoders
func NewWriter(chain Chain, dst io.Writer, opts *Options) (Writer, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := CheckWrite(chain, opts); err != nil {
		return nil, err
	}
	kind, ok := chain.Container()
	if !ok {
		return nil, NewErrUnsupportedCombination(chain, "not an archive")
	}
	sw, err := newStreamWriter(chain.Streams(), dst, opts.threads())
	if err != nil {
		return nil, err
	}
	cw := &chainWriter{sw: sw}
	switch kind {
	case Tar:
		cw.Writer = newTarWriter(sw)
	case Zip:
		cw.Writer = newZipWriter(sw)
	case SevenZip:
		cw.Writer = newSevenWriter(sw, opts.TempDir)
	default:
		debug.Assert(false, kind.String()) // (rar rejected by CheckWrite)
	}
	return cw, nil
}

func (cw *chainWriter) Close() error {
	if err := cw.Writer.Close(); err != nil {
		cw.sw.Close()
		return err
	}
	return cw.sw.Close()
}
