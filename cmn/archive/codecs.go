// Package archive: format chains, stream codecs, and container readers/writers
// across all supported formats
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package archive

import (
	"io"

	"github.com/NVIDIA/ouch/cmn/cos"

	"github.com/andybalholm/brotli"
	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

type (
	gzipCodec   struct{}
	bzip2Codec  struct{}
	bzip3Codec  struct{}
	xzCodec     struct{}
	lzmaCodec   struct{}
	lz4Codec    struct{}
	snappyCodec struct{}
	zstdCodec   struct{}
	brotliCodec struct{}
)

// interface guard
var (
	_ codec = gzipCodec{}
	_ codec = bzip2Codec{}
	_ codec = bzip3Codec{}
	_ codec = xzCodec{}
	_ codec = lzmaCodec{}
	_ codec = lz4Codec{}
	_ codec = snappyCodec{}
	_ codec = zstdCodec{}
	_ codec = brotliCodec{}
)

///////////////
// gzipCodec //
///////////////

// block size of the parallel gzip encoder (and decoder's read-ahead)
const gzipBlockSize = cos.MiB

func (gzipCodec) parallel() bool        { return true }
func (gzipCodec) levels() (lo, hi int) { return pgzip.NoCompression, pgzip.BestCompression }

func (gzipCodec) newReader(r io.Reader, threads int) (io.ReadCloser, error) {
	if threads > 1 {
		return pgzip.NewReaderN(r, gzipBlockSize, threads)
	}
	return pgzip.NewReader(r)
}

// concatenating blocks compressed in parallel is a valid (single-member) gzip stream
func (gzipCodec) newWriter(w io.Writer, f Format, threads int) (io.WriteCloser, error) {
	level := pgzip.DefaultCompression
	if f.HasLevel {
		level = f.Level
	}
	zw, err := pgzip.NewWriterLevel(w, level)
	if err != nil {
		return nil, err
	}
	if err := zw.SetConcurrency(gzipBlockSize, max(threads, 1)); err != nil {
		return nil, err
	}
	return zw, nil
}

////////////////
// bzip2Codec //
////////////////

const (
	bzip2BestSpeed       = 1
	bzip2BestCompression = 9
	bzip2Default         = 6
)

func (bzip2Codec) parallel() bool        { return false }
func (bzip2Codec) levels() (lo, hi int) { return bzip2BestSpeed, bzip2BestCompression }

func (bzip2Codec) newReader(r io.Reader, _ int) (io.ReadCloser, error) {
	return bzip2.NewReader(r, nil)
}

func (bzip2Codec) newWriter(w io.Writer, f Format, _ int) (io.WriteCloser, error) {
	level := bzip2Default
	if f.HasLevel {
		level = f.Level
	}
	return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: level})
}

////////////////
// bzip3Codec //
////////////////

const bzip3NA = "no bzip3 implementation is available"

func (bzip3Codec) parallel() bool        { return false }
func (bzip3Codec) levels() (lo, hi int) { return 1, 9 }

func (bzip3Codec) newReader(io.Reader, int) (io.ReadCloser, error) {
	return nil, NewErrUnsupportedFormat(Bzip3, bzip3NA)
}

func (bzip3Codec) newWriter(io.Writer, Format, int) (io.WriteCloser, error) {
	return nil, NewErrUnsupportedFormat(Bzip3, bzip3NA)
}

/////////////////////////
// xzCodec & lzmaCodec //
/////////////////////////

// dictionary capacity by level (compare with `xz -0` ... `xz -9` presets)
var xzDictCaps = [...]int{
	256 * cos.KiB, cos.MiB, 2 * cos.MiB, 4 * cos.MiB, 4 * cos.MiB,
	8 * cos.MiB, 8 * cos.MiB, 16 * cos.MiB, 32 * cos.MiB, 64 * cos.MiB,
}

const xzDefault = 6

func xzDictCap(f Format) int {
	if f.HasLevel {
		return xzDictCaps[f.Level]
	}
	return xzDictCaps[xzDefault]
}

func (xzCodec) parallel() bool        { return false }
func (xzCodec) levels() (lo, hi int) { return 0, len(xzDictCaps) - 1 }

func (xzCodec) newReader(r io.Reader, _ int) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(xr), nil
}

func (xzCodec) newWriter(w io.Writer, f Format, _ int) (io.WriteCloser, error) {
	return xz.WriterConfig{DictCap: xzDictCap(f)}.NewWriter(w)
}

func (lzmaCodec) parallel() bool        { return false }
func (lzmaCodec) levels() (lo, hi int) { return 0, len(xzDictCaps) - 1 }

func (lzmaCodec) newReader(r io.Reader, _ int) (io.ReadCloser, error) {
	lr, err := lzma.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(lr), nil
}

// streaming: size is unknown upfront, hence end-of-stream marker
func (lzmaCodec) newWriter(w io.Writer, f Format, _ int) (io.WriteCloser, error) {
	return lzma.WriterConfig{DictCap: xzDictCap(f), EOSMarker: true}.NewWriter(w)
}

//////////////
// lz4Codec //
//////////////

var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

func (lz4Codec) parallel() bool        { return true }
func (lz4Codec) levels() (lo, hi int) { return 0, len(lz4Levels) - 1 }

func (lz4Codec) newReader(r io.Reader, _ int) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

func (lz4Codec) newWriter(w io.Writer, f Format, threads int) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	opts := []lz4.Option{lz4.ConcurrencyOption(max(threads, 1))}
	if f.HasLevel {
		opts = append(opts, lz4.CompressionLevelOption(lz4Levels[f.Level]))
	}
	if err := zw.Apply(opts...); err != nil {
		return nil, err
	}
	return zw, nil
}

/////////////////
// snappyCodec //
/////////////////

// framed snappy via s2 (snappy-compatible output);
// levels: [0-3] fast, [4-6] better, [7-9] best
func (snappyCodec) parallel() bool        { return true }
func (snappyCodec) levels() (lo, hi int) { return 0, 9 }

func (snappyCodec) newReader(r io.Reader, _ int) (io.ReadCloser, error) {
	return io.NopCloser(s2.NewReader(r)), nil
}

func (snappyCodec) newWriter(w io.Writer, f Format, threads int) (io.WriteCloser, error) {
	opts := []s2.WriterOption{s2.WriterSnappyCompat(), s2.WriterConcurrency(max(threads, 1))}
	switch {
	case !f.HasLevel:
	case f.Level >= 7:
		opts = append(opts, s2.WriterBestCompression())
	case f.Level >= 4:
		opts = append(opts, s2.WriterBetterCompression())
	}
	return s2.NewWriter(w, opts...), nil
}

///////////////
// zstdCodec //
///////////////

func (zstdCodec) parallel() bool        { return true }
func (zstdCodec) levels() (lo, hi int) { return 1, 22 }

func (zstdCodec) newReader(r io.Reader, threads int) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(max(threads, 1)))
	if err != nil {
		return nil, err
	}
	return zr.IOReadCloser(), nil
}

func (zstdCodec) newWriter(w io.Writer, f Format, threads int) (io.WriteCloser, error) {
	opts := []zstd.EOption{zstd.WithEncoderConcurrency(max(threads, 1))}
	if f.HasLevel {
		opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(f.Level)))
	}
	return zstd.NewWriter(w, opts...)
}

/////////////////
// brotliCodec //
/////////////////

func (brotliCodec) parallel() bool        { return false }
func (brotliCodec) levels() (lo, hi int) { return brotli.BestSpeed, brotli.BestCompression }

func (brotliCodec) newReader(r io.Reader, _ int) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(r)), nil
}

func (brotliCodec) newWriter(w io.Writer, f Format, _ int) (io.WriteCloser, error) {
	level := brotli.DefaultCompression
	if f.HasLevel {
		level = f.Level
	}
	return brotli.NewWriterLevel(w, level), nil
}
