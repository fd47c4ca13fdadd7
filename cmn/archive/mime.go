// Package archive: format chains, stream codecs, and container readers/writers
// across all supported formats
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package archive

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// - references:
//   * https://en.wikipedia.org/wiki/List_of_file_signatures
//   * https://www.rarlab.com/technote.htm#rarsign

type detect struct {
	match  func(buf []byte) bool // when a plain signature is not enough
	sig    []byte
	offset int
	kind   Kind
}

const sizeDetectMime = 512

// standard file signatures
var (
	magicZip    = detect{kind: Zip, match: isZip}
	magicTar    = detect{kind: Tar, offset: 257, sig: []byte("ustar")}
	magicGzip   = detect{kind: Gzip, sig: []byte{0x1f, 0x8b, 0x08}}
	magicBzip2  = detect{kind: Bzip2, sig: []byte("BZh")}
	magicBzip3  = detect{kind: Bzip3, sig: []byte("BZ3v1")}
	magicLzma   = detect{kind: Lzma, match: isLzma}
	magicXz     = detect{kind: Xz, sig: []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}}
	magicLz4    = detect{kind: Lz4, sig: []byte{0x04, 0x22, 0x4d, 0x18}}
	magicSnappy = detect{kind: Snappy, sig: []byte{0xff, 0x06, 0x00, 0x00, 's', 'N', 'a', 'P', 'p', 'Y'}}
	magicZstd   = detect{kind: Zstd, sig: []byte{0x28, 0xb5, 0x2f, 0xfd}}
	magicRar    = detect{kind: Rar, match: isRar}
	magic7z     = detect{kind: SevenZip, sig: []byte{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c}}

	// NOTE: order matters (lzma is a heuristic and goes after the unambiguous ones)
	allMagics = []detect{magicZip, magicTar, magicGzip, magicBzip2, magicBzip3, magicXz,
		magicLz4, magicSnappy, magicZstd, magicRar, magic7z, magicLzma}
)

func isZip(buf []byte) bool {
	if len(buf) < 4 || buf[0] != 'P' || buf[1] != 'K' {
		return false
	}
	b2, b3 := buf[2], buf[3]
	return (b2 == 3 && b3 == 4) || (b2 == 5 && b3 == 6) || (b2 == 7 && b3 == 8)
}

// properties byte 0x5d (lc=3, lp=0, pb=2), then the MSB of the 8-byte
// uncompressed size (0x00, or 0xff when unknown), then the range coder's zero byte
func isLzma(buf []byte) bool {
	return len(buf) >= 14 && buf[0] == 0x5d && (buf[12] == 0x00 || buf[12] == 0xff) && buf[13] == 0x00
}

// RAR 4.x: 52 61 72 21 1A 07 00; RAR 5.0: 52 61 72 21 1A 07 01 00
func isRar(buf []byte) bool {
	if len(buf) < 7 || !bytes.HasPrefix(buf, []byte{0x52, 0x61, 0x72, 0x21, 0x1a, 0x07}) {
		return false
	}
	return buf[6] == 0x00 || (len(buf) >= 8 && buf[6] == 0x01 && buf[7] == 0x00)
}

func (d *detect) is(buf []byte) bool {
	if d.match != nil {
		return d.match(buf)
	}
	return len(buf) > d.offset && bytes.HasPrefix(buf[d.offset:], d.sig)
}

// DetectBytes matches the header against known signatures;
// returns a single-layer chain or nil
func DetectBytes(buf []byte) Chain {
	for i := range allMagics {
		if allMagics[i].is(buf) {
			return NewChain(allMagics[i].kind)
		}
	}
	return nil
}

// Sniff reads up to 512 bytes from the reader and detects the (outermost) format
func Sniff(r io.Reader) (Chain, error) {
	buf := make([]byte, sizeDetectMime)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return DetectBytes(buf[:n]), nil
}

// SniffFile is Sniff for a named file; directories and unreadable
// special files are never detected
func SniffFile(path string) (Chain, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	finfo, err := fh.Stat()
	if err != nil {
		return nil, err
	}
	if !finfo.Mode().IsRegular() {
		return nil, nil
	}
	return Sniff(fh)
}
