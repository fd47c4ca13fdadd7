// Package archive: format chains, stream codecs, and container readers/writers
// across all supported formats
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package archive

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/NVIDIA/ouch/cmn/cos"
	"github.com/NVIDIA/ouch/cmn/nlog"

	"github.com/ulikunitz/xz/lzma"
)

// 7z writer: all non-empty entries go into a single solid folder (one LZMA2
// coder). The packed stream is spooled to a temporary file, since the
// signature header that precedes it references the header that follows it.
//
// layout: signature header (32 bytes) | packed stream | header

// property IDs
const (
	idEnd             = 0x00
	idHeader          = 0x01
	idMainStreamsInfo = 0x04
	idFilesInfo       = 0x05
	idPackInfo        = 0x06
	idUnpackInfo      = 0x07
	idSubStreamsInfo  = 0x08
	idSize            = 0x09
	idCRC             = 0x0a
	idFolder          = 0x0b
	idCodersUnpackSz  = 0x0c
	idNumUnpackStream = 0x0d
	idEmptyStream     = 0x0e
	idEmptyFile       = 0x0f
	idName            = 0x11
	idMTime           = 0x14
	idWinAttributes   = 0x15
)

const (
	sevenSigHdrSize = 32
	sevenLzma2ID    = 0x21
	sevenDictCap    = 8 * cos.MiB

	// 100ns intervals between 1601-01-01 and 1970-01-01
	filetimeEpoch = 116444736000000000
)

var sevenSignature = []byte{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c, 0, 4}

type (
	sevenFile struct {
		mtime     time.Time
		name      string
		size      uint64
		attrib    uint32
		crc       uint32
		hasStream bool
		isDir     bool
	}
	sevenWriter struct {
		dst    io.Writer
		spool  *os.File
		packed countWriter
		enc    *lzma.Writer2
		tmpDir string
		files  []sevenFile
		baseW
	}
	countWriter struct {
		w io.Writer
		n int64
	}
	// creates the encoder upon the first non-empty write
	sevenStream struct {
		sw  *sevenWriter
		crc uint32
		n   uint64
	}
)

// interface guard
var _ Writer = (*sevenWriter)(nil)

func (cw *countWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

func newSevenWriter(w io.Writer, tmpDir string) *sevenWriter {
	return &sevenWriter{dst: w, tmpDir: tmpDir}
}

func (*sevenWriter) Hardlinks() bool { return false }

func (sw *sevenWriter) Append(e *Entry, r io.Reader) error {
	var (
		perm = permOf(e)
		f    = sevenFile{name: strings.TrimSuffix(e.Name, "/"), mtime: e.ModTime}
	)
	switch e.Kind {
	case EntryDir:
		f.isDir = true
		f.attrib = attrDirectory | attrUnixExtension | (unixDir|uint32(perm))<<16
	case EntrySymlink:
		f.attrib = attrArchive | attrUnixExtension | (unixLink|0o777)<<16
		r = strings.NewReader(e.Linkname)
	case EntryHardlink:
		return NewErrUnsupportedOperation("hardlink entries", SevenZip)
	default:
		f.attrib = attrArchive | attrUnixExtension | (unixReg|uint32(perm))<<16
		if perm&0o200 == 0 {
			f.attrib |= attrReadonly
		}
	}
	if r != nil {
		stream := &sevenStream{sw: sw}
		if _, err := sw.copy(stream, r); err != nil {
			return err
		}
		f.size, f.crc, f.hasStream = stream.n, stream.crc, stream.n > 0
	}
	sw.files = append(sw.files, f)
	return nil
}

func (s *sevenStream) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if s.sw.enc == nil {
		if err := s.sw.initEncoder(); err != nil {
			return 0, err
		}
	}
	n, err := s.sw.enc.Write(p)
	s.crc = crc32.Update(s.crc, crc32.IEEETable, p[:n])
	s.n += uint64(n)
	return n, err
}

func (sw *sevenWriter) initEncoder() (err error) {
	if sw.spool, err = os.CreateTemp(sw.tmpDir, cos.TmpPrefix+"7z-*"); err != nil {
		return err
	}
	sw.packed = countWriter{w: sw.spool}
	sw.enc, err = lzma.Writer2Config{DictCap: sevenDictCap}.NewWriter2(&sw.packed)
	return err
}

func (sw *sevenWriter) Close() (err error) {
	defer sw.cleanup()
	if sw.enc != nil {
		if err = sw.enc.Close(); err != nil {
			return err
		}
		if _, err = sw.spool.Seek(0, io.SeekStart); err != nil {
			return err
		}
	}
	var (
		sig [sevenSigHdrSize]byte
		hdr []byte
	)
	// empty archive: signature header only (all zeros past the CRC)
	if len(sw.files) > 0 {
		hdr = sw.header()
	}
	crcs := crc32.ChecksumIEEE(hdr)
	copy(sig[:], sevenSignature)
	binary.LittleEndian.PutUint64(sig[12:], uint64(sw.packed.n))
	binary.LittleEndian.PutUint64(sig[20:], uint64(len(hdr)))
	binary.LittleEndian.PutUint32(sig[28:], crcs)
	binary.LittleEndian.PutUint32(sig[8:], crc32.ChecksumIEEE(sig[12:]))

	if _, err = sw.dst.Write(sig[:]); err != nil {
		return err
	}
	if sw.spool != nil {
		n, err := sw.copy(sw.dst, sw.spool)
		if err != nil {
			return err
		}
		if n != sw.packed.n {
			return io.ErrShortWrite
		}
	}
	_, err = sw.dst.Write(hdr)
	return err
}

func (sw *sevenWriter) cleanup() {
	if sw.spool == nil {
		return
	}
	name := sw.spool.Name()
	sw.spool.Close()
	if err := os.Remove(name); err != nil {
		nlog.Warningln("failed to remove 7z spool:", err)
	}
	sw.spool = nil
}

//
// header
//

func (sw *sevenWriter) header() []byte {
	var (
		hb      = &headerBuf{}
		streams []*sevenFile
		total   uint64
	)
	for i := range sw.files {
		if f := &sw.files[i]; f.hasStream {
			streams = append(streams, f)
			total += f.size
		}
	}
	hb.WriteByte(idHeader)
	if len(streams) > 0 {
		hb.WriteByte(idMainStreamsInfo)
		sw.packInfo(hb)
		sw.unpackInfo(hb, total)
		subStreamsInfo(hb, streams)
		hb.WriteByte(idEnd)
	}
	sw.filesInfo(hb)
	hb.WriteByte(idEnd)
	return hb.Bytes()
}

func (sw *sevenWriter) packInfo(hb *headerBuf) {
	hb.WriteByte(idPackInfo)
	hb.number(0) // pack position
	hb.number(1) // number of pack streams
	hb.WriteByte(idSize)
	hb.number(uint64(sw.packed.n))
	hb.WriteByte(idEnd)
}

// one folder, one simple coder (1 in, 1 out)
func (*sevenWriter) unpackInfo(hb *headerBuf, total uint64) {
	hb.WriteByte(idUnpackInfo)
	hb.WriteByte(idFolder)
	hb.number(1) // number of folders
	hb.WriteByte(0)
	hb.number(1) // number of coders
	// flags: has properties | codec ID size
	hb.WriteByte(0x20 | 1)
	hb.WriteByte(sevenLzma2ID)
	hb.number(1)
	hb.WriteByte(lzma2DictProp(sevenDictCap))
	hb.WriteByte(idCodersUnpackSz)
	hb.number(total)
	hb.WriteByte(idEnd)
}

func subStreamsInfo(hb *headerBuf, streams []*sevenFile) {
	hb.WriteByte(idSubStreamsInfo)
	hb.WriteByte(idNumUnpackStream)
	hb.number(uint64(len(streams)))
	if len(streams) > 1 {
		hb.WriteByte(idSize)
		for _, f := range streams[:len(streams)-1] {
			hb.number(f.size)
		}
	}
	hb.WriteByte(idCRC)
	hb.WriteByte(1) // all defined
	for _, f := range streams {
		hb.uint32(f.crc)
	}
	hb.WriteByte(idEnd)
}

func (sw *sevenWriter) filesInfo(hb *headerBuf) {
	var (
		num        = len(sw.files)
		emptyStrm  = make([]bool, num)
		emptyFiles []bool
		anyEmpty   bool
		anyFile    bool
	)
	for i := range sw.files {
		f := &sw.files[i]
		if !f.hasStream {
			emptyStrm[i], anyEmpty = true, true
			emptyFiles = append(emptyFiles, !f.isDir)
			anyFile = anyFile || !f.isDir
		}
	}
	hb.WriteByte(idFilesInfo)
	hb.number(uint64(num))

	if anyEmpty {
		hb.property(idEmptyStream, bitVector(emptyStrm))
		if anyFile {
			hb.property(idEmptyFile, bitVector(emptyFiles))
		}
	}

	names := &headerBuf{}
	names.WriteByte(0) // not external
	for i := range sw.files {
		for _, u := range utf16.Encode([]rune(sw.files[i].name)) {
			names.uint16(u)
		}
		names.uint16(0)
	}
	hb.property(idName, names.Bytes())

	times := &headerBuf{}
	times.WriteByte(1) // all defined
	times.WriteByte(0) // not external
	for i := range sw.files {
		times.uint64(filetime(sw.files[i].mtime))
	}
	hb.property(idMTime, times.Bytes())

	attrs := &headerBuf{}
	attrs.WriteByte(1)
	attrs.WriteByte(0)
	for i := range sw.files {
		attrs.uint32(sw.files[i].attrib)
	}
	hb.property(idWinAttributes, attrs.Bytes())

	hb.WriteByte(idEnd)
}

func filetime(t time.Time) uint64 {
	if t.IsZero() || t.Unix() < 0 {
		return filetimeEpoch
	}
	return uint64(t.UnixNano()/100) + filetimeEpoch
}

// most significant bit first
func bitVector(bits []bool) []byte {
	b := make([]byte, (len(bits)+7)/8)
	for i, set := range bits {
		if set {
			b[i/8] |= 0x80 >> (i % 8)
		}
	}
	return b
}

// smallest LZMA2 dictionary-size property that covers `dictCap`
func lzma2DictProp(dictCap int) byte {
	for p := range 40 {
		if uint64(2|(p&1))<<(p/2+11) >= uint64(dictCap) {
			return byte(p)
		}
	}
	return 40
}

type headerBuf struct {
	bytes.Buffer
}

// 7z variable-length number: the count of leading 1-bits in the first byte
// is the number of extra (little-endian) bytes that follow
func (hb *headerBuf) number(v uint64) {
	var (
		first byte
		mask  byte = 0x80
		i     int
	)
	for i = 0; i < 8; i++ {
		if v < uint64(1)<<(7*(i+1)) {
			first |= byte(v >> (8 * i))
			break
		}
		first |= mask
		mask >>= 1
	}
	hb.WriteByte(first)
	for ; i > 0; i-- {
		hb.WriteByte(byte(v))
		v >>= 8
	}
}

func (hb *headerBuf) property(id byte, data []byte) {
	hb.WriteByte(id)
	hb.number(uint64(len(data)))
	hb.Write(data)
}

func (hb *headerBuf) uint16(v uint16) { hb.Write(binary.LittleEndian.AppendUint16(nil, v)) }
func (hb *headerBuf) uint32(v uint32) { hb.Write(binary.LittleEndian.AppendUint32(nil, v)) }
func (hb *headerBuf) uint64(v uint64) { hb.Write(binary.LittleEndian.AppendUint64(nil, v)) }
