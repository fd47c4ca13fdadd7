// Package archive: format chains, stream codecs, and container readers/writers
// across all supported formats
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package archive

import (
	"bytes"
	"testing"
	"time"

	"github.com/NVIDIA/ouch/cmn/cos"
	"github.com/NVIDIA/ouch/tools/tassert"
)

func TestSevenNumber(t *testing.T) {
	tests := []struct {
		v   uint64
		exp []byte
	}{
		{0, []byte{0x00}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x80}},
		{0x1234, []byte{0x92, 0x34}},
		{0x4000, []byte{0xc0, 0x00, 0x40}},
		{1 << 62, []byte{0xff, 0, 0, 0, 0, 0, 0, 0, 0x40}},
	}
	for _, test := range tests {
		hb := &headerBuf{}
		hb.number(test.v)
		tassert.Errorf(t, bytes.Equal(hb.Bytes(), test.exp), "%#x: expected %x, got %x", test.v, test.exp, hb.Bytes())
	}
}

func TestSevenHelpers(t *testing.T) {
	tassert.Errorf(t, lzma2DictProp(8*cos.MiB) == 22, "expected 22, got %d", lzma2DictProp(8*cos.MiB))
	tassert.Errorf(t, lzma2DictProp(4*cos.KiB) == 0, "expected 0, got %d", lzma2DictProp(4*cos.KiB))
	tassert.Errorf(t, lzma2DictProp(6*cos.MiB) == 21, "expected 21, got %d", lzma2DictProp(6*cos.MiB))

	bv := bitVector([]bool{true, false, true, false, false, false, false, false, true})
	tassert.Errorf(t, bytes.Equal(bv, []byte{0xa0, 0x80}), "unexpected bit vector %x", bv)

	tassert.Errorf(t, filetime(time.Time{}) == filetimeEpoch, "zero time")
	tassert.Errorf(t, filetime(time.Unix(1, 0)) == filetimeEpoch+10_000_000, "one second past epoch")

	kind, perm, hasMode := decodeAttrs(attrArchive | attrUnixExtension | (unixLink|0o777)<<16)
	tassert.Errorf(t, kind == EntrySymlink && perm == 0o777 && hasMode, "symlink attrs: %s %v %t", kind, perm, hasMode)
	kind, _, hasMode = decodeAttrs(attrDirectory)
	tassert.Errorf(t, kind == EntryDir && !hasMode, "windows dir attrs: %s %t", kind, hasMode)
}
