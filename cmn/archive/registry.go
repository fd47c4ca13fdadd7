// Package archive: format chains, stream codecs, and container readers/writers
// across all supported formats
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package archive

import "slices"

// extension token => kinds, in filename order (innermost first)
var extensions = map[string][]Kind{
	"tar":   {Tar},
	"cbt":   {Tar},
	"tgz":   {Tar, Gzip},
	"tbz":   {Tar, Bzip2},
	"tbz2":  {Tar, Bzip2},
	"tbz3":  {Tar, Bzip3},
	"tlz4":  {Tar, Lz4},
	"txz":   {Tar, Xz},
	"tlzma": {Tar, Lzma},
	"tlz":   {Tar, Lzma},
	"tsz":   {Tar, Snappy},
	"tzst":  {Tar, Zstd},
	"tbr":   {Tar, Brotli},
	"zip":   {Zip},
	"cbz":   {Zip},
	"7z":    {SevenZip},
	"cb7":   {SevenZip},
	"rar":   {Rar},
	"cbr":   {Rar},
	"gz":    {Gzip},
	"bz":    {Bzip2},
	"bz2":   {Bzip2},
	"bz3":   {Bzip3},
	"xz":    {Xz},
	"lzma":  {Lzma},
	"lz4":   {Lz4},
	"sz":    {Snappy},
	"zst":   {Zstd},
	"br":    {Brotli},
}

// SupportedExtensions returns all recognized extension tokens, sorted
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// lookup is case-insensitive (callers lower-case the token)
func lookupExt(token string) ([]Kind, bool) {
	kinds, ok := extensions[token]
	return kinds, ok
}
