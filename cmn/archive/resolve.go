// Package archive: format chains, stream codecs, and container readers/writers
// across all supported formats
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package archive

import (
	"path/filepath"
	"strings"

	"github.com/NVIDIA/ouch/cmn/nlog"
)

type (
	// Preset selects the codec-specific fastest or best level
	Preset int

	// SniffQuestion is passed to the caller-provided Confirm callback
	// when the format was inferred from the content: either the name has no
	// known extensions (ByExt is empty), or the two disagree
	SniffQuestion struct {
		Path     string
		Detected Chain
		ByExt    Chain
	}
	Confirm func(q *SniffQuestion) bool
)

const (
	PresetNone Preset = iota
	PresetFastest
	PresetBest
)

// FromName strips known trailing extensions (right to left) and returns
// the resulting chain (outermost first) along with the remaining stem.
// The chain may be empty. A name that is nothing but an extension
// (e.g. ".gz") is not stripped.
func FromName(name string) (Chain, string, error) {
	var (
		stem  = filepath.Base(name)
		kinds []Kind // filename order
	)
	for {
		i := strings.LastIndexByte(stem, '.')
		if i <= 0 {
			break
		}
		ks, ok := lookupExt(strings.ToLower(stem[i+1:]))
		if !ok {
			break
		}
		kinds = append(ks[:len(ks):len(ks)], kinds...)
		stem = stem[:i]
	}
	chain := make(Chain, len(kinds))
	for i, k := range kinds {
		chain[len(kinds)-1-i] = Format{Kind: k}
	}
	if len(chain) == 0 {
		return chain, stem, nil
	}
	return chain, stem, chain.Validate()
}

// ForOutput resolves the chain of a file that is about to be created
func ForOutput(path string) (Chain, error) {
	chain, _, err := FromName(path)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, NewErrUnknownExt(filepath.Base(path))
	}
	return chain, nil
}

// ParseFormat parses an explicit format override such as "tar.gz" or ".tgz";
// every dot-separated token must be known
func ParseFormat(s string) (Chain, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	if s == "" {
		return nil, NewErrUnknownExt(s)
	}
	var kinds []Kind
	for tok := range strings.SplitSeq(s, ".") {
		ks, ok := lookupExt(tok)
		if !ok {
			return nil, NewErrUnknownExt(tok)
		}
		kinds = append(kinds, ks...)
	}
	chain := make(Chain, len(kinds))
	for i, k := range kinds {
		chain[len(kinds)-1-i] = Format{Kind: k}
	}
	return chain, chain.Validate()
}

// ResolveInput resolves the chain of an existing file: by extensions and,
// when there are none, by file signature. Content-inferred formats require
// confirmation; so does an extension that disagrees with the signature.
// Returns the chain and the stem (output name for single-stream decompression).
func ResolveInput(path string, confirm Confirm) (Chain, string, error) {
	chain, stem, err := FromName(path)
	if err != nil {
		return nil, "", err
	}
	detected, err := SniffFile(path)
	if err != nil {
		return nil, "", err
	}
	switch {
	case len(chain) == 0:
		if detected == nil {
			return nil, "", NewErrUnknownExt(filepath.Base(path))
		}
		nlog.Infof("detected %q format of %s", detected, path)
		if confirm == nil || !confirm(&SniffQuestion{Path: path, Detected: detected}) {
			return nil, "", ErrDeclined
		}
		return detected, stem, nil
	case detected != nil && detected[0].Kind != chain[0].Kind:
		nlog.Warningf("%s: extension %q differs from the detected format %q", path, chain, detected)
		if confirm == nil || !confirm(&SniffQuestion{Path: path, Detected: detected, ByExt: chain}) {
			return nil, "", ErrDeclined
		}
	}
	return chain, stem, nil
}

// SuggestArchiveName returns "x.tar.bz.xz" given "x.bz.xz", or empty
// string when there's nothing to suggest
func SuggestArchiveName(path string) string {
	chain, stem, err := FromName(path)
	if err != nil || len(chain) == 0 || chain.IsArchive() {
		return ""
	}
	name := stem + ".tar" + strings.TrimPrefix(filepath.Base(path), stem)
	return filepath.Join(filepath.Dir(path), name)
}

//
// levels
//

// WithLevel attaches the level to every compression layer;
// containers (and chains without compression layers) are left as is
func (c Chain) WithLevel(level int) (Chain, error) {
	out := make(Chain, len(c))
	copy(out, c)
	for i := range out {
		kind := out[i].Kind
		if kind.IsContainer() {
			continue
		}
		lo, hi := levelRange(kind)
		if level < lo || level > hi {
			return nil, NewErrLevelOutOfRange(kind, level, lo, hi)
		}
		out[i].Level, out[i].HasLevel = level, true
	}
	return out, nil
}

func (c Chain) WithPreset(p Preset) Chain {
	if p == PresetNone {
		return c
	}
	out := make(Chain, len(c))
	copy(out, c)
	for i := range out {
		kind := out[i].Kind
		if kind.IsContainer() {
			continue
		}
		lo, hi := levelRange(kind)
		out[i].HasLevel = true
		if p == PresetFastest {
			out[i].Level = lo
		} else {
			out[i].Level = hi
		}
	}
	return out
}
