// Package archive: format chains, stream codecs, and container readers/writers
// across all supported formats
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package archive

import (
	"errors"
	"fmt"
)

// resolution
var (
	ErrEmptyChain         = errors.New("empty format chain")
	ErrMisplacedContainer = errors.New("archive format (tar, zip, 7z, rar) can only be the innermost (first) extension")
	ErrDeclined           = errors.New("detected format not confirmed")
)

type (
	ErrUnknownExt struct {
		detail string
	}
	ErrLevelOutOfRange struct {
		kind     Kind
		level    int
		min, max int
	}
	ErrUnsupportedCombination struct {
		chain  Chain
		detail string
	}
	ErrUnsupportedFormat struct {
		kind   Kind
		detail string
	}
	ErrUnsupportedOperation struct {
		op   string
		kind Kind
	}
	// decoding failure not caused by the underlying source (bad magic,
	// checksum mismatch, truncated stream, malformed headers)
	ErrCorrupt struct {
		err   error
		Layer Kind
	}
)

// ErrUnknownExt

func NewErrUnknownExt(d string) *ErrUnknownExt { return &ErrUnknownExt{d} }
func (e *ErrUnknownExt) Error() string         { return "unknown file extension \"" + e.detail + "\"" }

func IsErrUnknownExt(err error) bool {
	var e *ErrUnknownExt
	return errors.As(err, &e)
}

// ErrLevelOutOfRange

func NewErrLevelOutOfRange(kind Kind, level, lo, hi int) *ErrLevelOutOfRange {
	return &ErrLevelOutOfRange{kind: kind, level: level, min: lo, max: hi}
}

func (e *ErrLevelOutOfRange) Error() string {
	return fmt.Sprintf("%s: compression level %d out of range [%d, %d]", e.kind, e.level, e.min, e.max)
}

func IsErrLevelOutOfRange(err error) bool {
	var e *ErrLevelOutOfRange
	return errors.As(err, &e)
}

// ErrUnsupportedCombination

func NewErrUnsupportedCombination(chain Chain, detail string) *ErrUnsupportedCombination {
	return &ErrUnsupportedCombination{chain: chain, detail: detail}
}

func (e *ErrUnsupportedCombination) Error() string {
	return fmt.Sprintf("unsupported combination %q: %s", e.chain.String(), e.detail)
}

func IsErrUnsupportedCombination(err error) bool {
	var e *ErrUnsupportedCombination
	return errors.As(err, &e)
}

// ErrUnsupportedFormat

func NewErrUnsupportedFormat(kind Kind, detail string) *ErrUnsupportedFormat {
	return &ErrUnsupportedFormat{kind: kind, detail: detail}
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("format %q is not supported: %s", e.kind, e.detail)
}

func IsErrUnsupportedFormat(err error) bool {
	var e *ErrUnsupportedFormat
	return errors.As(err, &e)
}

// ErrUnsupportedOperation

func NewErrUnsupportedOperation(op string, kind Kind) *ErrUnsupportedOperation {
	return &ErrUnsupportedOperation{op: op, kind: kind}
}

func (e *ErrUnsupportedOperation) Error() string {
	return fmt.Sprintf("%s: %s is not supported", e.kind, e.op)
}

func IsErrUnsupportedOperation(err error) bool {
	var e *ErrUnsupportedOperation
	return errors.As(err, &e)
}

// ErrCorrupt

func NewErrCorrupt(layer Kind, err error) *ErrCorrupt { return &ErrCorrupt{Layer: layer, err: err} }

func (e *ErrCorrupt) Error() string {
	what := "stream"
	if e.Layer.IsContainer() {
		what = "archive"
	}
	return fmt.Sprintf("corrupt %s %s: %v", e.Layer, what, e.err)
}

func (e *ErrCorrupt) Unwrap() error { return e.err }

func IsErrCorrupt(err error) bool {
	var e *ErrCorrupt
	return errors.As(err, &e)
}

// IsBuildErr returns true for errors detected when assembling a pipeline,
// before any I/O
func IsBuildErr(err error) bool {
	return IsErrUnsupportedCombination(err) || IsErrUnsupportedFormat(err) || IsErrUnsupportedOperation(err)
}

// IsResolutionErr returns true for errors detected when resolving a chain
func IsResolutionErr(err error) bool {
	return IsErrUnknownExt(err) || IsErrLevelOutOfRange(err) ||
		errors.Is(err, ErrEmptyChain) || errors.Is(err, ErrMisplacedContainer) || errors.Is(err, ErrDeclined)
}
