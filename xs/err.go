// Package xs materializes archives on the local filesystem (extract, create, list)
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package xs

import (
	"errors"
	"fmt"

	"github.com/NVIDIA/ouch/cmn/nlog"
)

var (
	ErrCancelled = errors.New("operation cancelled")
	ErrAborted   = errors.New("operation aborted")

	ErrMultipleInputsRequireContainer = errors.New("multiple inputs can only be compressed into an archive (tar, zip, 7z)")
	ErrDirRequiresContainer           = errors.New("directories can only be compressed into an archive (tar, zip, 7z)")
	ErrNotArchive                     = errors.New("not an archive")
)

type (
	// archived name that resolves outside the destination directory
	ErrPathTraversal struct {
		Name string
	}

	WarningKind int

	// non-fatal: logged, counted, and returned in Stats
	Warning struct {
		Path   string
		Detail string
		Kind   WarningKind
	}
)

const (
	DanglingHardlink WarningKind = iota
	BrokenSymlinkSkipped
	TraversalSkipped
	UnsupportedSkipped // special files (devices, pipes, sockets)
	LinkNotMaterialized
)

var warningKinds = [...]string{
	"dangling hardlink", "broken symlink skipped", "path traversal skipped",
	"unsupported file type skipped", "symlink not materialized",
}

func NewErrPathTraversal(name string) *ErrPathTraversal { return &ErrPathTraversal{Name: name} }

func (e *ErrPathTraversal) Error() string {
	return fmt.Sprintf("%q resolves outside the destination directory", e.Name)
}

func IsErrPathTraversal(err error) bool {
	var e *ErrPathTraversal
	return errors.As(err, &e)
}

func (k WarningKind) String() string { return warningKinds[k] }

func (w *Warning) String() string {
	if w.Detail == "" {
		return w.Kind.String() + ": " + w.Path
	}
	return w.Kind.String() + ": " + w.Path + " (" + w.Detail + ")"
}

func (s *Stats) warn(kind WarningKind, path, detail string) {
	w := Warning{Kind: kind, Path: path, Detail: detail}
	nlog.Warningln(w.String())
	s.Warnings = append(s.Warnings, w)
}
