// Package fs: local filesystem traversal
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package fs

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/NVIDIA/ouch/cmn/nlog"

	"github.com/karrick/godirwalk"
)

// Determines the threshold of error count which will result in halting
// the walking operation.
const errThreshold = 1000

// returned by the callback to skip an entry (and, if directory, its content)
var SkipThis = godirwalk.SkipThis

type (
	errFunc  func(string, error) godirwalk.ErrorAction
	WalkFunc func(path string, de DirEntry) error

	DirEntry interface {
		Name() string
		IsDir() bool
		IsRegular() bool
		IsSymlink() bool
	}

	WalkOpts struct {
		Callback    WalkFunc
		ErrCallback errFunc // optional; default: skip vanished entries, halt on everything else
		Sorted      bool
		// traverse symlinked directories (and report symlinks as they are, to the callback)
		FollowSymlinks bool
		SkipHidden     bool
	}

	errCallbackWrapper struct {
		counter atomic.Int64
	}
)

// interface guard
var _ DirEntry = (*godirwalk.Dirent)(nil)

// PathErrToAction is the default error callback: entries that disappeared
// (or broken symlinks) while walking get skipped, up to a limit
func (ew *errCallbackWrapper) PathErrToAction(path string, err error) godirwalk.ErrorAction {
	if !os.IsNotExist(err) {
		return godirwalk.Halt
	}
	if ew.counter.Add(1) > errThreshold {
		return godirwalk.Halt
	}
	nlog.Infoln("skipping", path+":", err)
	return godirwalk.SkipNode
}

func IsHidden(name string) bool { return len(name) > 1 && strings.HasPrefix(name, ".") && name != ".." }

// Walk visits the root itself (that may also be a file or a symlink) and,
// recursively, everything underneath
func Walk(root string, opts *WalkOpts) error {
	errCallback := opts.ErrCallback
	if errCallback == nil {
		ew := &errCallbackWrapper{}
		errCallback = ew.PathErrToAction
	}
	gopts := &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if opts.SkipHidden && path != root && IsHidden(de.Name()) {
				return SkipThis
			}
			return opts.Callback(path, de)
		},
		ErrorCallback:       errCallback,
		FollowSymbolicLinks: opts.FollowSymlinks,
		Unsorted:            !opts.Sorted,
		AllowNonDirectory:   true,
	}
	return godirwalk.Walk(root, gopts)
}
