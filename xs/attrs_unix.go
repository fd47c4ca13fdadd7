//go:build !windows

// Package xs materializes archives on the local filesystem (extract, create, list)
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package xs

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// sets symlink's own mtime (and atime)
func lutimes(path string, mtime time.Time) error {
	tv := unix.NsecToTimeval(mtime.UnixNano())
	return unix.Lutimes(path, []unix.Timeval{tv, tv})
}

type inodeID struct {
	dev, ino uint64
}

func inode(finfo os.FileInfo) (id inodeID, nlink uint64, ok bool) {
	st, ok := finfo.Sys().(*syscall.Stat_t)
	if !ok {
		return id, 0, false
	}
	return inodeID{dev: uint64(st.Dev), ino: st.Ino}, uint64(st.Nlink), true //nolint:unconvert // platform-dependent
}
