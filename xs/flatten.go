// Package xs materializes archives on the local filesystem (extract, create, list)
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package xs

import (
	"os"
	"path/filepath"

	"github.com/NVIDIA/ouch/cmn/archive"
	"github.com/NVIDIA/ouch/cmn/conflict"
	"github.com/NVIDIA/ouch/cmn/cos"
	"github.com/NVIDIA/ouch/cmn/nlog"
)

// flatten extracts into a scratch directory inside the destination, and then:
// - a single top-level item moves directly into the destination;
// - multiple items move into the destination as "<stem>/".
func (x *extractor) flatten(src *os.File, srcPath string, chain archive.Chain, opts *archive.Options) error {
	tmp, err := os.MkdirTemp(x.root, cos.TmpPrefix+"unpack-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	root := x.root
	x.root = tmp
	err = x.extractEntries(src, chain, opts)
	x.root = root
	if err != nil {
		return err
	}

	// directories remain writable until moved, their metadata follows them
	x.moved = make(map[string]string, 4)
	items, err := os.ReadDir(tmp)
	if err != nil {
		return err
	}
	switch len(items) {
	case 0:
	case 1:
		name := items[0].Name()
		err = x.move(filepath.Join(tmp, name), filepath.Join(root, name), name)
	default:
		_, stem, _ := archive.FromName(srcPath)
		if err = os.Chmod(tmp, cos.PermRWXRXRX); err == nil {
			err = x.move(tmp, filepath.Join(root, stem), stem)
		}
	}
	if err != nil {
		return err
	}
	x.relocateDirs(tmp)
	return x.applyDirs()
}

// pending directory metadata: scratch paths => final paths; what stayed behind is dropped
func (x *extractor) relocateDirs(tmp string) {
	dirs := x.dirs[:0]
	for _, d := range x.dirs {
		if p, ok := x.relocated(d.path, tmp); ok {
			d.path = p
			dirs = append(dirs, d)
		}
	}
	x.dirs = dirs
}

func (x *extractor) relocated(p, tmp string) (string, bool) {
	for q := p; ; q = filepath.Dir(q) {
		if dst, ok := x.moved[q]; ok {
			rel, err := filepath.Rel(q, p)
			if err != nil {
				return "", false
			}
			return filepath.Join(dst, rel), true
		}
		if q == tmp || filepath.Dir(q) == q {
			return "", false
		}
	}
}

// move with conflict resolution; directories get merged item by item when allowed
func (x *extractor) move(src, dst, name string) error {
	srcInfo, err := os.Lstat(src)
	if err != nil {
		return err
	}
	dstInfo, err := os.Lstat(dst)
	if os.IsNotExist(err) {
		return x.rename(src, dst)
	}
	if err != nil {
		return err
	}
	var (
		isDir       = srcInfo.IsDir()
		existingDir = dstInfo.IsDir()
		q           = &conflict.Question{Path: dst, Incoming: name, IsDir: isDir, ExistingDir: existingDir}
	)
	action, err := x.res.Resolve(q)
	if err != nil {
		return err
	}
	switch action {
	case conflict.Overwrite, conflict.Merge:
		if isDir && existingDir {
			if action == conflict.Overwrite {
				x.moved[src] = dst // merge and reapply metadata
			}
			return x.moveChildren(src, dst, name)
		}
		if err := clearDst(dst, existingDir, isDir); err != nil {
			return err
		}
		return x.rename(src, dst)
	case conflict.Skip:
		nlog.Infoln("skipping existing", dst)
		x.stats.Skipped++
		return nil
	case conflict.Rename:
		renamed, err := conflict.AvailableName(dst)
		if err != nil {
			return err
		}
		nlog.Infoln("renaming", dst, "=>", renamed)
		return x.rename(src, renamed)
	default:
		return ErrAborted
	}
}

func (x *extractor) rename(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return err
	}
	x.moved[src] = dst
	return nil
}

func (x *extractor) moveChildren(src, dst, name string) error {
	items, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, item := range items {
		n := item.Name()
		if err := x.move(filepath.Join(src, n), filepath.Join(dst, n), name+"/"+n); err != nil {
			return err
		}
	}
	return nil
}
