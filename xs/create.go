// Package xs materializes archives on the local filesystem (extract, create, list)
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package xs

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/NVIDIA/ouch/cmn/archive"
	"github.com/NVIDIA/ouch/cmn/conflict"
	"github.com/NVIDIA/ouch/cmn/cos"
	"github.com/NVIDIA/ouch/cmn/nlog"
	"github.com/NVIDIA/ouch/fs"

	"github.com/dchest/safefile"
	"github.com/pkg/errors"
)

type creator struct {
	ctx    context.Context
	cfg    *Config
	w      archive.Writer
	out    os.FileInfo // the (temporary) output itself, never to be archived
	linked map[inodeID]string
	buf    []byte
	stats  Stats
}

// Compress writes `inputs` into `out`. A container chain archives files and
// directories recursively (names relative to each input's parent); a
// compression-only chain takes exactly one regular file.
// The output is written to a temporary file and renamed into place upon success.
func Compress(ctx context.Context, inputs []string, out string, chain archive.Chain, cfg Config) (Stats, error) {
	opts := cfg.archiveOpts()
	if err := archive.CheckWrite(chain, opts); err != nil {
		return Stats{}, err
	}
	if !chain.IsArchive() && len(inputs) != 1 {
		return Stats{}, ErrMultipleInputsRequireContainer
	}
	finfos := make([]os.FileInfo, len(inputs))
	for i, in := range inputs {
		finfo, err := os.Stat(in)
		if err != nil {
			return Stats{}, err
		}
		finfos[i] = finfo
	}
	if !chain.IsArchive() {
		if finfos[0].IsDir() {
			return Stats{}, errors.Wrapf(ErrDirRequiresContainer, "%s (try %q)", inputs[0], archive.SuggestArchiveName(out))
		}
	}

	out, skip, err := resolveOutput(out, &cfg)
	if err != nil {
		return Stats{}, err
	}
	if skip {
		return Stats{Skipped: 1}, nil
	}
	fh, err := safefile.Create(out, cos.PermRWRR)
	if err != nil {
		return Stats{}, err
	}
	defer fh.Close() // (removes the temporary unless committed)

	c := &creator{ctx: ctx, cfg: &cfg, linked: make(map[inodeID]string), buf: make([]byte, copyBufSize)}
	if c.out, err = fh.Stat(); err != nil {
		return Stats{}, err
	}
	if chain.IsArchive() {
		err = c.archive(inputs, fh, chain, opts)
	} else {
		err = c.stream(inputs[0], finfos[0], fh, chain, opts)
	}
	if err != nil {
		return c.stats, errors.Wrapf(err, "%s (%s)", out, chain)
	}
	if err := fh.Commit(); err != nil {
		return c.stats, err
	}
	nlog.Infoln("created", out)
	return c.stats, nil
}

// collision with an existing output
func resolveOutput(out string, cfg *Config) (string, bool, error) {
	finfo, err := os.Lstat(out)
	if os.IsNotExist(err) {
		return out, false, nil
	}
	if err != nil {
		return "", false, err
	}
	q := &conflict.Question{Path: out, Incoming: filepath.Base(out), ExistingDir: finfo.IsDir()}
	action, err := cfg.resolver().Resolve(q)
	if err != nil {
		return "", false, err
	}
	switch action {
	case conflict.Overwrite, conflict.Merge:
		if finfo.IsDir() {
			return "", false, &os.PathError{Op: "create", Path: out, Err: errors.New("is a directory")}
		}
		return out, false, nil
	case conflict.Skip:
		nlog.Infoln("skipping existing", out)
		return "", true, nil
	case conflict.Rename:
		renamed, err := conflict.AvailableName(out)
		if err == nil {
			nlog.Infoln("renaming", out, "=>", renamed)
		}
		return renamed, false, err
	default:
		return "", false, ErrAborted
	}
}

func (c *creator) stream(in string, finfo os.FileInfo, dst io.Writer, chain archive.Chain, opts *archive.Options) error {
	src, err := os.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()
	w, err := archive.NewStreamWriter(chain, dst, opts)
	if err != nil {
		return err
	}
	reader := cos.NewCallbackReader(src, c.cfg.progress(in, finfo.Size()))
	n, err := cos.CopyBuffer(w, reader, c.buf)
	if erc := w.Close(); err == nil {
		err = erc
	}
	if err != nil {
		return err
	}
	c.stats.Entries++
	c.stats.Bytes += n
	c.cfg.report(in, n)
	return nil
}

func (c *creator) archive(inputs []string, dst io.Writer, chain archive.Chain, opts *archive.Options) error {
	w, err := archive.NewWriter(chain, dst, opts)
	if err != nil {
		return err
	}
	c.w = w
	for _, in := range inputs {
		if err := c.walk(in); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

func (c *creator) walk(in string) error {
	abs, err := filepath.Abs(in)
	if err != nil {
		return err
	}
	base := filepath.Dir(abs)
	opts := &fs.WalkOpts{
		Sorted:         true,
		FollowSymlinks: c.cfg.FollowSymlinks,
		SkipHidden:     c.cfg.SkipHidden,
		Callback: func(path string, _ fs.DirEntry) error {
			if c.ctx.Err() != nil {
				return ErrCancelled
			}
			rel, err := filepath.Rel(base, path)
			if err != nil {
				return err
			}
			return c.visit(path, filepath.ToSlash(rel))
		},
	}
	return fs.Walk(abs, opts)
}

func (c *creator) visit(path, name string) error {
	if cos.IsTempName(path) {
		return fs.SkipThis // in-flight outputs and scratch dirs (ours)
	}
	finfo, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if finfo.Mode()&os.ModeSymlink != 0 {
		if !c.cfg.FollowSymlinks {
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return c.append(path, &archive.Entry{Name: name, Kind: archive.EntrySymlink, Linkname: target, ModTime: finfo.ModTime()}, nil)
		}
		if finfo, err = os.Stat(path); err != nil {
			c.stats.warn(BrokenSymlinkSkipped, path, err.Error())
			c.stats.Skipped++
			return fs.SkipThis
		}
	}
	e := &archive.Entry{Name: name, ModTime: finfo.ModTime(), Mode: finfo.Mode().Perm(), HasMode: true}
	switch {
	case finfo.IsDir():
		e.Kind = archive.EntryDir
		return c.append(path, e, nil)
	case finfo.Mode().IsRegular():
		if os.SameFile(finfo, c.out) {
			return nil
		}
		if id, nlink, ok := inode(finfo); ok && nlink > 1 && c.w.Hardlinks() {
			if first, seen := c.linked[id]; seen {
				e.Kind, e.Linkname = archive.EntryHardlink, first
				return c.append(path, e, nil)
			}
			c.linked[id] = name
		}
		return c.file(path, e, finfo)
	default:
		c.stats.warn(UnsupportedSkipped, path, finfo.Mode().Type().String())
		c.stats.Skipped++
		return nil
	}
}

func (c *creator) file(path string, e *archive.Entry, finfo os.FileInfo) error {
	fh, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	e.Kind, e.Size = archive.EntryFile, finfo.Size()
	return c.append(path, e, cos.NewCallbackReader(fh, c.cfg.progress(path, e.Size)))
}

func (c *creator) append(path string, e *archive.Entry, r io.Reader) error {
	if err := c.w.Append(e, r); err != nil {
		return errors.Wrapf(err, "failed to append %q", e.Name)
	}
	var size int64
	if e.Kind == archive.EntryFile {
		size = e.Size
	}
	c.stats.Entries++
	c.stats.Bytes += size
	c.cfg.report(path, size)
	return nil
}
