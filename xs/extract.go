// Package xs materializes archives on the local filesystem (extract, create, list)
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package xs

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/NVIDIA/ouch/cmn/archive"
	"github.com/NVIDIA/ouch/cmn/conflict"
	"github.com/NVIDIA/ouch/cmn/cos"
	"github.com/NVIDIA/ouch/cmn/nlog"

	"github.com/pkg/errors"
)

const copyBufSize = 64 * cos.KiB

type (
	// directory metadata, applied after all descendants (deepest first)
	dirMeta struct {
		mtime   time.Time
		path    string
		mode    os.FileMode
		hasMode bool
	}
	pendingLink struct {
		mtime  time.Time
		path   string
		target string
		name   string
	}
	extractor struct {
		ctx       context.Context
		cfg       *Config
		res       *conflict.Resolver
		root      string              // destination, absolute and with symlinks resolved
		created   map[string]struct{} // paths created by this very operation
		renamed   map[string]string   // archived dir name => actual destination
		skipped   map[string]struct{} // archived dirs skipped along with their content
		extracted map[string]string   // archived file name => destination (hardlink targets)
		moved     map[string]string   // flatten: scratch path => final path
		dirs      []dirMeta
		links     []pendingLink
		buf       []byte
		stats     Stats
	}
)

// Extract decompresses `src` into the `dst` directory: archives entry by entry,
// single-stream files as one file named after the source (minus extensions).
// Partially extracted state is left as is upon failure.
func Extract(ctx context.Context, src string, chain archive.Chain, dst string, cfg Config) (Stats, error) {
	opts := cfg.archiveOpts()
	if err := archive.CheckRead(chain, opts); err != nil {
		return Stats{}, err
	}
	fh, err := os.Open(src)
	if err != nil {
		return Stats{}, err
	}
	defer fh.Close()

	x, err := newExtractor(ctx, dst, &cfg)
	if err != nil {
		return Stats{}, err
	}
	switch {
	case !chain.IsArchive():
		err = x.extractStream(fh, src, chain, opts)
	case cfg.Flatten:
		err = x.flatten(fh, src, chain, opts)
	default:
		err = x.extractArchive(fh, chain, opts)
	}
	if err != nil {
		return x.stats, errors.Wrapf(err, "%s (%s)", src, chain)
	}
	if cfg.RemoveSource {
		if err := os.Remove(src); err != nil {
			return x.stats, err
		}
		nlog.Infoln("removed", src)
	}
	return x.stats, nil
}

func newExtractor(ctx context.Context, dst string, cfg *Config) (*extractor, error) {
	x := &extractor{
		ctx:       ctx,
		cfg:       cfg,
		res:       cfg.resolver(),
		created:   make(map[string]struct{}),
		renamed:   make(map[string]string),
		skipped:   make(map[string]struct{}),
		extracted: make(map[string]string),
		buf:       make([]byte, copyBufSize),
	}
	abs, err := filepath.Abs(dst)
	if err != nil {
		return nil, err
	}
	if err := x.mkdirAll(abs); err != nil {
		return nil, err
	}
	if x.root, err = filepath.EvalSymlinks(abs); err != nil {
		return nil, err
	}
	return x, nil
}

func (x *extractor) extractArchive(src io.Reader, chain archive.Chain, opts *archive.Options) error {
	if err := x.extractEntries(src, chain, opts); err != nil {
		return err
	}
	return x.applyDirs()
}

// all entries and deferred links; directory metadata remains pending
func (x *extractor) extractEntries(src io.Reader, chain archive.Chain, opts *archive.Options) error {
	r, err := archive.OpenReader(chain, src, opts)
	if err != nil {
		return err
	}
	defer r.Close()
	for {
		if x.ctx.Err() != nil {
			return ErrCancelled
		}
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := x.entry(e, r); err != nil {
			return err
		}
	}
	return x.materialize()
}

// single-stream: synthesize one file entry out of the source's stem and attributes
func (x *extractor) extractStream(src *os.File, srcPath string, chain archive.Chain, opts *archive.Options) error {
	finfo, err := src.Stat()
	if err != nil {
		return err
	}
	r, err := archive.NewStreamReader(chain, src, opts)
	if err != nil {
		return err
	}
	defer r.Close()
	e := &archive.Entry{
		Name:    stemOf(srcPath),
		Kind:    archive.EntryFile,
		ModTime: finfo.ModTime(),
		Mode:    finfo.Mode().Perm(),
		Size:    -1,
		HasMode: true,
	}
	return x.entry(e, r)
}

func stemOf(src string) string {
	if chain, stem, err := archive.FromName(src); err == nil && len(chain) > 0 {
		return stem
	}
	return filepath.Base(src)
}

//
// entries
//

func (x *extractor) entry(e *archive.Entry, r io.Reader) error {
	name, ok := sanitize(e.Name)
	if !ok {
		return x.traversal(e.Name)
	}
	if name == "." {
		return nil // the destination itself
	}
	if x.isSkipped(name) {
		x.stats.Skipped++
		return nil
	}
	dst := x.destPath(name)
	if !x.within(dst) {
		return x.traversal(e.Name)
	}
	dst, skip, err := x.resolve(name, dst, e.IsDir())
	if err != nil || skip {
		return err
	}
	if err := x.mkdirAll(filepath.Dir(dst)); err != nil {
		return err
	}
	before := x.stats.Bytes
	switch e.Kind {
	case archive.EntryDir:
		err = x.dir(e, dst)
	case archive.EntrySymlink:
		err = x.symlink(e, name, dst)
	case archive.EntryHardlink:
		err = x.hardlink(e, name, dst)
	default:
		err = x.file(e, name, dst, r)
	}
	if err != nil {
		return err
	}
	x.stats.Entries++
	x.cfg.report(name, x.stats.Bytes-before)
	return nil
}

func (x *extractor) traversal(name string) error {
	if x.cfg.OnTraversal == TraversalSkip {
		x.stats.warn(TraversalSkipped, name, "")
		x.stats.Skipped++
		return nil
	}
	return NewErrPathTraversal(name)
}

// archived name => clean slash-separated relative path; false if it escapes
func sanitize(name string) (string, bool) {
	name = strings.TrimLeft(filepath.ToSlash(name), "/")
	if name == "" {
		return ".", true
	}
	clean := path.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return clean, true
}

// parent directories of `name`, deepest first
func ancestors(name string) []string {
	var out []string
	for i := strings.LastIndexByte(name, '/'); i > 0; i = strings.LastIndexByte(name[:i], '/') {
		out = append(out, name[:i])
	}
	return out
}

func (x *extractor) isSkipped(name string) bool {
	for _, dir := range ancestors(name) {
		if _, ok := x.skipped[dir]; ok {
			return true
		}
	}
	return false
}

// join with the destination, taking into account renamed parents
func (x *extractor) destPath(name string) string {
	for _, dir := range ancestors(name) {
		if renamed, ok := x.renamed[dir]; ok {
			return filepath.Join(renamed, filepath.FromSlash(name[len(dir)+1:]))
		}
	}
	return filepath.Join(x.root, filepath.FromSlash(name))
}

// the nearest existing parent, with symlinks resolved, must be inside the destination
func (x *extractor) within(dst string) bool {
	dir := filepath.Dir(dst)
	for {
		if _, err := os.Lstat(dir); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return false
	}
	return isWithin(x.root, resolved)
}

func isWithin(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+cos.PathSeparator)
}

// resolve collision with an existing destination, if any
func (x *extractor) resolve(name, dst string, isDir bool) (string, bool, error) {
	finfo, err := os.Lstat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return dst, false, nil
		}
		return "", false, err
	}
	existingDir := finfo.IsDir()
	if _, ok := x.created[dst]; ok {
		// created earlier in this operation: merge dirs, the last one wins otherwise
		if isDir && existingDir {
			return dst, false, nil
		}
		return dst, false, clearDst(dst, existingDir, isDir)
	}
	q := &conflict.Question{Path: dst, Incoming: name, IsDir: isDir, ExistingDir: existingDir}
	action, err := x.res.Resolve(q)
	if err != nil {
		return "", false, err
	}
	if action == conflict.Merge && !(isDir && existingDir) {
		action = conflict.Overwrite
	}
	switch action {
	case conflict.Overwrite:
		if isDir && existingDir {
			return dst, false, nil // merge and reapply metadata
		}
		return dst, false, clearDst(dst, existingDir, isDir)
	case conflict.Merge:
		x.created[dst] = struct{}{} // metadata stays as is
		return dst, true, nil
	case conflict.Skip:
		nlog.Infoln("skipping existing", dst)
		x.stats.Skipped++
		if isDir {
			x.skipped[name] = struct{}{}
		}
		return "", true, nil
	case conflict.Rename:
		renamed, err := conflict.AvailableName(dst)
		if err != nil {
			return "", false, err
		}
		if isDir {
			x.renamed[name] = renamed
		}
		nlog.Infoln("renaming", dst, "=>", renamed)
		return renamed, false, nil
	default:
		return "", false, ErrAborted
	}
}

// non-directories get replaced atomically via rename, unless the incoming one is a directory
func clearDst(dst string, existingDir, incomingDir bool) error {
	switch {
	case existingDir:
		return os.RemoveAll(dst)
	case incomingDir:
		return os.Remove(dst)
	}
	return nil
}

// creates all missing directories while keeping track of each
func (x *extractor) mkdirAll(dir string) error {
	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		finfo, err := os.Stat(d)
		if err == nil {
			if !finfo.IsDir() {
				return &os.PathError{Op: "mkdir", Path: d, Err: errNotDir}
			}
			break
		}
		if !os.IsNotExist(err) {
			return err
		}
		missing = append(missing, d)
		if filepath.Dir(d) == d {
			break
		}
	}
	for _, d := range slices.Backward(missing) {
		if err := os.Mkdir(d, cos.PermRWXRXRX); err != nil && !os.IsExist(err) {
			return err
		}
		x.created[d] = struct{}{}
	}
	return nil
}

var errNotDir = errors.New("not a directory")

func (x *extractor) dir(e *archive.Entry, dst string) error {
	if _, ok := x.created[dst]; !ok {
		if err := x.mkdirAll(dst); err != nil {
			return err
		}
	}
	x.dirs = append(x.dirs, dirMeta{path: dst, mode: e.Mode, hasMode: e.HasMode, mtime: e.ModTime})
	return nil
}

func (x *extractor) file(e *archive.Entry, name, dst string, r io.Reader) error {
	perm := cos.PermRWRR
	if e.HasMode {
		perm = e.Mode.Perm()
	}
	reader := cos.NewCallbackReader(r, x.cfg.progress(name, e.Size))
	written, err := cos.SaveReaderSafe(dst, reader, x.buf, perm)
	if err != nil {
		return err
	}
	x.stats.Bytes += written
	x.created[dst] = struct{}{}
	x.extracted[name] = dst
	return chtimes(dst, e.ModTime)
}

func chtimes(dst string, mtime time.Time) error {
	if mtime.IsZero() {
		return nil
	}
	return os.Chtimes(dst, mtime, mtime)
}

func (x *extractor) symlink(e *archive.Entry, name, dst string) error {
	if x.cfg.MaterializeLinks {
		x.links = append(x.links, pendingLink{path: dst, target: e.Linkname, name: name, mtime: e.ModTime})
		return nil
	}
	return x.makeSymlink(e.Linkname, dst, e.ModTime)
}

// symlink next to the destination, then rename into place
func (x *extractor) makeSymlink(target, dst string, mtime time.Time) error {
	tmp, err := tempName(dst)
	if err != nil {
		return err
	}
	if err := os.Symlink(target, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	x.created[dst] = struct{}{}
	if mtime.IsZero() {
		return nil
	}
	if err := lutimes(dst, mtime); err != nil {
		nlog.Warningln("failed to set symlink mtime:", err)
	}
	return nil
}

// a unique (unused) name next to dst
func tempName(dst string) (string, error) {
	fh, err := cos.CreateTempNear(dst)
	if err != nil {
		return "", err
	}
	name := fh.Name()
	fh.Close()
	return name, os.Remove(name)
}

func (x *extractor) hardlink(e *archive.Entry, name, dst string) error {
	target, ok := sanitize(e.Linkname)
	if !ok {
		return x.traversal(e.Linkname)
	}
	src, ok := x.extracted[target]
	if ok {
		tmp, err := tempName(dst)
		if err != nil {
			return err
		}
		if err = os.Link(src, tmp); err == nil {
			if err = os.Rename(tmp, dst); err == nil {
				x.created[dst] = struct{}{}
				x.extracted[name] = dst
				return nil
			}
			os.Remove(tmp)
		}
		nlog.Warningln("failed to link", dst, "=>", src+":", err, "- copying instead")
		return x.copyFile(src, name, dst, e.ModTime)
	}

	// not extracted by this operation: copy if there's one on disk
	x.stats.warn(DanglingHardlink, name, "target "+e.Linkname+" not extracted")
	if src, ok := x.onDisk(x.destPath(target)); ok {
		return x.copyFile(src, name, dst, e.ModTime)
	}
	x.stats.Skipped++
	return nil
}

// regular file inside the destination, with all symlinks (including the last one) resolved
func (x *extractor) onDisk(p string) (string, bool) {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil || !isWithin(x.root, resolved) {
		return "", false
	}
	finfo, err := os.Lstat(resolved)
	if err != nil || !finfo.Mode().IsRegular() {
		return "", false
	}
	return resolved, true
}

func (x *extractor) copyFile(src, name, dst string, mtime time.Time) error {
	fh, err := os.Open(src)
	if err != nil {
		return err
	}
	defer fh.Close()
	finfo, err := fh.Stat()
	if err != nil {
		return err
	}
	e := &archive.Entry{Name: name, Kind: archive.EntryFile, Size: finfo.Size(), Mode: finfo.Mode().Perm(), HasMode: true, ModTime: mtime}
	return x.file(e, name, dst, fh)
}

// symlinks to in-tree regular files become copies; the rest remain symlinks
func (x *extractor) materialize() error {
	for _, link := range x.links {
		src := link.target
		if !filepath.IsAbs(src) {
			src = filepath.Join(filepath.Dir(link.path), filepath.FromSlash(src))
		}
		if resolved, ok := x.onDisk(src); ok {
			if err := x.copyFile(resolved, link.name, link.path, link.mtime); err != nil {
				return err
			}
			continue
		}
		x.stats.warn(LinkNotMaterialized, link.name, "target "+link.target)
		if err := x.makeSymlink(link.target, link.path, link.mtime); err != nil {
			return err
		}
	}
	x.links = x.links[:0]
	return nil
}

// deepest first, so that restoring read-only permissions
// and mtimes of a parent happens last
func (x *extractor) applyDirs() error {
	slices.SortStableFunc(x.dirs, func(a, b dirMeta) int {
		return strings.Count(b.path, cos.PathSeparator) - strings.Count(a.path, cos.PathSeparator)
	})
	for _, d := range x.dirs {
		if d.hasMode {
			if err := os.Chmod(d.path, d.mode.Perm()); err != nil {
				return err
			}
		}
		if err := chtimes(d.path, d.mtime); err != nil {
			return err
		}
	}
	x.dirs = x.dirs[:0]
	return nil
}
