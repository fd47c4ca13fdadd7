// Package cli provides the compress, decompress, and list commands.
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package cli

import (
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/NVIDIA/ouch/cmn/archive"
	"github.com/NVIDIA/ouch/cmn/cos"
	"github.com/NVIDIA/ouch/xs"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli"
)

type (
	listEntry struct {
		ModTime  time.Time `json:"mtime"`
		Name     string    `json:"name"`
		Kind     string    `json:"kind"`
		Linkname string    `json:"link,omitempty"`
		Mode     string    `json:"mode,omitempty"`
		Size     int64     `json:"size"`
	}
	listArchive struct {
		Path    string       `json:"path"`
		Format  string       `json:"format"`
		Entries []*listEntry `json:"entries"`
	}
)

func (a *acli) listCmd() cli.Command {
	return cli.Command{
		Name:      "list",
		Aliases:   []string{"l", "ls"},
		Usage:     "list archived entries without extracting",
		ArgsUsage: "ARCHIVES...",
		Flags:     []cli.Flag{treeFlag, jsonFlag},
		Action:    a.listHandler,
	}
}

func (a *acli) listHandler(c *cli.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return missingArgumentsError(c, "ARCHIVES...")
	}
	cfg, err := a.xsConfig(c)
	if err != nil {
		return err
	}
	cfg.Progress = nil
	a.wait()
	var (
		errs     = cos.NewErrs(len(args))
		archives = make([]*listArchive, 0, len(args))
		asJSON   = flagIsSet(c, jsonFlag)
		tree     = flagIsSet(c, treeFlag)
	)
	for i, src := range args {
		chain, err := a.inputChain(c, src, cfg)
		if err != nil {
			errs.Add(fmt.Errorf("%s: %w", src, err))
			continue
		}
		la := &listArchive{Path: src, Format: chain.String()}
		if !asJSON {
			if i > 0 {
				fmt.Fprintln(a.outWriter)
			}
			fmt.Fprintf(a.outWriter, "Archive: %s\n", fgreen(src))
		}
		err = xs.List(a.ctx, src, chain, cfg, func(e *archive.Entry) error {
			if asJSON {
				la.Entries = append(la.Entries, toListEntry(e))
				return nil
			}
			printEntry(a.outWriter, e, tree)
			return nil
		})
		if err != nil {
			errs.Add(err)
			continue
		}
		archives = append(archives, la)
	}
	if asJSON {
		b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(archives, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(a.outWriter, string(b))
	}
	return batchErr(&errs, len(args))
}

func toListEntry(e *archive.Entry) *listEntry {
	le := &listEntry{
		Name:     e.Name,
		Kind:     e.Kind.String(),
		Linkname: e.Linkname,
		Size:     e.Size,
		ModTime:  e.ModTime,
	}
	if e.HasMode {
		le.Mode = fmt.Sprintf("%#o", e.Mode.Perm())
	}
	return le
}

func printEntry(w io.Writer, e *archive.Entry, tree bool) {
	name := strings.TrimSuffix(e.Name, "/")
	if tree {
		depth := strings.Count(name, "/")
		name = strings.Repeat("  ", depth) + path.Base(name)
	}
	switch e.Kind {
	case archive.EntryDir:
		fmt.Fprintln(w, fblue(name+"/"))
	case archive.EntrySymlink:
		fmt.Fprintln(w, fcyan(name), "->", e.Linkname)
	case archive.EntryHardlink:
		fmt.Fprintln(w, name, "=>", e.Linkname)
	default:
		fmt.Fprintln(w, name)
	}
}
