// Package xs materializes archives on the local filesystem (extract, create, list)
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package xs

import (
	"github.com/NVIDIA/ouch/cmn/archive"
	"github.com/NVIDIA/ouch/cmn/conflict"
)

type (
	TraversalPolicy int

	// ProgressFunc is called once per entry upon completion (done == total),
	// and also in between while copying large files (total is -1 when unknown)
	ProgressFunc func(path string, done, total int64)

	// Config is immutable for the duration of an operation (passed by value)
	Config struct {
		Ask         conflict.AskFunc
		Progress    ProgressFunc
		res         *conflict.Resolver // shared by all jobs of a batch
		Password    string
		TempDir     string
		Threads     int
		MaxThreads  int
		Policy      conflict.Policy
		OnTraversal TraversalPolicy

		FollowSymlinks   bool
		Merge            bool
		Flatten          bool // single top-level item goes directly into dst; otherwise dst/<stem>
		MaterializeLinks bool // replace in-tree symlinks with copies of their targets
		SkipHidden       bool
		RemoveSource     bool // remove the source upon successful decompression
	}

	Stats struct {
		Warnings []Warning
		Entries  int64
		Bytes    int64
		Skipped  int64
	}
)

const (
	TraversalAbort TraversalPolicy = iota
	TraversalSkip
)

func (c *Config) archiveOpts() *archive.Options {
	return &archive.Options{
		Password:   c.Password,
		TempDir:    c.TempDir,
		Threads:    c.Threads,
		MaxThreads: c.MaxThreads,
	}
}

func (c *Config) resolver() *conflict.Resolver {
	if c.res != nil {
		return c.res
	}
	return conflict.New(c.Policy, c.Ask, c.Merge)
}

// in-flight updates while copying; the completing one comes from report()
func (c *Config) progress(name string, total int64) func(int64) {
	if c.Progress == nil {
		return nil
	}
	return func(done int64) {
		if total < 0 || done < total {
			c.Progress(name, done, total)
		}
	}
}

// exactly once per processed entry (directories and links included)
func (c *Config) report(name string, done int64) {
	if c.Progress != nil {
		c.Progress(name, done, done)
	}
}
