// Package xs materializes archives on the local filesystem (extract, create, list)
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package xs

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"

	"github.com/NVIDIA/ouch/cmn/archive"
	"github.com/NVIDIA/ouch/cmn/nlog"
	"github.com/NVIDIA/ouch/cmn/work"
)

type (
	// Job is a single decompression: one source, one destination directory
	Job struct {
		Src   string
		Dst   string
		Chain archive.Chain
	}
	Result struct {
		Err   error
		Job   *Job
		Stats Stats
	}
)

// RunAll decompresses independent sources in parallel; failure of one does
// not affect the others. Jobs that share a destination directory run one
// after another (in the given order) on the same worker. Aborting (or
// cancelling) stops the batch: jobs that did not start fail with ErrCancelled.
// Results are returned in the order of jobs.
func RunAll(ctx context.Context, jobs []Job, cfg Config) []Result {
	results := make([]Result, len(jobs))
	for i := range jobs {
		results[i] = Result{Job: &jobs[i], Err: ErrCancelled}
	}
	if len(jobs) == 0 {
		return results
	}
	if cfg.res == nil {
		cfg.res = cfg.resolver() // apply-to-all answers span the batch
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	groups := groupByDst(jobs)
	cb := func(group []int) {
		for _, i := range group {
			if ctx.Err() != nil {
				return
			}
			job := &jobs[i]
			stats, err := Extract(ctx, job.Src, job.Chain, job.Dst, cfg)
			results[i] = Result{Job: job, Stats: stats, Err: err}
			if err == nil {
				continue
			}
			nlog.Errorln(job.Src+":", err)
			if errors.Is(err, ErrAborted) || errors.Is(err, ErrCancelled) {
				cancel()
				return
			}
		}
	}
	pool := work.New[[]int](ctx, min(len(groups), runtime.GOMAXPROCS(0)), len(groups), cb)
	for _, group := range groups {
		if err := pool.Submit(group); err != nil {
			break
		}
	}
	pool.Stop()
	pool.Wait()
	return results
}

// job indices grouped by destination (absolute, symlinks resolved), in order of appearance
func groupByDst(jobs []Job) [][]int {
	var (
		groups [][]int
		index  = make(map[string]int, len(jobs))
	)
	for i := range jobs {
		key := dstKey(jobs[i].Dst)
		if g, ok := index[key]; ok {
			groups[g] = append(groups[g], i)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, []int{i})
	}
	return groups
}

func dstKey(dst string) string {
	abs, err := filepath.Abs(dst)
	if err != nil {
		return filepath.Clean(dst)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
