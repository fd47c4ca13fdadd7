// Package cli provides the compress, decompress, and list commands.
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package cli

import (
	"io"
	"path/filepath"
	"sync"

	"github.com/vbauerster/mpb/v4"
	"github.com/vbauerster/mpb/v4/decor"
)

const (
	barWidth   = 64
	barNameLen = 32
)

type (
	fileBar struct {
		bar  *mpb.Bar
		done int64
	}
	// one bar per file being written; bars are removed upon completion
	progressBars struct {
		p    *mpb.Progress
		bars map[string]*fileBar
		mu   sync.Mutex
	}
)

func newProgressBars(w io.Writer) *progressBars {
	return &progressBars{
		p:    mpb.New(mpb.WithWidth(barWidth), mpb.WithOutput(w)),
		bars: make(map[string]*fileBar, 8),
	}
}

func barName(path string) string {
	name := filepath.Base(path)
	if len(name) > barNameLen {
		name = "..." + name[len(name)-barNameLen+3:]
	}
	return name
}

// xs.ProgressFunc: in-flight updates have done < total (or unknown total);
// the final per-entry call has done == total
func (pb *progressBars) update(path string, done, total int64) {
	pb.mu.Lock()
	fb, ok := pb.bars[path]
	if done == total {
		delete(pb.bars, path)
		pb.mu.Unlock()
		if ok {
			fb.bar.SetTotal(total, true)
		}
		return // nothing in flight: entries that complete at once get no bar
	}
	if !ok || done < fb.done {
		if ok {
			fb.bar.SetTotal(fb.done, true) // same name, another file
		}
		fb = &fileBar{bar: pb.p.AddBar(max(total, 0),
			mpb.BarRemoveOnComplete(),
			mpb.PrependDecorators(
				decor.Name(barName(path), decor.WC{W: barNameLen + 1, C: decor.DidentRight}),
				decor.CountersKibiByte("% .2f / % .2f", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(decor.Percentage(decor.WCSyncWidth)),
		)}
		pb.bars[path] = fb
	}
	pb.mu.Unlock()

	if total < 0 {
		fb.bar.SetTotal(done+1, false) // unknown size: keep ahead
	}
	fb.bar.IncrInt64(done - fb.done)
	fb.done = done
}

// complete whatever remains and wait for rendering to finish
func (pb *progressBars) wait() {
	pb.mu.Lock()
	for path, fb := range pb.bars {
		fb.bar.SetTotal(fb.done, true)
		delete(pb.bars, path)
	}
	pb.mu.Unlock()
	pb.p.Wait()
}
