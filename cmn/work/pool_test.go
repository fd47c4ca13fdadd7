// Package work provides a bounded worker pool utility for concurrent processing of any kind.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package work_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NVIDIA/ouch/cmn/work"
	"github.com/NVIDIA/ouch/tools/tassert"
)

func TestPoolAll(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = make(map[int]bool)
		busy atomic.Int32
		peak atomic.Int32
	)
	p := work.New(context.Background(), 3, 4, func(i int) {
		n := busy.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		mu.Lock()
		seen[i] = true
		mu.Unlock()
		busy.Add(-1)
	})
	for i := range 50 {
		tassert.CheckFatal(t, p.Submit(i))
	}
	p.Stop()
	tassert.CheckFatal(t, p.Wait())

	tassert.Errorf(t, p.NumDone() == 50, "expecting 50 done, got %d", p.NumDone())
	tassert.Errorf(t, len(seen) == 50, "expecting 50 distinct items, got %d", len(seen))
	tassert.Errorf(t, peak.Load() <= 3, "concurrency exceeded: %d", peak.Load())
}

func TestPoolAbort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})
	p := work.New(ctx, 1, 1, func(int) {
		close(started)
		<-release
	})
	tassert.CheckFatal(t, p.Submit(1))
	<-started
	tassert.CheckFatal(t, p.Submit(2)) // queued
	cancel()
	close(release)

	err := p.Submit(3)
	tassert.Errorf(t, err != nil, "expecting submit to fail once aborted")
	p.Stop()
	p.Wait()
	tassert.Errorf(t, p.NumDone() <= 1, "queued item must not run after abort, done %d", p.NumDone())
}
