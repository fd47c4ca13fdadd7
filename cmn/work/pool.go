// Package work provides a bounded worker pool utility for concurrent processing of any kind.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package work

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// The pool maintains a fixed number of worker goroutines and a bounded work channel.
//
// Submission:
// - Submit() - blocking, returns the context error once the pool is aborted.
// In addition:
// - Stop() - no more submissions; workers drain the channel and exit
// - Wait() - to wait for all (pooled) goroutines to exit

type Callback[T any] func(item T)

type Pool[T any] struct {
	ctx    context.Context
	workCh chan T
	cb     Callback[T]
	g      *errgroup.Group
	cnt    atomic.Int64
	once   sync.Once
}

// Other than self-explanatory parameters, cancelling `ctx` aborts the pool:
// pending (not yet started) items are dropped
func New[T any](ctx context.Context, numWorkers, chanCap int, cb Callback[T]) *Pool[T] {
	p := &Pool[T]{
		ctx:    ctx,
		workCh: make(chan T, chanCap),
		cb:     cb,
		g:      &errgroup.Group{},
	}
	for range max(numWorkers, 1) {
		p.g.Go(p.worker)
	}
	return p
}

func (p *Pool[T]) worker() error {
	for {
		select {
		case item, ok := <-p.workCh:
			if !ok {
				return nil
			}
			if p.ctx.Err() != nil {
				continue // aborted: drain without processing
			}
			p.cb(item)
			p.cnt.Add(1)
		case <-p.ctx.Done():
			return p.ctx.Err()
		}
	}
}

func (p *Pool[T]) Submit(item T) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	select {
	case p.workCh <- item:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

func (p *Pool[T]) NumDone() int64 { return p.cnt.Load() }
func (p *Pool[T]) Stop()          { p.once.Do(func() { close(p.workCh) }) }
func (p *Pool[T]) Wait() error    { return p.g.Wait() }
