// Package cos provides common low-level types and utilities for all ouch packages
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"syscall"

	"github.com/NVIDIA/ouch/cmn/debug"
)

const defaultMaxErrs = 8

// Errs accumulates errors from concurrent jobs (and closers).
// Duplicates (same message) are counted once; only the first `limit`
// distinct errors are retained.
type Errs struct {
	mu    sync.Mutex
	errs  []error
	seen  map[string]struct{}
	cnt   int
	limit int
}

func NewErrs(limit ...int) Errs {
	n := defaultMaxErrs
	if len(limit) > 0 && limit[0] > 0 {
		n = limit[0]
	}
	return Errs{limit: n, seen: make(map[string]struct{}, n)}
}

func (e *Errs) Add(err error) {
	debug.Assert(err != nil)
	msg := err.Error()
	e.mu.Lock()
	if e.seen == nil {
		e.seen = make(map[string]struct{}, defaultMaxErrs)
	}
	if _, ok := e.seen[msg]; !ok {
		e.seen[msg] = struct{}{}
		e.cnt++
		if len(e.errs) < max(e.limit, 1) {
			e.errs = append(e.errs, err)
		}
	}
	e.mu.Unlock()
}

func (e *Errs) Cnt() int {
	e.mu.Lock()
	cnt := e.cnt
	e.mu.Unlock()
	return cnt
}

// JoinErr returns the number of distinct errors and the retained ones joined
func (e *Errs) JoinErr() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cnt == 0 {
		return 0, nil
	}
	return e.cnt, errors.Join(e.errs...)
}

func (e *Errs) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.cnt {
	case 0:
		return ""
	case 1:
		return e.errs[0].Error()
	}
	more := e.cnt - 1
	return fmt.Sprintf("%v (and %d more error%s)", e.errs[0], more, Plural(more))
}

func (e *Errs) Unwrap() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.errs)
}

// ErrSignal carries the signal that interrupted the process; exit code
// follows the shell convention (128 + signo)
type ErrSignal struct {
	signal syscall.Signal
}

func NewSignalError(s syscall.Signal) *ErrSignal { return &ErrSignal{signal: s} }

func (e *ErrSignal) Error() string { return "interrupted by " + e.signal.String() }
func (e *ErrSignal) ExitCode() int { return 128 + int(e.signal) }
