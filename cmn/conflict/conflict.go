// Package conflict decides what to do when a destination path already exists
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package conflict

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/NVIDIA/ouch/cmn/debug"
	"github.com/NVIDIA/ouch/cmn/nlog"
)

type (
	Policy int
	Action int

	// Question describes a single collision between an incoming item and
	// an existing destination path
	Question struct {
		Path        string // existing destination
		Incoming    string // entry (or input) name, for display
		IsDir       bool   // incoming is a directory
		ExistingDir bool   // destination is a directory
	}

	// AskFunc prompts for a decision; applyAll makes it stick for the rest
	// of the operation
	AskFunc func(q *Question) (action Action, applyAll bool, err error)

	// Resolver is safe for concurrent use; prompts are serialized
	Resolver struct {
		ask    AskFunc
		mu     sync.Mutex
		sticky Action
		policy Policy
		merge  bool
		stuck  bool
	}
)

const (
	Ask Policy = iota
	AlwaysYes
	AlwaysNo
)

const (
	Overwrite Action = iota
	Skip
	Rename
	Merge
	Abort
)

var ErrNoPrompt = errors.New("destination exists and there is no way to ask (use --yes or --no)")

var (
	policies = [...]string{"ask", "yes", "no"}
	actions  = [...]string{"overwrite", "skip", "rename", "merge", "abort"}
)

func (p Policy) String() string { return policies[p] }
func (a Action) String() string { return actions[a] }

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "ask":
		return Ask, nil
	case "yes", "always-yes", "overwrite":
		return AlwaysYes, nil
	case "no", "always-no", "skip":
		return AlwaysNo, nil
	}
	return Ask, fmt.Errorf("invalid conflict policy %q (expecting one of: %v)", s, policies)
}

func New(policy Policy, ask AskFunc, merge bool) *Resolver {
	return &Resolver{policy: policy, ask: ask, merge: merge}
}

// Resolve returns the action for a given collision. Overwrite of an existing
// directory by a directory means merge into it (and reapply metadata).
func (r *Resolver) Resolve(q *Question) (Action, error) {
	if q.IsDir && q.ExistingDir && r.merge {
		return Merge, nil
	}
	switch r.policy {
	case AlwaysYes:
		return Overwrite, nil
	case AlwaysNo:
		return Skip, nil
	}
	debug.Assert(r.policy == Ask, r.policy)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stuck {
		return r.sticky, nil
	}
	if r.ask == nil {
		return Abort, ErrNoPrompt
	}
	action, all, err := r.ask(q)
	if err != nil {
		return Abort, err
	}
	if action == Merge && !(q.IsDir && q.ExistingDir) {
		nlog.Warningf("cannot merge into %q (not a directory), overwriting", q.Path)
		action = Overwrite
	}
	if all {
		r.sticky, r.stuck = action, true
	}
	return action, nil
}

// AvailableName returns the first non-existing "stem_N.ext" variation of
// the path, N = 1, 2, ...; the extension is everything past the first dot:
// "archive.tar.gz" => "archive_1.tar.gz"
func AvailableName(path string) (string, error) {
	var (
		dir, name = filepath.Split(path)
		stem, ext = name, ""
	)
	if i := strings.IndexByte(name, '.'); i > 0 {
		stem, ext = name[:i], name[i:]
	}
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, stem+"_"+strconv.Itoa(n)+ext)
		_, err := os.Lstat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
}
