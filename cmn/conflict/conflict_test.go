// Package conflict decides what to do when a destination path already exists
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package conflict_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/NVIDIA/ouch/cmn/conflict"
	"github.com/NVIDIA/ouch/tools/tassert"
)

func TestPolicies(t *testing.T) {
	file := &conflict.Question{Path: "a.txt"}
	dirs := &conflict.Question{Path: "d", IsDir: true, ExistingDir: true}

	yes := conflict.New(conflict.AlwaysYes, nil, false)
	for _, q := range []*conflict.Question{file, dirs} {
		action, err := yes.Resolve(q)
		tassert.CheckFatal(t, err)
		tassert.Errorf(t, action == conflict.Overwrite, "always-yes: expected overwrite, got %s", action)
	}

	no := conflict.New(conflict.AlwaysNo, nil, false)
	action, err := no.Resolve(file)
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, action == conflict.Skip, "always-no: expected skip, got %s", action)

	merge := conflict.New(conflict.AlwaysNo, nil, true)
	action, err = merge.Resolve(dirs)
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, action == conflict.Merge, "merge: expected merge, got %s", action)
	action, err = merge.Resolve(file)
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, action == conflict.Skip, "merge (file): expected skip, got %s", action)

	_, err = conflict.New(conflict.Ask, nil, false).Resolve(file)
	tassert.ErrorIs(t, err, conflict.ErrNoPrompt)
}

func TestAskSticky(t *testing.T) {
	var (
		asked int
		r     = conflict.New(conflict.Ask, func(*conflict.Question) (conflict.Action, bool, error) {
			asked++
			return conflict.Skip, asked == 2, nil
		}, false)
	)
	for range 5 {
		action, err := r.Resolve(&conflict.Question{Path: "x"})
		tassert.CheckFatal(t, err)
		tassert.Errorf(t, action == conflict.Skip, "expected skip, got %s", action)
	}
	tassert.Errorf(t, asked == 2, "expected to be asked twice, got %d", asked)
}

func TestAskSerialized(t *testing.T) {
	var (
		inflight, maxInflight int
		mu                    sync.Mutex
		wg                    sync.WaitGroup
		r                     = conflict.New(conflict.Ask, func(*conflict.Question) (conflict.Action, bool, error) {
			mu.Lock()
			inflight++
			maxInflight = max(maxInflight, inflight)
			mu.Unlock()

			mu.Lock()
			inflight--
			mu.Unlock()
			return conflict.Overwrite, false, nil
		}, false)
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Resolve(&conflict.Question{Path: "x"})
		}()
	}
	wg.Wait()
	tassert.Errorf(t, maxInflight == 1, "expected serialized prompts, got %d concurrent", maxInflight)
}

func TestAskError(t *testing.T) {
	errEOF := errors.New("unexpected EOF when asking")
	r := conflict.New(conflict.Ask, func(*conflict.Question) (conflict.Action, bool, error) {
		return conflict.Overwrite, false, errEOF
	}, false)
	action, err := r.Resolve(&conflict.Question{Path: "x"})
	tassert.ErrorIs(t, err, errEOF)
	tassert.Errorf(t, action == conflict.Abort, "expected abort, got %s", action)

	// merge is only meaningful for directories
	r = conflict.New(conflict.Ask, func(*conflict.Question) (conflict.Action, bool, error) {
		return conflict.Merge, false, nil
	}, false)
	action, err = r.Resolve(&conflict.Question{Path: "x"})
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, action == conflict.Overwrite, "expected overwrite, got %s", action)
}

func TestAvailableName(t *testing.T) {
	dir := t.TempDir()
	touch := func(name string) {
		tassert.CheckFatal(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	touch("archive.tar.gz")

	name, err := conflict.AvailableName(filepath.Join(dir, "archive.tar.gz"))
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, name == filepath.Join(dir, "archive_1.tar.gz"), "got %q", name)

	touch("archive_1.tar.gz")
	touch("archive_2.tar.gz")
	name, err = conflict.AvailableName(filepath.Join(dir, "archive.tar.gz"))
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, name == filepath.Join(dir, "archive_3.tar.gz"), "got %q", name)

	touch("README")
	name, err = conflict.AvailableName(filepath.Join(dir, "README"))
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, name == filepath.Join(dir, "README_1"), "got %q", name)

	name, err = conflict.AvailableName(filepath.Join(dir, ".hidden"))
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, name == filepath.Join(dir, ".hidden_1"), "got %q", name)
}

func TestParsePolicy(t *testing.T) {
	for s, exp := range map[string]conflict.Policy{"": conflict.Ask, "yes": conflict.AlwaysYes, "No": conflict.AlwaysNo} {
		p, err := conflict.ParsePolicy(s)
		tassert.CheckFatal(t, err)
		tassert.Errorf(t, p == exp, "%q: expected %s, got %s", s, exp, p)
	}
	_, err := conflict.ParsePolicy("maybe")
	tassert.Fatalf(t, err != nil, "expected error")
}
