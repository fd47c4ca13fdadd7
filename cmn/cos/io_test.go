// Package cos provides common low-level types and utilities for all ouch packages
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cos_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NVIDIA/ouch/cmn/cos"
	"github.com/NVIDIA/ouch/tools/tassert"
)

func TestSaveReaderSafe(t *testing.T) {
	var (
		dir  = t.TempDir()
		fqn  = filepath.Join(dir, "sub", "file.txt")
		data = []byte(strings.Repeat("0123456789", 1000))
		buf  = make([]byte, 333)
	)
	tassert.CheckFatal(t, os.MkdirAll(filepath.Dir(fqn), cos.PermRWXRX))
	n, err := cos.SaveReaderSafe(fqn, bytes.NewReader(data), buf, 0o600)
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, n == int64(len(data)), "written %d, expected %d", n, len(data))

	b, err := os.ReadFile(fqn)
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, bytes.Equal(b, data), "content mismatch")
	finfo, err := os.Stat(fqn)
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, finfo.Mode().Perm() == 0o600, "unexpected mode %v", finfo.Mode())

	entries, err := os.ReadDir(filepath.Dir(fqn))
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, len(entries) == 1, "expecting no leftover temp files, got %d entries", len(entries))
}

type failingReader struct{ n int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.n > 0 {
		r.n--
		return copy(p, "abc"), nil
	}
	return 0, errors.New("source failed")
}

func TestSaveReaderSafeCleanup(t *testing.T) {
	dir := t.TempDir()
	fqn := filepath.Join(dir, "out")
	_, err := cos.SaveReaderSafe(fqn, &failingReader{n: 3}, make([]byte, 16), cos.PermRWRR)
	tassert.Fatalf(t, err != nil, "expecting error")

	entries, err := os.ReadDir(dir)
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, len(entries) == 0, "expecting empty dir, got %d entries", len(entries))
}

func TestCallbackReader(t *testing.T) {
	var last int64
	r := cos.NewCallbackReader(strings.NewReader(strings.Repeat("x", 100)), func(n int64) { last = n })
	n, err := cos.CopyBuffer(cos.WriterOnly{Writer: &bytes.Buffer{}}, r, make([]byte, 7))
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, n == 100 && last == 100, "n=%d, last=%d", n, last)
}

func TestErrs(t *testing.T) {
	errs := cos.NewErrs(2)
	errs.Add(errors.New("one"))
	errs.Add(errors.New("one"))
	errs.Add(errors.New("two"))
	errs.Add(errors.New("three"))
	tassert.Errorf(t, errs.Cnt() == 3, "expecting 3 (dups ignored), got %d", errs.Cnt())
	tassert.Errorf(t, strings.Contains(errs.Error(), "and 2 more errors"), "%q", errs.Error())
	_, err := errs.JoinErr()
	tassert.Errorf(t, strings.Contains(err.Error(), "two"), "%v", err)
}

func TestTempNames(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "archive.tar")
	fh, err := cos.CreateTempNear(dst)
	tassert.CheckFatal(t, err)
	defer os.Remove(fh.Name())
	fh.Close()
	tassert.Errorf(t, filepath.Dir(fh.Name()) == filepath.Dir(dst), "%q vs %q", fh.Name(), dst)
	tassert.Errorf(t, cos.IsTempName(fh.Name()), "%q", fh.Name())
	tassert.Errorf(t, !cos.IsTempName(dst), "%q", dst)
}
