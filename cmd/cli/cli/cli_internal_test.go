// Package cli provides the compress, decompress, and list commands.
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/NVIDIA/ouch/cmn/archive"
	"github.com/NVIDIA/ouch/cmn/conflict"
	"github.com/NVIDIA/ouch/tools/tassert"

	"github.com/fatih/color"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		in     string
		action conflict.Action
		all    bool
		ok     bool
	}{
		{"y", conflict.Overwrite, false, true},
		{"Yes", conflict.Overwrite, true, true},
		{"n", conflict.Skip, false, true},
		{"N", conflict.Skip, true, true},
		{"r", conflict.Rename, false, true},
		{"M", conflict.Merge, true, true},
		{"a", conflict.Abort, false, true},
		{"", conflict.Abort, false, false},
		{"x", conflict.Abort, false, false},
	}
	for _, test := range tests {
		action, all, ok := parseAnswer(test.in)
		tassert.Errorf(t, action == test.action && all == test.all && ok == test.ok,
			"parseAnswer(%q) = (%s, %v, %v)", test.in, action, all, ok)
	}
}

func TestPrompterNoTTY(t *testing.T) {
	p := &prompter{out: &bytes.Buffer{}}
	_, _, err := p.ask(&conflict.Question{Path: "x"})
	tassert.ErrorIs(t, err, conflict.ErrNoPrompt)

	q := &archive.SniffQuestion{Path: "x", Detected: archive.NewChain(archive.Gzip)}
	tassert.Error(t, !p.confirm(conflict.Ask)(q), "must decline without a terminal")
	tassert.Error(t, p.confirm(conflict.AlwaysYes)(q), "--yes must accept")
	tassert.Error(t, !p.confirm(conflict.AlwaysNo)(q), "--no must decline")
}

func TestBarName(t *testing.T) {
	tassert.Error(t, barName("/a/b/c.txt") == "c.txt", barName("/a/b/c.txt"))
	long := strings.Repeat("x", 100) + ".bin"
	tassert.Errorf(t, len(barName(long)) == barNameLen, "%q", barName(long))
}

func TestPrintEntry(t *testing.T) {
	color.NoColor = true
	var (
		buf     bytes.Buffer
		entries = []*archive.Entry{
			{Name: "top/", Kind: archive.EntryDir},
			{Name: "top/sub/a.txt", Kind: archive.EntryFile},
			{Name: "top/l", Kind: archive.EntrySymlink, Linkname: "sub/a.txt"},
		}
	)
	for _, e := range entries {
		printEntry(&buf, e, true)
	}
	want := "top/\n    a.txt\n  l -> sub/a.txt\n"
	tassert.Errorf(t, buf.String() == want, "got %q, expected %q", buf.String(), want)

	le := toListEntry(&archive.Entry{Name: "f", Mode: 0o640, HasMode: true, ModTime: time.Unix(0, 0)})
	tassert.Errorf(t, le.Mode == "0640" && le.Kind == "file", "%+v", le)
}

func TestRun(t *testing.T) {
	color.NoColor = true
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	tassert.CheckFatal(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	tassert.CheckFatal(t, os.WriteFile(filepath.Join(src, "sub", "a.txt"), []byte("hello"), 0o644))
	out := filepath.Join(tmp, "src.tar.zst")
	dst := filepath.Join(tmp, "dst")
	ctx := context.Background()

	err := Run(ctx, "test", "", []string{cliName, "compress", "-q", "--slow", src, out})
	tassert.CheckFatal(t, err)
	err = Run(ctx, "test", "", []string{cliName, "d", "-q", "--dir", dst, out})
	tassert.CheckFatal(t, err)
	b, err := os.ReadFile(filepath.Join(dst, "src", "sub", "a.txt"))
	tassert.CheckFatal(t, err)
	tassert.Fatal(t, string(b) == "hello", "content")

	// existing output
	err = Run(ctx, "test", "", []string{cliName, "d", "-q", "--no", "--dir", dst, out})
	tassert.CheckFatal(t, err)

	err = Run(ctx, "test", "", []string{cliName, "c", "--fast", "--slow", src, out})
	tassert.Fatal(t, err != nil, "expecting mutually exclusive flags")
	err = Run(ctx, "test", "", []string{cliName, "c", src})
	tassert.Fatal(t, err != nil, "expecting missing arguments")
}
