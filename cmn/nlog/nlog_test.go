// Package nlog - ouch logger, provides buffering, timestamping, and writing
// to the console and (optionally) to a log file
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package nlog_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NVIDIA/ouch/cmn/nlog"
	"github.com/NVIDIA/ouch/tools/tassert"
)

func TestConsoleSeverity(t *testing.T) {
	var buf bytes.Buffer
	nlog.SetOutput(&buf)
	defer nlog.SetOutput(os.Stderr)

	nlog.SetVerbose(false)
	nlog.Infof("%s entries", "quiet")
	tassert.Errorf(t, buf.Len() == 0, "info must be suppressed when not verbose, got %q", buf.String())

	nlog.Warningf("dangling %s", "hardlink")
	line := buf.String()
	tassert.Errorf(t, strings.HasPrefix(line, "W "), "expecting warning prefix, got %q", line)
	tassert.Errorf(t, strings.Contains(line, "nlog_test:"), "expecting caller file in %q", line)
	tassert.Errorf(t, strings.HasSuffix(line, "dangling hardlink\n"), "unexpected line %q", line)

	buf.Reset()
	nlog.SetVerbose(true)
	defer nlog.SetVerbose(false)
	nlog.Infoln("extracted", 3, "entries")
	tassert.Errorf(t, strings.HasSuffix(buf.String(), "extracted 3 entries\n"), "unexpected line %q", buf.String())
}

func TestLogFile(t *testing.T) {
	nlog.SetOutput(nil)
	defer nlog.SetOutput(os.Stderr)

	path := filepath.Join(t.TempDir(), "ouch.log")
	tassert.CheckFatal(t, nlog.SetLogFile(path))
	nlog.Infof("into the file only")
	nlog.Errorln("and an error")
	nlog.Flush()
	tassert.CheckFatal(t, nlog.SetLogFile(""))

	b, err := os.ReadFile(path)
	tassert.CheckFatal(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	tassert.Fatalf(t, len(lines) == 2, "expecting 2 lines, got %d: %q", len(lines), b)
	tassert.Errorf(t, strings.HasPrefix(lines[0], "I "), "%q", lines[0])
	tassert.Errorf(t, strings.HasPrefix(lines[1], "E "), "%q", lines[1])
}
