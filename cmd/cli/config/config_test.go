// Package config provides types and functions to configure ouch CLI.
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/NVIDIA/ouch/cmd/cli/config"
	"github.com/NVIDIA/ouch/tools/tassert"
)

func TestLoadDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := config.Load()
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, cfg.Policy == "ask", "policy %q", cfg.Policy)
	tassert.Error(t, cfg.Compress.Level == nil, "level must be unset")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	tassert.CheckFatal(t, os.MkdirAll(filepath.Join(dir, "ouch"), 0o755))
	yml := `
policy: no
threads: 4
compress:
  level: 9
  skip_hidden: true
decompress:
  flatten: true
`
	tassert.CheckFatal(t, os.WriteFile(filepath.Join(dir, "ouch", "config.yaml"), []byte(yml), 0o644))
	cfg, err := config.Load()
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, cfg.Policy == "no" && cfg.Threads == 4, "%+v", cfg)
	tassert.Fatal(t, cfg.Compress.Level != nil && *cfg.Compress.Level == 9, "level")
	tassert.Error(t, cfg.Compress.SkipHidden && cfg.Decompress.Flatten, "bools")
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	tassert.CheckFatal(t, os.WriteFile(path, []byte("policy: sometimes\n"), 0o644))
	_, err := config.LoadFile(path)
	tassert.Fatal(t, err != nil, "expecting invalid policy")

	tassert.CheckFatal(t, os.WriteFile(path, []byte("threads: [\n"), 0o644))
	_, err = config.LoadFile(path)
	tassert.Fatal(t, err != nil, "expecting yaml error")
}
