// Package config provides types and functions to configure ouch CLI.
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/NVIDIA/ouch/cmn/conflict"
	"github.com/NVIDIA/ouch/cmn/cos"

	"gopkg.in/yaml.v3"
)

// default pathname: $HOME/.config/ouch/config.yaml

const fname = "config.yaml"

type (
	CompressConfig struct {
		Level          *int `yaml:"level,omitempty"` // nil: codec default
		FollowSymlinks bool `yaml:"follow_symlinks"`
		SkipHidden     bool `yaml:"skip_hidden"`
	}
	DecompressConfig struct {
		Merge            bool `yaml:"merge"`
		Flatten          bool `yaml:"flatten"`
		MaterializeLinks bool `yaml:"materialize_links"`
		SkipTraversal    bool `yaml:"skip_traversal"`
	}

	// all of the above
	Config struct {
		Policy     string           `yaml:"policy"` // ask | yes | no
		TempDir    string           `yaml:"temp_dir,omitempty"`
		LogFile    string           `yaml:"log_file,omitempty"` // all severities, in addition to stderr
		Compress   CompressConfig   `yaml:"compress"`
		Decompress DecompressConfig `yaml:"decompress"`
		Threads    int              `yaml:"threads"` // 0: all CPUs
		NoColor    bool             `yaml:"no_color"`
		Verbose    bool             `yaml:"verbose"`
	}
)

func Default() *Config { return &Config{Policy: conflict.Ask.String()} }

func Path() string { return filepath.Join(cos.HomeConfigDir(""), fname) }

// Load returns defaults when there's no config file
func Load() (*Config, error) {
	return LoadFile(Path())
}

func LoadFile(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to load CLI config %q: %v", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid CLI config %q: %v", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := conflict.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if c.Threads < 0 {
		return fmt.Errorf("invalid threads %d (expecting non-negative)", c.Threads)
	}
	return nil
}
