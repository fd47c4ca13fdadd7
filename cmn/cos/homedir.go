// Package cos provides common low-level types and utilities for all ouch packages
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"os"
	"os/user"
	"path/filepath"
)

const (
	homeConfigsDir = ".config"
	homeApp        = "ouch"
)

func HomeDir() (string, error) {
	currentUser, err := user.Current()
	if err != nil {
		return os.UserHomeDir()
	}
	return currentUser.HomeDir, nil
}

// $HOME/.config/ouch[/<subdir>]; honors XDG_CONFIG_HOME
func HomeConfigDir(subdir string) string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, homeApp, subdir)
	}
	home, err := HomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, homeConfigsDir, homeApp, subdir)
}
