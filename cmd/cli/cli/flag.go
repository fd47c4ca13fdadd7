// Package cli provides the compress, decompress, and list commands.
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package cli

import (
	"strings"
	"time"

	"github.com/NVIDIA/ouch/cmn/conflict"
	"github.com/urfave/cli"
)

const errFmtExclusive = "flags %s and %s are mutually exclusive"

var (
	//
	// common
	//
	yesFlag = cli.BoolFlag{
		Name:  "yes, y",
		Usage: "overwrite existing files (and accept detected formats) without asking",
	}
	noFlag = cli.BoolFlag{
		Name:  "no, n",
		Usage: "skip existing files (and reject detected formats) without asking",
	}
	quietFlag   = cli.BoolFlag{Name: "quiet, q", Usage: "no progress bars and no summary"}
	verboseFlag = cli.BoolFlag{Name: "verbose, v", Usage: "log every file as it is being processed"}
	noColorFlag = cli.BoolFlag{Name: "no-color", Usage: "disable colored output"}
	hiddenFlag  = cli.BoolFlag{Name: "hidden, H", Usage: "skip hidden files and directories (compress only)"}
	formatFlag  = cli.StringFlag{
		Name:  "format, f",
		Usage: "explicit format chain overriding file extensions, e.g.: --format tar.gz",
	}
	passwordFlag = cli.StringFlag{Name: "password, p", Usage: "password to read encrypted 7z and rar archives"}
	threadsFlag  = cli.IntFlag{
		Name:  "threads, j",
		Usage: "number of threads for parallel codecs (gzip, lz4, snappy, zstd); 0: all CPUs",
	}

	commonFlags = []cli.Flag{
		yesFlag, noFlag, quietFlag, verboseFlag, hiddenFlag,
		formatFlag, passwordFlag, threadsFlag, noColorFlag,
	}

	//
	// compress
	//
	levelFlag  = cli.IntFlag{Name: "level, l", Usage: "compression level (codec-specific range)"}
	fastFlag   = cli.BoolFlag{Name: "fast", Usage: "fastest compression level of each codec"}
	slowFlag   = cli.BoolFlag{Name: "slow", Usage: "best (and slowest) compression level of each codec"}
	followFlag = cli.BoolFlag{
		Name:  "follow-symlinks, L",
		Usage: "archive symlinks' targets rather than symlinks (broken links get skipped)",
	}

	//
	// decompress
	//
	dirFlag     = cli.StringFlag{Name: "dir, d", Usage: "destination directory", Value: "."}
	removeFlag  = cli.BoolFlag{Name: "remove, r", Usage: "remove the source upon successful decompression"}
	mergeFlag   = cli.BoolFlag{Name: "merge", Usage: "merge into existing directories without asking"}
	flattenFlag = cli.BoolFlag{
		Name:  "flatten",
		Usage: "single top-level item goes directly into the destination; otherwise, into <destination>/<archive-stem>",
	}
	materializeFlag = cli.BoolFlag{
		Name:  "materialize-links",
		Usage: "replace symlinks to archived files with copies of those files",
	}
	skipTraversalFlag = cli.BoolFlag{
		Name:  "skip-traversal",
		Usage: "skip (rather than fail on) entries resolving outside the destination directory",
	}

	//
	// list
	//
	treeFlag = cli.BoolFlag{Name: "tree, t", Usage: "show as a tree"}
	jsonFlag = cli.BoolFlag{Name: "json", Usage: "JSON output"}
)

// return the first name
func fl1n(flagName string) string {
	if i := strings.IndexByte(flagName, ','); i >= 0 {
		return strings.TrimSpace(flagName[:i])
	}
	return flagName
}

// flag's printable name
func flprn(f cli.Flag) string { return "--" + fl1n(f.GetName()) }

func flagIsSet(c *cli.Context, flag cli.Flag) (v bool) {
	name := fl1n(flag.GetName()) // take the first of multiple names
	switch flag.(type) {
	case cli.BoolFlag:
		v = c.Bool(name) || c.GlobalBool(name)
	default:
		v = c.GlobalIsSet(name) || c.IsSet(name)
	}
	return
}

// Returns the value of a string flag (either parent or local scope)
func parseStrFlag(c *cli.Context, flag cli.Flag) string {
	flagName := fl1n(flag.GetName())
	if c.GlobalIsSet(flagName) {
		return c.GlobalString(flagName)
	}
	return c.String(flagName)
}

func parseIntFlag(c *cli.Context, flag cli.IntFlag) int {
	flagName := fl1n(flag.GetName())
	if c.GlobalIsSet(flagName) {
		return c.GlobalInt(flagName)
	}
	return c.Int(flagName)
}

// --yes/--no, or else the config
func (a *acli) policy(c *cli.Context) (conflict.Policy, error) {
	yes, no := flagIsSet(c, yesFlag), flagIsSet(c, noFlag)
	switch {
	case yes && no:
		return conflict.Ask, incorrectUsageMsg(c, errFmtExclusive, flprn(yesFlag), flprn(noFlag))
	case yes:
		return conflict.AlwaysYes, nil
	case no:
		return conflict.AlwaysNo, nil
	}
	return conflict.ParsePolicy(a.cfg.Policy)
}

func (a *acli) threads(c *cli.Context) int {
	if flagIsSet(c, threadsFlag) {
		return parseIntFlag(c, threadsFlag)
	}
	return a.cfg.Threads
}

func parseBuildTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
