// Package cli provides the compress, decompress, and list commands.
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package cli

import (
	"fmt"

	"github.com/NVIDIA/ouch/cmn/archive"
	"github.com/NVIDIA/ouch/cmn/cos"
	"github.com/NVIDIA/ouch/xs"

	"github.com/urfave/cli"
)

const compressUsage = "compress one or more files and/or directories into OUTPUT,\n" +
	indent1 + "\te.g.:\n" +
	indent1 + "\t- 'ouch c a.txt a.txt.zst'\t- single file, single codec;\n" +
	indent1 + "\t- 'ouch c src docs README.md project.tar.gz'\t- multiple inputs require a container (tar, zip, 7z);\n" +
	indent1 + "\t- 'ouch c --slow dir dir.tar.xz'\t- best compression level of each codec in the chain;\n" +
	indent1 + "\t- 'ouch c -j 8 dir dir.tar.zst'\t- multi-threaded zstd."

const indent1 = "   "

func (a *acli) compressCmd() cli.Command {
	return cli.Command{
		Name:      "compress",
		Aliases:   []string{"c"},
		Usage:     compressUsage,
		ArgsUsage: "FILES... OUTPUT",
		Flags:     []cli.Flag{levelFlag, fastFlag, slowFlag, followFlag},
		Action:    a.compressHandler,
	}
}

func (a *acli) compressHandler(c *cli.Context) error {
	args := c.Args()
	if len(args) < 2 {
		return missingArgumentsError(c, "FILES...", "OUTPUT")
	}
	inputs, out := []string(args[:len(args)-1]), args[len(args)-1]
	chain, err := a.outputChain(c, out)
	if err != nil {
		return err
	}
	cfg, err := a.xsConfig(c)
	if err != nil {
		return err
	}
	cfg.FollowSymlinks = flagIsSet(c, followFlag) || a.cfg.Compress.FollowSymlinks
	cfg.SkipHidden = flagIsSet(c, hiddenFlag) || a.cfg.Compress.SkipHidden

	stats, err := xs.Compress(a.ctx, inputs, out, chain, cfg)
	a.wait()
	if err != nil {
		return err
	}
	if !flagIsSet(c, quietFlag) && stats.Skipped == 0 {
		fmt.Fprintf(a.outWriter, "Created %s (%s): %d entr%s, %s\n", fgreen(out), chain,
			stats.Entries, plural(stats.Entries, "y", "ies"), cos.ToSizeIEC(stats.Bytes, 2))
	}
	a.printWarnings(c, &stats)
	return nil
}

// by extension or --format; then, the level (if any)
func (a *acli) outputChain(c *cli.Context, out string) (chain archive.Chain, err error) {
	if flagIsSet(c, formatFlag) {
		chain, err = archive.ParseFormat(parseStrFlag(c, formatFlag))
	} else {
		chain, err = archive.ForOutput(out)
	}
	if err != nil {
		return nil, err
	}
	var (
		fast, slow = flagIsSet(c, fastFlag), flagIsSet(c, slowFlag)
		level      = flagIsSet(c, levelFlag)
	)
	switch {
	case fast && slow:
		return nil, incorrectUsageMsg(c, errFmtExclusive, flprn(fastFlag), flprn(slowFlag))
	case level && (fast || slow):
		return nil, incorrectUsageMsg(c, "flag %s cannot be used together with %s or %s",
			flprn(levelFlag), flprn(fastFlag), flprn(slowFlag))
	case fast:
		return chain.WithPreset(archive.PresetFastest), nil
	case slow:
		return chain.WithPreset(archive.PresetBest), nil
	case level:
		return chain.WithLevel(parseIntFlag(c, levelFlag))
	case a.cfg.Compress.Level != nil:
		return chain.WithLevel(*a.cfg.Compress.Level)
	}
	return chain, nil
}

// common part of all commands
func (a *acli) xsConfig(c *cli.Context) (xs.Config, error) {
	policy, err := a.policy(c)
	if err != nil {
		return xs.Config{}, err
	}
	cfg := xs.Config{
		Ask:      a.prompt.ask,
		Policy:   policy,
		Password: parseStrFlag(c, passwordFlag),
		TempDir:  a.cfg.TempDir,
		Threads:  a.threads(c),
	}
	if !flagIsSet(c, quietFlag) && a.prompt.tty {
		a.bars = newProgressBars(a.errWriter)
		cfg.Progress = a.bars.update
	}
	return cfg, nil
}

func (a *acli) wait() {
	if a.bars != nil {
		a.bars.wait()
		a.bars = nil
	}
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
